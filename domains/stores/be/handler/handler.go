package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/bundle"
	"github.com/zenGate-Global/pwa-studio/domains/stores/be/publishing"
	"github.com/zenGate-Global/pwa-studio/domains/stores/be/service"
	platformlogging "github.com/zenGate-Global/pwa-studio/platform/go/logging"
	"github.com/zenGate-Global/pwa-studio/platform/go/problem"
)

// StatusMessage is reported by GET /.
const StatusMessage = "PWA Studio backend running"

// Service is the stores service surface used by the HTTP layer.
type Service interface {
	Generate(ctx context.Context, cfg bundle.StoreConfig) (service.Archive, error)
	Publish(ctx context.Context, cfg bundle.StoreConfig) (publishing.Result, error)
}

// Handler exposes site generation and publishing over HTTP.
type Handler struct {
	svc    Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("stores service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the contract operations on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/generate", h.Generate)
	r.Post("/publish", h.Publish)
}

// Status implements GET /
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": StatusMessage})
}

// Generate implements POST /generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.decode(w, r)
	if !ok {
		return
	}

	out, err := h.svc.Generate(r.Context(), cfg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+out.Name)
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// PublishResponse is the body of POST /publish.
type PublishResponse struct {
	Success   bool   `json:"success"`
	URL       string `json:"url,omitempty"`
	Tenant    string `json:"tenant,omitempty"`
	PublishID string `json:"publishId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Publish implements POST /publish
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.decode(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Publish(r.Context(), cfg)
	if err != nil {
		var pubErr *publishing.Error
		if errors.As(err, &pubErr) {
			platformlogging.FromRequest(r, h.logger).Error("publish failed",
				zap.String("kind", string(pubErr.Kind)),
				zap.Error(err),
			)
			writeJSON(w, publishStatus(pubErr.Kind), PublishResponse{Success: false, Error: err.Error()})
			return
		}
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PublishResponse{
		Success:   true,
		URL:       res.URL,
		Tenant:    res.Tenant,
		PublishID: res.PublishID.String(),
	})
}

// publishStatus separates failures of the remote store itself from failures
// while writing to it.
func publishStatus(kind publishing.Kind) int {
	switch kind {
	case publishing.KindConnection, publishing.KindTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (bundle.StoreConfig, bool) {
	var req StoreRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			problem.Write(w, problem.New(http.StatusRequestEntityTooLarge, problem.TypeBodyTooLarge, "Request body too large", err.Error(), nil))
		case errors.Is(err, io.EOF):
			problem.Write(w, problem.New(http.StatusBadRequest, problem.TypeBadRequest, "Invalid request body", "request body is required", nil))
		default:
			problem.Write(w, problem.New(http.StatusBadRequest, problem.TypeBadRequest, "Invalid request body", err.Error(), nil))
		}
		return bundle.StoreConfig{}, false
	}
	return req.StoreConfig(), true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *bundle.ValidationError
	if errors.As(err, &verr) {
		problem.Write(w, problem.New(http.StatusBadRequest, problem.TypeValidation, "Validation failed", verr.Error(), verr.Fields))
		return
	}
	platformlogging.FromRequest(r, h.logger).Error("store operation failed", zap.Error(err))
	problem.Write(w, problem.New(http.StatusInternalServerError, problem.TypeInternal, "Internal error", "internal error", nil))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
