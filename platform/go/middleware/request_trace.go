package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformlogging "github.com/zenGate-Global/pwa-studio/platform/go/logging"
)

// RequestIDHeader echoes the request id so clients can quote it in reports.
const RequestIDHeader = "X-Request-Id"

// RequestTrace returns the request id to the client and adds the caller's user
// agent to the request-scoped logger. It must run after RequestLogger.
func RequestTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if requestID := middleware.GetReqID(ctx); requestID != "" {
			w.Header().Set(RequestIDHeader, requestID)
		}
		if logger, ok := platformlogging.FromContext(ctx); ok {
			if ua := r.UserAgent(); ua != "" {
				ctx = platformlogging.WithLogger(ctx, logger.With(zap.String("user_agent", ua)))
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
