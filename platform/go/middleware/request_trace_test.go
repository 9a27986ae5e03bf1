package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	platformlogging "github.com/zenGate-Global/pwa-studio/platform/go/logging"
)

func TestRequestTraceEchoesRequestID(t *testing.T) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(platformlogging.RequestLogger(zaptest.NewLogger(t)))
	r.Use(RequestTrace)

	r.Get("/test", func(w http.ResponseWriter, req *http.Request) {
		_, ok := platformlogging.FromContext(req.Context())
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-Id", "req-123")
	req.Header.Set("User-Agent", "builder/1.0")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "req-123", resp.Header().Get(RequestIDHeader))
}

func TestRequestTraceWithoutLogger(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RequestTrace)

	r.Get("/test", func(w http.ResponseWriter, req *http.Request) {
		_, ok := platformlogging.FromContext(req.Context())
		require.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Empty(t, resp.Header().Get(RequestIDHeader))
}
