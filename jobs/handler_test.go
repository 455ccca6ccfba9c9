package jobs

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newJobsRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	return r
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthWithoutInspector(t *testing.T) {
	h := NewHandler(nil, nil, discardLogger())
	rec := httptest.NewRecorder()
	newJobsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"queue":"default","pending":0}`, rec.Body.String())
}

func TestEnqueueOverdueScanWithoutClient(t *testing.T) {
	h := NewHandler(nil, nil, discardLogger())
	rec := httptest.NewRecorder()
	newJobsRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/overdue-scan", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
