package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ofuangka/smart/internal/http/handlers"
)

const shutdownTimeout = 15 * time.Second

// NewRouter builds the HTTP routing tree. Handler deadlines follow timeout,
// which should cover one discovery cycle.
func NewRouter(api *handlers.API, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoverJSON(api))
	r.Use(middleware.Timeout(timeout))
	r.Use(RequestLogger(api))

	r.Get("/healthz", api.Health)
	r.Get("/devices", api.ListDevices)
	r.Get("/devices/{deviceId}/state", func(w http.ResponseWriter, r *http.Request) {
		api.GetState(w, r, chi.URLParam(r, "deviceId"))
	})
	r.Post("/devices/{deviceId}/actions/{actionId}", func(w http.ResponseWriter, r *http.Request) {
		api.PerformAction(w, r, chi.URLParam(r, "deviceId"), chi.URLParam(r, "actionId"))
	})
	r.Post("/refresh", api.Refresh)
	return r
}

// RunServer starts and gracefully stops HTTP server with context cancellation.
func RunServer(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
