package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	devicedomain "github.com/ofuangka/smart/internal/domain/device"
)

// Poller triggers asynchronous rediscovery.
type Poller interface {
	TriggerRefresh()
}

// Status exposes cache freshness for the health probe.
type Status interface {
	LastRefresh() time.Time
}

// API groups HTTP handlers and dependencies.
type API struct {
	devices devicedomain.Service
	poller  Poller
	status  Status
	version string
	logger  *slog.Logger
}

// New creates HTTP handlers with explicit dependencies.
func New(devices devicedomain.Service, poller Poller, status Status, version string, logger *slog.Logger) *API {
	return &API{
		devices: devices,
		poller:  poller,
		status:  status,
		version: version,
		logger:  logger,
	}
}

// Logger returns request logger used by HTTP middleware.
func (a *API) Logger() *slog.Logger {
	return a.logger
}

// Health reports liveness and the time of the last persisted discovery.
func (a *API) Health(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok", "version": a.version}
	if at := a.status.LastRefresh(); !at.IsZero() {
		body["last_refresh"] = at.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// writeServiceError maps core errors onto HTTP statuses.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(r.Context().Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.Is(err, devicedomain.ErrDeviceNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, devicedomain.ErrRetryExhausted):
		writeError(w, http.StatusTooManyRequests, "retry_exhausted", err.Error())
	case errors.Is(err, devicedomain.ErrUnsupportedOperation):
		writeError(w, http.StatusBadRequest, "unsupported_operation", err.Error())
	case errors.Is(err, devicedomain.ErrAllBackendsUnavailable), errors.Is(err, devicedomain.ErrBackendUnavailable):
		writeError(w, http.StatusBadGateway, "backend_unavailable", err.Error())
	default:
		if a.logger != nil {
			a.logger.Error("request failed", "err", err)
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
