package handlers

import (
	"net/http"
)

// ListDevices runs a discovery cycle and returns the redacted device list.
func (a *API) ListDevices(w http.ResponseWriter, r *http.Request) {
	items, err := a.devices.ListDevices(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetState returns the current state of one device.
func (a *API) GetState(w http.ResponseWriter, r *http.Request, id string) {
	state, err := a.devices.GetState(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// PerformAction dispatches one named action to a device.
func (a *API) PerformAction(w http.ResponseWriter, r *http.Request, id, action string) {
	result, err := a.devices.PerformAction(r.Context(), id, action)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Refresh triggers an immediate discovery cycle asynchronously.
func (a *API) Refresh(w http.ResponseWriter, _ *http.Request) {
	a.poller.TriggerRefresh()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
