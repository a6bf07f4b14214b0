package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

type saveAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

// SaveAPIKey stores the device's personal provider key. A present key
// bypasses the trial gate entirely, so the write is deliberately strict:
// blank keys are rejected rather than silently cleared.
func (a *App) SaveAPIKey(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	var req saveAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "api_key required")
		return
	}
	if err := a.Prefs.SetPersonalKey(r.Context(), deviceID, key); err != nil {
		a.Logger.Error().Err(err).Msg("personal key write failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store api key")
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"saved": true})
}

// DeleteAPIKey removes the personal key; the device falls back to the
// subscription/trial path on the next gate check.
func (a *App) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	if err := a.Prefs.SetPersonalKey(r.Context(), deviceID, ""); err != nil {
		a.Logger.Error().Err(err).Msg("personal key delete failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete api key")
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"deleted": true})
}
