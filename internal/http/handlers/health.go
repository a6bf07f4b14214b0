package handlers

import (
	"net/http"
)

// Health reports liveness plus which optional integrations are wired,
// so a misconfigured deploy is visible without reading logs.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "echomail",
		"billing": a.Billing != nil,
	})
}
