package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"echomail/internal/domain"
	"echomail/internal/middleware"
	"echomail/internal/providers/draft"
)

type generateRequest struct {
	domain.Brief
	ProfileID string `json:"profile_id,omitempty"`
}

// Generate composes one marketing email from a transcript. The usage
// gate runs first: an expired trial answers 402 with the trial_expired
// code so clients can route the user to upgrade or bring their own key.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	brief := req.Brief
	brief.Normalize(middleware.LocaleFromContext(r.Context()))
	if err := brief.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	apiKey, gate := a.resolveAPIKey(r.Context(), deviceID)
	if gate != domain.GateOK {
		a.error(w, http.StatusPaymentRequired, string(gate), "trial expired: upgrade or add your own api key")
		return
	}

	composeReq := draft.Request{APIKey: apiKey, Brief: brief}
	if req.ProfileID != "" {
		profile, err := a.Profiles.Get(r.Context(), deviceID, req.ProfileID)
		if err == nil {
			composeReq.Profile = profile
			if a.Engine.CanAccessPro(r.Context(), deviceID) {
				if items, catErr := a.Profiles.Catalog(r.Context(), profile.ID); catErr == nil {
					composeReq.Catalog = items
				}
			}
		} else if err != domain.ErrNotFound {
			a.Logger.Warn().Err(err).Msg("profile read failed, composing without it")
		}
	}

	ctx, cancel := a.opTimeout(r.Context(), 60*time.Second)
	defer cancel()
	result, err := a.Writer.Compose(ctx, composeReq)
	if err != nil {
		a.Logger.Error().Err(err).Msg("compose failed")
		a.error(w, http.StatusBadGateway, "provider_error", "failed to generate email")
		return
	}
	a.json(w, http.StatusOK, result)
}
