package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"echomail/internal/access"
	"echomail/internal/domain"
)

type trialDTO struct {
	Started       bool       `json:"started"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	DayNumber     int        `json:"day_number,omitempty"`
	TotalDays     int        `json:"total_days"`
	DaysRemaining int        `json:"days_remaining"`
	Expired       bool       `json:"expired"`
}

type accessDTO struct {
	Tier         domain.Tier       `json:"tier"`
	TierLabel    string            `json:"tier_label"`
	CanAccessPro bool              `json:"can_access_pro"`
	Gate         domain.GateStatus `json:"gate"`
	DocSlots     int               `json:"doc_slots"`
	ProfileSlots int               `json:"profile_slots"`
	Trial        trialDTO          `json:"trial"`
}

func (a *App) accessView(r *http.Request, deviceID string) accessDTO {
	ctx := r.Context()
	tier := a.Engine.EffectiveTier(ctx, deviceID)
	start := a.Engine.TrialStart(ctx, deviceID)
	day, started := a.Engine.Clock().DayNumber(start)
	return accessDTO{
		Tier:         tier,
		TierLabel:    tier.Label(),
		CanAccessPro: tier.CanAccessPro(),
		Gate:         a.Engine.GateStatus(ctx, deviceID),
		DocSlots:     access.MaxIdentityDocSlots(tier),
		ProfileSlots: a.Cfg.ProfileSlots(!tier.CanAccessPro()),
		Trial: trialDTO{
			Started:       started,
			StartedAt:     start,
			DayNumber:     day,
			TotalDays:     a.Engine.Clock().Days(),
			DaysRemaining: a.Engine.Clock().DaysRemaining(start),
			Expired:       a.Engine.Clock().IsExpired(start),
		},
	}
}

// Access returns the full resolved access state for the calling device.
func (a *App) Access(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	a.json(w, http.StatusOK, a.accessView(r, deviceID))
}

// StartTrial records the trial start if none exists and switches the
// device to PRO for the trial window. Repeat calls never reset the
// clock, and founder accounts never start one.
func (a *App) StartTrial(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	ctx := r.Context()
	if a.Engine.EffectiveTier(ctx, deviceID) == domain.TierAdminLifetime {
		a.json(w, http.StatusOK, a.accessView(r, deviceID))
		return
	}
	if !a.Engine.StartTrial(ctx, deviceID) {
		a.error(w, http.StatusInternalServerError, "internal", "failed to record trial start")
		return
	}
	if !a.Engine.SaveTier(ctx, deviceID, domain.TierPro) {
		a.error(w, http.StatusInternalServerError, "internal", "failed to store tier")
		return
	}
	a.json(w, http.StatusOK, a.accessView(r, deviceID))
}

type saveIdentityRequest struct {
	Email string `json:"email"`
}

// SaveIdentity binds an account email to the device. The effective tier
// is recomputed from it on every read, so a founder email grants the
// lifetime tier immediately without storing it.
func (a *App) SaveIdentity(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	var req saveIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Prefs.SetIdentityEmail(r.Context(), deviceID, req.Email); err != nil {
		a.Logger.Error().Err(err).Msg("identity write failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store identity")
		return
	}
	a.json(w, http.StatusOK, a.accessView(r, deviceID))
}

type saveTierRequest struct {
	Tier string `json:"tier"`
}

// SaveTier persists a declared tier. Derived tiers and unknown values are
// rejected; store failures surface as a 500 so the client can retry.
func (a *App) SaveTier(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	var req saveTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	tier, ok := domain.ParseStoredTier(req.Tier)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "tier must be BASIC or PRO")
		return
	}
	if !a.Engine.SaveTier(r.Context(), deviceID, tier) {
		a.error(w, http.StatusInternalServerError, "internal", "failed to store tier")
		return
	}
	a.json(w, http.StatusOK, a.accessView(r, deviceID))
}
