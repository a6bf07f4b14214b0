package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"echomail/internal/domain"
	"echomail/internal/infra/billing"
)

type subscriptionDTO struct {
	SubscriptionID string     `json:"subscription_id,omitempty"`
	Status         string     `json:"status"`
	IsPro          bool       `json:"is_pro"`
	TrialEnd       int64      `json:"trial_end,omitempty"`
	PeriodEnd      int64      `json:"current_period_end,omitempty"`
	CheckedAt      *time.Time `json:"checked_at,omitempty"`
}

func subscriptionView(info *billing.SubscriptionInfo, checkedAt *time.Time) subscriptionDTO {
	return subscriptionDTO{
		SubscriptionID: info.SubscriptionID,
		Status:         info.Status,
		IsPro:          info.IsPro,
		TrialEnd:       info.TrialEnd,
		PeriodEnd:      info.CurrentPeriodEnd,
		CheckedAt:      checkedAt,
	}
}

// CreateCheckout opens a subscription checkout session for the device.
func (a *App) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	if a.Billing == nil {
		a.error(w, http.StatusServiceUnavailable, "billing_disabled", "billing is not configured")
		return
	}
	ctx, cancel := a.opTimeout(r.Context(), 15*time.Second)
	defer cancel()
	session, err := a.Billing.CreateCheckoutSession(ctx,
		a.Cfg.StripePriceID, a.Cfg.CheckoutSuccessURL, a.Cfg.CheckoutCancelURL,
		deviceID, a.Cfg.CheckoutTrialDays)
	if err != nil {
		a.Logger.Error().Err(err).Msg("checkout session failed")
		a.error(w, http.StatusBadGateway, "billing_error", "failed to create checkout session")
		return
	}
	a.json(w, http.StatusOK, session)
}

type verifySessionRequest struct {
	SessionID string `json:"session_id"`
}

// VerifyCheckout confirms a completed checkout and promotes the device:
// the subscription reference is persisted and the stored tier set to PRO.
func (a *App) VerifyCheckout(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	if a.Billing == nil {
		a.error(w, http.StatusServiceUnavailable, "billing_disabled", "billing is not configured")
		return
	}
	var req verifySessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "session_id required")
		return
	}
	ctx, cancel := a.opTimeout(r.Context(), 15*time.Second)
	defer cancel()
	info, err := a.Billing.VerifyCheckoutSession(ctx, strings.TrimSpace(req.SessionID))
	if err != nil {
		a.Logger.Error().Err(err).Msg("checkout verification failed")
		a.error(w, http.StatusBadGateway, "billing_error", "failed to verify session")
		return
	}
	if info.IsPro && info.SubscriptionID != "" {
		if err := a.Prefs.SetSubscriptionRef(ctx, deviceID, info.SubscriptionID); err != nil {
			a.Logger.Error().Err(err).Msg("subscription ref write failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to persist subscription")
			return
		}
		a.Engine.SaveTier(ctx, deviceID, domain.TierPro)
		if a.Reconciler != nil {
			a.Reconciler.RefreshAsync(deviceID, info.SubscriptionID)
		}
	}
	a.json(w, http.StatusOK, subscriptionView(info, nil))
}

// SubscriptionStatus reports the billing state for the device's stored
// subscription. Cached snapshots answer immediately with a background
// refresh; a cache miss fetches synchronously once. A subscription that
// is no longer pro demotes the device back to BASIC.
func (a *App) SubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	deviceID := a.requireDevice(w, r)
	if deviceID == "" {
		return
	}
	ref := a.Engine.SubscriptionRef(r.Context(), deviceID)
	if ref == "" {
		a.json(w, http.StatusOK, subscriptionDTO{Status: "none"})
		return
	}
	if a.Reconciler == nil {
		a.error(w, http.StatusServiceUnavailable, "billing_disabled", "billing is not configured")
		return
	}
	if snap, ok := a.Reconciler.Cached(deviceID); ok {
		a.Reconciler.RefreshAsync(deviceID, ref)
		a.applyBillingDemotion(r, deviceID, ref, &snap.SubscriptionInfo)
		a.json(w, http.StatusOK, subscriptionView(&snap.SubscriptionInfo, &snap.CheckedAt))
		return
	}
	if err := a.Reconciler.Refresh(r.Context(), deviceID, ref); err != nil {
		a.Logger.Warn().Err(err).Msg("subscription status fetch failed")
		a.error(w, http.StatusBadGateway, "billing_error", "failed to fetch subscription status")
		return
	}
	snap, _ := a.Reconciler.Cached(deviceID)
	a.applyBillingDemotion(r, deviceID, ref, &snap.SubscriptionInfo)
	a.json(w, http.StatusOK, subscriptionView(&snap.SubscriptionInfo, &snap.CheckedAt))
}

// applyBillingDemotion clears a dead subscription so the gate falls back
// to the trial path and pro visibility drops to BASIC.
func (a *App) applyBillingDemotion(r *http.Request, deviceID, ref string, info *billing.SubscriptionInfo) {
	if info.IsPro || info.Status == "" {
		return
	}
	ctx := r.Context()
	if err := a.Prefs.ClearSubscriptionRef(ctx, deviceID); err != nil {
		a.Logger.Warn().Err(err).Msg("subscription ref clear failed")
		return
	}
	a.Engine.SaveTier(ctx, deviceID, domain.TierBasic)
	a.Logger.Info().Str("device", deviceID).Str("subscription", ref).Str("status", info.Status).Msg("subscription no longer active, demoted to basic")
}
