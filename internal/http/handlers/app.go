package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"echomail/internal/access"
	"echomail/internal/domain"
	"echomail/internal/infra"
	"echomail/internal/infra/billing"
	"echomail/internal/middleware"
	"echomail/internal/providers/draft"
	"echomail/internal/providers/transcribe"
)

// PrefWriter covers the device preference mutations the HTTP surface
// performs directly; reads go through the access engine.
type PrefWriter interface {
	SetPersonalKey(ctx context.Context, deviceID, key string) error
	SetSubscriptionRef(ctx context.Context, deviceID, ref string) error
	ClearSubscriptionRef(ctx context.Context, deviceID string) error
	SetIdentityEmail(ctx context.Context, deviceID, email string) error
}

// ProfileDirectory is the profile persistence the handlers need.
type ProfileDirectory interface {
	Upsert(ctx context.Context, deviceID string, p *domain.IdentityProfile) error
	Get(ctx context.Context, deviceID, profileID string) (*domain.IdentityProfile, error)
	List(ctx context.Context, deviceID string) ([]domain.IdentityProfile, error)
	Count(ctx context.Context, deviceID string) (int, error)
	Delete(ctx context.Context, deviceID, profileID string) error
	SaveCatalog(ctx context.Context, profileID string, items []domain.CatalogItem) error
	Catalog(ctx context.Context, profileID string) ([]domain.CatalogItem, error)
}

// CheckoutService is the billing operations surface. billing.Client
// implements it; tests substitute a stub.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL, deviceID string, trialDays int) (*billing.CheckoutSession, error)
	VerifyCheckoutSession(ctx context.Context, sessionID string) (*billing.SubscriptionInfo, error)
	SubscriptionStatus(ctx context.Context, subscriptionID string) (*billing.SubscriptionInfo, error)
}

// ServiceCredentials provides the shared service key used when a device
// has not brought its own.
type ServiceCredentials interface {
	OpenAIAPIKey(ctx context.Context) (string, error)
}

type App struct {
	Logger      zerolog.Logger
	Cfg         *infra.Config
	Engine      *access.Engine
	Prefs       PrefWriter
	Profiles    ProfileDirectory
	Billing     CheckoutService
	Reconciler  *billing.Reconciler
	Writer      draft.Writer
	Transcriber transcribe.Transcriber
	ServiceKeys ServiceCredentials
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: code, Message: message})
}

func (a *App) currentDeviceID(r *http.Request) string {
	return middleware.DeviceIDFromContext(r.Context())
}

// requireDevice writes a 401 and returns "" when no device identity is on
// the request.
func (a *App) requireDevice(w http.ResponseWriter, r *http.Request) string {
	deviceID := a.currentDeviceID(r)
	if deviceID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing device context")
	}
	return deviceID
}

// resolveAPIKey applies the usage gate and picks the key a provider call
// should use: the device's personal key first, the shared service key
// otherwise. A denied gate returns the trial_expired status and no key.
func (a *App) resolveAPIKey(ctx context.Context, deviceID string) (string, domain.GateStatus) {
	if status := a.Engine.GateStatus(ctx, deviceID); status != domain.GateOK {
		return "", status
	}
	if key := a.Engine.PersonalKey(ctx, deviceID); key != "" {
		return key, domain.GateOK
	}
	if a.ServiceKeys != nil {
		key, err := a.ServiceKeys.OpenAIAPIKey(ctx)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("service key lookup failed")
		}
		return key, domain.GateOK
	}
	return "", domain.GateOK
}

func (a *App) opTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 30 * time.Second
	}
	return context.WithTimeout(parent, d)
}
