package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
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

type fakePrefs struct {
	emails map[string]string
	tiers  map[string]domain.Tier
	trials map[string]time.Time
	keys   map[string]string
	subs   map[string]string
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{
		emails: map[string]string{},
		tiers:  map[string]domain.Tier{},
		trials: map[string]time.Time{},
		keys:   map[string]string{},
		subs:   map[string]string{},
	}
}

func (f *fakePrefs) IdentityEmail(ctx context.Context, deviceID string) (string, error) {
	return f.emails[deviceID], nil
}

func (f *fakePrefs) SetIdentityEmail(ctx context.Context, deviceID, email string) error {
	f.emails[deviceID] = email
	return nil
}

func (f *fakePrefs) StoredTier(ctx context.Context, deviceID string) (*domain.Tier, error) {
	if t, ok := f.tiers[deviceID]; ok {
		return &t, nil
	}
	return nil, nil
}

func (f *fakePrefs) SaveTier(ctx context.Context, deviceID string, tier domain.Tier) error {
	f.tiers[deviceID] = tier
	return nil
}

func (f *fakePrefs) TrialStart(ctx context.Context, deviceID string) (*time.Time, error) {
	if t, ok := f.trials[deviceID]; ok {
		return &t, nil
	}
	return nil, nil
}

func (f *fakePrefs) SetTrialStart(ctx context.Context, deviceID string, start time.Time) error {
	f.trials[deviceID] = start
	return nil
}

func (f *fakePrefs) PersonalKey(ctx context.Context, deviceID string) (string, error) {
	return f.keys[deviceID], nil
}

func (f *fakePrefs) SetPersonalKey(ctx context.Context, deviceID, key string) error {
	if key == "" {
		delete(f.keys, deviceID)
		return nil
	}
	f.keys[deviceID] = key
	return nil
}

func (f *fakePrefs) SubscriptionRef(ctx context.Context, deviceID string) (string, error) {
	return f.subs[deviceID], nil
}

func (f *fakePrefs) SetSubscriptionRef(ctx context.Context, deviceID, ref string) error {
	f.subs[deviceID] = ref
	return nil
}

func (f *fakePrefs) ClearSubscriptionRef(ctx context.Context, deviceID string) error {
	delete(f.subs, deviceID)
	return nil
}

type fakeProfiles struct {
	byDevice map[string]map[string]*domain.IdentityProfile
	catalogs map[string][]domain.CatalogItem
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		byDevice: map[string]map[string]*domain.IdentityProfile{},
		catalogs: map[string][]domain.CatalogItem{},
	}
}

func (f *fakeProfiles) Upsert(ctx context.Context, deviceID string, p *domain.IdentityProfile) error {
	if f.byDevice[deviceID] == nil {
		f.byDevice[deviceID] = map[string]*domain.IdentityProfile{}
	}
	cp := *p
	f.byDevice[deviceID][p.ID] = &cp
	return nil
}

func (f *fakeProfiles) Get(ctx context.Context, deviceID, profileID string) (*domain.IdentityProfile, error) {
	if p, ok := f.byDevice[deviceID][profileID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProfiles) List(ctx context.Context, deviceID string) ([]domain.IdentityProfile, error) {
	var out []domain.IdentityProfile
	for _, p := range f.byDevice[deviceID] {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProfiles) Count(ctx context.Context, deviceID string) (int, error) {
	return len(f.byDevice[deviceID]), nil
}

func (f *fakeProfiles) Delete(ctx context.Context, deviceID, profileID string) error {
	delete(f.byDevice[deviceID], profileID)
	return nil
}

func (f *fakeProfiles) SaveCatalog(ctx context.Context, profileID string, items []domain.CatalogItem) error {
	f.catalogs[profileID] = items
	return nil
}

func (f *fakeProfiles) Catalog(ctx context.Context, profileID string) ([]domain.CatalogItem, error) {
	return f.catalogs[profileID], nil
}

type fakeBilling struct {
	session    *billing.CheckoutSession
	verifyInfo *billing.SubscriptionInfo
	statusInfo *billing.SubscriptionInfo
	statusErr  error
}

func (f *fakeBilling) CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL, deviceID string, trialDays int) (*billing.CheckoutSession, error) {
	if f.session == nil {
		return nil, errors.New("no session configured")
	}
	return f.session, nil
}

func (f *fakeBilling) VerifyCheckoutSession(ctx context.Context, sessionID string) (*billing.SubscriptionInfo, error) {
	if f.verifyInfo == nil {
		return nil, errors.New("unknown session")
	}
	return f.verifyInfo, nil
}

func (f *fakeBilling) SubscriptionStatus(ctx context.Context, subscriptionID string) (*billing.SubscriptionInfo, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if f.statusInfo == nil {
		return nil, errors.New("unknown subscription")
	}
	return f.statusInfo, nil
}

type fakeServiceKeys struct {
	key string
}

func (f *fakeServiceKeys) OpenAIAPIKey(ctx context.Context) (string, error) {
	return f.key, nil
}

type fakeWriter struct {
	lastReq draft.Request
}

func (f *fakeWriter) Compose(ctx context.Context, req draft.Request) (*draft.Draft, error) {
	f.lastReq = req
	return &draft.Draft{Email: "**Hola**", Provider: "openai"}, nil
}

type fakeTranscriber struct {
	lastReq transcribe.Request
	text    string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req transcribe.Request) (string, error) {
	f.lastReq = req
	if f.text == "" {
		return "hola mundo", nil
	}
	return f.text, nil
}

type fixture struct {
	app         *App
	prefs       *fakePrefs
	profiles    *fakeProfiles
	billing     *fakeBilling
	serviceKeys *fakeServiceKeys
	writer      *fakeWriter
	transcriber *fakeTranscriber
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		prefs:       newFakePrefs(),
		profiles:    newFakeProfiles(),
		billing:     &fakeBilling{},
		serviceKeys: &fakeServiceKeys{key: "sk-service"},
		writer:      &fakeWriter{},
		transcriber: &fakeTranscriber{},
		now:         time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	}
	clock := access.NewTrialClock(5).WithNow(func() time.Time { return fx.now })
	engine := access.NewEngine(access.Stores{
		Identity:      fx.prefs,
		Tiers:         fx.prefs,
		Trials:        fx.prefs,
		Credentials:   fx.prefs,
		Subscriptions: fx.prefs,
	}, clock, zerolog.Nop())
	reconciler := billing.NewReconciler(fx.billing, zerolog.Nop())
	fx.app = &App{
		Logger: zerolog.Nop(),
		Cfg: &infra.Config{
			TrialDays:         5,
			CheckoutTrialDays: 5,
			ProfileSlotsBasic: 1,
			ProfileSlotsPro:   3,
			DefaultLocale:     "es",
			JWTSecret:         "secret",
			RateLimitPerMin:   30,
			StripePriceID:     "price_123",
		},
		Engine:      engine,
		Prefs:       fx.prefs,
		Profiles:    fx.profiles,
		Billing:     fx.billing,
		Reconciler:  reconciler,
		Writer:      fx.writer,
		Transcriber: fx.transcriber,
		ServiceKeys: fx.serviceKeys,
	}
	return fx
}

// request builds an authenticated request carrying the device identity.
func (fx *fixture) request(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := middleware.ContextWithDeviceID(req.Context(), "dev-1")
	return req.WithContext(ctx)
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}
