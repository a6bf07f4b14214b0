package access

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"echomail/internal/domain"
)

// IdentityReader reads the account email bound to a device, if any.
type IdentityReader interface {
	IdentityEmail(ctx context.Context, deviceID string) (string, error)
}

// CredentialReader reads the user-supplied key for the metered AI
// service ("bring your own key").
type CredentialReader interface {
	PersonalKey(ctx context.Context, deviceID string) (string, error)
}

// SubscriptionReader reads the externally-managed subscription reference
// persisted after a verified checkout.
type SubscriptionReader interface {
	SubscriptionRef(ctx context.Context, deviceID string) (string, error)
}

// TierStore loads and persists the declared tier preference. StoredTier
// returns nil for absent or unrecognized values; implementations must
// never yield ADMIN_LIFETIME from storage.
type TierStore interface {
	StoredTier(ctx context.Context, deviceID string) (*domain.Tier, error)
	SaveTier(ctx context.Context, deviceID string, tier domain.Tier) error
}

// TrialStore loads and persists the single trial-start instant.
type TrialStore interface {
	TrialStart(ctx context.Context, deviceID string) (*time.Time, error)
	SetTrialStart(ctx context.Context, deviceID string, start time.Time) error
}

// Stores groups the narrow persistence contracts the engine depends on.
type Stores struct {
	Identity      IdentityReader
	Tiers         TierStore
	Trials        TrialStore
	Credentials   CredentialReader
	Subscriptions SubscriptionReader
}

// Engine is the access resolution engine: it decides the effective tier
// for a device and whether metered AI calls are allowed. It holds no
// per-device state of its own; every answer is computed fresh from the
// injected stores.
type Engine struct {
	stores Stores
	clock  TrialClock
	log    zerolog.Logger

	mu          sync.Mutex
	tierWatches []func(deviceID string, tier domain.Tier)
}

func NewEngine(stores Stores, clock TrialClock, log zerolog.Logger) *Engine {
	return &Engine{stores: stores, clock: clock, log: log}
}

// Clock exposes the engine's trial clock for read-only callers.
func (e *Engine) Clock() TrialClock { return e.clock }

// EffectiveTier computes the tier granted right now. Store failures
// degrade to the BASIC default rather than surfacing an error.
func (e *Engine) EffectiveTier(ctx context.Context, deviceID string) domain.Tier {
	email, err := e.stores.Identity.IdentityEmail(ctx, deviceID)
	if err != nil {
		e.log.Debug().Err(err).Str("device", deviceID).Msg("identity read failed, treating as anonymous")
		email = ""
	}
	stored, err := e.stores.Tiers.StoredTier(ctx, deviceID)
	if err != nil {
		e.log.Debug().Err(err).Str("device", deviceID).Msg("tier read failed, treating as unset")
		stored = nil
	}
	return EffectiveTier(email, stored)
}

// SaveTier persists a declared tier and notifies watchers. It reports
// false instead of raising when the value is not storable or the write
// fails. ADMIN_LIFETIME is derived, never stored.
func (e *Engine) SaveTier(ctx context.Context, deviceID string, tier domain.Tier) bool {
	if _, ok := domain.ParseStoredTier(string(tier)); !ok {
		e.log.Warn().Str("device", deviceID).Str("tier", string(tier)).Msg("refusing to store tier")
		return false
	}
	if err := e.stores.Tiers.SaveTier(ctx, deviceID, tier); err != nil {
		e.log.Warn().Err(err).Str("device", deviceID).Msg("tier write failed")
		return false
	}
	e.notifyTierChanged(deviceID, tier)
	return true
}

// OnTierChanged registers a callback fired after every successful tier
// write. Used by UI-facing layers to invalidate cached views.
func (e *Engine) OnTierChanged(fn func(deviceID string, tier domain.Tier)) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.tierWatches = append(e.tierWatches, fn)
	e.mu.Unlock()
}

func (e *Engine) notifyTierChanged(deviceID string, tier domain.Tier) {
	e.mu.Lock()
	watches := make([]func(string, domain.Tier), len(e.tierWatches))
	copy(watches, e.tierWatches)
	e.mu.Unlock()
	for _, fn := range watches {
		fn(deviceID, tier)
	}
}

// StartTrial records "now" as the trial start unless a record already
// exists; an existing record is kept so repeated calls never reset the
// clock. Reports false only when the write fails.
func (e *Engine) StartTrial(ctx context.Context, deviceID string) bool {
	if existing, err := e.stores.Trials.TrialStart(ctx, deviceID); err == nil && existing != nil {
		return true
	}
	if err := e.stores.Trials.SetTrialStart(ctx, deviceID, e.clock.now()); err != nil {
		e.log.Warn().Err(err).Str("device", deviceID).Msg("trial start write failed")
		return false
	}
	return true
}

// TrialStart returns the recorded trial start, nil when none exists.
func (e *Engine) TrialStart(ctx context.Context, deviceID string) *time.Time {
	start, err := e.stores.Trials.TrialStart(ctx, deviceID)
	if err != nil {
		e.log.Debug().Err(err).Str("device", deviceID).Msg("trial read failed, treating as unset")
		return nil
	}
	return start
}

// TrialDayNumber returns the current 1-indexed trial day; ok is false
// when no trial was started.
func (e *Engine) TrialDayNumber(ctx context.Context, deviceID string) (int, bool) {
	return e.clock.DayNumber(e.TrialStart(ctx, deviceID))
}

// TrialDaysRemaining returns whole days left, zero once expired or when
// no trial exists.
func (e *Engine) TrialDaysRemaining(ctx context.Context, deviceID string) int {
	return e.clock.DaysRemaining(e.TrialStart(ctx, deviceID))
}

// IsTrialExpired reports whether a started trial has run out.
func (e *Engine) IsTrialExpired(ctx context.Context, deviceID string) bool {
	return e.clock.IsExpired(e.TrialStart(ctx, deviceID))
}

// PersonalKey returns the device's own trimmed credential, empty when
// absent or unreadable.
func (e *Engine) PersonalKey(ctx context.Context, deviceID string) string {
	key, err := e.stores.Credentials.PersonalKey(ctx, deviceID)
	if err != nil {
		e.log.Debug().Err(err).Str("device", deviceID).Msg("credential read failed, treating as absent")
		return ""
	}
	return strings.TrimSpace(key)
}

// SubscriptionRef returns the stored subscription reference, empty when
// absent or unreadable.
func (e *Engine) SubscriptionRef(ctx context.Context, deviceID string) string {
	ref, err := e.stores.Subscriptions.SubscriptionRef(ctx, deviceID)
	if err != nil {
		e.log.Debug().Err(err).Str("device", deviceID).Msg("subscription read failed, treating as absent")
		return ""
	}
	return ref
}

// GateStatus decides whether the device may use metered AI calls right
// now. The precedence is fixed:
//
//  1. a non-empty personal credential always allows
//  2. an external subscription reference allows (billing owns expiry)
//  3. no trial record allows (never-started is not a block)
//  4. an unexpired trial allows
//  5. otherwise the trial has expired
//
// The decision reads local state only and is never cached: credential,
// subscription and trial state can all change between calls.
func (e *Engine) GateStatus(ctx context.Context, deviceID string) domain.GateStatus {
	key, err := e.stores.Credentials.PersonalKey(ctx, deviceID)
	if err != nil {
		e.log.Debug().Err(err).Str("device", deviceID).Msg("credential read failed, treating as absent")
		key = ""
	}
	if strings.TrimSpace(key) != "" {
		return domain.GateOK
	}

	ref, err := e.stores.Subscriptions.SubscriptionRef(ctx, deviceID)
	if err != nil {
		e.log.Debug().Err(err).Str("device", deviceID).Msg("subscription read failed, treating as absent")
		ref = ""
	}
	if ref != "" {
		return domain.GateOK
	}

	start := e.TrialStart(ctx, deviceID)
	if start == nil {
		return domain.GateOK
	}
	if !e.clock.IsExpired(start) {
		return domain.GateOK
	}
	return domain.GateTrialExpired
}

// CanAccessPro reports whether pro features are visible for the device's
// effective tier. Visibility is independent of the usage gate.
func (e *Engine) CanAccessPro(ctx context.Context, deviceID string) bool {
	return e.EffectiveTier(ctx, deviceID).CanAccessPro()
}
