package repo

import (
	"context"
	"strconv"
	"strings"
	"time"

	"echomail/internal/domain"
	"echomail/internal/infra"
	"echomail/internal/sqlinline"
)

// Preference keys, one per engine concern. The names match the keys the
// web client historically used for its local store, which keeps migration
// tooling trivial.
const (
	prefIdentityEmail   = "echomail-identity-email"
	prefTier            = "echomail-subscription-tier"
	prefTrialStart      = "echomail-trial-started-at"
	prefPersonalKey     = "echomail-openai-api-key"
	prefSubscriptionRef = "echomail-stripe-subscription-id"
)

// PrefStore persists the per-device keyed records the access engine
// consumes: identity email, declared tier, trial start, personal
// credential and external subscription reference. Invalid stored values
// are reported as absent, never as errors.
type PrefStore struct {
	sql infra.SQLExecutor
}

func NewPrefStore(sql infra.SQLExecutor) *PrefStore {
	return &PrefStore{sql: sql}
}

func (s *PrefStore) get(ctx context.Context, deviceID, key string) (string, bool, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectDevicePref, deviceID, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *PrefStore) set(ctx context.Context, deviceID, key, value string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertDevicePref, deviceID, key, value)
	return err
}

func (s *PrefStore) delete(ctx context.Context, deviceID, key string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteDevicePref, deviceID, key)
	return err
}

// IdentityEmail returns the account email bound to the device, empty when
// none was recorded.
func (s *PrefStore) IdentityEmail(ctx context.Context, deviceID string) (string, error) {
	value, _, err := s.get(ctx, deviceID, prefIdentityEmail)
	return value, err
}

func (s *PrefStore) SetIdentityEmail(ctx context.Context, deviceID, email string) error {
	return s.set(ctx, deviceID, prefIdentityEmail, strings.TrimSpace(email))
}

// StoredTier returns the declared tier, or nil when absent or when the
// stored value is not a valid at-rest tier (notably ADMIN_LIFETIME, which
// must never round-trip through storage).
func (s *PrefStore) StoredTier(ctx context.Context, deviceID string) (*domain.Tier, error) {
	value, ok, err := s.get(ctx, deviceID, prefTier)
	if err != nil || !ok {
		return nil, err
	}
	tier, valid := domain.ParseStoredTier(value)
	if !valid {
		return nil, nil
	}
	return &tier, nil
}

func (s *PrefStore) SaveTier(ctx context.Context, deviceID string, tier domain.Tier) error {
	return s.set(ctx, deviceID, prefTier, string(tier))
}

// TrialStart returns the recorded trial start instant. The value is kept
// as epoch milliseconds; anything unparsable reads as "never started".
func (s *PrefStore) TrialStart(ctx context.Context, deviceID string) (*time.Time, error) {
	value, ok, err := s.get(ctx, deviceID, prefTrialStart)
	if err != nil || !ok {
		return nil, err
	}
	ms, parseErr := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if parseErr != nil {
		return nil, nil
	}
	t := time.UnixMilli(ms)
	return &t, nil
}

func (s *PrefStore) SetTrialStart(ctx context.Context, deviceID string, start time.Time) error {
	return s.set(ctx, deviceID, prefTrialStart, strconv.FormatInt(start.UnixMilli(), 10))
}

// PersonalKey returns the user's own key for the metered AI service.
func (s *PrefStore) PersonalKey(ctx context.Context, deviceID string) (string, error) {
	value, _, err := s.get(ctx, deviceID, prefPersonalKey)
	return value, err
}

// SetPersonalKey stores the trimmed key; an empty key clears the record.
func (s *PrefStore) SetPersonalKey(ctx context.Context, deviceID, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.delete(ctx, deviceID, prefPersonalKey)
	}
	return s.set(ctx, deviceID, prefPersonalKey, key)
}

// SubscriptionRef returns the external subscription reference persisted
// after a verified checkout.
func (s *PrefStore) SubscriptionRef(ctx context.Context, deviceID string) (string, error) {
	value, _, err := s.get(ctx, deviceID, prefSubscriptionRef)
	return value, err
}

func (s *PrefStore) SetSubscriptionRef(ctx context.Context, deviceID, ref string) error {
	return s.set(ctx, deviceID, prefSubscriptionRef, strings.TrimSpace(ref))
}

func (s *PrefStore) ClearSubscriptionRef(ctx context.Context, deviceID string) error {
	return s.delete(ctx, deviceID, prefSubscriptionRef)
}

// ListSubscriptionRefs returns every device with a stored subscription
// reference. The billing reconciliation sweep iterates this set.
func (s *PrefStore) ListSubscriptionRefs(ctx context.Context) (map[string]string, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListDevicesWithPref, prefSubscriptionRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var deviceID, ref string
		if err := rows.Scan(&deviceID, &ref); err != nil {
			return nil, err
		}
		out[deviceID] = ref
	}
	return out, rows.Err()
}
