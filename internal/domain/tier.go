package domain

import "strings"

// Tier enumerates product tiers.
type Tier string

const (
	TierBasic Tier = "BASIC"
	TierPro   Tier = "PRO"
	// TierAdminLifetime is derived from the founder identity at read time.
	// It is never written to storage; a stored value claiming it is corrupt.
	TierAdminLifetime Tier = "ADMIN_LIFETIME"
)

// ParseStoredTier maps a persisted value to a tier. Only BASIC and PRO are
// valid at rest; anything else (including ADMIN_LIFETIME) reports ok=false
// and callers fall back to the implicit default.
func ParseStoredTier(raw string) (Tier, bool) {
	switch Tier(strings.TrimSpace(raw)) {
	case TierBasic:
		return TierBasic, true
	case TierPro:
		return TierPro, true
	}
	return "", false
}

// CanAccessPro reports whether the tier unlocks pro features
// (multiple identity profiles, catalog module).
func (t Tier) CanAccessPro() bool {
	return t == TierPro || t == TierAdminLifetime
}

// Label returns the user-facing plan label.
func (t Tier) Label() string {
	if t == TierAdminLifetime {
		return "ADMIN/LIFETIME"
	}
	if t == TierPro {
		return "PRO"
	}
	return "BASIC"
}

// GateStatus is the verdict for metered AI calls.
type GateStatus string

const (
	GateOK           GateStatus = "ok"
	GateTrialExpired GateStatus = "trial_expired"
)
