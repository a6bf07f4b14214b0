package access

import "echomail/internal/domain"

// Document slots per identity profile. This cap is independent from the
// per-tier concurrent-profile cap configured on the HTTP layer.
const (
	DocSlotsBasic = 1
	DocSlotsPro   = 3
)

// EffectiveTier resolves the tier actually granted to a session. The
// founder identity overrides everything; otherwise the stored preference
// applies, defaulting to BASIC. Callers must not cache the result across
// an identity change.
func EffectiveTier(email string, stored *domain.Tier) domain.Tier {
	if IsFounder(email) {
		return domain.TierAdminLifetime
	}
	if stored != nil {
		return *stored
	}
	return domain.TierBasic
}

// MaxIdentityDocSlots returns how many verbal-identity documents one
// profile may hold for the given tier.
func MaxIdentityDocSlots(tier domain.Tier) int {
	if tier == domain.TierBasic {
		return DocSlotsBasic
	}
	return DocSlotsPro
}
