package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTrialExpired     = errors.New("trial expired")
	ErrInvalidBrief     = errors.New("invalid brief")
	ErrSlotLimit        = errors.New("profile slot limit reached")
	ErrProUpgradeNeeded = errors.New("pro upgrade required")
	ErrProviderFailure  = errors.New("provider failure")
)
