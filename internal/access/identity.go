package access

import "strings"

// founderEmail is the single reserved identity exempt from every billing
// and trial check. Matching accounts resolve to ADMIN_LIFETIME at read
// time; the override is never persisted.
const founderEmail = "hola@tonimont.com"

// IsFounder reports whether the given account email is the founder
// identity. Comparison is whitespace-trimmed and case-insensitive; empty
// or missing input is simply not a match.
func IsFounder(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), founderEmail)
}
