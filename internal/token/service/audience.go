package service

import "slices"

// LegacyFallbackAudience is minted when audience validation is disabled and
// the caller requested nothing. Pre-policy callers were issued tokens with
// this audience and still match on it, so it stays.
const LegacyFallbackAudience = "tokend-legacy"

// AudiencePolicy decides which audiences a token may be minted for. It is
// built once from config and never mutated.
type AudiencePolicy struct {
	// Enabled turns the allow-list check on.
	Enabled bool

	// Allowed is the allow-list. Empty means no restriction even when
	// validation is enabled.
	Allowed []string

	// Default is minted when validation is enabled and the caller requested
	// nothing.
	Default string
}

// IsAllowed reports whether every requested audience passes the allow-list.
func (p AudiencePolicy) IsAllowed(requested []string) bool {
	if !p.Enabled {
		return true
	}
	if len(p.Allowed) == 0 {
		return true // no restriction configured
	}
	for _, aud := range requested {
		if !slices.Contains(p.Allowed, aud) {
			return false
		}
	}
	return true
}

// Resolve picks the final audience list for a mint. Callers check IsAllowed
// first; Resolve only fills in defaults.
func (p AudiencePolicy) Resolve(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	if p.Enabled {
		return []string{p.Default}
	}
	return []string{LegacyFallbackAudience}
}
