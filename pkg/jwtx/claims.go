package jwtx

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TypeMarkerClaim is the claim carrying the token kind, used by the
// introspection dispatcher to pick a validator.
const TypeMarkerClaim = "token_type"

// ErrReservedClaim reports a caller trying to set an envelope claim that the
// engine stamps itself.
var ErrReservedClaim = errors.New("jwtx: reserved claim name")

// reservedClaims are the envelope claims callers may never supply directly.
// They are stamped at mint time and stripped before re-signing on extension.
// "sub" is deliberately absent: the subject travels with the caller's claims.
var reservedClaims = map[string]struct{}{
	"iss":           {},
	"aud":           {},
	"iat":           {},
	"exp":           {},
	"jti":           {},
	TypeMarkerClaim: {},
}

// Reserved reports whether name is an engine-stamped envelope claim.
func Reserved(name string) bool {
	_, ok := reservedClaims[name]
	return ok
}

// ClaimSet is the parsed claim envelope of one token: the standard fields
// plus whatever custom claims the caller minted it with.
type ClaimSet struct {
	Issuer    string
	Subject   string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
	TokenType string

	// Custom holds every claim outside the standard set (and subject).
	Custom map[string]any
}

// NewClaimSet builds the envelope for a fresh token: issued now, expiring
// after ttl, with a random v4 UUID token id. A "sub" entry in custom is
// lifted into the Subject field; any other reserved name is rejected.
func NewClaimSet(
	custom map[string]any,
	issuer string,
	audiences []string,
	ttl time.Duration,
	tokenType string,
	now time.Time,
) (ClaimSet, error) {
	if ttl <= 0 {
		return ClaimSet{}, fmt.Errorf("jwtx: ttl must be positive")
	}

	cs := ClaimSet{
		Issuer:    issuer,
		Audience:  append([]string(nil), audiences...),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		TokenID:   uuid.NewString(),
		TokenType: tokenType,
		Custom:    make(map[string]any, len(custom)),
	}

	for name, value := range custom {
		if Reserved(name) {
			return ClaimSet{}, fmt.Errorf("%w: %q", ErrReservedClaim, name)
		}
		if name == "sub" {
			sub, ok := value.(string)
			if !ok {
				return ClaimSet{}, fmt.Errorf("jwtx: sub claim must be a string")
			}
			cs.Subject = sub
			continue
		}
		cs.Custom[name] = value
	}

	return cs, nil
}

// MapClaims serializes the ClaimSet for signing. The audience is always a
// JSON list, even when it holds a single value.
func (c ClaimSet) MapClaims() jwt.MapClaims {
	m := jwt.MapClaims{
		"iss":           c.Issuer,
		"aud":           append([]string(nil), c.Audience...),
		"iat":           c.IssuedAt.Unix(),
		"exp":           c.ExpiresAt.Unix(),
		"jti":           c.TokenID,
		TypeMarkerClaim: c.TokenType,
	}
	if c.Subject != "" {
		m["sub"] = c.Subject
	}
	for name, value := range c.Custom {
		m[name] = value
	}
	return m
}

// AllClaims returns the full claim map, the way a caller who decoded the
// token themselves would see it.
func (c ClaimSet) AllClaims() map[string]any {
	return map[string]any(c.MapClaims())
}

// ClaimKeys returns the sorted names of the caller-supplied claims,
// including "sub" when present. This is what the ledger snapshots.
func (c ClaimSet) ClaimKeys() []string {
	keys := make([]string, 0, len(c.Custom)+1)
	if c.Subject != "" {
		keys = append(keys, "sub")
	}
	for name := range c.Custom {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

// CustomWithSubject rebuilds the caller-claims map, reinstating "sub". This
// is the claim-set an extension re-signs after the envelope is stripped.
func (c ClaimSet) CustomWithSubject() map[string]any {
	out := make(map[string]any, len(c.Custom)+1)
	for name, value := range c.Custom {
		out[name] = value
	}
	if c.Subject != "" {
		out["sub"] = c.Subject
	}
	return out
}

// FromMapClaims parses a decoded claim map back into a ClaimSet.
func FromMapClaims(m jwt.MapClaims) (ClaimSet, error) {
	cs := ClaimSet{Custom: make(map[string]any)}

	for name, value := range m {
		switch name {
		case "iss":
			cs.Issuer, _ = value.(string)
		case "sub":
			cs.Subject, _ = value.(string)
		case "aud":
			aud, err := parseAudience(value)
			if err != nil {
				return ClaimSet{}, err
			}
			cs.Audience = aud
		case "iat":
			t, err := parseUnixTime(value)
			if err != nil {
				return ClaimSet{}, fmt.Errorf("jwtx: bad iat claim: %w", err)
			}
			cs.IssuedAt = t
		case "exp":
			t, err := parseUnixTime(value)
			if err != nil {
				return ClaimSet{}, fmt.Errorf("jwtx: bad exp claim: %w", err)
			}
			cs.ExpiresAt = t
		case "jti":
			cs.TokenID, _ = value.(string)
		case TypeMarkerClaim:
			cs.TokenType, _ = value.(string)
		default:
			cs.Custom[name] = value
		}
	}

	if cs.ExpiresAt.IsZero() {
		return ClaimSet{}, fmt.Errorf("jwtx: missing exp claim")
	}
	if cs.TokenID == "" {
		return ClaimSet{}, fmt.Errorf("jwtx: missing jti claim")
	}
	if _, err := uuid.Parse(cs.TokenID); err != nil {
		return ClaimSet{}, fmt.Errorf("jwtx: jti is not a UUID: %w", err)
	}

	return cs, nil
}

// PeekClaims decodes a token WITHOUT verifying its signature. The dispatcher
// uses it to read the type marker before picking a validator; nothing about
// the result may be trusted until the matching validator has verified it.
func PeekClaims(token string) (ClaimSet, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ClaimSet{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return FromMapClaims(claims)
}

func parseAudience(value any) ([]string, error) {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("jwtx: non-string audience entry")
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return append([]string(nil), v...), nil
	case string:
		// Tolerated on parse for interop, though we always emit a list.
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("jwtx: bad aud claim")
	}
}

func parseUnixTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("not a numeric date (%T)", value)
	}
}
