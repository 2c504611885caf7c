package service

import (
	"context"
	"slices"

	"github.com/nordstack/tokend/pkg/jwtx"
	"github.com/nordstack/tokend/pkg/slogx"
)

// TokenValidator introspects one kind of token. Implementations are
// registered once at startup; the dispatcher never mutates its registry
// afterwards.
type TokenValidator interface {
	// Kind is the type-marker value this validator handles.
	Kind() string

	// Introspect returns the RFC 7662 claim map for an active token, or
	// ok=false when the token is not active. It only errors on
	// infrastructure failure, never on a bad token.
	Introspect(ctx context.Context, token string) (map[string]any, bool, error)
}

// inactive is the entire response for any token we cannot vouch for. No
// reason, no detail; RFC 7662 says don't feed the oracle.
func inactive() map[string]any {
	return map[string]any{"active": false}
}

// Introspector routes introspection calls to the validator matching the
// token's type marker.
type Introspector struct {
	validators map[string]TokenValidator

	// ownIssuer and defaultAudience drive the fallback for tokens minted
	// before the type marker existed.
	ownIssuer       string
	defaultAudience string
	ownKind         string
}

// NewIntrospector builds the dispatcher. The first validator is the engine's
// own; its kind anchors the heuristic fallback.
func NewIntrospector(ownIssuer, defaultAudience string, own TokenValidator, extra ...TokenValidator) *Introspector {
	validators := map[string]TokenValidator{own.Kind(): own}
	for _, v := range extra {
		validators[v.Kind()] = v
	}
	return &Introspector{
		validators:      validators,
		ownIssuer:       ownIssuer,
		defaultAudience: defaultAudience,
		ownKind:         own.Kind(),
	}
}

// Introspect answers whether a token is active and what it asserts. It never
// returns an error to the caller: anything that goes wrong, including tokens
// from unknown mints, comes back as inactive.
func (i *Introspector) Introspect(ctx context.Context, token string) map[string]any {
	claims, err := jwtx.PeekClaims(token)
	if err != nil {
		return inactive()
	}

	kind := claims.TokenType
	if kind == "" {
		// Tokens minted before the type marker carry our issuer and the
		// default audience; anything else is not ours to vouch for.
		if claims.Issuer == i.ownIssuer && slices.Contains(claims.Audience, i.defaultAudience) {
			kind = i.ownKind
		}
	}

	v, ok := i.validators[kind]
	if !ok {
		return inactive()
	}

	resp, active, err := v.Introspect(ctx, token)
	if err != nil {
		slogx.FromContext(ctx).Error("introspection failed", "kind", kind, "error", err)
		return inactive()
	}
	if !active {
		return inactive()
	}
	return resp
}

// engineValidator introspects the engine's own tokens by running the full
// validation sequence.
type engineValidator struct {
	engine *Engine
}

// NewEngineValidator wraps the lifecycle engine as a TokenValidator.
func NewEngineValidator(e *Engine) TokenValidator {
	return &engineValidator{engine: e}
}

func (v *engineValidator) Kind() string { return TokenKind }

func (v *engineValidator) Introspect(ctx context.Context, token string) (map[string]any, bool, error) {
	res, err := v.engine.Validate(ctx, token, "", "")
	if err != nil {
		return nil, false, err
	}
	if !res.Valid {
		return nil, false, nil
	}

	c := res.Claims
	resp := map[string]any{
		"active":              true,
		"iss":                 c.Issuer,
		"aud":                 c.Audience,
		"exp":                 c.ExpiresAt.Unix(),
		"iat":                 c.IssuedAt.Unix(),
		"jti":                 c.TokenID,
		jwtx.TypeMarkerClaim: TokenKind,
	}
	if c.Subject != "" {
		resp["sub"] = c.Subject
	}
	// Everything outside the standard envelope passes through untouched, so
	// custom identity attributes survive introspection without the
	// dispatcher knowing their names.
	for name, value := range c.Custom {
		resp[name] = value
	}
	return resp, true, nil
}
