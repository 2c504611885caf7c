package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nordstack/tokend/pkg/jwtx"
)

func newTestIntrospector(t *testing.T, extra ...TokenValidator) (*Introspector, *Engine, *testClock) {
	t.Helper()
	engine, clock := newTestEngine(t)
	i := NewIntrospector("tokend", "svc-default", NewEngineValidator(engine), extra...)
	return i, engine, clock
}

func TestIntrospectActiveToken(t *testing.T) {
	t.Parallel()

	i, engine, _ := newTestIntrospector(t)
	ctx := context.Background()

	res, err := engine.Generate(ctx, "",
		map[string]any{"sub": "alice", "department": "ops"},
		[]string{"svc-a"}, time.Minute)
	require.NoError(t, err)

	resp := i.Introspect(ctx, res.Token)
	require.Equal(t, true, resp["active"])
	require.Equal(t, "tokend", resp["iss"])
	require.Equal(t, "alice", resp["sub"])
	require.Equal(t, res.TokenID, resp["jti"])
	require.Equal(t, TokenKind, resp[jwtx.TypeMarkerClaim])
	require.Equal(t, "ops", resp["department"], "custom claims pass through")
}

func TestIntrospectInactiveIsBare(t *testing.T) {
	t.Parallel()

	i, engine, clock := newTestIntrospector(t)
	ctx := context.Background()

	t.Run("garbage", func(t *testing.T) {
		require.Equal(t, map[string]any{"active": false}, i.Introspect(ctx, "garbage"))
	})

	t.Run("revoked", func(t *testing.T) {
		token := mintToken(t, engine, time.Minute)
		_, err := engine.Revoke(ctx, token, "")
		require.NoError(t, err)
		require.Equal(t, map[string]any{"active": false}, i.Introspect(ctx, token))
	})

	t.Run("expired", func(t *testing.T) {
		token := mintToken(t, engine, time.Minute)
		clock.Advance(2 * time.Minute)
		require.Equal(t, map[string]any{"active": false}, i.Introspect(ctx, token),
			"no reason leaks out of introspection")
	})
}

// staticValidator answers for one kind with a canned response.
type staticValidator struct {
	kind   string
	resp   map[string]any
	active bool
}

func (s *staticValidator) Kind() string { return s.kind }
func (s *staticValidator) Introspect(context.Context, string) (map[string]any, bool, error) {
	return s.resp, s.active, nil
}

func TestIntrospectDispatchesByTypeMarker(t *testing.T) {
	t.Parallel()

	foreign := &staticValidator{
		kind:   "partner_jwt",
		resp:   map[string]any{"active": true, "iss": "partner"},
		active: true,
	}
	i, engine, _ := newTestIntrospector(t, foreign)
	ctx := context.Background()

	// A token whose type marker names the partner validator. Signature does
	// not matter: the partner validator owns the decision.
	partnerToken := signWithMarker(t, engine, "partner_jwt")
	resp := i.Introspect(ctx, partnerToken)
	require.Equal(t, "partner", resp["iss"])

	// An unknown marker has no validator and is inactive.
	unknownToken := signWithMarker(t, engine, "mystery_jwt")
	require.Equal(t, map[string]any{"active": false}, i.Introspect(ctx, unknownToken))
}

func TestIntrospectHeuristicFallback(t *testing.T) {
	t.Parallel()

	i, engine, _ := newTestIntrospector(t)
	ctx := context.Background()

	// A pre-marker token: our issuer, the default audience, no token_type.
	// Minted normally, then the marker stripped and re-signed, the way old
	// tokens in the wild look.
	res, err := engine.Generate(ctx, "", map[string]any{"sub": "alice"},
		[]string{"svc-default"}, time.Minute)
	require.NoError(t, err)

	claims, err := jwtx.PeekClaims(res.Token)
	require.NoError(t, err)
	m := claims.MapClaims()
	delete(m, jwtx.TypeMarkerClaim)
	legacy, err := engine.signer.Sign(m)
	require.NoError(t, err)

	resp := i.Introspect(ctx, legacy)
	require.Equal(t, true, resp["active"])
	require.Equal(t, "alice", resp["sub"])

	// Same shape but a foreign issuer: the heuristic refuses to claim it.
	foreign := signWithIssuer(t, engine, "someone-else")
	require.Equal(t, map[string]any{"active": false}, i.Introspect(ctx, foreign))
}

func signWithMarker(t *testing.T, e *Engine, marker string) string {
	t.Helper()
	cs, err := jwtx.NewClaimSet(nil, "partner", []string{"svc-x"}, time.Minute, marker,
		time.Now().UTC())
	require.NoError(t, err)
	token, err := e.signer.Sign(cs.MapClaims())
	require.NoError(t, err)
	return token
}

func signWithIssuer(t *testing.T, e *Engine, issuer string) string {
	t.Helper()
	cs, err := jwtx.NewClaimSet(nil, issuer, []string{"svc-default"}, time.Minute, "",
		time.Now().UTC())
	require.NoError(t, err)
	m := cs.MapClaims()
	delete(m, jwtx.TypeMarkerClaim)
	token, err := e.signer.Sign(m)
	require.NoError(t, err)
	return token
}
