package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nordstack/tokend/internal/token/store"
	"github.com/nordstack/tokend/internal/token/store/drivers/sqlite"
	"github.com/nordstack/tokend/pkg/cryptox"
	"github.com/nordstack/tokend/pkg/jwtx"
)

// testClock is a settable clock shared by an engine and its test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Now().UTC().Truncate(time.Second)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestEngine(t *testing.T) (*Engine, *testClock) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerRS256("test-key-1", pemKey)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	clock := newTestClock()
	engine := NewEngine(st, st.Denylist(), signer, jwtx.NewVerifierRS256(keys), EngineConfig{
		Issuer: "tokend",
		Audience: AudiencePolicy{
			Enabled: true,
			Default: "svc-default",
		},
		DefaultTTL: time.Hour,
		MaxTTL:     24 * time.Hour,
	})
	engine.now = clock.Now
	return engine, clock
}

func mintToken(t *testing.T, e *Engine, ttl time.Duration) string {
	t.Helper()
	res, err := e.Generate(context.Background(), "",
		map[string]any{"sub": "alice", "role": "admin"},
		[]string{"svc-a"}, ttl)
	require.NoError(t, err)
	return res.Token
}

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	token := mintToken(t, engine, time.Minute)

	res, err := engine.Validate(ctx, token, "svc-a", "tokend")
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Empty(t, res.Reason)
	require.Equal(t, "alice", res.Claims.Subject)
	require.Equal(t, "admin", res.Claims.Custom["role"])
	require.Equal(t, []string{"svc-a"}, res.Claims.Audience)
}

func TestGenerateWritesLedgerRecord(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := engine.Generate(ctx, "", map[string]any{"sub": "alice", "role": "admin"},
		[]string{"svc-a"}, time.Minute)
	require.NoError(t, err)

	rec, err := engine.store.Metadata().GetByTokenID(ctx, res.TokenID)
	require.NoError(t, err)
	require.Equal(t, res.TokenID, rec.OriginalTokenID, "first record of a chain points at itself")
	require.Nil(t, rec.SupersedesRecordID)
	require.Equal(t, []string{"role", "sub"}, rec.ClaimKeys, "claim names snapshotted, never values")
	require.Equal(t, "alice", rec.Subject)
	require.Equal(t, TokenKind, rec.JWTName, "unnamed mints default to the engine's own kind")
}

func TestGenerateRecordsJWTName(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	res, err := engine.Generate(ctx, "session-token", map[string]any{"sub": "alice"},
		[]string{"svc-a"}, time.Minute)
	require.NoError(t, err)

	rec, err := engine.store.Metadata().GetByTokenID(ctx, res.TokenID)
	require.NoError(t, err)
	require.Equal(t, "session-token", rec.JWTName)

	// Extension keeps the name
	ext, err := engine.Extend(ctx, res.Token, time.Hour)
	require.NoError(t, err)

	extRec, err := engine.store.Metadata().GetByTokenID(ctx, ext.TokenID)
	require.NoError(t, err)
	require.Equal(t, "session-token", extRec.JWTName)
}

func TestGenerateRejectsReservedClaims(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)

	_, err := engine.Generate(context.Background(), "",
		map[string]any{"exp": 12345}, []string{"svc-a"}, time.Minute)
	require.ErrorIs(t, err, jwtx.ErrReservedClaim)
}

func TestGenerateRejectsExcessiveTTL(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)

	_, err := engine.Generate(context.Background(), "", nil, []string{"svc-a"}, 25*time.Hour)
	require.ErrorIs(t, err, ErrTTLTooLong)
}

func TestValidateCheckOrder(t *testing.T) {
	t.Parallel()

	engine, clock := newTestEngine(t)
	ctx := context.Background()

	t.Run("garbage is a format failure", func(t *testing.T) {
		res, err := engine.Validate(ctx, "not-a-token", "svc-a", "tokend")
		require.NoError(t, err)
		require.False(t, res.Valid)
		require.Equal(t, ReasonInvalidFormat, res.Reason)
	})

	t.Run("wrong key is a signature failure", func(t *testing.T) {
		other, _ := newTestEngine(t)
		foreign := mintToken(t, other, time.Minute)

		res, err := engine.Validate(ctx, foreign, "svc-a", "tokend")
		require.NoError(t, err)
		require.Equal(t, ReasonInvalidSignature, res.Reason)
	})

	t.Run("wrong audience", func(t *testing.T) {
		token := mintToken(t, engine, time.Minute)
		res, err := engine.Validate(ctx, token, "svc-z", "tokend")
		require.NoError(t, err)
		require.Equal(t, ReasonInvalidAudience, res.Reason)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token := mintToken(t, engine, time.Minute)
		res, err := engine.Validate(ctx, token, "svc-a", "someone-else")
		require.NoError(t, err)
		require.Equal(t, ReasonInvalidIssuer, res.Reason)
	})

	t.Run("expiry outranks revocation", func(t *testing.T) {
		token := mintToken(t, engine, time.Minute)
		newly, err := engine.Revoke(ctx, token, "")
		require.NoError(t, err)
		require.True(t, newly)

		clock.Advance(2 * time.Minute)

		res, err := engine.Validate(ctx, token, "svc-a", "tokend")
		require.NoError(t, err)
		require.Equal(t, ReasonTokenExpired, res.Reason,
			"a token both expired and revoked reports expiry")
	})
}

func TestRevokeIsIdempotent(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	token := mintToken(t, engine, time.Minute)

	newly, err := engine.Revoke(ctx, token, "compromised")
	require.NoError(t, err)
	require.True(t, newly)

	newly, err = engine.Revoke(ctx, token, "compromised")
	require.NoError(t, err)
	require.False(t, newly, "second revoke is a no-op")

	res, err := engine.Validate(ctx, token, "svc-a", "tokend")
	require.NoError(t, err)
	require.Equal(t, ReasonTokenRevoked, res.Reason)
}

func TestRevokeRejectsMalformed(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)

	_, err := engine.Revoke(context.Background(), "garbage", "")
	require.ErrorIs(t, err, ErrMalformedToken)
}

func TestIsRevokedFailsClosed(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	revoked, err := engine.IsRevoked(ctx, "not-a-token")
	require.NoError(t, err)
	require.True(t, revoked, "unparseable tokens are treated as revoked")

	token := mintToken(t, engine, time.Minute)
	revoked, err = engine.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestBulkRevokePartialFailure(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	tokens := []string{
		mintToken(t, engine, time.Minute),
		mintToken(t, engine, time.Minute),
		mintToken(t, engine, time.Minute),
		"this-is-not-a-jwt-at-all-but-quite-long",
	}

	res := engine.BulkRevoke(ctx, tokens, "sweep")
	require.Equal(t, 4, res.Total)
	require.Equal(t, 3, res.NewlyRevoked)
	require.Zero(t, res.AlreadyRevoked)
	require.Len(t, res.Failed, 1)
	require.Equal(t, "this-is-not-a-jwt-at", res.Failed[0].TokenPrefix)

	// The good three really are revoked.
	for _, token := range tokens[:3] {
		revoked, err := engine.IsRevoked(ctx, token)
		require.NoError(t, err)
		require.True(t, revoked)
	}

	// A second sweep finds them already revoked.
	res = engine.BulkRevoke(ctx, tokens[:3], "sweep")
	require.Equal(t, 3, res.Total)
	require.Zero(t, res.NewlyRevoked)
	require.Equal(t, 3, res.AlreadyRevoked)
}

func TestExtendChain(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	orig, err := engine.Generate(ctx, "", map[string]any{"sub": "alice", "role": "admin"},
		[]string{"svc-a"}, time.Minute)
	require.NoError(t, err)

	first, err := engine.Extend(ctx, orig.Token, time.Hour)
	require.NoError(t, err)
	require.Equal(t, orig.TokenID, first.OriginalTokenID)
	require.NotEqual(t, orig.TokenID, first.TokenID)

	second, err := engine.Extend(ctx, first.Token, time.Hour)
	require.NoError(t, err)
	require.Equal(t, orig.TokenID, second.OriginalTokenID,
		"the chain root survives repeated extension")

	// Old versions are revoked, the newest validates.
	for _, old := range []string{orig.Token, first.Token} {
		res, err := engine.Validate(ctx, old, "svc-a", "tokend")
		require.NoError(t, err)
		require.Equal(t, ReasonTokenRevoked, res.Reason)
	}
	res, err := engine.Validate(ctx, second.Token, "svc-a", "tokend")
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, "alice", res.Claims.Subject)
	require.Equal(t, "admin", res.Claims.Custom["role"], "caller claims survive extension")

	// The ledger shows the full chain in order, linked by supersedes.
	chain, err := engine.Chain(ctx, second.TokenID)
	require.NoError(t, err)
	require.Len(t, chain, 3)
	require.Equal(t, orig.TokenID, chain[0].TokenID)
	require.Equal(t, first.TokenID, chain[1].TokenID)
	require.Equal(t, second.TokenID, chain[2].TokenID)
	require.Nil(t, chain[0].SupersedesRecordID)
	require.Equal(t, chain[0].RecordID, *chain[1].SupersedesRecordID)
	require.Equal(t, chain[1].RecordID, *chain[2].SupersedesRecordID)
}

func TestExtendPreconditions(t *testing.T) {
	t.Parallel()

	t.Run("expired token is not extendable", func(t *testing.T) {
		engine, clock := newTestEngine(t)
		token := mintToken(t, engine, time.Minute)
		clock.Advance(2 * time.Minute)

		_, err := engine.Extend(context.Background(), token, time.Hour)
		require.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("revoked token is not extendable", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		ctx := context.Background()
		token := mintToken(t, engine, time.Minute)

		_, err := engine.Revoke(ctx, token, "")
		require.NoError(t, err)

		_, err = engine.Extend(ctx, token, time.Hour)
		require.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("malformed token", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		_, err := engine.Extend(context.Background(), "garbage", time.Hour)
		require.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("foreign signature", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		other, _ := newTestEngine(t)
		token := mintToken(t, other, time.Minute)

		_, err := engine.Extend(context.Background(), token, time.Hour)
		require.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("token without a ledger record", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		other, _ := newTestEngine(t)
		// Same claims codec, but minted against a different database; graft
		// the foreign signer so the signature checks out.
		other.signer = engine.signer
		token := mintToken(t, other, time.Minute)

		_, err := engine.Extend(context.Background(), token, time.Hour)
		require.ErrorIs(t, err, ErrMetadataNotFound)
	})
}

func TestExtendExactlyOnce(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t)
	ctx := context.Background()

	token := mintToken(t, engine, time.Minute)

	_, err := engine.Extend(ctx, token, time.Hour)
	require.NoError(t, err)

	// The same token again: the denylist insert collides and the extend
	// loses, exactly as a concurrent second caller would.
	_, err = engine.Extend(ctx, token, time.Hour)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestListDerivesStatus(t *testing.T) {
	t.Parallel()

	engine, clock := newTestEngine(t)
	ctx := context.Background()

	orig, err := engine.Generate(ctx, "", map[string]any{"sub": "alice"}, []string{"svc-a"}, time.Hour)
	require.NoError(t, err)
	clock.Advance(time.Second)

	ext, err := engine.Extend(ctx, orig.Token, time.Hour)
	require.NoError(t, err)

	revokedMint, err := engine.Generate(ctx, "", map[string]any{"sub": "bob"}, []string{"svc-a"}, time.Hour)
	require.NoError(t, err)
	_, err = engine.Revoke(ctx, revokedMint.Token, "")
	require.NoError(t, err)

	shortLived, err := engine.Generate(ctx, "", map[string]any{"sub": "carol"}, []string{"svc-a"}, time.Minute)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	views, err := engine.List(ctx, store.ListFilter{})
	require.NoError(t, err)

	byToken := map[string]string{}
	for _, v := range views {
		byToken[v.TokenID] = string(v.Status)
	}
	require.Equal(t, "superseded", byToken[orig.TokenID])
	require.Equal(t, "active", byToken[ext.TokenID])
	require.Equal(t, "revoked", byToken[revokedMint.TokenID])
	require.Equal(t, "expired", byToken[shortLived.TokenID])
}
