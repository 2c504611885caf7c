package token_test

import (
	"testing"

	"github.com/nordstack/tokend/pkg/tokensdk"
	"github.com/stretchr/testify/require"
)

// TestGenerateAndValidate mints a token and verifies the full validation
// verdict carries the engine-stamped envelope and the caller's claims.
func TestGenerateAndValidate(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	minted := mintToken(t, client, []string{"svc-a"})
	verdict := assertValid(t, client, minted.Token)

	require.Equal(t, testIssuer, verdict.Claims.Issuer)
	require.Equal(t, "alice", verdict.Claims.Subject)
	require.Equal(t, []string{"svc-a"}, verdict.Claims.Audience)
	require.Equal(t, minted.TokenID, verdict.Claims.TokenID)
	require.Equal(t, "admin", verdict.Claims.Custom["role"])
	require.True(t, verdict.Claims.ExpiresAt.After(verdict.Claims.IssuedAt),
		"Expiry should be after issuance")

	t.Logf("Token minted and validated [%s]", minted.TokenID)
}

// TestGenerateDefaultAudience verifies a mint with no requested audiences
// falls back to the configured default.
func TestGenerateDefaultAudience(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	minted := mintToken(t, client, nil)
	verdict := assertValid(t, client, minted.Token)

	require.Equal(t, []string{testDefaultAudience}, verdict.Claims.Audience)
}

// TestGenerateRejectsReservedClaim verifies the engine-stamped claim names
// cannot be supplied by the caller.
func TestGenerateRejectsReservedClaim(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	_, err := client.Generate(t.Context(), tokensdk.GenerateRequest{
		Claims: map[string]any{"exp": 12345},
	})
	assertAPIError(t, err, tokensdk.ErrorCodeReservedClaim)
}

// TestGenerateRejectsDisallowedAudience verifies audiences outside the
// allow-list are refused at the door.
func TestGenerateRejectsDisallowedAudience(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	_, err := client.Generate(t.Context(), tokensdk.GenerateRequest{
		Claims:    map[string]any{"sub": "alice"},
		Audiences: []string{"svc-a", "not-on-the-list"},
	})
	assertAPIError(t, err, tokensdk.ErrorCodeInvalidAudience)
}

// TestGenerateRejectsExcessiveTTL verifies a requested lifetime beyond the
// configured ceiling is refused.
func TestGenerateRejectsExcessiveTTL(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	_, err := client.Generate(t.Context(), tokensdk.GenerateRequest{
		Claims:     map[string]any{"sub": "alice"},
		TTLSeconds: 48 * 3600,
	})
	assertAPIError(t, err, tokensdk.ErrorCodeTTLTooLong)
}

// TestValidateGarbage verifies an unparseable token yields a clean invalid
// verdict rather than an error.
func TestValidateGarbage(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	assertInvalid(t, client, "not.a.jwt", "Invalid token format")
}

// TestValidateBoolean verifies the yes/no endpoint agrees with the full one.
func TestValidateBoolean(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	minted := mintToken(t, client, []string{"svc-a"})

	valid, err := client.ValidateBoolean(t.Context(), tokensdk.ValidateRequest{Token: minted.Token})
	require.NoError(t, err)
	require.True(t, valid)

	valid, err = client.ValidateBoolean(t.Context(), tokensdk.ValidateRequest{Token: "garbage"})
	require.NoError(t, err)
	require.False(t, valid)
}

// TestRevokeIsIdempotent revokes the same token twice: the first call does
// the revoking, the second reports it was already done.
func TestRevokeIsIdempotent(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	minted := mintToken(t, client, []string{"svc-a"})
	assertValid(t, client, minted.Token)

	first, err := client.Revoke(t.Context(), tokensdk.RevokeRequest{
		Token:  minted.Token,
		Reason: "compromised",
	})
	require.NoError(t, err)
	require.True(t, first.WasNewlyRevoked, "First revoke should be the one that lands")
	require.Equal(t, minted.TokenID, first.TokenID)

	second, err := client.Revoke(t.Context(), tokensdk.RevokeRequest{Token: minted.Token})
	require.NoError(t, err)
	require.False(t, second.WasNewlyRevoked, "Second revoke should be a no-op")

	assertInvalid(t, client, minted.Token, "Token revoked")
}

// TestRevokeMalformedToken verifies a token that cannot be parsed cannot be
// revoked either.
func TestRevokeMalformedToken(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	_, err := client.Revoke(t.Context(), tokensdk.RevokeRequest{Token: "not.a.jwt"})
	assertAPIError(t, err, tokensdk.ErrorCodeMalformedToken)
}

// TestBulkRevoke revokes a batch with one malformed member and verifies the
// batch carries on around it.
func TestBulkRevoke(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	first := mintToken(t, client, []string{"svc-a"})
	second := mintToken(t, client, []string{"svc-b"})

	resp, err := client.BulkRevoke(t.Context(), tokensdk.BulkRevokeRequest{
		Tokens: []string{first.Token, second.Token, "this-is-not-a-jwt-at-all"},
		Reason: "key sweep",
	})
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)
	require.Equal(t, 2, resp.NewlyRevoked)
	require.Equal(t, 0, resp.AlreadyRevoked)
	require.Len(t, resp.Failed, 1)
	require.Equal(t, "this-is-not-a-jwt-at", resp.Failed[0].TokenPrefix)

	assertInvalid(t, client, first.Token, "Token revoked")
	assertInvalid(t, client, second.Token, "Token revoked")

	// Sweeping again is harmless
	resp, err = client.BulkRevoke(t.Context(), tokensdk.BulkRevokeRequest{
		Tokens: []string{first.Token, second.Token},
	})
	require.NoError(t, err)
	require.Equal(t, 0, resp.NewlyRevoked)
	require.Equal(t, 2, resp.AlreadyRevoked)
}
