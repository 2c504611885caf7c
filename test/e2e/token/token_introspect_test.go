package token_test

import (
	"testing"

	"github.com/nordstack/tokend/pkg/tokensdk"
	"github.com/stretchr/testify/require"
)

// TestIntrospectActiveToken introspects a live token and verifies the
// RFC 7662 fields plus the caller's custom claims come through.
func TestIntrospectActiveToken(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	minted := mintToken(t, client, []string{"svc-a"})

	result, err := client.Introspect(t.Context(), minted.Token)
	require.NoError(t, err)
	require.True(t, result.Active(), "Token should be active")

	require.Equal(t, testIssuer, result["iss"])
	require.Equal(t, "alice", result["sub"])
	require.Equal(t, minted.TokenID, result["jti"])
	require.Equal(t, "custom_jwt", result["token_type"])
	require.Equal(t, "admin", result["role"], "Custom claims should pass through")

	exp, ok := result["exp"].(float64)
	require.True(t, ok, "exp should be a numeric timestamp")
	iat, ok := result["iat"].(float64)
	require.True(t, ok, "iat should be a numeric timestamp")
	require.Greater(t, exp, iat, "Expiry should be after issuance")

	t.Logf("Introspection successful [Active]")
}

// TestIntrospectInvalidToken introspects a malformed token. Per RFC 7662 the
// server answers {"active": false} without revealing why.
func TestIntrospectInvalidToken(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	result, err := client.Introspect(t.Context(), "not.a.valid.jwt.token")
	require.NoError(t, err, "Introspection should succeed (HTTP 200)")
	require.False(t, result.Active(), "Invalid token should be marked inactive")
	require.Len(t, result, 1, "Inactive response should carry nothing but the verdict")

	t.Logf("Invalid token correctly marked [Inactive]")
}

// TestIntrospectRevokedToken verifies revocation shows up as a bare inactive
// verdict, indistinguishable from any other failure.
func TestIntrospectRevokedToken(t *testing.T) {
	baseURL, cleanup := setupTokendContainer(t)
	defer cleanup()

	client := tokensdk.NewClient(baseURL)

	minted := mintToken(t, client, []string{"svc-a"})

	_, err := client.Revoke(t.Context(), tokensdk.RevokeRequest{Token: minted.Token})
	require.NoError(t, err)

	result, err := client.Introspect(t.Context(), minted.Token)
	require.NoError(t, err)
	require.False(t, result.Active())
	require.Len(t, result, 1)
}
