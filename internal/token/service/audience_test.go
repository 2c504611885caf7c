package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAudiencePolicyIsAllowed(t *testing.T) {
	t.Parallel()

	t.Run("disabled allows anything", func(t *testing.T) {
		p := AudiencePolicy{Enabled: false, Allowed: []string{"svc-a"}}
		require.True(t, p.IsAllowed([]string{"svc-z"}))
	})

	t.Run("enabled with empty allow-list allows anything", func(t *testing.T) {
		p := AudiencePolicy{Enabled: true}
		require.True(t, p.IsAllowed([]string{"svc-z"}))
	})

	t.Run("every requested audience must be allowed", func(t *testing.T) {
		p := AudiencePolicy{Enabled: true, Allowed: []string{"svc-a", "svc-b"}}
		require.True(t, p.IsAllowed([]string{"svc-a"}))
		require.True(t, p.IsAllowed([]string{"svc-a", "svc-b"}))
		require.False(t, p.IsAllowed([]string{"svc-a", "svc-z"}))
	})
}

func TestAudiencePolicyResolve(t *testing.T) {
	t.Parallel()

	t.Run("requested wins", func(t *testing.T) {
		p := AudiencePolicy{Enabled: true, Default: "svc-default"}
		require.Equal(t, []string{"svc-a"}, p.Resolve([]string{"svc-a"}))
	})

	t.Run("enabled and empty falls back to default", func(t *testing.T) {
		p := AudiencePolicy{Enabled: true, Default: "svc-default"}
		require.Equal(t, []string{"svc-default"}, p.Resolve(nil))
	})

	t.Run("disabled and empty falls back to the legacy constant", func(t *testing.T) {
		p := AudiencePolicy{Enabled: false, Default: "svc-default"}
		require.Equal(t, []string{LegacyFallbackAudience}, p.Resolve(nil))
	})
}
