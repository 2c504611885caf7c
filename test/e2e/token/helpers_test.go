package token_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/nordstack/tokend/pkg/tokensdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for token service end-to-end tests.
 * This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "tokend-test:latest"

	testIssuer          = "tokend-e2e"
	testDefaultAudience = "svc-default"
)

// TestMain manages the test lifecycle, builds the Docker image once before
// all tests and cleans it up after all tests complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Token Service Docker image...")

	// Build the Docker image once before all tests
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	// Run all tests
	exitCode := m.Run()

	// Clean up the Docker image after all tests complete
	fmt.Fprintf(os.Stdout, "Cleaning up Token Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

// buildDockerImage builds the test Docker image if it doesn't exist.
func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/tokend/Dockerfile",
		"../../../")
	cmd.Dir = "." // Ensure we're in the test directory
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

// cleanupDockerImage removes the test Docker image.
func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupTokendContainer starts the token service in a container and returns the base URL.
func setupTokendContainer(t *testing.T) (string, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env: map[string]string{
			"TOKEND_ISSUER":            testIssuer,
			"TOKEND_DEFAULT_AUDIENCE":  testDefaultAudience,
			"TOKEND_ALLOWED_AUDIENCES": "svc-default,svc-a,svc-b",
			"TOKEND_DATABASE_FILE":     "/tmp/tokend.db",
			"TOKEND_DEFAULT_TTL":       "1h",
			"TOKEND_MAX_TTL":           "24h",
			"ENV":                      "test",
			"LOG_LEVEL":                "info",
			"LOG_FORMAT":               "json",
			// Increase rate limits for E2E tests to prevent test failures
			// Tests often make many rapid requests which would otherwise hit the strict production limits
			"RATELIMIT_STRICT_REQUESTS":   "1000",
			"RATELIMIT_STRICT_WINDOW_SEC": "60",
			"RATELIMIT_STRICT_BURST":      "1000",
			"RATELIMIT_MODERATE_REQUESTS": "1000",
			"RATELIMIT_MODERATE_BURST":    "1000",
		},
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	// Get the mapped port
	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return baseURL, cleanup
}

// mintToken mints a token with a standard claim set and returns the response.
func mintToken(t *testing.T, client *tokensdk.Client, audiences []string) *tokensdk.GenerateResponse {
	t.Helper()

	resp, err := client.Generate(t.Context(), tokensdk.GenerateRequest{
		Claims: map[string]any{
			"sub":  "alice",
			"role": "admin",
		},
		Audiences: audiences,
	})
	require.NoError(t, err, "Generate should succeed")
	require.NotEmpty(t, resp.Token, "Token should not be empty")
	require.NotEmpty(t, resp.TokenID, "Token ID should not be empty")
	require.False(t, resp.ExpiresAt.IsZero(), "Expiry should be set")

	return resp
}

// assertValid runs the full validation and requires a valid verdict.
func assertValid(t *testing.T, client *tokensdk.Client, token string) *tokensdk.ValidateResponse {
	t.Helper()

	resp, err := client.Validate(t.Context(), tokensdk.ValidateRequest{Token: token})
	require.NoError(t, err)
	require.True(t, resp.Valid, "Token should be valid, got reason: %s", resp.Reason)
	require.NotNil(t, resp.Claims, "Valid verdict should carry claims")

	return resp
}

// assertInvalid runs the full validation and requires the given failure reason.
func assertInvalid(t *testing.T, client *tokensdk.Client, token, reason string) {
	t.Helper()

	resp, err := client.Validate(t.Context(), tokensdk.ValidateRequest{Token: token})
	require.NoError(t, err, "Validation itself should succeed for an invalid token")
	require.False(t, resp.Valid, "Token should be invalid")
	require.Equal(t, reason, resp.Reason)
	require.Nil(t, resp.Claims, "Invalid verdict should not carry claims")
}

// assertAPIError requires err to be an APIError with the given code.
func assertAPIError(t *testing.T, err error, code string) {
	t.Helper()

	require.Error(t, err)
	var apiErr *tokensdk.APIError
	require.ErrorAs(t, err, &apiErr, "error should be an APIError, got: %v", err)
	require.Equal(t, code, apiErr.Code)
}
