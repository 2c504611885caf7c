// Package tokensdk is a typed Go client for the tokend token service. It
// mirrors the server's request and response shapes, so the same structs and
// error values serve both sides of the wire.
package tokensdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to one tokend deployment.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a tokend client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Generate mints a new token.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.postJSON(ctx, "/v1/tokens/generate", req, &resp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate runs the full validation sequence against one token.
func (c *Client) Validate(ctx context.Context, req ValidateRequest) (*ValidateResponse, error) {
	var resp ValidateResponse
	if err := c.postJSON(ctx, "/v1/tokens/validate", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateBoolean reports only whether the token is valid. The server answers
// 200 for a valid token and 401 for anything else; both carry a body.
func (c *Client) ValidateBoolean(ctx context.Context, req ValidateRequest) (bool, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/tokens/validate/boolean", req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized {
		return false, parseErrorResponse(resp, body)
	}

	var out BooleanValidateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Valid, nil
}

// Extend replaces a live token with a longer-lived one.
func (c *Client) Extend(ctx context.Context, req ExtendRequest) (*ExtendResponse, error) {
	var resp ExtendResponse
	if err := c.postJSON(ctx, "/v1/tokens/extend", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Revoke revokes one token. Revoking an already-revoked token succeeds with
// WasNewlyRevoked=false.
func (c *Client) Revoke(ctx context.Context, req RevokeRequest) (*RevokeResponse, error) {
	var resp RevokeResponse
	if err := c.postJSON(ctx, "/v1/tokens/revoke", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BulkRevoke revokes a batch of tokens. Per-token failures are reported in
// the response, not as an error.
func (c *Client) BulkRevoke(ctx context.Context, req BulkRevokeRequest) (*BulkRevokeResponse, error) {
	var resp BulkRevokeResponse
	if err := c.postJSON(ctx, "/v1/tokens/revoke/bulk", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List queries the metadata ledger.
func (c *Client) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	var resp ListResponse
	if err := c.postJSON(ctx, "/v1/tokens/list", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Introspect answers whether a token is active (RFC 7662). The endpoint
// takes a form body the way the RFC specifies.
func (c *Client) Introspect(ctx context.Context, token string) (IntrospectionResult, error) {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/v1/introspect"),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var out IntrospectionResult
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// GetJWKS fetches the server's public verification keys.
func (c *Client) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	var out JWKSResponse
	if err := c.getJSON(ctx, "/.well-known/jwks.json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness queries the liveness probe endpoint.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/livez", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness queries the readiness probe endpoint. A degraded service
// answers 503, which surfaces here as an error.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/readyz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeJSON(resp, target, http.StatusOK)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, target any, expectedStatus int) error {
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expectedStatus)
}

// decodeJSON decodes a JSON response into target, turning non-expected
// statuses into typed APIErrors.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
