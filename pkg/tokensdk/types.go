package tokensdk

import (
	"time"

	"github.com/nordstack/tokend/pkg/jwtx"
)

// ErrorResponse is the JSON envelope of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// GenerateRequest mints a new token.
type GenerateRequest struct {
	// JWTName is the caller's logical name for the token, recorded in the
	// ledger. Empty defaults to the server's own token kind.
	JWTName string `json:"jwtName,omitempty"`

	// Claims are the caller's custom claims. "sub" names the subject;
	// engine-stamped names (iss, aud, iat, exp, jti, token_type) are
	// rejected.
	Claims map[string]any `json:"claims"`

	// Audiences requests specific audiences. Empty means the server picks
	// its configured default.
	Audiences []string `json:"audiences,omitempty"`

	// TTLSeconds is the requested lifetime. 0 means the server default.
	TTLSeconds int64 `json:"ttl_seconds,omitempty"`
}

// GenerateResponse carries the minted token.
type GenerateResponse struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidateRequest checks one token.
type ValidateRequest struct {
	Token string `json:"token"`

	// Audience the token must be scoped to. Empty skips the check.
	Audience string `json:"audience,omitempty"`

	// Issuer the token must carry. Empty skips the check.
	Issuer string `json:"issuer,omitempty"`
}

// ValidateResponse reports the verdict. Reason is set exactly when Valid is
// false and names the first failed check.
type ValidateResponse struct {
	Valid  bool         `json:"valid"`
	Reason string       `json:"reason,omitempty"`
	Claims *TokenClaims `json:"claims,omitempty"`
}

// TokenClaims is the claim envelope echoed back on success.
type TokenClaims struct {
	Issuer    string         `json:"iss,omitempty"`
	Subject   string         `json:"sub,omitempty"`
	Audience  []string       `json:"aud,omitempty"`
	IssuedAt  time.Time      `json:"iat,omitzero"`
	ExpiresAt time.Time      `json:"exp,omitzero"`
	TokenID   string         `json:"jti,omitempty"`
	Custom    map[string]any `json:"custom,omitempty"`
}

// BooleanValidateResponse is the body of the boolean validation endpoint.
type BooleanValidateResponse struct {
	Valid bool `json:"valid"`
}

// ExtendRequest replaces a live token with a longer-lived one.
type ExtendRequest struct {
	Token string `json:"token"`

	// TTLSeconds is the new token's lifetime. 0 means the server default.
	TTLSeconds int64 `json:"ttl_seconds,omitempty"`
}

// ExtendResponse carries the replacement token.
type ExtendResponse struct {
	Token           string    `json:"token"`
	TokenID         string    `json:"tokenId"`
	OriginalTokenID string    `json:"originalTokenId"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// RevokeRequest revokes one token.
type RevokeRequest struct {
	Token string `json:"token"`

	// Reason is an optional operator note stored with the revocation.
	Reason string `json:"reason,omitempty"`
}

// RevokeResponse reports whether this call did the revoking.
type RevokeResponse struct {
	TokenID         string `json:"tokenId,omitempty"`
	WasNewlyRevoked bool   `json:"wasNewlyRevoked"`
}

// BulkRevokeRequest revokes a batch of tokens.
type BulkRevokeRequest struct {
	Tokens []string `json:"tokens"`
	Reason string   `json:"reason,omitempty"`
}

// BulkRevokeResponse summarizes a batch revocation.
type BulkRevokeResponse struct {
	Total          int                 `json:"total"`
	NewlyRevoked   int                 `json:"newlyRevoked"`
	AlreadyRevoked int                 `json:"alreadyRevoked"`
	Failed         []BulkRevokeFailure `json:"failed,omitempty"`
}

// BulkRevokeFailure identifies one failed batch entry by a short token
// prefix.
type BulkRevokeFailure struct {
	TokenPrefix string `json:"tokenPrefix"`
	Error       string `json:"error"`
}

// ListRequest filters the metadata ledger.
type ListRequest struct {
	Subject         string    `json:"subject,omitempty"`
	OriginalTokenID string    `json:"originalTokenId,omitempty"`
	IssuedAfter     time.Time `json:"issuedAfter,omitzero"`
	IssuedBefore    time.Time `json:"issuedBefore,omitzero"`
	Limit           int       `json:"limit,omitempty"`
	Offset          int       `json:"offset,omitempty"`
}

// TokenRecord is one ledger row with its derived status.
type TokenRecord struct {
	RecordID           string    `json:"recordId"`
	TokenID            string    `json:"tokenId"`
	OriginalTokenID    string    `json:"originalTokenId"`
	SupersedesRecordID string    `json:"supersedesRecordId,omitempty"`
	ClaimKeys          []string  `json:"claimKeys"`
	Subject            string    `json:"subject,omitempty"`
	Issuer             string    `json:"issuer"`
	Audience           []string  `json:"audience"`
	JWTName            string    `json:"jwtName"`
	IssuedAt           time.Time `json:"issuedAt"`
	ExpiresAt          time.Time `json:"expiresAt"`
	CreatedAt          time.Time `json:"createdAt"`
	Status             string    `json:"status"`
}

// ListResponse carries matching ledger rows, newest first.
type ListResponse struct {
	Records []TokenRecord `json:"records"`
}

// HealthResponse is the body of the /livez and /readyz endpoints; readyz
// additionally fills Checks.
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of each critical dependency.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Signer indicates the JWT signing capability status
	Signer string `json:"signer"`
}

// JWKSResponse contains the JSON Web Key Set served from
// GET /.well-known/jwks.json, the public keys peers verify tokens with.
type JWKSResponse jwtx.JWKS

// IntrospectionResult is the RFC 7662 response. Inactive tokens yield only
// {"active": false}; active ones carry the full claim map.
type IntrospectionResult map[string]any

// Active reports the token's active flag.
func (r IntrospectionResult) Active() bool {
	active, _ := r["active"].(bool)
	return active
}
