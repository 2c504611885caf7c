package tokensdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nordstack/tokend/pkg/httpx"
)

// Error codes shared by the server and this SDK. Handlers write them,
// clients branch on them.
const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeInvalidAudience  = "invalid_audience"
	ErrorCodeReservedClaim    = "reserved_claim"
	ErrorCodeMalformedToken   = "malformed_token"
	ErrorCodeTokenExpired     = "token_expired"
	ErrorCodeTokenRevoked     = "token_revoked"
	ErrorCodeMetadataNotFound = "metadata_not_found"
	ErrorCodeInvalidSignature = "invalid_signature"
	ErrorCodeTTLTooLong       = "ttl_too_long"
	ErrorCodeBatchTooLarge    = "batch_too_large"
	ErrorCodeServerError      = "server_error"
)

// APIError is the error envelope every non-2xx response carries. It
// implements the error interface and is used both by the server (to write
// HTTP responses) and by the SDK client (to represent errors).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g., "token_revoked")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidRequest is returned when the request body is missing or
	// malformed.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidAudience is returned when a requested audience is not on the
	// configured allow-list.
	ErrInvalidAudience = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidAudience,
		Description: "one or more requested audiences are not allowed",
	}

	// ErrReservedClaim is returned when the caller tries to set an
	// engine-stamped claim such as exp or jti.
	ErrReservedClaim = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeReservedClaim,
		Description: "a requested claim name is reserved",
	}

	// ErrMalformedToken is returned when the submitted token cannot be
	// parsed at all.
	ErrMalformedToken = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeMalformedToken,
		Description: "the token cannot be parsed",
	}

	// ErrInvalidSignature is returned when the token parses but its
	// signature does not verify against any known key.
	ErrInvalidSignature = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidSignature,
		Description: "the token signature does not verify",
	}

	// ErrTokenExpired is returned when an operation requires a live token.
	ErrTokenExpired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTokenExpired,
		Description: "the token has expired",
	}

	// ErrTokenRevoked is returned when an operation requires an unrevoked
	// token.
	ErrTokenRevoked = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeTokenRevoked,
		Description: "the token has been revoked",
	}

	// ErrMetadataNotFound is returned when a token carries no ledger record,
	// typically because it was minted by a different deployment.
	ErrMetadataNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeMetadataNotFound,
		Description: "no ledger record exists for this token",
	}

	// ErrTTLTooLong is returned when the requested lifetime exceeds the
	// configured maximum.
	ErrTTLTooLong = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeTTLTooLong,
		Description: "the requested ttl exceeds the configured maximum",
	}

	// ErrBatchTooLarge is returned when a bulk revocation exceeds the
	// configured batch cap.
	ErrBatchTooLarge = &APIError{
		StatusCode:  http.StatusRequestEntityTooLarge,
		Code:        ErrorCodeBatchTooLarge,
		Description: "too many tokens in one batch",
	}

	// ErrServerError is returned on any unexpected internal failure.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// parseErrorResponse turns a non-2xx HTTP response into a typed error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
