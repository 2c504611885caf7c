package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/nordstack/tokend/internal/token/service"
	"github.com/nordstack/tokend/pkg/jwtx"
	"github.com/nordstack/tokend/pkg/slogx"
	"github.com/nordstack/tokend/pkg/tokensdk"
)

// writeServiceError translates a service-layer error into its wire form.
// Anything without a mapping is an internal error and gets logged; the
// client only ever sees the generic envelope.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMalformedToken):
		tokensdk.ErrMalformedToken.WriteError(w)
	case errors.Is(err, service.ErrInvalidSignature):
		tokensdk.ErrInvalidSignature.WriteError(w)
	case errors.Is(err, service.ErrTokenExpired):
		tokensdk.ErrTokenExpired.WriteError(w)
	case errors.Is(err, service.ErrTokenRevoked):
		tokensdk.ErrTokenRevoked.WriteError(w)
	case errors.Is(err, service.ErrMetadataNotFound):
		tokensdk.ErrMetadataNotFound.WriteError(w)
	case errors.Is(err, service.ErrTTLTooLong):
		tokensdk.ErrTTLTooLong.WriteError(w)
	case errors.Is(err, jwtx.ErrReservedClaim):
		tokensdk.ErrReservedClaim.WriteError(w)
	default:
		slogx.FromContext(ctx).Error("request failed", "error", err)
		tokensdk.ErrServerError.WriteError(w)
	}
}
