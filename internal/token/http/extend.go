package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nordstack/tokend/internal/token/service"
	"github.com/nordstack/tokend/pkg/httpx"
	"github.com/nordstack/tokend/pkg/tokensdk"
)

// ExtendHandler serves POST /v1/tokens/extend.
type ExtendHandler struct {
	Engine *service.Engine
}

// ServeHTTP godoc
//
//	@Summary		Extend a token
//	@Description	Replaces a live token with a longer-lived one carrying the same caller claims.
//	@Description	The old token is revoked and the new ledger record written atomically; a concurrent
//	@Description	second extend of the same token loses with token_revoked.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tokensdk.ExtendRequest	true	"Token and new ttl"
//	@Success		200		{object}	tokensdk.ExtendResponse	"The replacement token"
//	@Failure		400		{object}	tokensdk.ErrorResponse	"invalid_request, malformed_token or ttl_too_long"
//	@Failure		401		{object}	tokensdk.ErrorResponse	"invalid_signature or token_expired"
//	@Failure		404		{object}	tokensdk.ErrorResponse	"metadata_not_found"
//	@Failure		409		{object}	tokensdk.ErrorResponse	"token_revoked"
//	@Router			/v1/tokens/extend [post].
func (h *ExtendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tokensdk.ExtendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		tokensdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.Engine.Extend(ctx, req.Token, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokensdk.ExtendResponse{
		Token:           res.Token,
		TokenID:         res.TokenID,
		OriginalTokenID: res.OriginalTokenID,
		ExpiresAt:       res.ExpiresAt,
	})
}
