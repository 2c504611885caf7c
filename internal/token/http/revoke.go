package http

import (
	"encoding/json"
	"net/http"

	"github.com/nordstack/tokend/internal/token/service"
	"github.com/nordstack/tokend/pkg/httpx"
	"github.com/nordstack/tokend/pkg/jwtx"
	"github.com/nordstack/tokend/pkg/tokensdk"
)

// RevokeHandler serves the single and bulk revocation endpoints.
type RevokeHandler struct {
	Engine *service.Engine

	// BulkLimit caps how many tokens one bulk request may carry. The engine
	// itself imposes no limit; the cap belongs to the transport.
	BulkLimit int
}

// HandleSingle godoc
//
//	@Summary		Revoke a token
//	@Description	Puts the token's id on the denylist. Revoking an already-revoked token succeeds
//	@Description	with wasNewlyRevoked=false.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tokensdk.RevokeRequest	true	"Token and optional reason"
//	@Success		200		{object}	tokensdk.RevokeResponse	"Whether this call did the revoking"
//	@Failure		400		{object}	tokensdk.ErrorResponse	"invalid_request or malformed_token"
//	@Router			/v1/tokens/revoke [post].
func (h *RevokeHandler) HandleSingle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tokensdk.RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		tokensdk.ErrInvalidRequest.WriteError(w)
		return
	}

	newly, err := h.Engine.Revoke(ctx, req.Token, req.Reason)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	resp := tokensdk.RevokeResponse{WasNewlyRevoked: newly}
	if claims, err := jwtx.PeekClaims(req.Token); err == nil {
		resp.TokenID = claims.TokenID
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleBulk godoc
//
//	@Summary		Revoke a batch of tokens
//	@Description	Revokes each token independently. A bad token never aborts the batch; its failure
//	@Description	is reported per-item with a short token prefix.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tokensdk.BulkRevokeRequest	true	"Tokens and optional reason"
//	@Success		200		{object}	tokensdk.BulkRevokeResponse	"Batch summary"
//	@Failure		400		{object}	tokensdk.ErrorResponse		"invalid_request"
//	@Failure		413		{object}	tokensdk.ErrorResponse		"batch_too_large"
//	@Router			/v1/tokens/revoke/bulk [post].
func (h *RevokeHandler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tokensdk.BulkRevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Tokens) == 0 {
		tokensdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if h.BulkLimit > 0 && len(req.Tokens) > h.BulkLimit {
		tokensdk.ErrBatchTooLarge.WriteError(w)
		return
	}

	res := h.Engine.BulkRevoke(ctx, req.Tokens, req.Reason)

	out := tokensdk.BulkRevokeResponse{
		Total:          res.Total,
		NewlyRevoked:   res.NewlyRevoked,
		AlreadyRevoked: res.AlreadyRevoked,
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, tokensdk.BulkRevokeFailure{
			TokenPrefix: f.TokenPrefix,
			Error:       f.Error,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
