package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nordstack/tokend/internal/token/service"
	"github.com/nordstack/tokend/pkg/httpx"
	"github.com/nordstack/tokend/pkg/tokensdk"
)

// GenerateHandler serves POST /v1/tokens/generate. The audience allow-list
// check happens here, before the engine ever sees the request; the engine
// trusts the audiences it is handed.
type GenerateHandler struct {
	Engine *service.Engine
	Policy service.AudiencePolicy
}

// ServeHTTP godoc
//
//	@Summary		Mint a token
//	@Description	Mints a new signed JWT with the caller's custom claims and writes its ledger record.
//	@Description	Engine-stamped claim names (iss, aud, iat, exp, jti, token_type) are rejected; "sub" names the subject.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tokensdk.GenerateRequest	true	"Claims, audiences and ttl"
//	@Success		201		{object}	tokensdk.GenerateResponse	"The minted token"
//	@Failure		400		{object}	tokensdk.ErrorResponse		"invalid_request, invalid_audience, reserved_claim or ttl_too_long"
//	@Router			/v1/tokens/generate [post].
func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tokensdk.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tokensdk.ErrInvalidRequest.WriteError(w)
		return
	}

	// 1. Audience policy: reject disallowed audiences, fill in defaults.
	if !h.Policy.IsAllowed(req.Audiences) {
		tokensdk.ErrInvalidAudience.WriteError(w)
		return
	}
	audiences := h.Policy.Resolve(req.Audiences)

	// 2. Mint.
	res, err := h.Engine.Generate(ctx, req.JWTName, req.Claims, audiences, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tokensdk.GenerateResponse{
		Token:     res.Token,
		TokenID:   res.TokenID,
		ExpiresAt: res.ExpiresAt,
	})
}
