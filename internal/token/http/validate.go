package http

import (
	"encoding/json"
	"net/http"

	"github.com/nordstack/tokend/internal/token/domain"
	"github.com/nordstack/tokend/internal/token/service"
	"github.com/nordstack/tokend/pkg/httpx"
	"github.com/nordstack/tokend/pkg/tokensdk"
)

// ValidateHandler serves the two validation endpoints. Both run the same
// check sequence; they differ only in how much they say about the outcome.
type ValidateHandler struct {
	Engine *service.Engine
}

// HandleFull godoc
//
//	@Summary		Validate a token
//	@Description	Runs the full validation sequence: signature, expiry, revocation, audience, issuer.
//	@Description	An invalid token yields valid=false and the reason of the first failed check.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tokensdk.ValidateRequest	true	"Token and expected audience/issuer"
//	@Success		200		{object}	tokensdk.ValidateResponse	"The verdict, with claims when valid"
//	@Failure		400		{object}	tokensdk.ErrorResponse		"invalid_request"
//	@Router			/v1/tokens/validate [post].
func (h *ValidateHandler) HandleFull(w http.ResponseWriter, r *http.Request) {
	res, ok := h.validate(w, r)
	if !ok {
		return
	}

	out := tokensdk.ValidateResponse{
		Valid:  res.Valid,
		Reason: res.Reason,
	}
	if res.Claims != nil {
		out.Claims = claimsView(res.Claims)
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleBoolean godoc
//
//	@Summary		Validate a token, yes or no
//	@Description	Same checks as the full endpoint, but the answer is just the verdict: 200 for valid, 401 for anything else.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tokensdk.ValidateRequest			true	"Token and expected audience/issuer"
//	@Success		200		{object}	tokensdk.BooleanValidateResponse	"valid=true"
//	@Failure		401		{object}	tokensdk.BooleanValidateResponse	"valid=false"
//	@Failure		400		{object}	tokensdk.ErrorResponse				"invalid_request"
//	@Router			/v1/tokens/validate/boolean [post].
func (h *ValidateHandler) HandleBoolean(w http.ResponseWriter, r *http.Request) {
	res, ok := h.validate(w, r)
	if !ok {
		return
	}

	status := http.StatusOK
	if !res.Valid {
		status = http.StatusUnauthorized
	}
	httpx.WriteJSON(w, status, tokensdk.BooleanValidateResponse{Valid: res.Valid})
}

// validate decodes the request and runs the engine. Returns ok=false when
// the response has already been written.
func (h *ValidateHandler) validate(w http.ResponseWriter, r *http.Request) (domain.ValidationResult, bool) {
	ctx := r.Context()

	var req tokensdk.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		tokensdk.ErrInvalidRequest.WriteError(w)
		return domain.ValidationResult{}, false
	}

	res, err := h.Engine.Validate(ctx, req.Token, req.Audience, req.Issuer)
	if err != nil {
		writeServiceError(ctx, w, err)
		return domain.ValidationResult{}, false
	}
	return res, true
}

func claimsView(c *domain.ClaimView) *tokensdk.TokenClaims {
	return &tokensdk.TokenClaims{
		Issuer:    c.Issuer,
		Subject:   c.Subject,
		Audience:  c.Audience,
		IssuedAt:  c.IssuedAt,
		ExpiresAt: c.ExpiresAt,
		TokenID:   c.TokenID,
		Custom:    c.Custom,
	}
}
