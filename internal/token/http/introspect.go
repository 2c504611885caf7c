package http

import (
	"net/http"
	"strings"

	"github.com/nordstack/tokend/internal/token/service"
	"github.com/nordstack/tokend/pkg/httpx"
	"github.com/nordstack/tokend/pkg/tokensdk"
)

// IntrospectHandler serves POST /v1/introspect following RFC 7662. Whatever
// goes wrong with the token, the answer is 200 with active=false; errors are
// reserved for requests we cannot read at all.
type IntrospectHandler struct {
	Introspector *service.Introspector
}

// ServeHTTP godoc
//
//	@Summary		Token Introspection Endpoint
//	@Description	Introspects a token and returns metadata about it (RFC 7662).
//	@Description	Inactive tokens, unknown token kinds and internal failures all yield {"active": false} with no further detail.
//	@Tags			Introspection
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			token	formData	string							true	"The token to introspect"
//	@Success		200		{object}	tokensdk.IntrospectionResult	"Introspection result"
//	@Failure		400		{object}	tokensdk.ErrorResponse			"invalid_request"
//	@Header			200		{string}	Cache-Control					"no-store"
//	@Router			/v1/introspect [post].
func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. Ensure the right content-type
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		tokensdk.ErrInvalidRequest.WriteError(w)
		return
	}

	// 2. Parse the form body
	if err := r.ParseForm(); err != nil {
		tokensdk.ErrInvalidRequest.WriteError(w)
		return
	}

	token := r.Form.Get("token")
	if token == "" {
		tokensdk.ErrInvalidRequest.WriteError(w)
		return
	}

	// 3. Dispatch. The introspector never errors; it answers inactive.
	resp := h.Introspector.Introspect(ctx, token)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}
