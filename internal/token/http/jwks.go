package http

import (
	"net/http"

	"github.com/nordstack/tokend/pkg/httpx"
	"github.com/nordstack/tokend/pkg/jwtx"
	"github.com/nordstack/tokend/pkg/tokensdk"
)

// JWKSHandler exposes the JSON Web Key Set for public key discovery.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	tokensdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, tokensdk.JWKSResponse(keys.PublicJWKS()))
	}
}
