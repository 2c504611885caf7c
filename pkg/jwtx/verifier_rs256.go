package jwtx

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// RS256Verifier validates token signatures against a KeySet of RSA public
// keys, selected by the kid header.
type RS256Verifier struct {
	keys *KeySet
}

// NewVerifierRS256 creates a verifier backed by the given KeySet.
func NewVerifierRS256(keys *KeySet) *RS256Verifier {
	return &RS256Verifier{keys: keys}
}

// Verify checks the signature of tokenStr and returns its claim set.
// Claims validation (exp and friends) is intentionally disabled here; see
// the Verifier interface doc.
func (v *RS256Verifier) Verify(tokenStr string) (ClaimSet, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("jwtx: missing kid")
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}

		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("jwtx: invalid RSA key type")
		}
		return rsaPub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return ClaimSet{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return ClaimSet{}, fmt.Errorf("%w: %w", ErrInvalidSig, err)
	}
	if !token.Valid {
		return ClaimSet{}, ErrInvalidSig
	}

	return FromMapClaims(claims)
}
