package jwtx

import "errors"

// Verifier checks a token's signature and hands back the decoded claim set.
//
// It deliberately does NOT validate expiry, issuer, or audience: the
// lifecycle engine runs those checks itself in a fixed order so that the
// failure reason a caller sees is deterministic. A Verifier answers exactly
// one question: was this token signed by a key we hold.
type Verifier interface {
	Verify(token string) (ClaimSet, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
)
