// Package domain holds the core types of the token engine: the append-only
// metadata ledger records, denylist entries, and the result shapes the
// service layer hands back to transports.
package domain

import (
	"time"

	"github.com/nordstack/tokend/pkg/idx"
)

// RecordStatus is the derived state of a single ledger record. It is never
// stored; it is computed from the ledger and denylist at read time.
type RecordStatus string

const (
	// StatusActive means the record is the current version of its chain and
	// its token is neither revoked nor expired.
	StatusActive RecordStatus = "active"

	// StatusSuperseded means a later record in the chain replaced this one.
	StatusSuperseded RecordStatus = "superseded"

	// StatusRevoked means the record's token sits on the denylist.
	StatusRevoked RecordStatus = "revoked"

	// StatusExpired means the record's token passed its expiry without being
	// revoked or extended.
	StatusExpired RecordStatus = "expired"
)

// MetadataRecord is one row of the append-only ledger. Every mint writes one,
// every extension writes another; rows are never updated or deleted.
type MetadataRecord struct {
	// RecordID orders the ledger. ULIDs sort in creation order, which is how
	// created_at ties inside a chain are broken.
	RecordID idx.ID `json:"recordId"`

	// TokenID is the jti of the token this record describes.
	TokenID string `json:"tokenId"`

	// OriginalTokenID is the jti of the first token in the chain. Equal to
	// TokenID for a freshly minted token, carried verbatim through every
	// extension.
	OriginalTokenID string `json:"originalTokenId"`

	// SupersedesRecordID points at the record this one replaced, nil for the
	// first record of a chain.
	SupersedesRecordID *idx.ID `json:"supersedesRecordId,omitempty"`

	// ClaimKeys snapshots the names (not values) of the caller-supplied
	// claims, sorted.
	ClaimKeys []string `json:"claimKeys"`

	Subject  string   `json:"subject,omitempty"`
	Issuer   string   `json:"issuer"`
	Audience []string `json:"audience"`

	// JWTName labels the token kind, "custom_jwt" for everything this engine
	// mints.
	JWTName string `json:"jwtName"`

	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// DenylistEntry marks one token id as revoked. Inserting a duplicate token id
// fails, which is what makes revocation and extension exactly-once.
type DenylistEntry struct {
	TokenID string

	RevokedAt time.Time

	// OriginalExpiresAt is the token's own expiry, kept so the entry can be
	// pruned once the token would have died anyway.
	OriginalExpiresAt time.Time

	// Reason is a free-form operator note, empty for most revocations.
	Reason string
}

// ValidationResult reports a single validation verdict. When Valid is false,
// Reason holds exactly one failure cause, the first one found in check order.
type ValidationResult struct {
	Valid  bool       `json:"valid"`
	Reason string     `json:"reason,omitempty"`
	Claims *ClaimView `json:"claims,omitempty"`
}

// ClaimView is the claim envelope echoed back on a successful validation.
type ClaimView struct {
	Issuer    string         `json:"iss,omitempty"`
	Subject   string         `json:"sub,omitempty"`
	Audience  []string       `json:"aud,omitempty"`
	IssuedAt  time.Time      `json:"iat,omitzero"`
	ExpiresAt time.Time      `json:"exp,omitzero"`
	TokenID   string         `json:"jti,omitempty"`
	Custom    map[string]any `json:"custom,omitempty"`
}

// RevokeOutcome reports whether a revoke call changed anything.
type RevokeOutcome struct {
	TokenID         string `json:"tokenId,omitempty"`
	WasNewlyRevoked bool   `json:"wasNewlyRevoked"`
}

// BulkRevokeResult summarizes a batch revocation. The batch never fails as a
// whole; per-token failures land in Failed.
type BulkRevokeResult struct {
	Total          int               `json:"total"`
	NewlyRevoked   int               `json:"newlyRevoked"`
	AlreadyRevoked int               `json:"alreadyRevoked"`
	Failed         []BulkRevokeError `json:"failed,omitempty"`
}

// BulkRevokeError identifies one failed entry of a bulk revocation by a short
// prefix of the submitted token, long enough to find it in the caller's logs
// and short enough to be useless to an attacker.
type BulkRevokeError struct {
	TokenPrefix string `json:"tokenPrefix"`
	Error       string `json:"error"`
}

// ExtendResult carries the replacement token minted by an extension.
type ExtendResult struct {
	Token           string    `json:"token"`
	TokenID         string    `json:"tokenId"`
	OriginalTokenID string    `json:"originalTokenId"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// MintResult carries a freshly minted token.
type MintResult struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RecordView is a ledger record decorated with its derived status, the shape
// the listing endpoint returns.
type RecordView struct {
	MetadataRecord
	Status RecordStatus `json:"status"`
}

// TokenPrefix returns the first n characters of token, or all of it when the
// token is shorter. Used anywhere a token must be referenced without being
// reproduced.
func TokenPrefix(token string, n int) string {
	if len(token) <= n {
		return token
	}
	return token[:n]
}
