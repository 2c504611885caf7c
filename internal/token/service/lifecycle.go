package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nordstack/tokend/internal/token/domain"
	"github.com/nordstack/tokend/internal/token/store"
	"github.com/nordstack/tokend/pkg/idx"
	"github.com/nordstack/tokend/pkg/jwtx"
	"github.com/nordstack/tokend/pkg/slogx"
)

var (
	ErrMalformedToken   = errors.New("malformed_token")
	ErrTokenExpired     = errors.New("token_expired")
	ErrTokenRevoked     = errors.New("token_revoked")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrMetadataNotFound = errors.New("metadata_not_found")
	ErrSigningFailure   = errors.New("signing_failure")
	ErrTTLTooLong       = errors.New("ttl_too_long")
)

// Validation failure reasons. These strings are API surface: clients branch
// on them, so they never change.
const (
	ReasonInvalidFormat    = "Invalid token format"
	ReasonInvalidSignature = "Invalid signature"
	ReasonTokenExpired     = "Token expired"
	ReasonTokenRevoked     = "Token revoked"
	ReasonInvalidAudience  = "Invalid audience"
	ReasonInvalidIssuer    = "Invalid issuer"
)

// TokenKind is the type marker stamped into every token this engine mints.
const TokenKind = "custom_jwt"

// EngineConfig carries the knobs the lifecycle engine needs.
type EngineConfig struct {
	Issuer     string
	Audience   AudiencePolicy
	DefaultTTL time.Duration
	MaxTTL     time.Duration
}

// Engine owns the token lifecycle: minting, validation, extension and
// revocation. All state lives in the store; the engine itself is stateless
// and safe for concurrent use.
type Engine struct {
	store    store.Store
	denylist store.Denylist
	signer   jwtx.Signer
	verifier jwtx.Verifier
	cfg      EngineConfig

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

// NewEngine wires the lifecycle engine. denylist is the read/write denylist
// the engine consults outside transactions; pass the cached decorator here
// and the raw store for transactional writes.
func NewEngine(st store.Store, denylist store.Denylist, signer jwtx.Signer, verifier jwtx.Verifier, cfg EngineConfig) *Engine {
	return &Engine{
		store:    st,
		denylist: denylist,
		signer:   signer,
		verifier: verifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Generate mints a new token with the given custom claims and writes its
// ledger record. jwtName is the caller's logical name for the token and is
// recorded for auditing; empty defaults to the engine's own kind. audiences
// must already be resolved through the audience policy; the engine trusts
// them.
func (e *Engine) Generate(ctx context.Context, jwtName string, custom map[string]any, audiences []string, ttl time.Duration) (domain.MintResult, error) {
	if jwtName == "" {
		jwtName = TokenKind
	}
	if ttl <= 0 {
		ttl = e.cfg.DefaultTTL
	}
	if e.cfg.MaxTTL > 0 && ttl > e.cfg.MaxTTL {
		return domain.MintResult{}, fmt.Errorf("%w: %s exceeds %s", ErrTTLTooLong, ttl, e.cfg.MaxTTL)
	}

	now := e.now().UTC().Truncate(time.Second)
	claims, err := jwtx.NewClaimSet(custom, e.cfg.Issuer, audiences, ttl, TokenKind, now)
	if err != nil {
		return domain.MintResult{}, err
	}

	token, err := e.signer.Sign(claims.MapClaims())
	if err != nil {
		return domain.MintResult{}, fmt.Errorf("%w: %w", ErrSigningFailure, err)
	}

	rec := domain.MetadataRecord{
		RecordID:        idx.New(),
		TokenID:         claims.TokenID,
		OriginalTokenID: claims.TokenID,
		ClaimKeys:       claims.ClaimKeys(),
		Subject:         claims.Subject,
		Issuer:          claims.Issuer,
		Audience:        claims.Audience,
		JWTName:         jwtName,
		IssuedAt:        claims.IssuedAt,
		ExpiresAt:       claims.ExpiresAt,
		CreatedAt:       now,
	}
	if err := e.store.Metadata().CreateRecord(ctx, rec); err != nil {
		return domain.MintResult{}, err
	}

	slogx.FromContext(ctx).Info("token minted",
		"token_id", claims.TokenID,
		"subject", claims.Subject,
		"expires_at", claims.ExpiresAt,
	)

	return domain.MintResult{
		Token:     token,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Validate runs the full check sequence against one token. The order is
// fixed and the result carries exactly the first failure found: signature,
// then expiry, then revocation, then audience, then issuer. Expiry before
// revocation means a token that is both expired and revoked reports
// "Token expired".
func (e *Engine) Validate(ctx context.Context, token, expectedAudience, expectedIssuer string) (domain.ValidationResult, error) {
	claims, err := e.verifier.Verify(token)
	switch {
	case errors.Is(err, jwtx.ErrMalformed):
		return domain.ValidationResult{Reason: ReasonInvalidFormat}, nil
	case err != nil:
		return domain.ValidationResult{Reason: ReasonInvalidSignature}, nil
	}

	if !claims.ExpiresAt.After(e.now()) {
		return domain.ValidationResult{Reason: ReasonTokenExpired}, nil
	}

	revoked, err := e.denylist.Contains(ctx, claims.TokenID)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if revoked {
		return domain.ValidationResult{Reason: ReasonTokenRevoked}, nil
	}

	if expectedAudience != "" && !slices.Contains(claims.Audience, expectedAudience) {
		return domain.ValidationResult{Reason: ReasonInvalidAudience}, nil
	}

	if expectedIssuer != "" && claims.Issuer != expectedIssuer {
		return domain.ValidationResult{Reason: ReasonInvalidIssuer}, nil
	}

	return domain.ValidationResult{
		Valid: true,
		Claims: &domain.ClaimView{
			Issuer:    claims.Issuer,
			Subject:   claims.Subject,
			Audience:  claims.Audience,
			IssuedAt:  claims.IssuedAt,
			ExpiresAt: claims.ExpiresAt,
			TokenID:   claims.TokenID,
			Custom:    claims.Custom,
		},
	}, nil
}

// IsRevoked reports whether a token's id sits on the denylist. A token that
// cannot be parsed is treated as revoked: when we cannot tell what the token
// is, we refuse it.
func (e *Engine) IsRevoked(ctx context.Context, token string) (bool, error) {
	claims, err := jwtx.PeekClaims(token)
	if err != nil {
		return true, nil
	}
	return e.denylist.Contains(ctx, claims.TokenID)
}

// Revoke puts a token's id on the denylist. Returns true when this call did
// the revoking, false when the token was already revoked. Revoking an
// expired token is allowed; the entry just gets pruned sooner.
func (e *Engine) Revoke(ctx context.Context, token, reason string) (bool, error) {
	claims, err := jwtx.PeekClaims(token)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	err = e.denylist.Insert(ctx, domain.DenylistEntry{
		TokenID:           claims.TokenID,
		RevokedAt:         e.now().UTC(),
		OriginalExpiresAt: claims.ExpiresAt,
		Reason:            reason,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	slogx.FromContext(ctx).Info("token revoked", "token_id", claims.TokenID, "reason", reason)
	return true, nil
}

// BulkRevoke revokes each token independently. One bad token never aborts
// the batch; its failure is reported per-item instead.
func (e *Engine) BulkRevoke(ctx context.Context, tokens []string, reason string) domain.BulkRevokeResult {
	res := domain.BulkRevokeResult{Total: len(tokens)}
	for _, token := range tokens {
		newly, err := e.Revoke(ctx, token, reason)
		switch {
		case err != nil:
			res.Failed = append(res.Failed, domain.BulkRevokeError{
				TokenPrefix: domain.TokenPrefix(token, 20),
				Error:       err.Error(),
			})
		case newly:
			res.NewlyRevoked++
		default:
			res.AlreadyRevoked++
		}
	}
	return res
}

// Extend replaces a live token with a longer-lived one carrying the same
// caller claims. The old token is revoked and a new ledger record appended,
// both in one transaction; the denylist's unique token id makes a concurrent
// double-extend impossible, the loser gets ErrTokenRevoked.
func (e *Engine) Extend(ctx context.Context, token string, ttl time.Duration) (domain.ExtendResult, error) {
	claims, err := e.verifier.Verify(token)
	switch {
	case errors.Is(err, jwtx.ErrMalformed):
		return domain.ExtendResult{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	case err != nil:
		return domain.ExtendResult{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	// Strict precondition: an expired token is not extendable, revoked or
	// not.
	if !claims.ExpiresAt.After(e.now()) {
		return domain.ExtendResult{}, ErrTokenExpired
	}

	revoked, err := e.denylist.Contains(ctx, claims.TokenID)
	if err != nil {
		return domain.ExtendResult{}, err
	}
	if revoked {
		return domain.ExtendResult{}, ErrTokenRevoked
	}

	prev, err := e.store.Metadata().GetByTokenID(ctx, claims.TokenID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ExtendResult{}, ErrMetadataNotFound
	}
	if err != nil {
		return domain.ExtendResult{}, err
	}

	if ttl <= 0 {
		ttl = e.cfg.DefaultTTL
	}
	if e.cfg.MaxTTL > 0 && ttl > e.cfg.MaxTTL {
		return domain.ExtendResult{}, fmt.Errorf("%w: %s exceeds %s", ErrTTLTooLong, ttl, e.cfg.MaxTTL)
	}

	audiences := claims.Audience
	if len(audiences) == 0 {
		audiences = e.cfg.Audience.Resolve(nil)
	}

	now := e.now().UTC().Truncate(time.Second)
	next, err := jwtx.NewClaimSet(claims.CustomWithSubject(), e.cfg.Issuer, audiences, ttl, TokenKind, now)
	if err != nil {
		return domain.ExtendResult{}, err
	}

	newToken, err := e.signer.Sign(next.MapClaims())
	if err != nil {
		return domain.ExtendResult{}, fmt.Errorf("%w: %w", ErrSigningFailure, err)
	}

	rec := domain.MetadataRecord{
		RecordID:           idx.New(),
		TokenID:            next.TokenID,
		OriginalTokenID:    prev.OriginalTokenID,
		SupersedesRecordID: &prev.RecordID,
		ClaimKeys:          next.ClaimKeys(),
		Subject:            next.Subject,
		Issuer:             next.Issuer,
		Audience:           next.Audience,
		JWTName:            prev.JWTName,
		IssuedAt:           next.IssuedAt,
		ExpiresAt:          next.ExpiresAt,
		CreatedAt:          now,
	}

	// The new record and the old token's revocation land together or not at
	// all. Two racing extends both reach this point; the denylist insert
	// lets exactly one commit.
	err = e.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Metadata().CreateRecord(ctx, rec); err != nil {
			return err
		}
		return tx.Denylist().Insert(ctx, domain.DenylistEntry{
			TokenID:           claims.TokenID,
			RevokedAt:         now,
			OriginalExpiresAt: claims.ExpiresAt,
			Reason:            "superseded by extension",
		})
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.ExtendResult{}, ErrTokenRevoked
	}
	if err != nil {
		return domain.ExtendResult{}, err
	}

	slogx.FromContext(ctx).Info("token extended",
		"token_id", next.TokenID,
		"original_token_id", prev.OriginalTokenID,
		"supersedes", prev.RecordID.String(),
	)

	return domain.ExtendResult{
		Token:           newToken,
		TokenID:         next.TokenID,
		OriginalTokenID: prev.OriginalTokenID,
		ExpiresAt:       next.ExpiresAt,
	}, nil
}

// Chain returns every ledger record of the chain containing tokenID, oldest
// first.
func (e *Engine) Chain(ctx context.Context, tokenID string) ([]domain.MetadataRecord, error) {
	rec, err := e.store.Metadata().GetByTokenID(ctx, tokenID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrMetadataNotFound
	}
	if err != nil {
		return nil, err
	}
	return e.store.Metadata().GetChain(ctx, rec.OriginalTokenID)
}

// List returns ledger records matching the filter, each decorated with its
// derived status.
func (e *Engine) List(ctx context.Context, f store.ListFilter) ([]domain.RecordView, error) {
	recs, err := e.store.Metadata().List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RecordView, 0, len(recs))
	for _, rec := range recs {
		status, err := e.recordStatus(ctx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.RecordView{MetadataRecord: rec, Status: status})
	}
	return out, nil
}

// recordStatus derives a record's state. A record that was extended is
// superseded regardless of what happened to the chain after it; the current
// record is revoked, expired or active on its own merits.
func (e *Engine) recordStatus(ctx context.Context, rec domain.MetadataRecord) (domain.RecordStatus, error) {
	current, err := e.store.Metadata().GetCurrentByOriginalTokenID(ctx, rec.OriginalTokenID)
	if err != nil {
		return "", err
	}
	if current.RecordID != rec.RecordID {
		return domain.StatusSuperseded, nil
	}

	revoked, err := e.denylist.Contains(ctx, rec.TokenID)
	if err != nil {
		return "", err
	}
	if revoked {
		return domain.StatusRevoked, nil
	}
	if !rec.ExpiresAt.After(e.now()) {
		return domain.StatusExpired, nil
	}
	return domain.StatusActive, nil
}
