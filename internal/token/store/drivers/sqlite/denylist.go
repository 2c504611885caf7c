package sqlite

import (
	"context"
	"time"

	"github.com/nordstack/tokend/internal/token/domain"
)

type denylistRepo struct {
	db dbtx
}

// Insert adds one token id to the denylist. The primary key on token_id makes
// the second insert of the same id fail with ErrAlreadyExists, which is what
// revocation idempotency and the extension race both hang off.
func (r *denylistRepo) Insert(ctx context.Context, e domain.DenylistEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO denylist (token_id, revoked_at, original_expires_at, reason)
		VALUES (?, ?, ?, ?)`,
		e.TokenID,
		e.RevokedAt.UTC(),
		e.OriginalExpiresAt.UTC(),
		e.Reason,
	)
	return mapConstraint(err)
}

func (r *denylistRepo) Contains(ctx context.Context, tokenID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM denylist WHERE token_id = ?`,
		tokenID,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *denylistRepo) Get(ctx context.Context, tokenID string) (domain.DenylistEntry, error) {
	var (
		e         domain.DenylistEntry
		revokedAt time.Time
		expiresAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT token_id, revoked_at, original_expires_at, reason
		FROM denylist
		WHERE token_id = ?`,
		tokenID,
	).Scan(&e.TokenID, &revokedAt, &expiresAt, &e.Reason)
	if err != nil {
		return domain.DenylistEntry{}, mapNotFound(err)
	}
	e.RevokedAt = revokedAt.UTC()
	e.OriginalExpiresAt = expiresAt.UTC()
	return e, nil
}

func (r *denylistRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM denylist WHERE original_expires_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
