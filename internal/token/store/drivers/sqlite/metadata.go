package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/nordstack/tokend/internal/token/domain"
	"github.com/nordstack/tokend/internal/token/store"
)

const defaultListLimit = 50

const metadataColumns = `record_id, token_id, original_token_id, supersedes_record_id,
	claim_keys, subject, issuer, audience, jwt_name, issued_at, expires_at, created_at`

type metadataRepo struct {
	db dbtx
}

func (r *metadataRepo) CreateRecord(ctx context.Context, rec domain.MetadataRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jwt_metadata (`+metadataColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RecordID.String(),
		rec.TokenID,
		rec.OriginalTokenID,
		mapOptionalID(rec.SupersedesRecordID),
		strings.Join(rec.ClaimKeys, " "),
		mapStringNull(rec.Subject),
		rec.Issuer,
		strings.Join(rec.Audience, " "),
		rec.JWTName,
		rec.IssuedAt.UTC(),
		rec.ExpiresAt.UTC(),
		rec.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *metadataRepo) GetByTokenID(ctx context.Context, tokenID string) (domain.MetadataRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+metadataColumns+`
		FROM jwt_metadata
		WHERE token_id = ?`,
		tokenID,
	)
	rec, err := scanMetadataRecord(row.Scan)
	if err != nil {
		return domain.MetadataRecord{}, mapNotFound(err)
	}
	return rec, nil
}

// GetCurrentByOriginalTokenID picks the chain's newest record. created_at
// resolution is one second, so simultaneous extensions tie on it; record ids
// are ULIDs and break the tie in creation order.
func (r *metadataRepo) GetCurrentByOriginalTokenID(ctx context.Context, originalTokenID string) (domain.MetadataRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+metadataColumns+`
		FROM jwt_metadata
		WHERE original_token_id = ?
		ORDER BY created_at DESC, record_id DESC
		LIMIT 1`,
		originalTokenID,
	)
	rec, err := scanMetadataRecord(row.Scan)
	if err != nil {
		return domain.MetadataRecord{}, mapNotFound(err)
	}
	return rec, nil
}

func (r *metadataRepo) GetChain(ctx context.Context, originalTokenID string) ([]domain.MetadataRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+metadataColumns+`
		FROM jwt_metadata
		WHERE original_token_id = ?
		ORDER BY created_at ASC, record_id ASC`,
		originalTokenID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows.Next, rows.Scan, rows.Err)
}

func (r *metadataRepo) List(ctx context.Context, f store.ListFilter) ([]domain.MetadataRecord, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if f.Subject != "" {
		where = append(where, "subject = ?")
		args = append(args, f.Subject)
	}
	if f.OriginalTokenID != "" {
		where = append(where, "original_token_id = ?")
		args = append(args, f.OriginalTokenID)
	}
	if !f.IssuedAfter.IsZero() {
		where = append(where, "issued_at >= ?")
		args = append(args, f.IssuedAfter.UTC())
	}
	if !f.IssuedBefore.IsZero() {
		where = append(where, "issued_at < ?")
		args = append(args, f.IssuedBefore.UTC())
	}

	query := `SELECT ` + metadataColumns + ` FROM jwt_metadata`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, record_id DESC LIMIT %d OFFSET %d", limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows.Next, rows.Scan, rows.Err)
}

func collectRecords(next func() bool, scan func(dest ...any) error, rowsErr func() error) ([]domain.MetadataRecord, error) {
	var out []domain.MetadataRecord
	for next() {
		rec, err := scanMetadataRecord(scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rowsErr()
}
