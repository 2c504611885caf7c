package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/nordstack/tokend/internal/token/domain"
	"github.com/nordstack/tokend/internal/token/store"
	"github.com/nordstack/tokend/pkg/idx"
	_ "modernc.org/sqlite"
)

// dbtx is the subset of *sql.DB and *sql.Tx the repos need, so the same repo
// code serves both the plain store and the Tx-scoped one.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	return tx.Commit()
}

func (s *Store) Metadata() store.Metadata { return &metadataRepo{db: s.db} }
func (s *Store) Denylist() store.Denylist { return &denylistRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns sqlite's unique-violation error into ErrAlreadyExists.
// modernc.org/sqlite exposes no typed constraint error, so we match the
// message it always emits.
func mapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapOptionalID(id *idx.ID) sql.NullString {
	if id == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func mapNullIDPtr(ns sql.NullString) *idx.ID {
	if ns.Valid {
		val := idx.ID(ns.String)
		return &val
	}
	return nil
}

// splitAndFilter explodes a space-separated column into its distinct parts.
func splitAndFilter(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Fields(s)
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

func scanMetadataRecord(scan func(dest ...any) error) (domain.MetadataRecord, error) {
	var (
		r          domain.MetadataRecord
		recordID   string
		supersedes sql.NullString
		subject    sql.NullString
		claimKeys  string
		audience   string
		issuedAt   time.Time
		expiresAt  time.Time
		createdAt  time.Time
	)
	err := scan(
		&recordID,
		&r.TokenID,
		&r.OriginalTokenID,
		&supersedes,
		&claimKeys,
		&subject,
		&r.Issuer,
		&audience,
		&r.JWTName,
		&issuedAt,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		return domain.MetadataRecord{}, err
	}

	r.RecordID = idx.ID(recordID)
	r.SupersedesRecordID = mapNullIDPtr(supersedes)
	r.ClaimKeys = splitAndFilter(claimKeys)
	r.Subject = mapNullString(subject)
	r.Audience = splitAndFilter(audience)
	r.IssuedAt = issuedAt.UTC()
	r.ExpiresAt = expiresAt.UTC()
	r.CreatedAt = createdAt.UTC()
	return r, nil
}
