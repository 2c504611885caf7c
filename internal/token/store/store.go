package store

import (
	"context"
	"errors"
	"time"

	"github.com/nordstack/tokend/internal/token/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a Tx form so the extension flow can make its two writes
// atomically.
type Store interface {
	Metadata() Metadata
	Denylist() Denylist

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn errors
	// and committing otherwise. This is the recommended form.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos, plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// ListFilter narrows a ledger listing. Zero values mean "no constraint".
type ListFilter struct {
	// Subject restricts to records minted for one subject.
	Subject string

	// OriginalTokenID restricts to one extension chain.
	OriginalTokenID string

	// IssuedAfter / IssuedBefore bound the issue time.
	IssuedAfter  time.Time
	IssuedBefore time.Time

	// Limit caps the page size; 0 means the driver default.
	Limit int

	// Offset skips rows for pagination.
	Offset int
}

type Metadata interface {
	// CreateRecord appends one row to the ledger. Records are immutable;
	// there is no update or delete.
	CreateRecord(ctx context.Context, r domain.MetadataRecord) error

	// GetByTokenID returns the record describing one token id.
	GetByTokenID(ctx context.Context, tokenID string) (domain.MetadataRecord, error)

	// GetCurrentByOriginalTokenID returns the current version of a chain:
	// the record with the latest created_at, ties broken by record id.
	GetCurrentByOriginalTokenID(ctx context.Context, originalTokenID string) (domain.MetadataRecord, error)

	// GetChain returns every record of a chain in creation order, oldest
	// first.
	GetChain(ctx context.Context, originalTokenID string) ([]domain.MetadataRecord, error)

	// List returns ledger records matching the filter, newest first.
	List(ctx context.Context, f ListFilter) ([]domain.MetadataRecord, error)
}

type Denylist interface {
	// Insert adds a token id to the denylist. Returns ErrAlreadyExists when
	// the token id is already present; that collision is the exactly-once
	// guard for revocation and extension.
	Insert(ctx context.Context, e domain.DenylistEntry) error

	// Contains reports whether a token id has been revoked.
	Contains(ctx context.Context, tokenID string) (bool, error)

	// Get returns the denylist entry for a token id.
	Get(ctx context.Context, tokenID string) (domain.DenylistEntry, error)

	// DeleteExpiredBefore removes entries whose token expired before cutoff.
	// A revoked token that has also expired fails validation on expiry
	// alone, so the entry no longer pays for its row. Returns the number of
	// rows removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
