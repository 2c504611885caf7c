// Package denycache wraps a store.Denylist with an in-memory positive-hit
// cache. Revocation is permanent, so a "revoked" answer can be cached for the
// rest of the token's lifetime without ever going stale. Negative answers are
// never cached: a token can become revoked at any moment, and a validate call
// racing a revoke must see the write.
package denycache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nordstack/tokend/internal/token/domain"
	"github.com/nordstack/tokend/internal/token/store"
)

type Denylist struct {
	inner store.Denylist
	hits  *gocache.Cache
	now   func() time.Time
}

// New wraps inner. cleanup is how often expired cache entries are swept.
func New(inner store.Denylist, cleanup time.Duration) *Denylist {
	return &Denylist{
		inner: inner,
		hits:  gocache.New(gocache.NoExpiration, cleanup),
		now:   time.Now,
	}
}

// Insert writes through and primes the cache, so a revoke followed by a
// validate on the same node never touches the database twice.
func (d *Denylist) Insert(ctx context.Context, e domain.DenylistEntry) error {
	if err := d.inner.Insert(ctx, e); err != nil {
		return err
	}
	d.remember(e.TokenID, e.OriginalExpiresAt)
	return nil
}

// Contains answers from the cache on a prior positive hit, otherwise asks the
// database and caches only a "revoked" answer.
func (d *Denylist) Contains(ctx context.Context, tokenID string) (bool, error) {
	if _, hit := d.hits.Get(tokenID); hit {
		return true, nil
	}

	revoked, err := d.inner.Contains(ctx, tokenID)
	if err != nil {
		return false, err
	}
	if revoked {
		entry, err := d.inner.Get(ctx, tokenID)
		if err == nil {
			d.remember(tokenID, entry.OriginalExpiresAt)
		}
	}
	return revoked, nil
}

func (d *Denylist) Get(ctx context.Context, tokenID string) (domain.DenylistEntry, error) {
	return d.inner.Get(ctx, tokenID)
}

func (d *Denylist) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return d.inner.DeleteExpiredBefore(ctx, cutoff)
}

// remember caches a positive hit until the token would have expired anyway,
// at which point the expiry check fires before the denylist is consulted.
func (d *Denylist) remember(tokenID string, expiresAt time.Time) {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return
	}
	d.hits.Set(tokenID, struct{}{}, ttl)
}
