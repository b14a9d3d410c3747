package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/openpermits/permitdash/internal/model"
)

// FetchFunc produces the records for a date range on a cache miss
type FetchFunc func(ctx context.Context, dateRange model.DateRange) ([]model.PermitRecord, error)

// ResultCache memoizes query results per date range for a fixed TTL.
// Expiry is measured against an injected clock so tests can advance
// simulated time. Eviction is TTL-only: the key space is the set of
// date ranges a user picks in a session, which stays small.
type ResultCache struct {
	store *gocache.Cache
	ttl   time.Duration
	now   func() time.Time

	// mu serializes lookup-or-fetch per cache. Single-threaded callers
	// never contend; callers that overlap evaluations still get at
	// most one fetch per key per TTL window.
	mu sync.Mutex
}

// entry pairs a result with the time it was stored
type entry struct {
	records  []model.PermitRecord
	storedAt time.Time
}

// New creates a ResultCache with the given TTL. A nil clock defaults
// to time.Now.
func New(ttl time.Duration, now func() time.Time) *ResultCache {
	if now == nil {
		now = time.Now
	}
	// The go-cache store never expires entries itself: validity is
	// decided against the injected clock on every lookup.
	return &ResultCache{
		store: gocache.New(gocache.NoExpiration, 0),
		ttl:   ttl,
		now:   now,
	}
}

// Key generates the cache key for a date range
func Key(dateRange model.DateRange) string {
	hash := sha256.Sum256([]byte(dateRange.Key()))
	return "permitdash:v1:" + hex.EncodeToString(hash[:])
}

// Get returns the memoized result for the date range, invoking fetch
// only when no live entry exists. Failed fetches are not cached.
func (c *ResultCache) Get(ctx context.Context, dateRange model.DateRange, fetch FetchFunc) ([]model.PermitRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(dateRange)
	if val, found := c.store.Get(key); found {
		e := val.(entry)
		if c.now().Sub(e.storedAt) < c.ttl {
			return e.records, nil
		}
		c.store.Delete(key)
	}

	records, err := fetch(ctx, dateRange)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, entry{records: records, storedAt: c.now()}, gocache.NoExpiration)
	return records, nil
}

// Clear removes all cached results
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Flush()
}
