// Package cache is a TTL layer over the local key-value store. Every entry
// records when it was fetched; reads check age against the caller's TTL
// and treat stale entries as misses, removing them on the way out.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/readtrack/internal/storage"
)

// TTLs for the catalog data readtrack caches. Trending churns hourly;
// search results and book details are stable enough to keep for a week.
const (
	TrendingTTL = time.Hour
	SearchTTL   = 7 * 24 * time.Hour
	DetailsTTL  = 7 * 24 * time.Hour
)

type entry struct {
	Value     json.RawMessage `json:"value"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Store wraps a storage.Store with timestamped entries.
type Store struct {
	kv  *storage.Store
	now func() time.Time
}

// New creates a cache over kv.
func New(kv *storage.Store) *Store {
	return &Store{kv: kv, now: time.Now}
}

// NewWithClock creates a cache with an injected clock, for tests.
func NewWithClock(kv *storage.Store, now func() time.Time) *Store {
	return &Store{kv: kv, now: now}
}

// Get unmarshals a fresh entry for key into out. Entries older than
// maxAge count as misses and are deleted.
func (c *Store) Get(key string, maxAge time.Duration, out interface{}) (bool, error) {
	var e entry
	ok, err := c.kv.Get(key, &e)
	if err != nil || !ok {
		return false, err
	}
	if c.now().Sub(e.FetchedAt) >= maxAge {
		_ = c.kv.Delete(key)
		return false, nil
	}
	if err := json.Unmarshal(e.Value, out); err != nil {
		return false, fmt.Errorf("decoding cached %q: %w", key, err)
	}
	return true, nil
}

// Put stores v under key stamped with the current time.
func (c *Store) Put(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %q for cache: %w", key, err)
	}
	return c.kv.Set(key, entry{Value: raw, FetchedAt: c.now()})
}

// Invalidate removes key regardless of age.
func (c *Store) Invalidate(key string) error {
	return c.kv.Delete(key)
}

// Prune deletes every entry older than maxAge and returns how many went.
// Get already evicts stale entries lazily; Prune keeps the cache file
// from accumulating keys nothing asks for anymore.
func (c *Store) Prune(maxAge time.Duration) (int, error) {
	pruned := 0
	for _, key := range c.kv.Keys() {
		var e entry
		ok, err := c.kv.Get(key, &e)
		if err != nil || !ok {
			continue
		}
		if c.now().Sub(e.FetchedAt) < maxAge {
			continue
		}
		if err := c.kv.Delete(key); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}
