// Package memcache provides the in-memory store behind the query executor.
//
// Entries carry their own freshness window. A stale entry is still returned by Get
// until it passes the cache-wide hard expiry, at which point it is evicted lazily on
// the next read. There is no background sweep.
package memcache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"
)

const defaultShards = 16

// Eviction reasons reported to metrics.
const (
	ReasonInvalidate = "invalidate"
	ReasonPrefix     = "prefix"
	ReasonClear      = "clear"
)

type shard struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

// Cache is a sharded, concurrency-safe key/value store with staleness tracking.
type Cache struct {
	shards     []*shard
	mask       uint64
	hardExpire time.Duration
	clock      clockwork.Clock
	metrics    ports.CacheMetrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for entry ages.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithMetrics sets the sink for expiry and eviction events.
func WithMetrics(m ports.CacheMetrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithShards sets the number of shards, rounded up to a power of two.
func WithShards(n int) Option {
	return func(c *Cache) {
		c.shards = newShards(n)
	}
}

// New creates a cache whose entries are dropped once older than hardExpireAfter.
func New(hardExpireAfter time.Duration, opts ...Option) *Cache {
	c := &Cache{
		shards:     newShards(defaultShards),
		hardExpire: hardExpireAfter,
		clock:      clockwork.NewRealClock(),
		metrics:    ports.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.mask = uint64(len(c.shards) - 1)
	return c
}

func newShards(n int) []*shard {
	size := 1
	for size < n {
		size <<= 1
	}
	shards := make([]*shard, size)
	for i := range shards {
		shards[i] = &shard{entries: make(map[string]domain.CacheEntry)}
	}
	return shards
}

func (c *Cache) shardFor(key string) *shard {
	return c.shards[xxhash.Sum64String(key)&c.mask]
}

// HardExpireAfter returns the age past which entries are no longer served.
func (c *Cache) HardExpireAfter() time.Duration {
	return c.hardExpire
}

// Now returns the current time of the cache clock.
func (c *Cache) Now() time.Time {
	return c.clock.Now()
}

// Get returns the cached data for key. An entry past the hard expiry is evicted
// and reported absent.
func (c *Cache) Get(key string) (any, bool) {
	e, ok := c.Peek(key)
	if !ok {
		return nil, false
	}
	return e.Data, true
}

// Peek returns the entry for key with its timestamps. It applies the same
// expiry rule as Get.
func (c *Cache) Peek(key string) (domain.CacheEntry, bool) {
	sh := c.shardFor(key)
	now := c.clock.Now()

	sh.mu.RLock()
	e, ok := sh.entries[key]
	sh.mu.RUnlock()

	if !ok {
		return domain.CacheEntry{}, false
	}
	if !e.IsExpiredAt(now, c.hardExpire) {
		return e, true
	}

	// Re-check under the write lock, a concurrent Set may have replaced the entry.
	sh.mu.Lock()
	cur, still := sh.entries[key]
	expired := still && cur.IsExpiredAt(now, c.hardExpire)
	if expired {
		delete(sh.entries, key)
	}
	sh.mu.Unlock()

	if expired {
		c.metrics.Expired(key)
		return domain.CacheEntry{}, false
	}
	return cur, still
}

// IsStale reports whether key is absent or past its freshness window.
func (c *Cache) IsStale(key string) bool {
	e, ok := c.Peek(key)
	if !ok {
		return true
	}
	return e.IsStaleAt(c.clock.Now())
}

// Set stores data under key, written now. A staleAfter larger than the hard
// expiry is clamped to it.
func (c *Cache) Set(key string, data any, staleAfter time.Duration) {
	if staleAfter > c.hardExpire {
		staleAfter = c.hardExpire
	}
	if staleAfter < 0 {
		staleAfter = 0
	}

	sh := c.shardFor(key)
	sh.mu.Lock()
	sh.entries[key] = domain.CacheEntry{
		Key:        key,
		Data:       data,
		WrittenAt:  c.clock.Now(),
		StaleAfter: staleAfter,
	}
	sh.mu.Unlock()
}

// Invalidate removes key. It reports whether an entry was present.
func (c *Cache) Invalidate(key string) bool {
	sh := c.shardFor(key)
	sh.mu.Lock()
	_, ok := sh.entries[key]
	delete(sh.entries, key)
	sh.mu.Unlock()

	if ok {
		c.metrics.Evicted(ReasonInvalidate, 1)
	}
	return ok
}

// InvalidatePrefix removes every key starting with prefix and returns the number removed.
func (c *Cache) InvalidatePrefix(prefix string) int {
	removed := 0
	for _, sh := range c.shards {
		sh.mu.Lock()
		for key := range sh.entries {
			if strings.HasPrefix(key, prefix) {
				delete(sh.entries, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}

	if removed > 0 {
		c.metrics.Evicted(ReasonPrefix, removed)
	}
	return removed
}

// Clear removes every entry and returns the number removed.
func (c *Cache) Clear() int {
	removed := 0
	for _, sh := range c.shards {
		sh.mu.Lock()
		removed += len(sh.entries)
		clear(sh.entries)
		sh.mu.Unlock()
	}

	if removed > 0 {
		c.metrics.Evicted(ReasonClear, removed)
	}
	return removed
}

// Len returns the number of stored entries, including expired ones not yet read.
func (c *Cache) Len() int {
	n := 0
	for _, sh := range c.shards {
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}

// Keys returns the stored keys in sorted order.
func (c *Cache) Keys() []string {
	var keys []string
	for _, sh := range c.shards {
		sh.mu.RLock()
		for key := range sh.entries {
			keys = append(keys, key)
		}
		sh.mu.RUnlock()
	}
	sort.Strings(keys)
	return keys
}
