// Package domain contains the core types of the query cache.
package domain

import (
	"context"
	"time"
)

// CacheEntry is a single cached value together with its freshness metadata.
type CacheEntry struct {
	// Key is the logical identifier of the value, e.g. "products:seller:42".
	Key string
	// Data is the cached payload. The cache never inspects it.
	Data any
	// WrittenAt is when the entry was last populated by a successful fetch.
	WrittenAt time.Time
	// StaleAfter is the age after which the entry is stale but still servable.
	StaleAfter time.Duration
}

// Age returns how old the entry is at now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.WrittenAt)
}

// IsStaleAt reports whether the entry has passed its freshness window at now.
func (e CacheEntry) IsStaleAt(now time.Time) bool {
	return e.Age(now) >= e.StaleAfter
}

// IsExpiredAt reports whether the entry is older than hardExpire at now.
func (e CacheEntry) IsExpiredAt(now time.Time, hardExpire time.Duration) bool {
	return e.Age(now) >= hardExpire
}

// Fetcher loads the value for a cache key from the remote platform.
// It must honour ctx cancellation.
type Fetcher func(ctx context.Context) (any, error)
