package ports

import "time"

// CacheMetrics receives cache and fetch events for observability.
// Implementations must be safe for concurrent use.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type CacheMetrics interface {
	// Hit records a read served from a fresh entry.
	Hit(key string)
	// StaleServed records a read served from a stale entry.
	StaleServed(key string)
	// Miss records a read that found no servable entry.
	Miss(key string)
	// Expired records an entry dropped on read past its hard expiry.
	Expired(key string)
	// Evicted records entries removed by invalidation.
	Evicted(reason string, n int)
	// FetchCompleted records a settled shared fetch.
	FetchCompleted(key string, d time.Duration, err error)
	// RetryScheduled records a retry about to wait for delay.
	RetryScheduled(key string, attempt int, delay time.Duration)
	// GenerationDiscarded records a fetch result dropped because newer data exists.
	GenerationDiscarded(key string)
}

// NoopMetrics is a CacheMetrics that discards everything.
type NoopMetrics struct{}

// Hit implements CacheMetrics.
func (NoopMetrics) Hit(string) {}

// StaleServed implements CacheMetrics.
func (NoopMetrics) StaleServed(string) {}

// Miss implements CacheMetrics.
func (NoopMetrics) Miss(string) {}

// Expired implements CacheMetrics.
func (NoopMetrics) Expired(string) {}

// Evicted implements CacheMetrics.
func (NoopMetrics) Evicted(string, int) {}

// FetchCompleted implements CacheMetrics.
func (NoopMetrics) FetchCompleted(string, time.Duration, error) {}

// RetryScheduled implements CacheMetrics.
func (NoopMetrics) RetryScheduled(string, int, time.Duration) {}

// GenerationDiscarded implements CacheMetrics.
func (NoopMetrics) GenerationDiscarded(string) {}
