package domain

import (
	"strings"
	"time"

	"go.trai.ch/zerr"
)

const (
	// DefaultStaleAfter is how long a value is served without revalidation.
	DefaultStaleAfter = 30 * time.Second
	// DefaultHardExpireAfter is the age past which a value is no longer served.
	DefaultHardExpireAfter = 5 * time.Minute
	// DefaultMaxRetries is the number of retries after the first failed attempt.
	DefaultMaxRetries = 3
	// DefaultBaseDelay is the wait before the first retry.
	DefaultBaseDelay = 500 * time.Millisecond
	// DefaultMultiplier scales the wait between consecutive retries.
	DefaultMultiplier = 2.0
	// DefaultMaxDelay caps the wait between retries.
	DefaultMaxDelay = 10 * time.Second
	// DefaultAttemptTimeout bounds a single fetch attempt.
	DefaultAttemptTimeout = 8 * time.Second
	// DefaultFetchTimeout bounds a shared fetch including all of its retries.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultDebounceWindow is how long realtime invalidations are coalesced.
	DefaultDebounceWindow = 250 * time.Millisecond
)

// RetryOptions configures how failed fetch attempts are retried.
type RetryOptions struct {
	// MaxRetries is the number of additional attempts. Zero means a single attempt.
	MaxRetries int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// Multiplier scales the wait after every retry.
	Multiplier float64
	// MaxDelay caps a single wait. Zero disables the cap.
	MaxDelay time.Duration
	// AttemptTimeout bounds a single attempt. Zero disables the bound.
	AttemptTimeout time.Duration
}

// DefaultRetryOptions returns the retry settings used when nothing is configured.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:     DefaultMaxRetries,
		BaseDelay:      DefaultBaseDelay,
		Multiplier:     DefaultMultiplier,
		MaxDelay:       DefaultMaxDelay,
		AttemptTimeout: DefaultAttemptTimeout,
	}
}

// Validate reports inconsistent retry settings.
func (o RetryOptions) Validate() error {
	switch {
	case o.MaxRetries < 0:
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "max retries must not be negative"), "max_retries", o.MaxRetries)
	case o.BaseDelay < 0:
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "base delay must not be negative"), "base_delay", o.BaseDelay.String())
	case o.Multiplier < 1:
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "multiplier must be at least 1"), "multiplier", o.Multiplier)
	case o.MaxDelay < 0:
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "max delay must not be negative"), "max_delay", o.MaxDelay.String())
	case o.AttemptTimeout < 0:
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "attempt timeout must not be negative"),
			"attempt_timeout", o.AttemptTimeout.String())
	}
	return nil
}

// QueryOptions are the per-query knobs of the executor.
type QueryOptions struct {
	// StaleAfter overrides the cache policy freshness window when positive.
	StaleAfter time.Duration
	// Retry overrides the executor retry settings when non-nil.
	Retry *RetryOptions
}

// CachePolicy holds the cache-wide freshness settings.
type CachePolicy struct {
	// StaleAfter is the default freshness window.
	StaleAfter time.Duration
	// HardExpireAfter is the age past which entries are evicted on read.
	HardExpireAfter time.Duration
	// PrefixStaleAfter overrides StaleAfter for keys under a prefix.
	// The longest matching prefix wins.
	PrefixStaleAfter map[string]time.Duration
}

// DefaultCachePolicy returns the cache policy used when nothing is configured.
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{
		StaleAfter:      DefaultStaleAfter,
		HardExpireAfter: DefaultHardExpireAfter,
		PrefixStaleAfter: map[string]time.Duration{
			ShopPrefix: 5 * time.Minute,
		},
	}
}

// StaleAfterFor resolves the freshness window for key.
func (p CachePolicy) StaleAfterFor(key string) time.Duration {
	best := -1
	window := p.StaleAfter
	for prefix, d := range p.PrefixStaleAfter {
		if strings.HasPrefix(key, prefix) && len(prefix) > best {
			best = len(prefix)
			window = d
		}
	}
	return window
}

// Validate reports inconsistent cache settings.
func (p CachePolicy) Validate() error {
	if p.HardExpireAfter <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "hard expiry must be positive"),
			"hard_expire_after", p.HardExpireAfter.String())
	}
	if p.StaleAfter < 0 {
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "stale window must not be negative"),
			"stale_after", p.StaleAfter.String())
	}
	if p.StaleAfter > p.HardExpireAfter {
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "stale window exceeds hard expiry"),
			"stale_after", p.StaleAfter.String())
	}
	for prefix, d := range p.PrefixStaleAfter {
		if d < 0 || d > p.HardExpireAfter {
			return zerr.With(zerr.Wrap(ErrInvalidPolicy, "prefix stale window out of range"), "prefix", prefix)
		}
	}
	return nil
}
