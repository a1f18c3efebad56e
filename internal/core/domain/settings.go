package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// PlatformSettings locate the hosted data platform.
type PlatformSettings struct {
	URL    string
	APIKey string
	// Schema is the database schema queried, "public" when empty.
	Schema string
	// BreakerFailures is the number of consecutive failures that open the breaker.
	BreakerFailures uint32
	// BreakerCooldown is how long the breaker stays open.
	BreakerCooldown time.Duration
}

// Settings is the resolved configuration of the query cache.
type Settings struct {
	Platform PlatformSettings
	Cache    CachePolicy
	Retry    RetryOptions
	// FetchTimeout bounds a shared fetch including its retries.
	FetchTimeout time.Duration
	// DebounceWindow coalesces realtime invalidations.
	DebounceWindow time.Duration
	// LogJSON forces JSON log output.
	LogJSON bool
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() *Settings {
	return &Settings{
		Platform: PlatformSettings{
			Schema:          "public",
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Cache:          DefaultCachePolicy(),
		Retry:          DefaultRetryOptions(),
		FetchTimeout:   DefaultFetchTimeout,
		DebounceWindow: DefaultDebounceWindow,
	}
}

// Validate reports inconsistent settings.
func (s *Settings) Validate() error {
	if err := s.Cache.Validate(); err != nil {
		return err
	}
	if err := s.Retry.Validate(); err != nil {
		return err
	}
	if s.FetchTimeout <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "fetch timeout must be positive"),
			"fetch_timeout", s.FetchTimeout.String())
	}
	if s.DebounceWindow < 0 {
		return zerr.With(zerr.Wrap(ErrInvalidPolicy, "debounce window must not be negative"),
			"debounce_window", s.DebounceWindow.String())
	}
	return nil
}
