package domain

import "go.trai.ch/zerr"

var (
	// ErrFetchFailed is returned when a fetch for a cache key fails after all retries.
	ErrFetchFailed = zerr.New("fetch failed")

	// ErrRevalidationFailed is attached to a snapshot when a background refresh fails
	// while stale data is still being served.
	ErrRevalidationFailed = zerr.New("background revalidation failed")

	// ErrSuperseded ends a fetch whose key was invalidated while it ran. Its
	// waiters move to the fetch that replaced it.
	ErrSuperseded = zerr.New("fetch superseded by invalidation")

	// ErrFetchTimeout is returned when a single fetch attempt exceeds its timeout.
	ErrFetchTimeout = zerr.New("fetch attempt timed out")

	// ErrPermissionDenied is returned by a fetcher when the platform rejects the caller.
	// It is never retried.
	ErrPermissionDenied = zerr.New("permission denied")

	// ErrValidation is returned by a fetcher when the request itself is malformed.
	// It is never retried.
	ErrValidation = zerr.New("validation failed")

	// ErrNotFound is returned when the requested record does not exist.
	// It is never retried.
	ErrNotFound = zerr.New("record not found")

	// ErrUnavailable is returned when the platform is temporarily unreachable.
	ErrUnavailable = zerr.New("platform unavailable")

	// ErrCircuitOpen is returned when calls to the platform are short-circuited.
	// It is never retried, the breaker decides when to try again.
	ErrCircuitOpen = zerr.New("circuit breaker open")

	// ErrTypeMismatch is returned when cached data is not of the type a binding expects.
	ErrTypeMismatch = zerr.New("cached value has unexpected type")

	// ErrEmptyKey is returned when a query is issued without a cache key.
	ErrEmptyKey = zerr.New("cache key is empty")

	// ErrNilFetcher is returned when a query is issued without a fetcher.
	ErrNilFetcher = zerr.New("fetcher is nil")

	// ErrInvalidPolicy is returned when cache or retry settings are inconsistent.
	ErrInvalidPolicy = zerr.New("invalid cache policy")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrEnvParseFailed is returned when environment overrides cannot be parsed.
	ErrEnvParseFailed = zerr.New("failed to parse environment overrides")

	// ErrMissingPlatformURL is returned when no platform URL is configured.
	ErrMissingPlatformURL = zerr.New("platform url is not configured")

	// ErrPlatformClientFailed is returned when the platform client cannot be created.
	ErrPlatformClientFailed = zerr.New("failed to create platform client")

	// ErrDecodeFailed is returned when a platform response cannot be decoded.
	ErrDecodeFailed = zerr.New("failed to decode platform response")

	// ErrQueryFailed is returned by the CLI when a query ends without data. The
	// failure itself has already been reported.
	ErrQueryFailed = zerr.New("query failed")

	// ErrFeedClosed is returned when publishing to a closed change feed.
	ErrFeedClosed = zerr.New("change feed closed")

	// ErrUnknownResource is returned by the CLI for an unsupported query kind.
	ErrUnknownResource = zerr.New("unknown resource")
)
