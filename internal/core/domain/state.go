package domain

import "time"

// QueryState represents where a cache key is in its fetch lifecycle.
type QueryState string

const (
	// StateEmpty indicates nothing is cached and no fetch is running.
	StateEmpty QueryState = "Empty"
	// StateFetching indicates a cold fetch is running and callers are blocked on it.
	StateFetching QueryState = "Fetching"
	// StateFresh indicates the cached value is within its freshness window.
	StateFresh QueryState = "Fresh"
	// StateStale indicates the cached value is past its freshness window but servable.
	StateStale QueryState = "Stale"
	// StateRevalidating indicates stale data is served while a background fetch runs.
	StateRevalidating QueryState = "Revalidating"
	// StateErrorWithStaleData indicates a background fetch failed and the last good
	// value is still being served.
	StateErrorWithStaleData QueryState = "ErrorWithStaleData"
	// StateErrorEmpty indicates a cold fetch failed and there is no value to serve.
	StateErrorEmpty QueryState = "ErrorEmpty"
)

// HasData reports whether a snapshot in this state carries a value.
func (s QueryState) HasData() bool {
	switch s {
	case StateFresh, StateStale, StateRevalidating, StateErrorWithStaleData:
		return true
	default:
		return false
	}
}

// IsError reports whether the state records a failed fetch.
func (s QueryState) IsError() bool {
	return s == StateErrorWithStaleData || s == StateErrorEmpty
}

// Snapshot is the observable result of a query for one key.
type Snapshot struct {
	Key   string
	State QueryState
	// Data is the value being served, nil when State has no data.
	Data any
	// Err is the last fetch failure. It is set alongside Data for
	// StateErrorWithStaleData.
	Err error
	// UpdatedAt is when Data was written to the cache.
	UpdatedAt time.Time
	// Generation identifies the fetch that produced Data.
	Generation uint64
}

// Loading reports whether a consumer should show a loading indicator.
// Background revalidation of stale data is deliberately silent.
func (s Snapshot) Loading() bool {
	return s.State == StateFetching
}

// IsStale reports whether the served data is past its freshness window.
func (s Snapshot) IsStale() bool {
	switch s.State {
	case StateStale, StateRevalidating, StateErrorWithStaleData:
		return true
	default:
		return false
	}
}
