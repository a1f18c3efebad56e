package ports

import (
	"context"
	"iter"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
)

// ChangeFeed delivers row changes announced by the platform.
//
//go:generate mockgen -source=changefeed.go -destination=mocks/mock_changefeed.go -package=mocks
type ChangeFeed interface {
	// Events returns an iterator of change events. Iteration ends when ctx is done
	// or the feed is closed.
	Events(ctx context.Context) iter.Seq[domain.ChangeEvent]
}

// Invalidator drops cached query results.
type Invalidator interface {
	// Invalidate drops a single key and reports whether it was cached.
	Invalidate(key string) bool
	// InvalidatePrefix drops every key starting with prefix and returns how many were cached.
	InvalidatePrefix(prefix string) int
	// Clear drops everything.
	Clear()
}
