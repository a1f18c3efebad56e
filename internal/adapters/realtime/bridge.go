// Package realtime turns platform change notifications into cache invalidations.
package realtime

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
)

// Bridge consumes a change feed and invalidates the cached queries each change
// makes stale. Bursts are coalesced by a Debouncer.
type Bridge struct {
	invalidator ports.Invalidator
	logger      ports.Logger
	debouncer   *Debouncer

	received    atomic.Uint64
	invalidated atomic.Uint64
}

// BridgeStats counts what a bridge has processed.
type BridgeStats struct {
	// Received is the number of change events read from the feed.
	Received uint64
	// Invalidated is the number of cache entries dropped.
	Invalidated uint64
}

// NewBridge creates a bridge that invalidates through invalidator, coalescing
// changes that arrive within window.
func NewBridge(invalidator ports.Invalidator, logger ports.Logger, window time.Duration) *Bridge {
	b := &Bridge{invalidator: invalidator, logger: logger}
	b.debouncer = NewDebouncer(window, b.invalidate)
	return b
}

// Run reads feed until ctx is done or the feed ends, then flushes pending
// invalidations. It returns ctx.Err() when stopped by ctx.
func (b *Bridge) Run(ctx context.Context, feed ports.ChangeFeed) error {
	defer b.debouncer.Flush()

	for ev := range feed.Events(ctx) {
		b.Handle(ev)
	}
	return ctx.Err()
}

// Handle queues the invalidations for a single change.
func (b *Bridge) Handle(ev domain.ChangeEvent) {
	b.received.Add(1)

	b.debouncer.Add(ev.Invalidation())
}

// Flush applies queued invalidations now.
func (b *Bridge) Flush() {
	b.debouncer.Flush()
}

// Stats returns the bridge counters.
func (b *Bridge) Stats() BridgeStats {
	return BridgeStats{
		Received:    b.received.Load(),
		Invalidated: b.invalidated.Load(),
	}
}

func (b *Bridge) invalidate(inv domain.Invalidation) {
	total := 0
	for _, key := range inv.Keys {
		if b.invalidator.Invalidate(key) {
			total++
		}
	}
	for _, prefix := range inv.Prefixes {
		total += b.invalidator.InvalidatePrefix(prefix)
	}
	b.invalidated.Add(uint64(total))

	if total > 0 {
		targets := append(slices.Clone(inv.Keys), inv.Prefixes...)
		b.logger.Info(fmt.Sprintf("invalidated %d cached queries for %s", total, strings.Join(targets, ", ")))
	}
}
