package realtime

import (
	"slices"
	"strings"
	"sync"
	"time"
	"unique"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
)

// target is a queued invalidation, either one exact key or a key prefix.
type target struct {
	value  string
	prefix bool
}

// Debouncer coalesces bursts of invalidations into one batch per window.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[target]]struct{}
	timer    *time.Timer
	window   time.Duration
	callback func(domain.Invalidation)
}

// NewDebouncer creates a debouncer that calls callback once the window has passed
// without new invalidations. A window of zero or less dispatches every Add directly.
func NewDebouncer(window time.Duration, callback func(domain.Invalidation)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[target]]struct{}),
		window:   window,
		callback: callback,
	}
}

// Add queues inv and restarts the window.
func (d *Debouncer) Add(inv domain.Invalidation) {
	if inv.IsEmpty() {
		return
	}
	if d.window <= 0 {
		d.dispatch(collapse(inv))
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, k := range inv.Keys {
		d.pending[unique.Make(target{value: k})] = struct{}{}
	}
	for _, p := range inv.Prefixes {
		d.pending[unique.Make(target{value: p, prefix: true})] = struct{}{}
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Pending returns the number of queued keys and prefixes.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	// Flush may have taken the batch already.
	if len(d.pending) == 0 {
		d.timer = nil
		d.mu.Unlock()
		return
	}
	batch := d.drainLocked()
	d.timer = nil
	d.mu.Unlock()

	go d.dispatch(batch)
}

// Flush dispatches the pending batch now and waits for the callback to return.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			// The timer owns this batch.
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	batch := d.drainLocked()
	d.mu.Unlock()

	d.dispatch(batch)
}

func (d *Debouncer) drainLocked() domain.Invalidation {
	var inv domain.Invalidation
	for h := range d.pending {
		t := h.Value()
		if t.prefix {
			inv.Prefixes = append(inv.Prefixes, t.value)
		} else {
			inv.Keys = append(inv.Keys, t.value)
		}
	}
	clear(d.pending)
	return collapse(inv)
}

func (d *Debouncer) dispatch(inv domain.Invalidation) {
	if !inv.IsEmpty() && d.callback != nil {
		d.callback(inv)
	}
}

// collapse sorts inv and drops prefixes covered by a shorter prefix and keys
// covered by any prefix.
func collapse(inv domain.Invalidation) domain.Invalidation {
	var out domain.Invalidation

	prefixes := slices.Clone(inv.Prefixes)
	slices.Sort(prefixes)
	prefixes = slices.Compact(prefixes)
	for _, p := range prefixes {
		if len(out.Prefixes) > 0 && strings.HasPrefix(p, out.Prefixes[len(out.Prefixes)-1]) {
			continue
		}
		out.Prefixes = append(out.Prefixes, p)
	}

	keys := slices.Clone(inv.Keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)
	for _, k := range keys {
		covered := slices.ContainsFunc(out.Prefixes, func(p string) bool {
			return strings.HasPrefix(k, p)
		})
		if !covered {
			out.Keys = append(out.Keys, k)
		}
	}
	return out
}
