package query

import (
	"context"
	"sync"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/google/uuid"
)

// Binding keeps a consumer's view of one query up to date.
//
// It seeds from the cache on Mount, starts the query and follows every change of
// the key until Unmount. Completions that arrive after Unmount or after the key
// was switched are ignored.
type Binding[T any] struct {
	exec *Executor
	opts domain.QueryOptions
	id   string

	mu        sync.Mutex
	key       string
	fetch     FetcherOf[T]
	result    Result[T]
	mounted   bool
	ctx       context.Context
	cancel    context.CancelFunc
	unsub     func()
	version   uint64
	pending   bool
	observers []func(Result[T])
}

// NewBinding creates an unmounted binding for key.
func NewBinding[T any](exec *Executor, key string, fetch FetcherOf[T], opts domain.QueryOptions) *Binding[T] {
	return &Binding[T]{
		exec:   exec,
		opts:   opts,
		id:     uuid.NewString(),
		key:    key,
		fetch:  fetch,
		result: Result[T]{Key: key, State: domain.StateEmpty},
	}
}

// ID identifies the binding in logs and traces.
func (b *Binding[T]) ID() string {
	return b.id
}

// Key returns the key the binding follows.
func (b *Binding[T]) Key() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.key
}

// Snapshot returns the current result.
func (b *Binding[T]) Snapshot() Result[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}

// OnChange registers fn to be called with every new result while mounted.
func (b *Binding[T]) OnChange(fn func(Result[T])) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// Mount starts following the key. Cached data is visible in Snapshot as soon as
// Mount returns, the query itself runs in the background.
func (b *Binding[T]) Mount(ctx context.Context) {
	b.mu.Lock()
	if b.mounted {
		b.mu.Unlock()
		return
	}
	b.mounted = true
	b.ctx, b.cancel = context.WithCancel(ctx)
	version := b.attachLocked()
	b.mu.Unlock()

	b.start(version, false)
}

// Refetch drops the cached value and queries it again. The result reports
// Loading until the new value or error arrives.
func (b *Binding[T]) Refetch() {
	b.mu.Lock()
	if !b.mounted {
		b.mu.Unlock()
		return
	}
	b.pending = true
	b.result.Loading = true
	version := b.version
	b.mu.Unlock()

	b.start(version, true)
}

// SetKey switches the binding to another key. Results still arriving for the old
// key are ignored.
func (b *Binding[T]) SetKey(key string, fetch FetcherOf[T]) {
	b.mu.Lock()
	if key == b.key {
		b.fetch = fetch
		b.mu.Unlock()
		return
	}
	b.key = key
	b.fetch = fetch
	b.pending = false
	if !b.mounted {
		b.version++
		b.result = Result[T]{Key: key, State: domain.StateEmpty}
		b.mu.Unlock()
		return
	}
	if b.unsub != nil {
		b.unsub()
	}
	version := b.attachLocked()
	b.mu.Unlock()

	b.start(version, false)
}

// Unmount stops following the key. Fetches already running complete and fill the
// cache but no longer touch the binding.
func (b *Binding[T]) Unmount() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mounted {
		return
	}
	b.mounted = false
	b.version++
	b.pending = false
	if b.cancel != nil {
		b.cancel()
	}
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}
}

// attachLocked subscribes to the current key and seeds the result from the cache.
func (b *Binding[T]) attachLocked() uint64 {
	b.version++
	version := b.version
	key := b.key

	b.unsub = b.exec.Subscribe(key, func(snap domain.Snapshot) {
		b.apply(version, snap)
	})

	if key == "" {
		b.result = Result[T]{Key: key, State: domain.StateErrorEmpty, Err: domain.ErrEmptyKey}
		return version
	}
	b.result = ResultOf[T](b.exec.State(key))
	return version
}

func (b *Binding[T]) start(version uint64, refetch bool) {
	b.mu.Lock()
	ctx, key, fetch := b.ctx, b.key, b.fetch
	b.mu.Unlock()

	if key == "" {
		return
	}

	go func() {
		var snap domain.Snapshot
		if refetch {
			snap = b.exec.Refetch(ctx, key, fetch.Erase(), b.opts)
		} else {
			snap = b.exec.Query(ctx, key, fetch.Erase(), b.opts)
		}
		if ctx.Err() != nil {
			return
		}

		b.mu.Lock()
		if version == b.version {
			b.pending = false
		}
		b.mu.Unlock()

		if snap.State == domain.StateErrorEmpty {
			b.apply(version, snap)
			return
		}
		b.apply(version, b.exec.State(key))
	}()
}

func (b *Binding[T]) apply(version uint64, snap domain.Snapshot) {
	b.mu.Lock()
	if !b.mounted || version != b.version || snap.Key != b.key {
		b.mu.Unlock()
		return
	}

	r := ResultOf[T](snap)
	if b.pending && !r.HasData && r.Err == nil {
		r.Loading = true
	}
	b.result = r
	observers := make([]func(Result[T]), len(b.observers))
	copy(observers, b.observers)
	b.mu.Unlock()

	for _, fn := range observers {
		fn(r)
	}
}
