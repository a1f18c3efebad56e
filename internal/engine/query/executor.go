// Package query implements stale-while-revalidate queries on top of the memory cache.
package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/inflight"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/memcache"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/retry"
	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

// Config holds the executor-wide query settings.
type Config struct {
	Policy       domain.CachePolicy
	Retry        domain.RetryOptions
	FetchTimeout time.Duration
}

// DefaultConfig returns the executor settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Policy:       domain.DefaultCachePolicy(),
		Retry:        domain.DefaultRetryOptions(),
		FetchTimeout: domain.DefaultFetchTimeout,
	}
}

// keyState is the per-key bookkeeping of fetch generations.
type keyState struct {
	// issued is the generation handed to the most recent fetch.
	issued uint64
	// applied is the generation of the data currently cached.
	applied uint64
	// floor discards every result with a generation at or below it.
	floor uint64
	// current is the generation of the attached fetch, zero when none runs.
	current uint64
	// running counts fetches, detached ones included.
	running int
	// revalidating is set while a background refresh is being scheduled.
	revalidating bool
	// background marks the attached fetch as a refresh of stale data.
	background bool
	err        error
	// cancels stops running generations, keyed by generation.
	cancels map[uint64]context.CancelCauseFunc
}

// Executor runs queries against the cache, deduplicating and retrying fetches.
type Executor struct {
	cache   *memcache.Cache
	group   *inflight.Group
	tracer  ports.Tracer
	logger  ports.Logger
	metrics ports.CacheMetrics
	cfg     Config

	mu   sync.Mutex
	keys map[string]*keyState
	subs map[string]map[string]func(domain.Snapshot)

	wg sync.WaitGroup
}

// NewExecutor creates a new Executor with the given dependencies.
func NewExecutor(
	cache *memcache.Cache,
	group *inflight.Group,
	tracer ports.Tracer,
	logger ports.Logger,
	metrics ports.CacheMetrics,
	cfg Config,
) *Executor {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = domain.DefaultFetchTimeout
	}
	return &Executor{
		cache:   cache,
		group:   group,
		tracer:  tracer,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
		keys:    make(map[string]*keyState),
		subs:    make(map[string]map[string]func(domain.Snapshot)),
	}
}

// Cache returns the underlying memory cache.
func (e *Executor) Cache() *memcache.Cache {
	return e.cache
}

// Query returns the cached value for key, fetching it when needed.
//
// A fresh entry is returned as is. A stale entry is returned immediately and
// refreshed in the background. A missing or expired entry is fetched while the
// caller waits, sharing the fetch with concurrent callers for the same key.
func (e *Executor) Query(ctx context.Context, key string, fetcher domain.Fetcher, opts domain.QueryOptions) domain.Snapshot {
	if err := validate(key, fetcher); err != nil {
		return domain.Snapshot{Key: key, State: domain.StateErrorEmpty, Err: err}
	}

	if entry, ok := e.cache.Peek(key); ok {
		if !entry.IsStaleAt(e.cache.Now()) {
			e.metrics.Hit(key)
			return e.snapshotOf(key, entry, domain.StateFresh)
		}

		e.metrics.StaleServed(key)
		snap := e.snapshotOf(key, entry, domain.StateStale)
		e.revalidate(ctx, key, fetcher, opts)
		return snap
	}

	e.metrics.Miss(key)
	v, err := e.fetch(ctx, key, fetcher, opts, false)
	if err != nil {
		return domain.Snapshot{Key: key, State: domain.StateErrorEmpty, Err: err}
	}
	snap := domain.Snapshot{Key: key, State: domain.StateFresh, Data: v}
	if entry, ok := e.cache.Peek(key); ok {
		snap.UpdatedAt = entry.WrittenAt
	}
	e.mu.Lock()
	if ks := e.keys[key]; ks != nil {
		snap.Generation = ks.applied
	}
	e.mu.Unlock()
	return snap
}

// Prefetch warms key when it is absent or stale. It waits for the fetch.
func (e *Executor) Prefetch(ctx context.Context, key string, fetcher domain.Fetcher, opts domain.QueryOptions) error {
	if err := validate(key, fetcher); err != nil {
		return err
	}
	if !e.cache.IsStale(key) {
		return nil
	}
	_, err := e.fetch(ctx, key, fetcher, opts, false)
	return err
}

// Refetch drops key and queries it again, always waiting for a new fetch.
func (e *Executor) Refetch(ctx context.Context, key string, fetcher domain.Fetcher, opts domain.QueryOptions) domain.Snapshot {
	e.Invalidate(key)
	return e.Query(ctx, key, fetcher, opts)
}

// State returns the last known state of key without fetching.
func (e *Executor) State(key string) domain.Snapshot {
	entry, cached := e.cache.Peek(key)
	now := e.cache.Now()

	e.mu.Lock()
	ks := e.keys[key]
	var (
		fetching   bool
		background bool
		lastErr    error
		gen        uint64
	)
	if ks != nil {
		fetching = ks.current != 0 || ks.revalidating
		background = ks.background || ks.revalidating
		lastErr = ks.err
		gen = ks.applied
	}
	e.mu.Unlock()

	snap := domain.Snapshot{Key: key, Generation: gen}
	if cached {
		snap.Data = entry.Data
		snap.UpdatedAt = entry.WrittenAt
	}

	switch {
	case cached && fetching && (background || entry.IsStaleAt(now)):
		snap.State = domain.StateRevalidating
	case cached && !entry.IsStaleAt(now):
		snap.State = domain.StateFresh
	case cached && lastErr != nil:
		snap.State = domain.StateErrorWithStaleData
		snap.Err = lastErr
	case cached:
		snap.State = domain.StateStale
	case fetching:
		snap.State = domain.StateFetching
	case lastErr != nil:
		snap.State = domain.StateErrorEmpty
		snap.Err = lastErr
	default:
		snap.State = domain.StateEmpty
	}
	return snap
}

// Subscribe registers fn to receive the snapshot of key after every change.
// fn runs on the goroutine that caused the change and must not block.
func (e *Executor) Subscribe(key string, fn func(domain.Snapshot)) (unsubscribe func()) {
	id := uuid.NewString()

	e.mu.Lock()
	if e.subs[key] == nil {
		e.subs[key] = make(map[string]func(domain.Snapshot))
	}
	e.subs[key][id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs[key], id)
			if len(e.subs[key]) == 0 {
				delete(e.subs, key)
			}
		})
	}
}

// Invalidate drops key and reports whether it was cached. The next query
// performs a cold fetch. Fetches started before the call stop retrying and their
// results are discarded.
func (e *Executor) Invalidate(key string) bool {
	e.mu.Lock()
	removed := e.cache.Invalidate(key)
	e.group.Forget(key)
	e.resetLocked(key)
	e.mu.Unlock()

	e.notify(key)
	return removed
}

// InvalidatePrefix drops every key starting with prefix and returns the number
// of cached entries removed.
func (e *Executor) InvalidatePrefix(prefix string) int {
	e.mu.Lock()
	n := e.cache.InvalidatePrefix(prefix)
	e.group.ForgetPrefix(prefix)
	for key := range e.keys {
		if strings.HasPrefix(key, prefix) {
			e.resetLocked(key)
		}
	}
	keys := e.subscribedLocked(func(k string) bool { return strings.HasPrefix(k, prefix) })
	e.mu.Unlock()

	for _, key := range keys {
		e.notify(key)
	}
	return n
}

// Clear drops every key.
func (e *Executor) Clear() {
	e.mu.Lock()
	e.cache.Clear()
	e.group.ForgetPrefix("")
	for key := range e.keys {
		e.resetLocked(key)
	}
	keys := e.subscribedLocked(func(string) bool { return true })
	e.mu.Unlock()

	for _, key := range keys {
		e.notify(key)
	}
}

// Wait blocks until every background revalidation has settled.
func (e *Executor) Wait() {
	e.wg.Wait()
}

func (e *Executor) resetLocked(key string) {
	ks := e.keys[key]
	if ks == nil {
		return
	}
	if ks.running == 0 && !ks.revalidating {
		delete(e.keys, key)
		return
	}
	ks.floor = ks.issued
	for _, cancel := range ks.cancels {
		cancel(domain.ErrSuperseded)
	}
	ks.current = 0
	ks.background = false
	ks.err = nil
}

func (e *Executor) subscribedLocked(match func(string) bool) []string {
	var keys []string
	for key := range e.subs {
		if match(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (e *Executor) stateLocked(key string) *keyState {
	ks := e.keys[key]
	if ks == nil {
		ks = &keyState{}
		e.keys[key] = ks
	}
	return ks
}

// revalidate refreshes key in the background unless a fetch is already running.
func (e *Executor) revalidate(ctx context.Context, key string, fetcher domain.Fetcher, opts domain.QueryOptions) {
	e.mu.Lock()
	ks := e.stateLocked(key)
	if ks.current != 0 || ks.revalidating {
		e.mu.Unlock()
		return
	}
	ks.revalidating = true
	e.mu.Unlock()

	e.notify(key)

	base := context.WithoutCancel(ctx)
	e.wg.Go(func() {
		defer func() {
			e.mu.Lock()
			if ks := e.keys[key]; ks != nil {
				ks.revalidating = false
			}
			e.mu.Unlock()
		}()
		_, _ = e.fetch(base, key, fetcher, opts, true)
	})
}

// fetch runs the shared fetch for key and waits for it or for ctx.
func (e *Executor) fetch(
	ctx context.Context,
	key string,
	fetcher domain.Fetcher,
	opts domain.QueryOptions,
	background bool,
) (any, error) {
	base := context.WithoutCancel(ctx)
	for {
		v, err, _ := e.group.Do(ctx, key, func() (any, error) {
			return e.run(base, key, fetcher, opts, background)
		})
		// A foreground caller waits for the fetch that replaced an invalidated one.
		if background || ctx.Err() != nil || !errors.Is(err, domain.ErrSuperseded) {
			return v, err
		}
	}
}

// run performs one generation of fetching for key, retries included.
func (e *Executor) run(
	ctx context.Context,
	key string,
	fetcher domain.Fetcher,
	opts domain.QueryOptions,
	background bool,
) (any, error) {
	gen, genCtx := e.begin(ctx, key, background)
	e.notify(key)

	ctx, cancel := context.WithTimeout(genCtx, e.cfg.FetchTimeout)
	defer cancel()

	ctx, span := e.tracer.Start(ctx, "query.fetch",
		ports.WithAttribute("cache.key", key),
		ports.WithAttribute("cache.generation", gen),
		ports.WithAttribute("cache.background", background),
	)
	defer span.End()

	retryOpts := e.cfg.Retry
	if opts.Retry != nil {
		retryOpts = *opts.Retry
	}
	policy := retry.New(retryOpts, retry.WithNotify(func(attempt int, err error, delay time.Duration) {
		e.metrics.RetryScheduled(key, attempt, delay)
		span.SetAttribute("retry.attempt", attempt)
		span.SetAttribute("retry.last_error", err.Error())
	}))

	start := e.cache.Now()
	v, err := policy.Do(ctx, fetcher)
	if err != nil && errors.Is(context.Cause(genCtx), domain.ErrSuperseded) {
		err = domain.ErrSuperseded
	}
	e.metrics.FetchCompleted(key, e.cache.Now().Sub(start), err)

	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrFetchFailed.Error()), "key", key)
		span.RecordError(err)
		if e.fail(key, gen, err) && background {
			e.logger.Warn(zerr.Wrap(err, domain.ErrRevalidationFailed.Error()).Error())
		}
		e.notify(key)
		return nil, err
	}

	staleAfter := e.cfg.Policy.StaleAfterFor(key)
	if opts.StaleAfter > 0 {
		staleAfter = opts.StaleAfter
	}
	if !e.commit(key, gen, v, staleAfter) {
		e.metrics.GenerationDiscarded(key)
		span.SetAttribute("cache.discarded", true)
	}
	e.notify(key)
	return v, nil
}

// begin issues the next generation for key. The returned context is cancelled
// with ErrSuperseded when key is invalidated before the generation finishes.
func (e *Executor) begin(ctx context.Context, key string, background bool) (uint64, context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ks := e.stateLocked(key)
	ks.issued++
	ks.current = ks.issued
	ks.running++
	ks.background = background
	ks.revalidating = false

	genCtx, cancel := context.WithCancelCause(ctx)
	if ks.cancels == nil {
		ks.cancels = make(map[uint64]context.CancelCauseFunc)
	}
	ks.cancels[ks.issued] = cancel
	return ks.issued, genCtx
}

// commit stores v when gen is newer than both the cached data and the last
// invalidation. It reports whether the value was stored.
func (e *Executor) commit(key string, gen uint64, v any, staleAfter time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ks := e.stateLocked(key)
	e.finishLocked(ks, gen)

	if gen <= ks.applied || gen <= ks.floor {
		return false
	}
	e.cache.Set(key, v, staleAfter)
	ks.applied = gen
	ks.err = nil
	return true
}

// fail records err for key when gen is still relevant. It reports whether the
// error was recorded.
func (e *Executor) fail(key string, gen uint64, err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ks := e.stateLocked(key)
	e.finishLocked(ks, gen)

	if gen <= ks.applied || gen <= ks.floor {
		return false
	}
	ks.err = err
	return true
}

func (e *Executor) finishLocked(ks *keyState, gen uint64) {
	if cancel, ok := ks.cancels[gen]; ok {
		cancel(nil)
		delete(ks.cancels, gen)
	}
	ks.running--
	if ks.current == gen {
		ks.current = 0
		ks.background = false
	}
}

func (e *Executor) notify(key string) {
	e.mu.Lock()
	subs := e.subs[key]
	fns := make([]func(domain.Snapshot), 0, len(subs))
	for _, fn := range subs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	if len(fns) == 0 {
		return
	}
	snap := e.State(key)
	for _, fn := range fns {
		fn(snap)
	}
}

func (e *Executor) snapshotOf(key string, entry domain.CacheEntry, state domain.QueryState) domain.Snapshot {
	snap := domain.Snapshot{Key: key, State: state, Data: entry.Data, UpdatedAt: entry.WrittenAt}

	e.mu.Lock()
	if ks := e.keys[key]; ks != nil {
		snap.Generation = ks.applied
		if state == domain.StateStale && ks.err != nil {
			snap.State = domain.StateErrorWithStaleData
			snap.Err = ks.err
		}
	}
	e.mu.Unlock()
	return snap
}

func validate(key string, fetcher domain.Fetcher) error {
	if key == "" {
		return domain.ErrEmptyKey
	}
	if fetcher == nil {
		return zerr.With(zerr.Wrap(domain.ErrNilFetcher, "query rejected"), "key", key)
	}
	return nil
}
