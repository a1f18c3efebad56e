// Package app implements the application layer for swr.
package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/config"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/linear"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/metrics"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/realtime"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/telemetry"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/query"
	"go.trai.ch/zerr"
)

// QueryKind names a marketplace query family.
type QueryKind string

const (
	// KindSellerProducts lists a seller's products.
	KindSellerProducts QueryKind = "seller-products"
	// KindProduct reads a single product.
	KindProduct QueryKind = "product"
	// KindProducts lists active products matching a filter.
	KindProducts QueryKind = "products"
	// KindShop reads a seller's shop.
	KindShop QueryKind = "shop"
	// KindConversations lists a user's conversations.
	KindConversations QueryKind = "conversations"
)

// QueryRequest describes a query run from the command line.
type QueryRequest struct {
	Kind QueryKind
	// ID is the seller, product or user the query is about.
	ID     string
	Filter domain.ProductFilter
	// Repeat runs the query again this many times, Interval apart.
	Repeat   int
	Interval time.Duration
	Stats    bool
}

// PrefetchRequest describes the data to warm.
type PrefetchRequest struct {
	SellerID   string
	ProductIDs []string
	Stats      bool
}

// WatchRequest describes a query followed while change events arrive.
type WatchRequest struct {
	Query QueryRequest
	// Changes carries one realtime message per line. Nil follows the query until
	// the context is done.
	Changes io.Reader
}

// App represents the main application logic.
type App struct {
	catalog   *Catalog
	exec      *query.Executor
	bridge    *realtime.Bridge
	collector *metrics.Collector
	journal   *telemetry.Bridge
	settings  *domain.Settings
	logger    ports.Logger
	renderer  *linear.Renderer
}

// New creates a new App instance.
func New(
	catalog *Catalog,
	exec *query.Executor,
	collector *metrics.Collector,
	journal *telemetry.Bridge,
	settings *domain.Settings,
	log ports.Logger,
) *App {
	return &App{
		catalog:   catalog,
		exec:      exec,
		bridge:    realtime.NewBridge(exec, log, settings.DebounceWindow),
		collector: collector,
		journal:   journal,
		settings:  settings,
		logger:    log,
		renderer:  linear.NewRenderer(nil, nil),
	}
}

// WithRenderer replaces the renderer writing to the process streams.
func (a *App) WithRenderer(r *linear.Renderer) *App {
	a.renderer = r
	return a
}

// Catalog returns the query layer of the app.
func (a *App) Catalog() *Catalog {
	return a.catalog
}

// Query runs req and prints every result. It fails when the last run has
// neither data nor a cached fallback.
func (a *App) Query(ctx context.Context, req QueryRequest) error {
	run, err := a.runner(req)
	if err != nil {
		return err
	}

	var last linear.Result
	for i := 0; i <= req.Repeat; i++ {
		if i > 0 {
			if err := sleep(ctx, req.Interval); err != nil {
				return err
			}
		}
		last = run(ctx)
		if err := a.renderer.OnResult(last); err != nil {
			return err
		}
	}

	// Let background revalidations settle before reporting.
	a.exec.Wait()
	if req.Stats {
		a.printStats()
	}
	if last.State == domain.StateErrorEmpty {
		return errors.Join(domain.ErrQueryFailed, last.Err)
	}
	return nil
}

// Prefetch warms the requested data and prints the resulting cache states.
// Fetch failures are reported through the states, not as an error.
func (a *App) Prefetch(ctx context.Context, req PrefetchRequest) error {
	var keys []string
	if req.SellerID != "" {
		a.catalog.PrefetchSeller(ctx, req.SellerID)
		keys = append(keys, domain.ProductsBySellerKey(req.SellerID), domain.ShopBySellerKey(req.SellerID))
	}
	if len(req.ProductIDs) > 0 {
		a.catalog.PrefetchProducts(ctx, req.ProductIDs)
		for _, id := range req.ProductIDs {
			keys = append(keys, domain.ProductKey(id))
		}
	}
	if len(keys) == 0 {
		return zerr.Wrap(domain.ErrValidation, "nothing to prefetch")
	}

	for _, key := range keys {
		snap := a.exec.State(key)
		// States only, the data is not printed.
		snap.Data = nil
		if err := a.renderer.OnResult(fromSnapshot(snap)); err != nil {
			return err
		}
	}
	if req.Stats {
		a.printStats()
	}
	return nil
}

// UpdateProduct stores an update and prints the stored product.
func (a *App) UpdateProduct(ctx context.Context, productID string, update domain.ProductUpdate) error {
	p, err := a.catalog.UpdateProduct(ctx, productID, update)
	if err != nil {
		return err
	}
	return a.renderer.OnUpdated(p)
}

// Watch follows a query while change events invalidate it, printing every
// result. It returns once the changes are exhausted or ctx is done.
func (a *App) Watch(ctx context.Context, req WatchRequest) error {
	run, err := a.runner(req.Query)
	if err != nil {
		return err
	}
	follower, err := a.follow(req.Query)
	if err != nil {
		return err
	}

	feed := realtime.NewChannelFeed(realtime.DefaultFeedBuffer)
	if req.Changes != nil {
		go a.pump(ctx, realtime.NewReaderFeed(req.Changes, a.logger), feed)
	}

	follower.Mount(ctx)
	err = a.bridge.Run(ctx, feed)
	follower.Unmount()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}

	// The changes are exhausted, print the settled result.
	if err := a.renderer.OnResult(run(ctx)); err != nil {
		return err
	}
	a.exec.Wait()
	a.renderer.OnInvalidations(a.bridge.Stats())
	if req.Query.Stats {
		a.printStats()
	}
	return nil
}

// ShowConfig writes the resolved settings to w.
func (a *App) ShowConfig(w io.Writer) error {
	data, err := config.Marshal(a.settings)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (a *App) printStats() {
	s, err := a.collector.Stats()
	if err != nil {
		a.logger.Error(err)
		return
	}
	a.renderer.OnStats(s, a.journal.Recent())
}

// pump copies src into feed and closes it once src is exhausted.
func (a *App) pump(ctx context.Context, src ports.ChangeFeed, feed *realtime.ChannelFeed) {
	defer feed.Close()
	for ev := range src.Events(ctx) {
		if err := feed.Publish(ctx, ev); err != nil {
			return
		}
	}
}

// runner resolves req into a function running the query once.
func (a *App) runner(req QueryRequest) (func(context.Context) linear.Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	c := a.catalog
	switch req.Kind {
	case KindSellerProducts:
		return func(ctx context.Context) linear.Result { return resultOf(c.ProductsBySeller(ctx, req.ID)) }, nil
	case KindProduct:
		return func(ctx context.Context) linear.Result { return resultOf(c.Product(ctx, req.ID)) }, nil
	case KindProducts:
		return func(ctx context.Context) linear.Result { return resultOf(c.Products(ctx, req.Filter)) }, nil
	case KindShop:
		return func(ctx context.Context) linear.Result { return resultOf(c.ShopBySeller(ctx, req.ID)) }, nil
	default:
		return func(ctx context.Context) linear.Result { return resultOf(c.Conversations(ctx, req.ID)) }, nil
	}
}

// follower is the part of a query binding Watch drives.
type follower interface {
	Mount(ctx context.Context)
	Unmount()
}

func (a *App) follow(req QueryRequest) (follower, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	c := a.catalog
	switch req.Kind {
	case KindSellerProducts:
		return bind(a, domain.ProductsBySellerKey(req.ID), c.productsBySeller(req.ID)), nil
	case KindProduct:
		return bind(a, domain.ProductKey(req.ID), c.product(req.ID)), nil
	case KindProducts:
		return bind(a, domain.ProductListKey(req.Filter), c.products(req.Filter)), nil
	case KindShop:
		return bind(a, domain.ShopBySellerKey(req.ID), c.shopBySeller(req.ID)), nil
	default:
		return bind(a, domain.ConversationsKey(req.ID), c.conversations(req.ID)), nil
	}
}

// bind creates a binding that prints every result and fetches again once its
// key has been invalidated.
func bind[T any](a *App, key string, fetch query.FetcherOf[T]) *query.Binding[T] {
	b := query.NewBinding(a.exec, key, fetch, domain.QueryOptions{})
	b.OnChange(func(r query.Result[T]) {
		if err := a.renderer.OnResult(resultOf(r)); err != nil {
			a.logger.Error(err)
		}
		if r.State == domain.StateEmpty && !r.Loading {
			b.Refetch()
		}
	})
	return b
}

func (r QueryRequest) validate() error {
	switch r.Kind {
	case KindSellerProducts, KindProduct, KindShop, KindConversations:
		if r.ID == "" {
			return zerr.With(zerr.Wrap(domain.ErrValidation, "query needs an id"), "kind", string(r.Kind))
		}
	case KindProducts:
	default:
		return zerr.With(zerr.Wrap(domain.ErrUnknownResource, "unsupported query"), "kind", string(r.Kind))
	}
	if r.Repeat < 0 {
		return zerr.With(zerr.Wrap(domain.ErrValidation, "repeat must not be negative"), "repeat", r.Repeat)
	}
	return nil
}

func resultOf[T any](r query.Result[T]) linear.Result {
	res := linear.Result{
		Key:       r.Key,
		State:     r.State,
		Err:       r.Err,
		Loading:   r.Loading,
		UpdatedAt: r.UpdatedAt,
	}
	if r.HasData {
		res.Data = r.Data
	}
	return res
}

func fromSnapshot(snap domain.Snapshot) linear.Result {
	return linear.Result{
		Key:       snap.Key,
		State:     snap.State,
		Data:      snap.Data,
		Err:       snap.Err,
		Loading:   snap.Loading(),
		UpdatedAt: snap.UpdatedAt,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
