package app

import (
	"context"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/query"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// prefetchConcurrency bounds the fetches a single prefetch call runs at once.
const prefetchConcurrency = 4

// Catalog serves the marketplace queries through the query executor.
type Catalog struct {
	exec   *query.Executor
	source ports.CatalogSource
	logger ports.Logger
}

// NewCatalog creates a Catalog reading from source.
func NewCatalog(exec *query.Executor, source ports.CatalogSource, logger ports.Logger) *Catalog {
	return &Catalog{exec: exec, source: source, logger: logger}
}

// ProductsBySeller returns a seller's products.
func (c *Catalog) ProductsBySeller(ctx context.Context, sellerID string) query.Result[[]domain.Product] {
	return query.Get(ctx, c.exec, domain.ProductsBySellerKey(sellerID), c.productsBySeller(sellerID), domain.QueryOptions{})
}

// Product returns a single product page.
func (c *Catalog) Product(ctx context.Context, productID string) query.Result[domain.Product] {
	return query.Get(ctx, c.exec, domain.ProductKey(productID), c.product(productID), domain.QueryOptions{})
}

// Products returns a filtered product listing.
func (c *Catalog) Products(ctx context.Context, filter domain.ProductFilter) query.Result[[]domain.Product] {
	return query.Get(ctx, c.exec, domain.ProductListKey(filter), c.products(filter), domain.QueryOptions{})
}

// ShopBySeller returns a seller's shop profile.
func (c *Catalog) ShopBySeller(ctx context.Context, sellerID string) query.Result[domain.Shop] {
	return query.Get(ctx, c.exec, domain.ShopBySellerKey(sellerID), c.shopBySeller(sellerID), domain.QueryOptions{})
}

// Conversations returns a user's conversations.
func (c *Catalog) Conversations(ctx context.Context, userID string) query.Result[[]domain.Conversation] {
	return query.Get(ctx, c.exec, domain.ConversationsKey(userID), c.conversations(userID), domain.QueryOptions{})
}

// UpdateProduct stores update and drops every cached query the product appears in.
func (c *Catalog) UpdateProduct(ctx context.Context, productID string, update domain.ProductUpdate) (domain.Product, error) {
	p, err := c.source.UpdateProduct(ctx, productID, update)
	if err != nil {
		return domain.Product{}, zerr.With(err, "product_id", productID)
	}

	change := domain.ChangeEvent{
		Table:  domain.TableProducts,
		Op:     domain.OpUpdate,
		Record: map[string]any{"id": productID, "seller_id": p.SellerID},
	}
	inv := change.Invalidation()
	for _, key := range inv.Keys {
		c.exec.Invalidate(key)
	}
	for _, prefix := range inv.Prefixes {
		c.exec.InvalidatePrefix(prefix)
	}
	return p, nil
}

// PrefetchSeller warms a seller's products and shop in parallel. Failures are
// logged, a later query fetches again.
func (c *Catalog) PrefetchSeller(ctx context.Context, sellerID string) {
	var g errgroup.Group
	g.Go(func() error {
		c.warn(query.Prefetch(ctx, c.exec, domain.ProductsBySellerKey(sellerID),
			c.productsBySeller(sellerID), domain.QueryOptions{}))
		return nil
	})
	g.Go(func() error {
		c.warn(query.Prefetch(ctx, c.exec, domain.ShopBySellerKey(sellerID),
			c.shopBySeller(sellerID), domain.QueryOptions{}))
		return nil
	})
	_ = g.Wait()
}

// PrefetchProducts warms the pages of the given products.
func (c *Catalog) PrefetchProducts(ctx context.Context, productIDs []string) {
	var g errgroup.Group
	g.SetLimit(prefetchConcurrency)
	for _, id := range productIDs {
		g.Go(func() error {
			c.warn(query.Prefetch(ctx, c.exec, domain.ProductKey(id), c.product(id), domain.QueryOptions{}))
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Catalog) warn(err error) {
	if err == nil {
		return
	}
	c.logger.Warn(zerr.Wrap(err, "prefetch failed").Error())
}

func (c *Catalog) productsBySeller(sellerID string) query.FetcherOf[[]domain.Product] {
	return func(ctx context.Context) ([]domain.Product, error) {
		return c.source.ProductsBySeller(ctx, sellerID)
	}
}

func (c *Catalog) product(productID string) query.FetcherOf[domain.Product] {
	return func(ctx context.Context) (domain.Product, error) {
		return c.source.Product(ctx, productID)
	}
}

func (c *Catalog) products(filter domain.ProductFilter) query.FetcherOf[[]domain.Product] {
	return func(ctx context.Context) ([]domain.Product, error) {
		return c.source.Products(ctx, filter)
	}
}

func (c *Catalog) shopBySeller(sellerID string) query.FetcherOf[domain.Shop] {
	return func(ctx context.Context) (domain.Shop, error) {
		return c.source.ShopBySeller(ctx, sellerID)
	}
}

func (c *Catalog) conversations(userID string) query.FetcherOf[[]domain.Conversation] {
	return func(ctx context.Context) ([]domain.Conversation, error) {
		return c.source.Conversations(ctx, userID)
	}
}
