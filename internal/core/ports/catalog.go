package ports

import (
	"context"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
)

// CatalogSource reads and writes marketplace records on the remote platform.
//
//go:generate mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks
type CatalogSource interface {
	// ProductsBySeller lists a seller's products, newest first.
	ProductsBySeller(ctx context.Context, sellerID string) ([]domain.Product, error)
	// Product returns a single product. It returns domain.ErrNotFound when absent.
	Product(ctx context.Context, productID string) (domain.Product, error)
	// Products lists active products matching the filter.
	Products(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	// ShopBySeller returns a seller's shop. It returns domain.ErrNotFound when absent.
	ShopBySeller(ctx context.Context, sellerID string) (domain.Shop, error)
	// Conversations lists a user's conversations, most recent first.
	Conversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	// UpdateProduct applies an update and returns the stored product.
	UpdateProduct(ctx context.Context, productID string, update domain.ProductUpdate) (domain.Product, error)
}
