package supabase

import (
	"context"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
)

// Unconfigured is the catalog source used when no platform URL is set. Every call
// fails with a permanent ErrMissingPlatformURL.
type Unconfigured struct{}

func missingURL() error {
	return domain.Permanent(domain.ErrMissingPlatformURL)
}

// ProductsBySeller implements ports.CatalogSource.
func (Unconfigured) ProductsBySeller(context.Context, string) ([]domain.Product, error) {
	return nil, missingURL()
}

// Product implements ports.CatalogSource.
func (Unconfigured) Product(context.Context, string) (domain.Product, error) {
	return domain.Product{}, missingURL()
}

// Products implements ports.CatalogSource.
func (Unconfigured) Products(context.Context, domain.ProductFilter) ([]domain.Product, error) {
	return nil, missingURL()
}

// ShopBySeller implements ports.CatalogSource.
func (Unconfigured) ShopBySeller(context.Context, string) (domain.Shop, error) {
	return domain.Shop{}, missingURL()
}

// Conversations implements ports.CatalogSource.
func (Unconfigured) Conversations(context.Context, string) ([]domain.Conversation, error) {
	return nil, missingURL()
}

// UpdateProduct implements ports.CatalogSource.
func (Unconfigured) UpdateProduct(context.Context, string, domain.ProductUpdate) (domain.Product, error) {
	return domain.Product{}, missingURL()
}
