// Package supabase reads and writes marketplace records through the PostgREST
// API of a Supabase project.
package supabase

import (
	"context"
	"fmt"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/sony/gobreaker"
	supabasego "github.com/supabase-community/supabase-go"
	postgrest "github.com/supabase-community/postgrest-go"
	"go.trai.ch/zerr"
)

// Platform tables read by the source.
const (
	tableProducts      = domain.TableProducts
	tableShops         = domain.TableShops
	tableConversations = "conversations"
)

// RestClient builds PostgREST queries. Both *supabase.Client and *postgrest.Client
// satisfy it.
type RestClient interface {
	From(table string) *postgrest.QueryBuilder
}

// Source implements ports.CatalogSource on top of PostgREST.
type Source struct {
	rest    RestClient
	breaker *gobreaker.CircuitBreaker
	logger  ports.Logger
}

// New connects to the Supabase project described by settings.
func New(settings domain.PlatformSettings, logger ports.Logger) (*Source, error) {
	if settings.URL == "" {
		return nil, domain.ErrMissingPlatformURL
	}

	client, err := supabasego.NewClient(settings.URL, settings.APIKey, &supabasego.ClientOptions{
		Schema: settings.Schema,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrPlatformClientFailed.Error()), "url", settings.URL)
	}

	return NewWithClient(client, settings, logger), nil
}

// NewWithClient wraps an existing client. The breaker settings are read from settings.
func NewWithClient(rest RestClient, settings domain.PlatformSettings, logger ports.Logger) *Source {
	failures := settings.BreakerFailures
	if failures == 0 {
		failures = 1
	}

	s := &Source{rest: rest, logger: logger}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "supabase",
		Timeout: settings.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn(fmt.Sprintf("circuit breaker %s changed from %s to %s", name, from, to))
		},
		// A rejected request proves the platform is up.
		IsSuccessful: func(err error) bool {
			return err == nil || !domain.IsRetryable(err)
		},
	})
	return s
}

// ProductsBySeller lists a seller's products, newest first.
func (s *Source) ProductsBySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	return execute(ctx, s, tableProducts, func() ([]domain.Product, error) {
		var products []domain.Product
		_, err := s.rest.From(tableProducts).
			Select("*", "", false).
			Eq("seller_id", sellerID).
			Order("created_at", &postgrest.OrderOpts{Ascending: false}).
			ExecuteTo(&products)
		return products, err
	})
}

// Product returns a single product.
func (s *Source) Product(ctx context.Context, productID string) (domain.Product, error) {
	return execute(ctx, s, tableProducts, func() (domain.Product, error) {
		var product domain.Product
		_, err := s.rest.From(tableProducts).
			Select("*", "", false).
			Eq("id", productID).
			Single().
			ExecuteTo(&product)
		return product, err
	})
}

// Products lists active products matching filter, newest first.
func (s *Source) Products(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return execute(ctx, s, tableProducts, func() ([]domain.Product, error) {
		q := s.rest.From(tableProducts).
			Select("*", "", false).
			Eq("is_active", "true")
		if filter.Category != "" {
			q = q.Eq("category", filter.Category)
		}
		if filter.Search != "" {
			q = q.Ilike("title", "*"+filter.Search+"*")
		}
		q = q.Order("created_at", &postgrest.OrderOpts{Ascending: false})
		if filter.Limit > 0 {
			q = q.Range(filter.Offset, filter.Offset+filter.Limit-1, "")
		}

		var products []domain.Product
		_, err := q.ExecuteTo(&products)
		return products, err
	})
}

// ShopBySeller returns a seller's shop.
func (s *Source) ShopBySeller(ctx context.Context, sellerID string) (domain.Shop, error) {
	return execute(ctx, s, tableShops, func() (domain.Shop, error) {
		var shop domain.Shop
		_, err := s.rest.From(tableShops).
			Select("*", "", false).
			Eq("seller_id", sellerID).
			Single().
			ExecuteTo(&shop)
		return shop, err
	})
}

// Conversations lists the conversations a user takes part in, most recent first.
func (s *Source) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return execute(ctx, s, tableConversations, func() ([]domain.Conversation, error) {
		var conversations []domain.Conversation
		_, err := s.rest.From(tableConversations).
			Select("*", "", false).
			Or(fmt.Sprintf("buyer_id.eq.%s,seller_id.eq.%s", userID, userID), "").
			Order("last_message_at", &postgrest.OrderOpts{Ascending: false}).
			ExecuteTo(&conversations)
		return conversations, err
	})
}

// UpdateProduct applies update and returns the stored product.
func (s *Source) UpdateProduct(
	ctx context.Context,
	productID string,
	update domain.ProductUpdate,
) (domain.Product, error) {
	if update.IsEmpty() {
		return domain.Product{}, zerr.With(zerr.Wrap(domain.ErrValidation, "product update is empty"), "id", productID)
	}

	return execute(ctx, s, tableProducts, func() (domain.Product, error) {
		var product domain.Product
		_, err := s.rest.From(tableProducts).
			Update(update, "representation", "").
			Eq("id", productID).
			Single().
			ExecuteTo(&product)
		return product, err
	})
}

// execute runs a blocking PostgREST call through the breaker. The client has no
// context support, so a cancelled ctx abandons the call without waiting for it.
func execute[T any](ctx context.Context, s *Source, table string, run func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := s.breaker.Execute(func() (any, error) {
			v, err := run()
			if err != nil {
				return nil, classify(err)
			}
			return v, nil
		})
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return zero, zerr.With(breakerError(r.err), "table", table)
		}
		return r.value.(T), nil
	}
}
