package app_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/linear"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/metrics"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/telemetry"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/app"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type harness struct {
	app    *app.App
	source *mocks.MockCatalogSource
	logger *mocks.MockLogger
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, settings *domain.Settings) *harness {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	ctrl := gomock.NewController(t)
	h := &harness{
		source: mocks.NewMockCatalogSource(ctrl),
		logger: mocks.NewMockLogger(ctrl),
		stdout: new(bytes.Buffer),
		stderr: new(bytes.Buffer),
	}

	collector := metrics.NewCollector()
	journal := telemetry.NewBridge(16)
	tracer := telemetry.NewOTelTracerFrom(telemetry.NewProvider(journal), "test")

	exec := app.NewExecutor(settings, tracer, h.logger, collector)
	h.app = app.New(app.NewCatalog(exec, h.source, h.logger), exec, collector, journal, settings, h.logger).
		WithRenderer(linear.NewRenderer(h.stdout, h.stderr))
	return h
}

func TestApp_Query_SecondRunIsAHit(t *testing.T) {
	h := newHarness(t, testSettings())
	h.source.EXPECT().ProductsBySeller(gomock.Any(), "42").Return(sellerProducts(), nil).Times(1)

	err := h.app.Query(t.Context(), app.QueryRequest{
		Kind:   app.KindSellerProducts,
		ID:     "42",
		Repeat: 1,
		Stats:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(h.stdout.String(), `"title": "Kente scarf"`))
	assert.Equal(t, 2, strings.Count(h.stderr.String(), "[products:seller:42]"))
	assert.Contains(t, h.stderr.String(), "1 hits, 0 stale, 1 misses")
	assert.Contains(t, h.stderr.String(), "1 fetches, 0 failed")
	assert.Contains(t, h.stderr.String(), "products:seller:42 gen=1 attempts=1 cold")
}

func TestApp_Query_StaleRunRevalidates(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		settings := testSettings()
		settings.Cache.StaleAfter = 500 * time.Millisecond
		h := newHarness(t, settings)

		h.source.EXPECT().Product(gomock.Any(), "p1").Return(sellerProducts()[0], nil).Times(2)

		err := h.app.Query(t.Context(), app.QueryRequest{
			Kind:     app.KindProduct,
			ID:       "p1",
			Repeat:   1,
			Interval: time.Second,
			Stats:    true,
		})
		require.NoError(t, err)

		assert.Contains(t, h.stderr.String(), "Stale")
		assert.Contains(t, h.stderr.String(), "0 hits, 1 stale, 1 misses")
		assert.Contains(t, h.stderr.String(), "product:p1 gen=2 attempts=1 background")
	})
}

func TestApp_Query_ErrorWithoutData(t *testing.T) {
	h := newHarness(t, testSettings())
	h.source.EXPECT().ShopBySeller(gomock.Any(), "7").
		Return(domain.Shop{}, zerr.Wrap(domain.ErrNotFound, "no shop"))

	err := h.app.Query(t.Context(), app.QueryRequest{Kind: app.KindShop, ID: "7"})
	require.ErrorIs(t, err, domain.ErrQueryFailed)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, h.stderr.String(), "ErrorEmpty")
	assert.Empty(t, h.stdout.String())
}

func TestApp_Query_InvalidRequests(t *testing.T) {
	h := newHarness(t, testSettings())

	tests := []struct {
		name string
		req  app.QueryRequest
		want error
	}{
		{"unknown kind", app.QueryRequest{Kind: "orders", ID: "1"}, domain.ErrUnknownResource},
		{"missing id", app.QueryRequest{Kind: app.KindProduct}, domain.ErrValidation},
		{"negative repeat", app.QueryRequest{Kind: app.KindProducts, Repeat: -1}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.app.Query(t.Context(), tt.req), tt.want)
		})
	}
}

func TestApp_Query_Cancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, testSettings())
		h.source.EXPECT().Products(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)

		ctx, cancel := context.WithCancel(t.Context())
		errs := make(chan error, 1)
		go func() {
			errs <- h.app.Query(ctx, app.QueryRequest{Kind: app.KindProducts, Repeat: 3, Interval: time.Minute})
		}()

		synctest.Wait()
		cancel()
		require.ErrorIs(t, <-errs, context.Canceled)
	})
}

func TestApp_Prefetch(t *testing.T) {
	h := newHarness(t, testSettings())
	h.source.EXPECT().ProductsBySeller(gomock.Any(), "42").Return(sellerProducts(), nil)
	h.source.EXPECT().ShopBySeller(gomock.Any(), "42").Return(domain.Shop{ID: "s1"}, nil)
	h.source.EXPECT().Product(gomock.Any(), "p9").
		Return(domain.Product{}, zerr.Wrap(domain.ErrNotFound, "no product"))
	h.logger.EXPECT().Warn(gomock.Any()).Times(1)

	err := h.app.Prefetch(t.Context(), app.PrefetchRequest{SellerID: "42", ProductIDs: []string{"p9"}})
	require.NoError(t, err)

	out := h.stderr.String()
	assert.Contains(t, out, "[products:seller:42]")
	assert.Contains(t, out, "[shop:seller:42]")
	assert.Contains(t, out, "ErrorEmpty")
	assert.Empty(t, h.stdout.String())
}

func TestApp_Prefetch_Nothing(t *testing.T) {
	h := newHarness(t, testSettings())

	err := h.app.Prefetch(t.Context(), app.PrefetchRequest{})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestApp_UpdateProduct(t *testing.T) {
	h := newHarness(t, testSettings())
	stock := 3
	h.source.EXPECT().UpdateProduct(gomock.Any(), "p1", domain.ProductUpdate{Stock: &stock}).
		Return(domain.Product{ID: "p1", SellerID: "42", Stock: stock}, nil)

	require.NoError(t, h.app.UpdateProduct(t.Context(), "p1", domain.ProductUpdate{Stock: &stock}))
	assert.Contains(t, h.stderr.String(), "updated product p1")
	assert.Contains(t, h.stdout.String(), `"stock": 3`)
}

func TestApp_Watch_RefetchesAfterChange(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, testSettings())

		updated := sellerProducts()
		updated[0].Price = 3500
		gomock.InOrder(
			h.source.EXPECT().ProductsBySeller(gomock.Any(), "42").Return(sellerProducts(), nil).Times(1),
			h.source.EXPECT().ProductsBySeller(gomock.Any(), "42").Return(updated, nil).MinTimes(1),
		)
		h.logger.EXPECT().Info(gomock.Any()).AnyTimes()

		// The change arrives once the initial fetch has settled.
		changes := &gatedReader{
			ready: make(chan struct{}),
			r:     strings.NewReader(`{"table":"products","eventType":"UPDATE","new":{"id":"p1","seller_id":"42"}}` + "\n"),
		}
		h.logger.EXPECT().Error(gomock.Any()).Times(0)

		done := make(chan error, 1)
		go func() {
			done <- h.app.Watch(t.Context(), app.WatchRequest{
				Query:   app.QueryRequest{Kind: app.KindSellerProducts, ID: "42"},
				Changes: changes,
			})
		}()

		synctest.Wait()
		close(changes.ready)
		require.NoError(t, <-done)

		assert.Contains(t, h.stdout.String(), `"price": 3500`)
		assert.Contains(t, h.stderr.String(), "1 changes received")
	})
}

func TestApp_Watch_StopsOnCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, testSettings())
		h.source.EXPECT().Conversations(gomock.Any(), "u1").Return([]domain.Conversation{{ID: "c1"}}, nil)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			done <- h.app.Watch(ctx, app.WatchRequest{
				Query: app.QueryRequest{Kind: app.KindConversations, ID: "u1"},
			})
		}()

		synctest.Wait()
		cancel()
		require.NoError(t, <-done)
		assert.Contains(t, h.stdout.String(), `"id": "c1"`)
	})
}

func TestApp_ShowConfig(t *testing.T) {
	settings := testSettings()
	settings.Platform.URL = "https://example.supabase.co"
	settings.Platform.APIKey = "secret"
	h := newHarness(t, settings)

	var buf bytes.Buffer
	require.NoError(t, h.app.ShowConfig(&buf))
	assert.Contains(t, buf.String(), "https://example.supabase.co")
	assert.Contains(t, buf.String(), "********")
	assert.NotContains(t, buf.String(), "secret")
}

// gatedReader blocks reads until ready is closed.
type gatedReader struct {
	ready chan struct{}
	r     *strings.Reader
}

func (g *gatedReader) Read(p []byte) (int, error) {
	<-g.ready
	return g.r.Read(p)
}
