package realtime_test

import (
	"context"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/realtime"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/telemetry"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports/mocks"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/inflight"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/memcache"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func productChange(id string) domain.ChangeEvent {
	return domain.ChangeEvent{
		Table:  domain.TableProducts,
		Op:     domain.OpUpdate,
		Record: map[string]any{"id": id, "seller_id": "42"},
	}
}

func TestBridge_Run_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inv := mocks.NewMockInvalidator(ctrl)
		lg := mocks.NewMockLogger(ctrl)

		inv.EXPECT().Invalidate(domain.ProductKey("p1")).Return(true).Times(1)
		inv.EXPECT().Invalidate(domain.ProductKey("p2")).Return(false).Times(1)
		inv.EXPECT().InvalidatePrefix(domain.ProductsPrefix).Return(3).Times(1)
		lg.EXPECT().Info(gomock.Any()).Times(1)

		feed := realtime.NewChannelFeed(8)
		bridge := realtime.NewBridge(inv, lg, 100*time.Millisecond)

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- bridge.Run(ctx, feed) }()

		require.NoError(t, feed.Publish(ctx, productChange("p1")))
		require.NoError(t, feed.Publish(ctx, productChange("p2")))
		require.NoError(t, feed.Publish(ctx, productChange("p1")))

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		stats := bridge.Stats()
		assert.Equal(t, uint64(3), stats.Received)
		assert.Equal(t, uint64(4), stats.Invalidated)

		cancel()
		require.ErrorIs(t, <-done, context.Canceled)
	})
}

func TestBridge_Run_FlushesOnStop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inv := mocks.NewMockInvalidator(ctrl)
		lg := mocks.NewMockLogger(ctrl)

		inv.EXPECT().InvalidatePrefix(domain.ConversationsPrefix).Return(2).Times(1)
		lg.EXPECT().Info(gomock.Any()).Times(1)

		feed := realtime.NewChannelFeed(4)
		bridge := realtime.NewBridge(inv, lg, time.Hour)

		require.NoError(t, feed.Publish(t.Context(), domain.ChangeEvent{
			Table: domain.TableMessages,
			Op:    domain.OpInsert,
		}))
		feed.Close()

		// The closed feed ends the run and the pending batch is flushed.
		require.NoError(t, bridge.Run(t.Context(), feed))
		assert.Equal(t, uint64(2), bridge.Stats().Invalidated)
	})
}

func TestBridge_Handle_UnknownTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	inv := mocks.NewMockInvalidator(ctrl)
	lg := mocks.NewMockLogger(ctrl)

	bridge := realtime.NewBridge(inv, lg, 0)
	bridge.Handle(domain.ChangeEvent{Table: "audit_log", Op: domain.OpInsert})

	assert.Equal(t, uint64(1), bridge.Stats().Received)
	assert.Zero(t, bridge.Stats().Invalidated)
}

func TestBridge_Handle_ShopChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	inv := mocks.NewMockInvalidator(ctrl)
	lg := mocks.NewMockLogger(ctrl)

	inv.EXPECT().Invalidate(domain.ShopBySellerKey("7")).Return(false)

	bridge := realtime.NewBridge(inv, lg, 0)
	bridge.Handle(domain.ChangeEvent{
		Table:  domain.TableShops,
		Op:     domain.OpUpdate,
		Record: map[string]any{"seller_id": "7"},
	})
}

func TestBridge_Run_ReaderFeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	inv := mocks.NewMockInvalidator(ctrl)
	lg := mocks.NewMockLogger(ctrl)

	inv.EXPECT().InvalidatePrefix(domain.ProductsPrefix).Return(1)
	inv.EXPECT().Invalidate(domain.ProductKey("p9")).Return(true)
	inv.EXPECT().Invalidate(domain.ShopBySellerKey("42")).Return(true)
	lg.EXPECT().Info(gomock.Any()).Times(2)
	lg.EXPECT().Error(gomock.Any()).Times(1)

	input := strings.Join([]string{
		`{"schema":"public","table":"products","eventType":"DELETE","new":{},"old":{"id":"p9"}}`,
		`not json`,
		``,
		`{"schema":"public","table":"seller_shops","eventType":"UPDATE","new":{"seller_id":"42"}}`,
	}, "\n")

	bridge := realtime.NewBridge(inv, lg, 0)
	require.NoError(t, bridge.Run(t.Context(), realtime.NewReaderFeed(strings.NewReader(input), lg)))
	assert.Equal(t, uint64(2), bridge.Stats().Received)
}

func TestBridge_Handle_ExactKeysKeepSiblings(t *testing.T) {
	ctrl := gomock.NewController(t)
	lg := mocks.NewMockLogger(ctrl)
	lg.EXPECT().Info(gomock.Any()).AnyTimes()

	exec := query.NewExecutor(memcache.New(time.Hour), inflight.New(), telemetry.NewNoOpTracer(), lg,
		ports.NoopMetrics{}, query.DefaultConfig())

	keys := []string{
		domain.ProductKey("4"),
		domain.ProductKey("42"),
		domain.ShopBySellerKey("4"),
		domain.ShopBySellerKey("42"),
	}
	for _, key := range keys {
		r := query.Get(t.Context(), exec, key, func(context.Context) (string, error) {
			return key, nil
		}, domain.QueryOptions{})
		require.NoError(t, r.Err)
	}

	bridge := realtime.NewBridge(exec, lg, 0)
	bridge.Handle(productChange("4"))
	bridge.Handle(domain.ChangeEvent{
		Table:  domain.TableShops,
		Op:     domain.OpUpdate,
		Record: map[string]any{"seller_id": "4"},
	})

	assert.Equal(t, domain.StateEmpty, exec.State(domain.ProductKey("4")).State)
	assert.Equal(t, domain.StateEmpty, exec.State(domain.ShopBySellerKey("4")).State)
	assert.Equal(t, domain.StateFresh, exec.State(domain.ProductKey("42")).State)
	assert.Equal(t, domain.StateFresh, exec.State(domain.ShopBySellerKey("42")).State)
	assert.Equal(t, uint64(2), bridge.Stats().Invalidated)
}
