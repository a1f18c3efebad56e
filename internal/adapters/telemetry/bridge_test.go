package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/telemetry"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJournal(t *testing.T, size int) (*telemetry.Bridge, *telemetry.OTelTracer) {
	t.Helper()
	bridge := telemetry.NewBridge(size)
	tp := telemetry.NewProvider(bridge)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return bridge, telemetry.NewOTelTracerFrom(tp, "test")
}

func TestBridge_RecordsFetchSpans(t *testing.T) {
	bridge, tracer := newJournal(t, 8)

	_, span := tracer.Start(context.Background(), telemetry.FetchSpanName,
		ports.WithAttribute("cache.key", "shop:seller:7"),
		ports.WithAttribute("cache.generation", uint64(2)),
		ports.WithAttribute("cache.background", true),
	)
	span.SetAttribute("retry.attempt", 2)
	span.SetAttribute("cache.discarded", true)
	span.End()

	_, other := tracer.Start(context.Background(), "catalog.prefetch")
	other.End()

	recent := bridge.Recent()
	require.Len(t, recent, 1)
	rec := recent[0]
	assert.Equal(t, "shop:seller:7", rec.Key)
	assert.Equal(t, int64(2), rec.Generation)
	assert.True(t, rec.Background)
	assert.True(t, rec.Discarded)
	assert.Equal(t, int64(3), rec.Attempts)
	assert.Empty(t, rec.Err)
	assert.False(t, rec.EndedAt.IsZero())

	total, failed := bridge.Totals()
	assert.Equal(t, uint64(1), total)
	assert.Zero(t, failed)
}

func TestBridge_RecordsFailures(t *testing.T) {
	bridge, tracer := newJournal(t, 8)

	_, span := tracer.Start(context.Background(), telemetry.FetchSpanName, ports.WithAttribute("cache.key", "product:1"))
	span.RecordError(errors.New("fetch failed: permission denied"))
	span.End()

	recent := bridge.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "fetch failed: permission denied", recent[0].Err)
	assert.Equal(t, int64(1), recent[0].Attempts)

	_, failed := bridge.Totals()
	assert.Equal(t, uint64(1), failed)
}

func TestBridge_KeepsMostRecent(t *testing.T) {
	bridge, tracer := newJournal(t, 3)

	for _, key := range []string{"a", "b", "c", "d", "e"} {
		_, span := tracer.Start(context.Background(), telemetry.FetchSpanName, ports.WithAttribute("cache.key", key))
		span.End()
	}

	recent := bridge.Recent()
	keys := make([]string, 0, len(recent))
	for _, r := range recent {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"c", "d", "e"}, keys)

	total, _ := bridge.Totals()
	assert.Equal(t, uint64(5), total)
}

func TestBridge_DefaultSize(t *testing.T) {
	bridge := telemetry.NewBridge(0)
	assert.Empty(t, bridge.Recent())
	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}
