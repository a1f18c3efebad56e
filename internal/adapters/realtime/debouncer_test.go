package realtime_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/adapters/realtime"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects debouncer batches.
type recorder struct {
	mu      sync.Mutex
	batches []domain.Invalidation
}

func (r *recorder) record(inv domain.Invalidation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, inv)
}

func (r *recorder) snapshot() []domain.Invalidation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Invalidation, len(r.batches))
	copy(out, r.batches)
	return out
}

func prefixes(ps ...string) domain.Invalidation {
	return domain.Invalidation{Prefixes: ps}
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := realtime.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add(prefixes("shop:seller:7"))
		d.Add(prefixes("conversations:"))
		d.Add(prefixes("shop:seller:7"))
		assert.Equal(t, 2, d.Pending())

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		batches := rec.snapshot()
		require.Len(t, batches, 1)
		assert.Equal(t, []string{"conversations:", "shop:seller:7"}, batches[0].Prefixes)
		assert.Zero(t, d.Pending())
	})
}

func TestDebouncer_CollapsesCoveredPrefixes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := realtime.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add(prefixes("product:p1", "products:"))
		d.Add(prefixes("products:seller:42"))
		d.Add(prefixes("product:"))
		d.Add(prefixes("product:p2"))

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		batches := rec.snapshot()
		require.Len(t, batches, 1)
		assert.Equal(t, []string{"product:", "products:"}, batches[0].Prefixes)
	})
}

func TestDebouncer_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := realtime.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add(prefixes("products:"))
		time.Sleep(60 * time.Millisecond)
		d.Add(prefixes("shop:"))
		time.Sleep(60 * time.Millisecond)

		// 120ms after the first Add, but only 60ms after the last one.
		synctest.Wait()
		assert.Empty(t, rec.snapshot())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		require.Len(t, rec.snapshot(), 1)
	})
}

func TestDebouncer_ZeroWindowDispatchesDirectly(t *testing.T) {
	rec := &recorder{}
	d := realtime.NewDebouncer(0, rec.record)

	d.Add(prefixes("products:seller:42", "products:"))

	batches := rec.snapshot()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"products:"}, batches[0].Prefixes)
	assert.Zero(t, d.Pending())
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := realtime.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add(prefixes("conversations:"))
		d.Flush()

		require.Len(t, rec.snapshot(), 1, "flush dispatches synchronously")

		// The stopped timer must not dispatch again.
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, rec.snapshot(), 1)
	})
}

func TestDebouncer_Flush_Empty(t *testing.T) {
	rec := &recorder{}
	d := realtime.NewDebouncer(100*time.Millisecond, rec.record)

	d.Flush()

	assert.Empty(t, rec.snapshot())
}

func TestDebouncer_Flush_AfterFire(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := realtime.NewDebouncer(50*time.Millisecond, rec.record)

		d.Add(prefixes("shop:"))
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		require.Len(t, rec.snapshot(), 1)

		d.Flush()
		assert.Len(t, rec.snapshot(), 1)
	})
}

func TestDebouncer_AddAfterFlush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := realtime.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add(prefixes("shop:"))
		d.Flush()

		d.Add(prefixes("products:", "conversations:"))
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		batches := rec.snapshot()
		require.Len(t, batches, 2)
		assert.Equal(t, []string{"conversations:", "products:"}, batches[1].Prefixes)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := realtime.NewDebouncer(50*time.Millisecond, nil)

		d.Add(prefixes("products:"))
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Add(prefixes("shop:"))
		d.Flush()
	})
}

func TestDebouncer_AddNothing(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := realtime.NewDebouncer(50*time.Millisecond, rec.record)

		d.Add(domain.Invalidation{})
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, rec.snapshot())
	})
}

func TestDebouncer_KeysStayExact(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := realtime.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add(domain.Invalidation{Keys: []string{"product:4", "shop:seller:4"}, Prefixes: []string{"products:"}})
		d.Add(domain.Invalidation{Keys: []string{"product:42", "product:4", "products:seller:4"}})
		assert.Equal(t, 5, d.Pending())

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		batches := rec.snapshot()
		require.Len(t, batches, 1)
		assert.Equal(t, []string{"products:"}, batches[0].Prefixes)
		// A key under a queued prefix is dropped, a longer id is kept as its own key.
		assert.Equal(t, []string{"product:4", "product:42", "shop:seller:4"}, batches[0].Keys)
	})
}
