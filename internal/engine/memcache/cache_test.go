package memcache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/FranckCharlemagne01/super-afri-finds/internal/core/ports/mocks"
	"github.com/FranckCharlemagne01/super-afri-finds/internal/engine/memcache"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newCache(t *testing.T, hardExpire time.Duration, opts ...memcache.Option) (*memcache.Cache, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	opts = append([]memcache.Option{memcache.WithClock(clock)}, opts...)
	return memcache.New(hardExpire, opts...), clock
}

func TestCache_Timeline(t *testing.T) {
	c, clock := newCache(t, 5000*time.Millisecond)

	c.Set("k", "v1", 1000*time.Millisecond)

	clock.Advance(500 * time.Millisecond)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v1", v)
	assert.False(t, c.IsStale("k"))

	clock.Advance(1000 * time.Millisecond)
	v, ok = c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v1", v)
	assert.True(t, c.IsStale("k"))

	clock.Advance(4500 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is evicted on read")
}

func TestCache_IsStale_Absent(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	assert.True(t, c.IsStale("missing"))
}

func TestCache_Set_Overwrites(t *testing.T) {
	c, clock := newCache(t, time.Minute)

	c.Set("k", "v1", time.Second)
	clock.Advance(2 * time.Second)
	require.True(t, c.IsStale("k"))

	c.Set("k", "v2", time.Second)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.False(t, c.IsStale("k"), "overwrite resets the write time")
}

func TestCache_Set_ClampsStaleWindow(t *testing.T) {
	c, clock := newCache(t, 5*time.Second)

	c.Set("k", "v", time.Hour)
	e, ok := c.Peek("k")
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, e.StaleAfter)
	assert.Equal(t, clock.Now(), e.WrittenAt)
}

func TestCache_Invalidate(t *testing.T) {
	c, _ := newCache(t, time.Minute)

	c.Set("products:seller:42", "p", time.Second)
	c.Set("shop:seller:42", "s", time.Second)

	assert.True(t, c.Invalidate("products:seller:42"))
	assert.False(t, c.Invalidate("products:seller:42"))

	_, ok := c.Get("products:seller:42")
	assert.False(t, ok)
	v, ok := c.Get("shop:seller:42")
	require.True(t, ok)
	assert.Equal(t, "s", v)
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c, _ := newCache(t, time.Minute)

	c.Set("products:seller:1", 1, time.Second)
	c.Set("products:seller:2", 2, time.Second)
	c.Set("products:list:q=shea", 3, time.Second)
	c.Set("product:9", 4, time.Second)
	c.Set("shop:seller:42", 5, time.Second)

	assert.Equal(t, 3, c.InvalidatePrefix("products:"))
	assert.Equal(t, []string{"product:9", "shop:seller:42"}, c.Keys())
	assert.Equal(t, 0, c.InvalidatePrefix("products:"))
}

func TestCache_Clear(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	for i := range 10 {
		c.Set(fmt.Sprintf("k%d", i), i, time.Second)
	}

	assert.Equal(t, 10, c.Clear())
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Keys())
}

func TestCache_Metrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockCacheMetrics(ctrl)
	c, clock := newCache(t, time.Second, memcache.WithMetrics(m))

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)

	m.EXPECT().Evicted(memcache.ReasonInvalidate, 1)
	c.Invalidate("a")

	m.EXPECT().Evicted(memcache.ReasonPrefix, 1)
	c.InvalidatePrefix("b")

	m.EXPECT().Expired("c")
	clock.Advance(2 * time.Second)
	_, ok := c.Get("c")
	assert.False(t, ok)

	// Nothing left: no eviction is reported.
	c.Clear()
}

func TestCache_Shards(t *testing.T) {
	c, _ := newCache(t, time.Minute, memcache.WithShards(3))
	for i := range 100 {
		c.Set(fmt.Sprintf("k%03d", i), i, time.Second)
	}
	assert.Equal(t, 100, c.Len())

	keys := c.Keys()
	require.Len(t, keys, 100)
	assert.Equal(t, "k000", keys[0])
	assert.Equal(t, "k099", keys[99])
}

func TestCache_Concurrent(t *testing.T) {
	c, clock := newCache(t, time.Second)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("k%d", i%16)
				switch (w + i) % 4 {
				case 0:
					c.Set(key, i, 100*time.Millisecond)
				case 1:
					c.Get(key)
				case 2:
					c.IsStale(key)
				default:
					c.InvalidatePrefix("k1")
				}
			}
		}()
	}
	wg.Wait()

	clock.Advance(2 * time.Second)
	for i := range 16 {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.False(t, ok)
	}

	assert.Equal(t, 0, c.Len())
}
