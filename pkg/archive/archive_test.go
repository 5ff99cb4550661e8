package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waterfutures/scadasim/pkg/sensor"
	"github.com/waterfutures/scadasim/pkg/types"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	arc, err := Open(&Config{
		Path:          t.TempDir(),
		CacheCapacity: 4,
		CacheTTL:      time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { arc.Close() })
	return arc
}

func testObject(t *testing.T) *sensor.Config {
	t.Helper()
	cfg := sensor.New(sensor.Inventory{
		Nodes: []string{"n1", "n2"},
		Links: []string{"l1"},
	}, types.DefaultUnits())
	require.NoError(t, cfg.SetSensors(types.Pressure, []string{"n1"}))
	require.NoError(t, cfg.SetSensors(types.Flow, []string{"l1"}))
	return cfg
}

func TestStoreFetchRoundTrip(t *testing.T) {
	arc := openTestArchive(t)
	ctx := context.Background()
	cfg := testObject(t)

	name, err := arc.Store(ctx, "baseline", cfg)
	require.NoError(t, err)
	assert.Equal(t, "baseline", name)

	obj, err := arc.Fetch(ctx, "baseline")
	require.NoError(t, err)

	got, ok := obj.(*sensor.Config)
	require.True(t, ok)
	assert.True(t, cfg.Equal(got))

	// Second fetch is served from the decode cache.
	require.Equal(t, 1, arc.cache.size())
	again, err := arc.Fetch(ctx, "baseline")
	require.NoError(t, err)
	assert.Same(t, obj, again)
}

func TestStoreGeneratesName(t *testing.T) {
	arc := openTestArchive(t)

	name, err := arc.Store(context.Background(), "", testObject(t))
	require.NoError(t, err)
	assert.NotEmpty(t, name)

	_, err = arc.Fetch(context.Background(), name)
	assert.NoError(t, err)
}

func TestStoreInvalidatesCache(t *testing.T) {
	arc := openTestArchive(t)
	ctx := context.Background()

	first := testObject(t)
	_, err := arc.Store(ctx, "cfg", first)
	require.NoError(t, err)
	_, err = arc.Fetch(ctx, "cfg")
	require.NoError(t, err)

	second := testObject(t)
	require.NoError(t, second.SetSensors(types.Pressure, []string{"n1", "n2"}))
	_, err = arc.Store(ctx, "cfg", second)
	require.NoError(t, err)

	obj, err := arc.Fetch(ctx, "cfg")
	require.NoError(t, err)
	assert.True(t, second.Equal(obj.(*sensor.Config)))
}

func TestListAndDelete(t *testing.T) {
	arc := openTestArchive(t)
	ctx := context.Background()

	_, err := arc.Store(ctx, "a", testObject(t))
	require.NoError(t, err)
	_, err = arc.Store(ctx, "b", testObject(t))
	require.NoError(t, err)

	names, err := arc.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, names)

	require.NoError(t, arc.Delete(ctx, "a"))
	names, err = arc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)

	_, err = arc.Fetch(ctx, "a")
	assert.Error(t, err)
}

func TestContextCancellation(t *testing.T) {
	arc := openTestArchive(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := arc.Store(ctx, "x", testObject(t))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = arc.Fetch(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = arc.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, arc.Delete(ctx, "x"), context.Canceled)
}

func TestDecodeCacheEviction(t *testing.T) {
	cache := newDecodeCache(2, time.Minute)

	a, b, c := testObject(t), testObject(t), testObject(t)
	cache.put("a", a)
	cache.put("b", b)
	cache.put("c", c)

	assert.Equal(t, 2, cache.size())
	_, ok := cache.get("a")
	assert.False(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}

func TestDecodeCacheTTL(t *testing.T) {
	cache := newDecodeCache(4, time.Nanosecond)
	cache.put("a", testObject(t))

	time.Sleep(time.Millisecond)
	_, ok := cache.get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.size())
}
