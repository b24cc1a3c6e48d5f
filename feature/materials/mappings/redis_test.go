package mappings

import (
	"context"
	"testing"
	"time"

	"material-reconciler/core/reconcile"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts calls reaching the durable store.
type countingStore struct {
	reconcile.MappingStore
	lookups int
}

func (c *countingStore) Lookup(ctx context.Context, key reconcile.Key) (*reconcile.MaterialMapping, error) {
	c.lookups++
	return c.MappingStore.Lookup(ctx, key)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedStore_ReadThrough(t *testing.T) {
	mr, client := setupRedis(t)
	inner := &countingStore{MappingStore: openTestBadger(t)}
	store := NewCachedStore(inner, client, "material_mapping:", time.Hour, nil)
	ctx := context.Background()

	_, err := inner.Upsert(ctx, reconcile.MaterialMapping{CalculatorName: "петля", WarehouseID: 5, MappingType: reconcile.MappingManual, Confidence: 0.9})
	require.NoError(t, err)

	key := reconcile.Normalize("Петля", "")
	for i := 0; i < 3; i++ {
		m, err := store.Lookup(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(5), m.WarehouseID)
	}
	assert.Equal(t, 1, inner.lookups)
	assert.True(t, mr.Exists("material_mapping:петля|"))
	assert.Greater(t, mr.TTL("material_mapping:петля|"), time.Duration(0))
}

func TestCachedStore_WriteThrough(t *testing.T) {
	mr, client := setupRedis(t)
	inner := &countingStore{MappingStore: openTestBadger(t)}
	store := NewCachedStore(inner, client, "material_mapping:", 0, nil)
	ctx := context.Background()

	_, err := store.Upsert(ctx, reconcile.MaterialMapping{CalculatorName: "петля", WarehouseID: 5, MappingType: reconcile.MappingManual, Confidence: 0.9})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, reconcile.MaterialMapping{CalculatorName: "петля", WarehouseID: 6, MappingType: reconcile.MappingManual, Confidence: 0.9})
	require.NoError(t, err)
	assert.True(t, mr.Exists("material_mapping:петля|"))

	m, err := store.Lookup(ctx, reconcile.Normalize("петля", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(6), m.WarehouseID)
	assert.Equal(t, 0, inner.lookups)
}

func TestCachedStore_MissIsNotCached(t *testing.T) {
	mr, client := setupRedis(t)
	store := NewCachedStore(openTestBadger(t), client, "material_mapping:", time.Hour, nil)

	_, err := store.Lookup(context.Background(), reconcile.Normalize("винт", ""))
	assert.ErrorIs(t, err, reconcile.ErrMappingNotFound)
	assert.Empty(t, mr.Keys())
}

func TestCachedStore_CorruptEntry(t *testing.T) {
	mr, client := setupRedis(t)
	inner := &countingStore{MappingStore: openTestBadger(t)}
	store := NewCachedStore(inner, client, "material_mapping:", time.Hour, nil)
	ctx := context.Background()

	_, err := inner.Upsert(ctx, reconcile.MaterialMapping{CalculatorName: "петля", WarehouseID: 5, MappingType: reconcile.MappingManual})
	require.NoError(t, err)
	require.NoError(t, mr.Set("material_mapping:петля|", "{not json"))

	m, err := store.Lookup(ctx, reconcile.Normalize("петля", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(5), m.WarehouseID)
	assert.Equal(t, 1, inner.lookups)
}

func TestCachedStore_FailOpen(t *testing.T) {
	mr, client := setupRedis(t)
	inner := openTestBadger(t)
	store := NewCachedStore(inner, client, "material_mapping:", time.Hour, nil)
	ctx := context.Background()

	mr.Close()

	m, err := store.Upsert(ctx, reconcile.MaterialMapping{CalculatorName: "петля", WarehouseID: 5, MappingType: reconcile.MappingManual, Confidence: 0.9})
	require.NoError(t, err)
	assert.Equal(t, int64(5), m.WarehouseID)

	got, err := store.Lookup(ctx, reconcile.Normalize("петля", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.WarehouseID)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
