package mappings

import (
	"context"
	"sync"
	"testing"
	"time"

	"material-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBadger(t *testing.T) *BadgerStore {
	store, err := OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerStore_LookupMissing(t *testing.T) {
	store := openTestBadger(t)
	_, err := store.Lookup(context.Background(), reconcile.Normalize("петля", ""))
	assert.ErrorIs(t, err, reconcile.ErrMappingNotFound)
}

func TestBadgerStore_UpsertReplaces(t *testing.T) {
	store := openTestBadger(t)
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return first }
	_, err := store.Upsert(ctx, reconcile.MaterialMapping{
		CalculatorName: "дсп 16мм", WarehouseID: 3, MappingType: reconcile.MappingAuto, Confidence: 0.88,
	})
	require.NoError(t, err)

	store.now = func() time.Time { return first.Add(time.Minute) }
	m, err := store.Upsert(ctx, reconcile.MaterialMapping{
		CalculatorName: "дсп 16мм", WarehouseID: 4, MappingType: reconcile.MappingManual, Confidence: 0.9,
	})
	require.NoError(t, err)
	assert.True(t, m.CreatedAt.Equal(first))
	assert.Equal(t, int64(4), m.WarehouseID)

	got, err := store.Lookup(ctx, reconcile.Normalize("ДСП 16 мм", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.WarehouseID)
	assert.Equal(t, reconcile.MappingManual, got.MappingType)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBadgerStore_ConcurrentSameKey(t *testing.T) {
	store := openTestBadger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _ = store.Upsert(ctx, reconcile.MaterialMapping{
				CalculatorName: "петля", WarehouseID: id, MappingType: reconcile.MappingManual, Confidence: 0.9,
			})
		}(int64(i))
	}
	wg.Wait()

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "петля", all[0].CalculatorName)
}

func TestBadgerStore_Cancelled(t *testing.T) {
	store := openTestBadger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Lookup(ctx, reconcile.Normalize("петля", ""))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Upsert(ctx, reconcile.MaterialMapping{CalculatorName: "петля"})
	assert.ErrorIs(t, err, context.Canceled)
}
