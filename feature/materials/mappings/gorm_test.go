package mappings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"material-reconciler/core/database"
	"material-reconciler/core/reconcile"
	"material-reconciler/feature/materials/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func setupSQLite(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db, false))
	return db
}

func mappingColumns() []string {
	return []string{"id", "calculator_name", "calculator_category", "warehouse_id", "mapping_type", "confidence", "confirmed_by", "created_at", "updated_at"}
}

func TestGormStore_LookupSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM `material_mappings` WHERE calculator_name = \\? AND calculator_category = \\? LIMIT .+").
		WithArgs("дсп 16мм", "плиты", 1).
		WillReturnRows(sqlmock.NewRows(mappingColumns()).
			AddRow(1, "дсп 16мм", "плиты", 4, "auto", 0.93, "", now, now))

	m, err := store.Lookup(context.Background(), reconcile.Normalize("ДСП 16 мм", "Плиты"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), m.WarehouseID)
	assert.Equal(t, reconcile.MappingAuto, m.MappingType)
	assert.Equal(t, 0.93, m.Confidence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_LookupNotFoundSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectQuery("SELECT \\* FROM `material_mappings`").
		WillReturnRows(sqlmock.NewRows(mappingColumns()))

	_, err := store.Lookup(context.Background(), reconcile.Normalize("петля", ""))
	assert.ErrorIs(t, err, reconcile.ErrMappingNotFound)
}

func TestGormStore_LookupErrorSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectQuery("SELECT \\* FROM `material_mappings`").WillReturnError(errors.New("connection lost"))

	_, err := store.Lookup(context.Background(), reconcile.Normalize("петля", ""))
	require.Error(t, err)
	assert.NotErrorIs(t, err, reconcile.ErrMappingNotFound)
	assert.Contains(t, err.Error(), "connection lost")
}

func TestGormStore_UpsertSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `material_mappings` .+ ON DUPLICATE KEY UPDATE `warehouse_id`=VALUES\\(`warehouse_id`\\)").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT \\* FROM `material_mappings` WHERE calculator_name = \\? AND calculator_category = \\?").
		WithArgs("дсп 16мм", "плиты", 1).
		WillReturnRows(sqlmock.NewRows(mappingColumns()).
			AddRow(1, "дсп 16мм", "плиты", 4, "manual", 0.9, "anna", now, now))

	m, err := store.Upsert(context.Background(), reconcile.MaterialMapping{
		CalculatorName:     "дсп 16мм",
		CalculatorCategory: "плиты",
		WarehouseID:        4,
		MappingType:        reconcile.MappingManual,
		Confidence:         0.9,
		ConfirmedBy:        "anna",
	})
	require.NoError(t, err)
	assert.Equal(t, "anna", m.ConfirmedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpsertErrorSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `material_mappings`").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	_, err := store.Upsert(context.Background(), reconcile.MaterialMapping{CalculatorName: "x", WarehouseID: 1, MappingType: reconcile.MappingAuto})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock")
}

func TestGormStore_UpsertReplaces(t *testing.T) {
	db := setupSQLite(t)
	store := NewGormStore(db)
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return first }
	_, err := store.Upsert(ctx, reconcile.MaterialMapping{
		CalculatorName: "дсп 16мм", CalculatorCategory: "плиты", WarehouseID: 3, MappingType: reconcile.MappingAuto, Confidence: 0.87,
	})
	require.NoError(t, err)

	store.now = func() time.Time { return first.Add(time.Hour) }
	m, err := store.Upsert(ctx, reconcile.MaterialMapping{
		CalculatorName: "дсп 16мм", CalculatorCategory: "плиты", WarehouseID: 4, MappingType: reconcile.MappingManual, Confidence: 0.9, ConfirmedBy: "boris",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4), m.WarehouseID)
	assert.Equal(t, reconcile.MappingManual, m.MappingType)
	assert.Equal(t, "boris", m.ConfirmedBy)
	assert.True(t, m.CreatedAt.Equal(first), "created_at must survive replacement")
	assert.True(t, m.UpdatedAt.After(m.CreatedAt))

	var count int64
	require.NoError(t, db.Model(&models.MaterialMapping{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormStore_CategoryIsPartOfKey(t *testing.T) {
	store := NewGormStore(setupSQLite(t))
	ctx := context.Background()

	_, err := store.Upsert(ctx, reconcile.MaterialMapping{CalculatorName: "велюр", CalculatorCategory: "fabric", WarehouseID: 1, MappingType: reconcile.MappingManual})
	require.NoError(t, err)
	_, err = store.Upsert(ctx, reconcile.MaterialMapping{CalculatorName: "велюр", CalculatorCategory: "", WarehouseID: 2, MappingType: reconcile.MappingManual})
	require.NoError(t, err)

	a, err := store.Lookup(ctx, reconcile.Normalize("Велюр", "Fabric"))
	require.NoError(t, err)
	b, err := store.Lookup(ctx, reconcile.Normalize("Велюр", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.WarehouseID)
	assert.Equal(t, int64(2), b.WarehouseID)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGormStore_ConcurrentUpserts(t *testing.T) {
	db := setupSQLite(t)
	store := NewGormStore(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := store.Upsert(ctx, reconcile.MaterialMapping{
				CalculatorName: "петля", WarehouseID: id, MappingType: reconcile.MappingManual, Confidence: 0.9,
			})
			assert.NoError(t, err)
		}(int64(i))
	}
	for i := 1; i <= 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := store.Upsert(ctx, reconcile.MaterialMapping{
				CalculatorName: fmt.Sprintf("винт %d", n), WarehouseID: 1, MappingType: reconcile.MappingAuto, Confidence: 0.86,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var count int64
	require.NoError(t, db.Model(&models.MaterialMapping{}).Where("calculator_name = ?", "петля").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestGormStore_EngineRoundTrip(t *testing.T) {
	store := NewGormStore(setupSQLite(t))
	catalog := reconcile.NewStaticIndex([]reconcile.WarehouseMaterial{
		{ID: 1, Name: "Ткань велюр синий", Category: "fabric"},
		{ID: 4, Name: "ДСП 16мм", Category: "Плиты"},
	})
	engine := reconcile.NewEngine(catalog, store, reconcile.DefaultConfig(), nil)
	ctx := context.Background()
	materials := []reconcile.CalculatorMaterial{{ID: "1", Name: "ткань велюр синяя", Category: "fabric", Quantity: 3}}

	s := engine.NewSession(materials)
	res, err := s.Run(ctx)
	require.NoError(t, err)
	require.Len(t, res.Unmapped, 1)

	_, err = s.Confirm(ctx, "1", 1, "anna")
	require.NoError(t, err)

	_, again, err := engine.Reconcile(ctx, materials)
	require.NoError(t, err)
	require.Len(t, again.Processed, 1)
	assert.Equal(t, reconcile.MethodStore, again.Processed[0].MappingMethod)
	assert.Equal(t, 0.9, again.Processed[0].Confidence)
	assert.Equal(t, int64(1), again.Processed[0].WarehouseMatch.ID)
}
