package materials_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"material-reconciler/core/database"
	"material-reconciler/core/reconcile"
	"material-reconciler/feature/materials"
	"material-reconciler/feature/materials/catalog"
	"material-reconciler/feature/materials/mappings"
	"material-reconciler/feature/materials/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedCatalog(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db, true))

	rows := []models.WarehouseMaterial{
		{ID: 1, Name: "Ткань велюр синий", Category: "fabric", Unit: "м", CurrentStock: 40, UnitPrice: 950},
		{ID: 2, Name: "Ткань велюр красный", Category: "fabric", Unit: "м", CurrentStock: 25, UnitPrice: 950},
		{ID: 3, Name: "ДСП 18мм белая", Category: "Плиты", Unit: "лист", CurrentStock: 12, UnitPrice: 3100},
		{ID: 4, Name: "ДСП 16мм", Category: "Плиты", Unit: "лист", CurrentStock: 8, UnitPrice: 2800},
		{ID: 5, Name: "Петля мебельная", Category: "Фурнитура", Unit: "шт", CurrentStock: 500, UnitPrice: 35},
	}
	require.NoError(t, db.Create(&rows).Error)
	return db
}

func newApp(source reconcile.IndexSource, store reconcile.MappingStore, timeout time.Duration) *fiber.App {
	engine := reconcile.NewEngine(source, store, reconcile.DefaultConfig(), zap.NewNop())
	feature := materials.NewFeature(engine, time.Hour, timeout, zap.NewNop())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if op := c.Get("X-Operator"); op != "" {
			c.Locals("operator", op)
		}
		return c.Next()
	})
	_ = feature.Load(app)
	return app
}

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db := seedCatalog(t)
	source := reconcile.NewCatalogCache(catalog.NewDBCatalog(db), time.Minute)
	return newApp(source, mappings.NewGormStore(db), 5*time.Second), db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) (int, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestHandleReconcile(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := doJSON(t, app, "POST", "/reconcile", fiber.Map{
		"materials": []fiber.Map{
			{"id": 1, "name": "ткань велюр  синяя", "category": "fabric", "quantity": 3},
			{"id": "b", "name": "дсп 16 мм", "quantity": 2},
			{"id": "c", "name": "ДСП 16мм", "quantity": 1},
			{"id": "d", "name": "   ", "quantity": 1},
		},
	})
	require.Equal(t, fiber.StatusOK, status, string(body))

	var res reconcile.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, 4, res.Summary.Total)
	assert.Equal(t, 1, res.Summary.Invalid)

	require.Len(t, res.Processed, 2)
	for _, p := range res.Processed {
		assert.Equal(t, int64(4), p.WarehouseMatch.ID)
		assert.Equal(t, reconcile.MethodAuto, p.MappingMethod)
		assert.True(t, p.Persisted)
	}

	require.Len(t, res.Unmapped, 2)
	assert.Equal(t, "1", res.Unmapped[0].CalculatorMaterial.ID)
	require.NotEmpty(t, res.Unmapped[0].SuggestedMatches)
	assert.Equal(t, int64(1), res.Unmapped[0].SuggestedMatches[0].WarehouseMatch.ID)
	assert.Equal(t, reconcile.DiagnosticValidation, res.Unmapped[1].Diagnostic)
}

func TestHandleReconcile_BadRequests(t *testing.T) {
	app, _ := setupTestApp(t)

	status, _ := doJSON(t, app, "POST", "/reconcile", fiber.Map{"materials": []fiber.Map{}})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "POST", "/reconcile", fiber.Map{
		"materials": []fiber.Map{{"name": "Петля", "quantity": -2}},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	req := httptest.NewRequest("POST", "/reconcile", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleReconcile_Idempotent(t *testing.T) {
	app, db := setupTestApp(t)
	batch := fiber.Map{"materials": []fiber.Map{{"id": "a", "name": "дсп 16 мм", "quantity": 2}}}

	status, _ := doJSON(t, app, "POST", "/reconcile", batch)
	require.Equal(t, fiber.StatusOK, status)

	status, body := doJSON(t, app, "POST", "/reconcile", batch)
	require.Equal(t, fiber.StatusOK, status)

	var res reconcile.Result
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Processed, 1)
	assert.Equal(t, reconcile.MethodStore, res.Processed[0].MappingMethod)
	assert.Equal(t, int64(4), res.Processed[0].WarehouseMatch.ID)

	var count int64
	require.NoError(t, db.Model(&models.MaterialMapping{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHandleConfirm_RoundTrip(t *testing.T) {
	app, _ := setupTestApp(t)
	batch := fiber.Map{"materials": []fiber.Map{
		{"id": "1", "name": "ткань велюр синяя", "category": "fabric", "quantity": 3},
		{"id": "2", "name": "Ткань велюр, синяя", "category": "Fabric", "quantity": 1},
	}}

	status, body := doJSON(t, app, "POST", "/reconcile", batch)
	require.Equal(t, fiber.StatusOK, status)
	var res reconcile.Result
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Unmapped, 2)

	status, body = doJSON(t, app, "POST", "/reconcile/"+res.SessionID+"/confirm",
		fiber.Map{"material_id": "1", "warehouse_id": 1}, "X-Operator", "anna")
	require.Equal(t, fiber.StatusOK, status, string(body))

	var conf reconcile.Confirmation
	require.NoError(t, json.Unmarshal(body, &conf))
	assert.True(t, conf.Persisted)
	assert.Equal(t, reconcile.MappingManual, conf.Mapping.MappingType)
	assert.Equal(t, 0.9, conf.Mapping.Confidence)
	assert.Equal(t, "anna", conf.Mapping.ConfirmedBy)

	status, body = doJSON(t, app, "GET", "/reconcile/"+res.SessionID, nil)
	require.Equal(t, fiber.StatusOK, status)
	var view materials.SessionView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "done", view.State)
	require.NotNil(t, view.Result)
	assert.Len(t, view.Result.Processed, 2)
	assert.Empty(t, view.Result.Unmapped)
	assert.Equal(t, 2, view.Result.Summary.Manual)

	status, body = doJSON(t, app, "POST", "/reconcile", batch)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Processed, 2)
	assert.Equal(t, reconcile.MethodStore, res.Processed[0].MappingMethod)
	assert.Equal(t, 0.9, res.Processed[0].Confidence)
}

func TestHandleConfirm_Errors(t *testing.T) {
	app, _ := setupTestApp(t)

	status, _ := doJSON(t, app, "POST", "/reconcile/unknown/confirm", fiber.Map{"material_id": "1", "warehouse_id": 1})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := doJSON(t, app, "POST", "/reconcile", fiber.Map{
		"materials": []fiber.Map{{"id": "1", "name": "ткань велюр синяя", "quantity": 1}},
	})
	require.Equal(t, fiber.StatusOK, status)
	var res reconcile.Result
	require.NoError(t, json.Unmarshal(body, &res))
	path := "/reconcile/" + res.SessionID + "/confirm"

	status, _ = doJSON(t, app, "POST", path, fiber.Map{"material_id": "1", "warehouse_id": 999})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, "POST", path, fiber.Map{"material_id": "nope", "warehouse_id": 1})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, "POST", path, fiber.Map{"material_id": "1", "warehouse_id": 0})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "GET", "/reconcile/unknown", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandleSearch(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := doJSON(t, app, "GET", "/catalog/search?q=%D0%B4%D1%81%D0%BF&limit=2", nil)
	require.Equal(t, fiber.StatusOK, status)

	var got []reconcile.Candidate
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 2)
	assert.GreaterOrEqual(t, got[0].Similarity, got[1].Similarity)

	status, _ = doJSON(t, app, "GET", "/catalog/search?q=", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "GET", "/catalog/search?q=x&limit=-1", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleMappings(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := doJSON(t, app, "POST", "/mappings", fiber.Map{
		"calculator_name":     "Петля  накладная",
		"calculator_category": "Фурнитура",
		"warehouse_id":        5,
		"mapping_type":        "manual",
	}, "X-Operator", "boris")
	require.Equal(t, fiber.StatusCreated, status, string(body))

	var m reconcile.MaterialMapping
	require.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, "петля накладная", m.CalculatorName)
	assert.Equal(t, "фурнитура", m.CalculatorCategory)
	assert.Equal(t, "boris", m.ConfirmedBy)

	status, body = doJSON(t, app, "GET", "/mappings/lookup?name=%D0%9F%D0%95%D0%A2%D0%9B%D0%AF+%D0%BD%D0%B0%D0%BA%D0%BB%D0%B0%D0%B4%D0%BD%D0%B0%D1%8F&category=%D1%84%D1%83%D1%80%D0%BD%D0%B8%D1%82%D1%83%D1%80%D0%B0", nil)
	require.Equal(t, fiber.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, int64(5), m.WarehouseID)

	status, _ = doJSON(t, app, "GET", "/mappings/lookup?name=unknown", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, "GET", "/mappings/lookup", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "POST", "/mappings", fiber.Map{"calculator_name": "x", "warehouse_id": 5, "mapping_type": "guess"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "POST", "/mappings", fiber.Map{"calculator_name": "x", "warehouse_id": 77, "mapping_type": "auto"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

type brokenCatalog struct{}

func (brokenCatalog) Name() string { return "broken" }

func (brokenCatalog) Materials(ctx context.Context) ([]reconcile.WarehouseMaterial, error) {
	return nil, errors.New("connection refused")
}

type blockingCatalog struct{}

func (blockingCatalog) Name() string { return "blocking" }

func (blockingCatalog) Materials(ctx context.Context) ([]reconcile.WarehouseMaterial, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestHandlers_CatalogUnavailable(t *testing.T) {
	store, err := mappings.OpenBadger("")
	require.NoError(t, err)
	defer store.Close()

	app := newApp(reconcile.NewCatalogCache(brokenCatalog{}, time.Minute), store, time.Second)

	status, body := doJSON(t, app, "POST", "/reconcile", fiber.Map{
		"materials": []fiber.Map{{"id": "1", "name": "Петля", "quantity": 1}},
	})
	require.Equal(t, fiber.StatusOK, status)
	var res reconcile.Result
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Unmapped, 1)
	assert.Equal(t, reconcile.DiagnosticCatalogUnavailable, res.Unmapped[0].Diagnostic)
	assert.Empty(t, res.Unmapped[0].SuggestedMatches)

	status, _ = doJSON(t, app, "GET", "/catalog/search?q=petlya", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestHandleReconcile_Timeout(t *testing.T) {
	store, err := mappings.OpenBadger("")
	require.NoError(t, err)
	defer store.Close()

	app := newApp(reconcile.NewCatalogCache(blockingCatalog{}, time.Minute), store, 20*time.Millisecond)

	status, body := doJSON(t, app, "POST", "/reconcile", fiber.Map{
		"materials": []fiber.Map{{"id": "1", "name": "Петля", "quantity": 1}},
	})
	assert.Equal(t, fiber.StatusGatewayTimeout, status, string(body))
}
