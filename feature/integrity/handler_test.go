package integrity

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"material-reconciler/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, deps Dependencies) *fiber.App {
	app := fiber.New()
	NewHandler(NewService(deps, zap.NewNop())).RegisterRoutes(app)
	return app
}

func TestHandleServerCheck(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	app := setupTestApp(t, Dependencies{DB: db})

	// Expect queries - relaxed matching
	sqlMock.ExpectQuery(".*").WillReturnRows(sqlmock.NewRows([]string{"Field", "Type"}).AddRow("id", "bigint"))
	sqlMock.ExpectQuery(".*").WillReturnRows(sqlmock.NewRows([]string{"Field", "Type"}).AddRow("id", "bigint unsigned"))

	req := httptest.NewRequest("GET", "/integrity/server", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestHandleServerCheck_NoDB(t *testing.T) {
	app := setupTestApp(t, Dependencies{})

	req := httptest.NewRequest("GET", "/integrity/server", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleCatalogCheck(t *testing.T) {
	mockClient := new(mocks.Client)
	app := setupTestApp(t, Dependencies{
		Storage:        mockClient,
		Bucket:         "test-bucket",
		SnapshotObject: "warehouse_materials.json",
		CatalogSource:  "storage",
	})

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	mockClient.On("StatObject", mock.Anything, "test-bucket", "warehouse_materials.json", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})

	req := httptest.NewRequest("GET", "/integrity/catalog", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "missing", report["status"])
}

func TestHandleCatalogCheck_BucketError(t *testing.T) {
	mockClient := new(mocks.Client)
	app := setupTestApp(t, Dependencies{Storage: mockClient, Bucket: "test-bucket", CatalogSource: "storage"})

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, assert.AnError)

	req := httptest.NewRequest("GET", "/integrity/catalog", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleCacheCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	app := setupTestApp(t, Dependencies{Redis: client})

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/cache", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	mr.Close()
	resp, err = app.Test(httptest.NewRequest("GET", "/integrity/cache", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestHandleIntegrityCheck(t *testing.T) {
	mockClient := new(mocks.Client)
	db, sqlMock := setupMockDB(t)
	app := setupTestApp(t, Dependencies{
		Storage:       mockClient,
		Bucket:        "test-bucket",
		CatalogSource: "storage",
		DB:            db,
	})

	// Fail every dependency; the combined report still succeeds.
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, assert.AnError)
	sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)
	sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)

	req := httptest.NewRequest("GET", "/integrity", nil)
	resp, err := app.Test(req, 2000)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var report map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, false, report["server"]["matched"])
	assert.Equal(t, "error", report["catalog"]["status"])
	assert.Equal(t, "disabled", report["cache"]["status"])
}
