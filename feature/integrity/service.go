package integrity

import (
	"context"

	"material-reconciler/core/storage"
	"material-reconciler/feature/integrity/checks"
	"material-reconciler/feature/materials/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the resources the checks inspect. Nil members are
// reported as errors or as disabled.
type Dependencies struct {
	Storage        storage.Client
	Bucket         string
	SnapshotObject string
	// CatalogSource is "database" or "storage".
	CatalogSource string
	DB            *gorm.DB
	Redis         *redis.Client
}

// Service handles integrity checks.
type Service struct {
	deps   Dependencies
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(deps Dependencies, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{deps: deps, logger: logger}
}

// CheckServer validates the database schema against the models.
func (s *Service) CheckServer() (*checks.ServerReport, error) {
	return checks.CheckServerIntegrity(s.deps.DB, models.All())
}

// CheckCatalog validates the configured catalog source.
func (s *Service) CheckCatalog(ctx context.Context) (*checks.CatalogReport, error) {
	if s.deps.CatalogSource == "storage" {
		return checks.CheckSnapshot(ctx, s.deps.Storage, s.deps.Bucket, s.deps.SnapshotObject)
	}
	return checks.CheckCatalogTable(s.deps.DB, models.WarehouseMaterial{}.TableName())
}

// CheckCache pings the mapping cache.
func (s *Service) CheckCache(ctx context.Context) *checks.CacheReport {
	return checks.CheckCache(ctx, s.deps.Redis)
}
