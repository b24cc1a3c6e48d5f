package catalog

import (
	"context"
	"fmt"

	"material-reconciler/core/reconcile"
	"material-reconciler/feature/materials/models"

	"gorm.io/gorm"
)

// DBCatalog reads the catalog table.
type DBCatalog struct {
	db *gorm.DB
}

// NewDBCatalog creates a catalog backed by the warehouse_materials table.
func NewDBCatalog(db *gorm.DB) *DBCatalog {
	return &DBCatalog{db: db}
}

// Name implements reconcile.Catalog.
func (c *DBCatalog) Name() string {
	return "database"
}

// Materials implements reconcile.Catalog.
func (c *DBCatalog) Materials(ctx context.Context) ([]reconcile.WarehouseMaterial, error) {
	var rows []models.WarehouseMaterial
	if err := c.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read warehouse materials: %w", err)
	}

	out := make([]reconcile.WarehouseMaterial, len(rows))
	for i, r := range rows {
		out[i] = r.ToDomain()
	}
	return out, nil
}
