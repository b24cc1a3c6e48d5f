package mappings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"material-reconciler/core/reconcile"
	"material-reconciler/feature/materials/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists mappings in the material_mappings table.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a store on an open connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Lookup implements reconcile.MappingStore.
func (s *GormStore) Lookup(ctx context.Context, key reconcile.Key) (*reconcile.MaterialMapping, error) {
	var row models.MaterialMapping
	err := s.db.WithContext(ctx).
		Where("calculator_name = ? AND calculator_category = ?", key.StoreName(), key.Category).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reconcile.ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to look up mapping %q: %w", key.StoreName(), err)
	}
	m := row.ToDomain()
	return &m, nil
}

// Upsert implements reconcile.MappingStore. The write is a single
// INSERT ... ON CONFLICT statement, so concurrent writers for one key
// resolve last-write-wins without a read-modify-write window.
func (s *GormStore) Upsert(ctx context.Context, m reconcile.MaterialMapping) (*reconcile.MaterialMapping, error) {
	now := s.now()
	row := models.MappingFromDomain(m)
	row.CreatedAt = now
	row.UpdatedAt = now

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "calculator_name"}, {Name: "calculator_category"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"warehouse_id", "mapping_type", "confidence", "confirmed_by", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert mapping %q: %w", m.CalculatorName, err)
	}

	return s.Lookup(ctx, m.Key())
}

// List implements reconcile.MappingLister.
func (s *GormStore) List(ctx context.Context) ([]reconcile.MaterialMapping, error) {
	var rows []models.MaterialMapping
	if err := s.db.WithContext(ctx).Order("calculator_name, calculator_category").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	out := make([]reconcile.MaterialMapping, len(rows))
	for i, r := range rows {
		out[i] = r.ToDomain()
	}
	return out, nil
}
