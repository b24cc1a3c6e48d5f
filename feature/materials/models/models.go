package models

import (
	"time"

	"material-reconciler/core/reconcile"

	"gorm.io/gorm"
)

// WarehouseMaterial is a row of the warehouse catalog table. The table is
// owned by the inventory service; this service only reads it.
type WarehouseMaterial struct {
	ID           int64   `gorm:"column:id;primaryKey"`
	Name         string  `gorm:"column:name;size:255;not null"`
	Category     string  `gorm:"column:category;size:128;index"`
	Unit         string  `gorm:"column:unit;size:32"`
	CurrentStock float64 `gorm:"column:current_stock"`
	UnitPrice    float64 `gorm:"column:unit_price"`
}

// TableName returns the table name.
func (WarehouseMaterial) TableName() string {
	return "warehouse_materials"
}

// ToDomain converts the row to the engine type.
func (m WarehouseMaterial) ToDomain() reconcile.WarehouseMaterial {
	return reconcile.WarehouseMaterial{
		ID:           m.ID,
		Name:         m.Name,
		Category:     m.Category,
		Unit:         m.Unit,
		CurrentStock: m.CurrentStock,
		UnitPrice:    m.UnitPrice,
	}
}

// MaterialMapping is a confirmed association from a normalized calculator
// key to a catalog id. (calculator_name, calculator_category) is unique.
type MaterialMapping struct {
	ID                 uint      `gorm:"column:id;primaryKey;autoIncrement"`
	CalculatorName     string    `gorm:"column:calculator_name;size:255;not null;uniqueIndex:idx_material_mappings_key,priority:1"`
	CalculatorCategory string    `gorm:"column:calculator_category;size:128;not null;uniqueIndex:idx_material_mappings_key,priority:2"`
	WarehouseID        int64     `gorm:"column:warehouse_id;not null;index"`
	MappingType        string    `gorm:"column:mapping_type;size:16;not null"`
	Confidence         float64   `gorm:"column:confidence;not null"`
	ConfirmedBy        string    `gorm:"column:confirmed_by;size:255"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name.
func (MaterialMapping) TableName() string {
	return "material_mappings"
}

// ToDomain converts the row to the engine type.
func (m MaterialMapping) ToDomain() reconcile.MaterialMapping {
	return reconcile.MaterialMapping{
		CalculatorName:     m.CalculatorName,
		CalculatorCategory: m.CalculatorCategory,
		WarehouseID:        m.WarehouseID,
		MappingType:        reconcile.MappingType(m.MappingType),
		Confidence:         m.Confidence,
		ConfirmedBy:        m.ConfirmedBy,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// MappingFromDomain converts an engine mapping to a row.
func MappingFromDomain(m reconcile.MaterialMapping) MaterialMapping {
	return MaterialMapping{
		CalculatorName:     m.CalculatorName,
		CalculatorCategory: m.CalculatorCategory,
		WarehouseID:        m.WarehouseID,
		MappingType:        string(m.MappingType),
		Confidence:         m.Confidence,
		ConfirmedBy:        m.ConfirmedBy,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// All returns every model checked by the schema integrity check.
func All() []interface{} {
	return []interface{}{WarehouseMaterial{}, MaterialMapping{}}
}

// AutoMigrate creates or updates the mapping table. The catalog table is
// created only when createCatalog is set (local development and tests).
func AutoMigrate(db *gorm.DB, createCatalog bool) error {
	if createCatalog {
		if err := db.AutoMigrate(&WarehouseMaterial{}); err != nil {
			return err
		}
	}
	return db.AutoMigrate(&MaterialMapping{})
}
