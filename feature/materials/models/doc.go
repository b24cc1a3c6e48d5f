// Package models defines the GORM rows of the material tables.
//
// warehouse_materials belongs to the inventory service and is read-only
// here. material_mappings is owned by this service and carries a unique
// index on (calculator_name, calculator_category), which the GORM store
// relies on for atomic upserts.
package models
