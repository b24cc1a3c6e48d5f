// Package database handles database connections and schema inspection.
//
// It wraps GORM and configures MySQL, PostgreSQL or SQLite connections from
// the application's configuration. SQLite is used for local development and
// in tests (":memory:").
//
// # Schema Inspection
//
// GetTableColumns reads the live column definitions of a table. The
// integrity feature compares them with the material models to detect
// schema drift before a reconciliation run depends on them.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Database connection failed", zap.Error(err))
//	}
//
//	columns, err := database.GetTableColumns(db, "material_mappings")
package database
