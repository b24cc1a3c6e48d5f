// Package catalog provides the warehouse catalog sources used by the
// reconciliation engine.
//
// Two sources exist:
//
//   - DBCatalog reads the warehouse_materials table through GORM.
//   - SnapshotCatalog reads a JSON snapshot object from the storage bucket.
//
// Both implement reconcile.Catalog and are normally wrapped in a
// reconcile.CatalogCache. WriteSnapshot produces the object SnapshotCatalog
// consumes.
package catalog
