package reconcile

import "context"

// Catalog is the read side of the warehouse collaborator.
// Implementations live with the feature that owns the data source
// (database table, storage snapshot).
type Catalog interface {
	// Name returns a short identifier used in logs (e.g. "database", "storage").
	Name() string

	// Materials returns every catalog entry. The engine indexes and filters
	// the result itself, so implementations should load minimal columns in a
	// single query.
	Materials(ctx context.Context) ([]WarehouseMaterial, error)
}

// IndexSource provides a normalized catalog index. CatalogCache is the
// production implementation; tests may use StaticIndex.
type IndexSource interface {
	Index(ctx context.Context) (*Index, error)
}

// MappingStore persists confirmed associations keyed on (name, category).
type MappingStore interface {
	// Lookup returns the mapping for key or ErrMappingNotFound.
	// It must not modify state.
	Lookup(ctx context.Context, key Key) (*MaterialMapping, error)

	// Upsert inserts or atomically replaces the mapping for its key and
	// returns the stored row.
	Upsert(ctx context.Context, mapping MaterialMapping) (*MaterialMapping, error)
}

// MappingLister is implemented by stores that can enumerate their mappings.
// It is used by administrative tooling, never by the reconciliation flow.
type MappingLister interface {
	List(ctx context.Context) ([]MaterialMapping, error)
}

// StaticIndex serves a fixed catalog.
type StaticIndex struct {
	idx *Index
}

// NewStaticIndex indexes materials once.
func NewStaticIndex(materials []WarehouseMaterial) *StaticIndex {
	return &StaticIndex{idx: BuildIndex(materials)}
}

// Index implements IndexSource.
func (s *StaticIndex) Index(ctx context.Context) (*Index, error) {
	return s.idx, nil
}
