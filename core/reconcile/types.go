package reconcile

import "time"

// CalculatorMaterial is a free-text line item produced by the order calculator.
// It is input only and never persisted by this package.
type CalculatorMaterial struct {
	// ID identifies the line item within the submitted batch.
	ID string `json:"id"`

	// Name is the free-text material description, e.g. "Ткань велюр синяя 1.4м".
	Name string `json:"name"`

	// Category is the calculator category, if known.
	Category string `json:"category,omitempty"`

	// Quantity is the required amount in the calculator's unit.
	Quantity float64 `json:"quantity"`
}

// WarehouseMaterial is a canonical catalog entry owned by the warehouse.
type WarehouseMaterial struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	CurrentStock float64 `json:"current_stock"`
	UnitPrice    float64 `json:"unit_price"`
}

// MappingType records who created a mapping.
type MappingType string

const (
	// MappingAuto is written when a candidate reaches the auto-accept threshold.
	MappingAuto MappingType = "auto"
	// MappingManual is written when an operator confirms a candidate.
	MappingManual MappingType = "manual"
)

// Valid reports whether t is a known mapping type.
func (t MappingType) Valid() bool {
	return t == MappingAuto || t == MappingManual
}

// MappingMethod records how a processed item was resolved in a particular batch.
type MappingMethod string

const (
	// MethodStore means the item was resolved by an existing mapping.
	MethodStore MappingMethod = "store"
	// MethodAuto means the item was accepted by score.
	MethodAuto MappingMethod = "auto"
	// MethodManual means an operator confirmed the item in this session.
	MethodManual MappingMethod = "manual"
)

// Diagnostic explains why an item could not be scored normally.
type Diagnostic string

const (
	// DiagnosticValidation marks a line whose name normalizes to nothing.
	DiagnosticValidation Diagnostic = "validation"
	// DiagnosticCatalogUnavailable marks a line that could not be scored because
	// the catalog could not be read.
	DiagnosticCatalogUnavailable Diagnostic = "catalog_unavailable"
)

// MaterialMapping is a persisted association from a normalized calculator key
// to a warehouse catalog entry. At most one exists per (name, category).
type MaterialMapping struct {
	CalculatorName     string      `json:"calculator_name"`
	CalculatorCategory string      `json:"calculator_category"`
	WarehouseID        int64       `json:"warehouse_id"`
	MappingType        MappingType `json:"mapping_type"`
	Confidence         float64     `json:"confidence"`
	ConfirmedBy        string      `json:"confirmed_by,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// Key returns the store key of the mapping.
func (m MaterialMapping) Key() Key {
	return Key{Name: m.CalculatorName, Category: m.CalculatorCategory}
}

// MatchSuggestion is a ranked candidate for a calculator material.
type MatchSuggestion struct {
	CalculatorMaterial CalculatorMaterial `json:"calculator_material"`
	WarehouseMatch     WarehouseMaterial  `json:"warehouse_match"`
	Similarity         float64            `json:"similarity"`
}

// Candidate is a scored catalog entry without a calculator material attached.
type Candidate struct {
	WarehouseMaterial
	Similarity float64 `json:"similarity"`
}

// ProcessedItem is a calculator line that resolved to a warehouse entry.
type ProcessedItem struct {
	CalculatorMaterial CalculatorMaterial `json:"calculator_material"`
	WarehouseMatch     WarehouseMaterial  `json:"warehouse_match"`
	MappingType        MappingType        `json:"mapping_type"`
	MappingMethod      MappingMethod      `json:"mapping_method"`
	Confidence         float64            `json:"confidence"`

	// Persisted is false when the mapping could not be written to the store.
	// The classification still holds for this response.
	Persisted bool   `json:"persisted"`
	Error     string `json:"error,omitempty"`
}

// UnmappedItem is a calculator line that needs operator review.
type UnmappedItem struct {
	CalculatorMaterial CalculatorMaterial `json:"calculator_material"`
	SuggestedMatches   []MatchSuggestion  `json:"suggested_matches"`
	Diagnostic         Diagnostic         `json:"diagnostic,omitempty"`
}

// Result is the outcome of a reconciliation session.
type Result struct {
	SessionID string          `json:"session_id"`
	Processed []ProcessedItem `json:"processed"`
	Unmapped  []UnmappedItem  `json:"unmapped"`
	Summary   Summary         `json:"summary"`
}

// Summary provides aggregate counts for a session.
type Summary struct {
	// Total is the number of submitted lines.
	Total int `json:"total"`

	// UniqueKeys is the number of distinct normalized (name, category) keys.
	UniqueKeys int `json:"unique_keys"`

	Processed int `json:"processed"`
	Unmapped  int `json:"unmapped"`

	// FromStore, Auto and Manual split Processed by mapping method.
	FromStore int `json:"from_store"`
	Auto      int `json:"auto"`
	Manual    int `json:"manual"`

	// Invalid counts lines rejected by validation.
	Invalid int `json:"invalid"`

	// NotPersisted counts processed lines whose mapping write failed.
	NotPersisted int `json:"not_persisted"`
}
