package mappings

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"material-reconciler/core/reconcile"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Record is the exchange form of a mapping used by export and import.
type Record struct {
	CalculatorName     string    `json:"calculator_name" yaml:"calculator_name"`
	CalculatorCategory string    `json:"calculator_category" yaml:"calculator_category,omitempty"`
	WarehouseID        int64     `json:"warehouse_id" yaml:"warehouse_id"`
	MappingType        string    `json:"mapping_type" yaml:"mapping_type"`
	Confidence         float64   `json:"confidence" yaml:"confidence"`
	ConfirmedBy        string    `json:"confirmed_by,omitempty" yaml:"confirmed_by,omitempty"`
	UpdatedAt          time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Export writes every mapping of the lister in the given format ("yaml" or "json").
func Export(ctx context.Context, lister reconcile.MappingLister, w io.Writer, format string) (int, error) {
	list, err := lister.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list mappings: %w", err)
	}

	records := make([]Record, len(list))
	for i, m := range list {
		records[i] = Record{
			CalculatorName:     m.CalculatorName,
			CalculatorCategory: m.CalculatorCategory,
			WarehouseID:        m.WarehouseID,
			MappingType:        string(m.MappingType),
			Confidence:         m.Confidence,
			ConfirmedBy:        m.ConfirmedBy,
			UpdatedAt:          m.UpdatedAt,
		}
	}

	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return 0, fmt.Errorf("failed to encode mappings: %w", err)
		}
		if err := enc.Close(); err != nil {
			return 0, err
		}
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return 0, fmt.Errorf("failed to encode mappings: %w", err)
		}
	default:
		return 0, fmt.Errorf("unsupported export format %q", format)
	}
	return len(records), nil
}

// Import reads records in the given format and upserts them. Names are
// normalized the same way reconciliation normalizes them; records with an
// empty key, an unknown type, a non-positive warehouse id or a confidence
// outside [0,1] are rejected before anything is written.
func Import(ctx context.Context, store reconcile.MappingStore, r io.Reader, format string) (int, error) {
	var records []Record
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && err != io.EOF {
			return 0, fmt.Errorf("failed to decode mappings: %w", err)
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return 0, fmt.Errorf("failed to decode mappings: %w", err)
		}
	default:
		return 0, fmt.Errorf("unsupported import format %q", format)
	}

	mappings := make([]reconcile.MaterialMapping, 0, len(records))
	for i, rec := range records {
		key := reconcile.Normalize(rec.CalculatorName, rec.CalculatorCategory)
		if key.Empty() {
			return 0, fmt.Errorf("%w: record %d has an empty calculator_name", reconcile.ErrValidation, i)
		}
		mt := reconcile.MappingType(rec.MappingType)
		if !mt.Valid() {
			return 0, fmt.Errorf("%w: record %d has unknown mapping_type %q", reconcile.ErrValidation, i, rec.MappingType)
		}
		if rec.WarehouseID <= 0 {
			return 0, fmt.Errorf("%w: record %d has warehouse_id %d", reconcile.ErrValidation, i, rec.WarehouseID)
		}
		if rec.Confidence < 0 || rec.Confidence > 1 {
			return 0, fmt.Errorf("%w: record %d has confidence %v outside [0,1]", reconcile.ErrValidation, i, rec.Confidence)
		}
		mappings = append(mappings, reconcile.MaterialMapping{
			CalculatorName:     key.StoreName(),
			CalculatorCategory: key.Category,
			WarehouseID:        rec.WarehouseID,
			MappingType:        mt,
			Confidence:         rec.Confidence,
			ConfirmedBy:        strings.TrimSpace(rec.ConfirmedBy),
		})
	}

	for i, m := range mappings {
		if _, err := store.Upsert(ctx, m); err != nil {
			return i, fmt.Errorf("%w: %s: %v", reconcile.ErrStoreWrite, m.CalculatorName, err)
		}
	}
	return len(mappings), nil
}
