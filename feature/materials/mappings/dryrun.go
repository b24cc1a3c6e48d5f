package mappings

import (
	"context"
	"sync"
	"time"

	"material-reconciler/core/reconcile"

	"go.uber.org/zap"
)

// DryRun reads from a store but never writes to it. Upserts are recorded so
// the caller can report what would have been persisted.
type DryRun struct {
	inner  reconcile.MappingStore
	logger *zap.Logger

	mu      sync.Mutex
	pending []reconcile.MaterialMapping
}

// NewDryRun wraps inner.
func NewDryRun(inner reconcile.MappingStore, logger *zap.Logger) *DryRun {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryRun{inner: inner, logger: logger}
}

// Lookup implements reconcile.MappingStore.
func (d *DryRun) Lookup(ctx context.Context, key reconcile.Key) (*reconcile.MaterialMapping, error) {
	return d.inner.Lookup(ctx, key)
}

// Upsert implements reconcile.MappingStore without writing.
func (d *DryRun) Upsert(ctx context.Context, m reconcile.MaterialMapping) (*reconcile.MaterialMapping, error) {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	d.mu.Lock()
	d.pending = append(d.pending, m)
	d.mu.Unlock()

	d.logger.Info("[DRY-RUN] Would persist mapping",
		zap.String("calculator_name", m.CalculatorName),
		zap.String("calculator_category", m.CalculatorCategory),
		zap.Int64("warehouse_id", m.WarehouseID),
		zap.String("mapping_type", string(m.MappingType)),
		zap.Float64("confidence", m.Confidence))
	return &m, nil
}

// Pending returns the mappings that would have been written.
func (d *DryRun) Pending() []reconcile.MaterialMapping {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]reconcile.MaterialMapping, len(d.pending))
	copy(out, d.pending)
	return out
}
