package reconcile

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Rank returns the top catalog suggestions for a single calculator material.
func (e *Engine) Rank(ctx context.Context, material CalculatorMaterial, limit int) ([]MatchSuggestion, error) {
	if Normalize(material.Name, material.Category).Empty() {
		return nil, fmt.Errorf("%w: material name is empty", ErrValidation)
	}
	idx, err := e.source.Index(ctx)
	if err != nil {
		return nil, err
	}
	return e.ranker.Rank(material, idx, limit), nil
}

// Search ranks the catalog against a free-text term using the same scoring
// as reconciliation, without a category.
func (e *Engine) Search(ctx context.Context, term string, limit int) ([]Candidate, error) {
	if Normalize(term, "").Empty() {
		return nil, fmt.Errorf("%w: search term is empty", ErrValidation)
	}
	idx, err := e.source.Index(ctx)
	if err != nil {
		return nil, err
	}
	return e.ranker.Search(term, idx, limit), nil
}

// Confirmation is the outcome of an operator decision.
type Confirmation struct {
	Mapping   MaterialMapping `json:"mapping"`
	Persisted bool            `json:"persisted"`
	Error     string          `json:"error,omitempty"`
}

// Confirm records an operator's choice for a line of the session. Every line
// sharing the material's normalized key moves to processed. Confirming an
// already processed line overwrites its mapping.
func (s *Session) Confirm(ctx context.Context, materialID string, warehouseID int64, operator string) (*Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDone || s.failed {
		return nil, fmt.Errorf("%w: session %s has not been reconciled", ErrValidation, s.ID)
	}

	line := -1
	for i, m := range s.lines {
		if m.ID == materialID {
			line = i
			break
		}
	}
	if line < 0 {
		return nil, fmt.Errorf("%w: material %q is not part of session %s", ErrNotFound, materialID, s.ID)
	}
	gi := s.lineKey[line]
	if gi < 0 {
		return nil, fmt.Errorf("%w: material %q has an empty name", ErrValidation, materialID)
	}

	e := s.engine
	idx, err := e.source.Index(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := idx.Get(warehouseID)
	if !ok {
		return nil, fmt.Errorf("%w: warehouse material %d", ErrNotFound, warehouseID)
	}

	grp := s.groups[gi]
	mapping := MaterialMapping{
		CalculatorName:     grp.key.StoreName(),
		CalculatorCategory: grp.key.Category,
		WarehouseID:        warehouseID,
		MappingType:        MappingManual,
		Confidence:         e.cfg.ManualConfidence,
		ConfirmedBy:        operator,
	}

	conf := &Confirmation{Mapping: mapping, Persisted: true}
	if e.store != nil {
		stored, err := e.store.Upsert(ctx, mapping)
		if err != nil {
			e.logger.Error("Failed to persist manual mapping",
				zap.String("session", s.ID),
				zap.String("key", mapping.CalculatorName),
				zap.Int64("warehouse_id", warehouseID),
				zap.Error(err))
			conf.Persisted = false
			conf.Error = fmt.Errorf("%w: %v", ErrStoreWrite, err).Error()
		} else if stored != nil {
			conf.Mapping = *stored
		}
	}

	grp.resolved = true
	grp.match = entry
	grp.mappingType = MappingManual
	grp.method = MethodManual
	grp.confidence = mapping.Confidence
	grp.persisted = conf.Persisted
	grp.writeErr = conf.Error
	grp.suggestions = nil
	grp.diagnostic = ""

	e.logger.Info("Material confirmed",
		zap.String("session", s.ID),
		zap.String("material_id", materialID),
		zap.Int64("warehouse_id", warehouseID),
		zap.Int("lines", len(grp.lines)),
		zap.Bool("persisted", conf.Persisted))

	return conf, nil
}

// MappingRequest creates a mapping outside of a session.
type MappingRequest struct {
	CalculatorName     string
	CalculatorCategory string
	WarehouseID        int64
	MappingType        MappingType
	ConfirmedBy        string
}

// CreateMapping normalizes the request key and upserts a mapping. Manual
// mappings get the configured manual confidence; auto mappings store the
// computed score against the chosen entry.
func (e *Engine) CreateMapping(ctx context.Context, req MappingRequest) (*MaterialMapping, error) {
	key := Normalize(req.CalculatorName, req.CalculatorCategory)
	if key.Empty() {
		return nil, fmt.Errorf("%w: calculator_name is empty", ErrValidation)
	}
	if !req.MappingType.Valid() {
		return nil, fmt.Errorf("%w: unknown mapping_type %q", ErrValidation, req.MappingType)
	}
	if req.WarehouseID <= 0 {
		return nil, fmt.Errorf("%w: warehouse_id must be positive", ErrValidation)
	}

	idx, err := e.source.Index(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := idx.Get(req.WarehouseID)
	if !ok {
		return nil, fmt.Errorf("%w: warehouse material %d", ErrNotFound, req.WarehouseID)
	}

	confidence := e.cfg.ManualConfidence
	if req.MappingType == MappingAuto {
		confidence = e.scorer.Compare(key, Normalize(entry.Name, entry.Category))
	}

	mapping := MaterialMapping{
		CalculatorName:     key.StoreName(),
		CalculatorCategory: key.Category,
		WarehouseID:        req.WarehouseID,
		MappingType:        req.MappingType,
		Confidence:         confidence,
		ConfirmedBy:        strings.TrimSpace(req.ConfirmedBy),
	}
	if e.store == nil {
		return &mapping, nil
	}

	stored, err := e.store.Upsert(ctx, mapping)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return stored, nil
}

// LookupMapping returns the stored mapping for a free-text name and category.
func (e *Engine) LookupMapping(ctx context.Context, name, category string) (*MaterialMapping, error) {
	key := Normalize(name, category)
	if key.Empty() {
		return nil, fmt.Errorf("%w: name is empty", ErrValidation)
	}
	if e.store == nil {
		return nil, ErrMappingNotFound
	}
	return e.store.Lookup(ctx, key)
}
