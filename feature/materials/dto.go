package materials

import (
	"fmt"
	"strconv"
	"strings"

	"material-reconciler/core/reconcile"
	"material-reconciler/core/utils"
)

// MaterialInput is a calculator line as submitted by the client.
// ID may be a string or a number; a missing ID becomes the 1-based position.
type MaterialInput struct {
	ID       any     `json:"id,omitempty" swaggertype:"string"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Quantity float64 `json:"quantity"`
}

// ReconcileRequest is the body of POST /reconcile.
type ReconcileRequest struct {
	Materials []MaterialInput `json:"materials"`
}

// Validate checks the batch shape. Individual names are not validated here;
// lines whose name normalizes to nothing come back as unmapped.
func (r ReconcileRequest) Validate(maxBatch int) error {
	if len(r.Materials) == 0 {
		return fmt.Errorf("%w: materials must not be empty", reconcile.ErrValidation)
	}
	if maxBatch > 0 && len(r.Materials) > maxBatch {
		return fmt.Errorf("%w: batch of %d exceeds the limit of %d", reconcile.ErrValidation, len(r.Materials), maxBatch)
	}

	seen := make(map[string]struct{}, len(r.Materials))
	for i, m := range r.Materials {
		if m.Quantity < 0 {
			return fmt.Errorf("%w: materials[%d].quantity must not be negative", reconcile.ErrValidation, i)
		}
		id := lineID(m.ID, i)
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate material id %q", reconcile.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ToDomain converts the request into engine input.
func (r ReconcileRequest) ToDomain() []reconcile.CalculatorMaterial {
	out := make([]reconcile.CalculatorMaterial, len(r.Materials))
	for i, m := range r.Materials {
		out[i] = reconcile.CalculatorMaterial{
			ID:       lineID(m.ID, i),
			Name:     m.Name,
			Category: m.Category,
			Quantity: m.Quantity,
		}
	}
	return out
}

func lineID(v any, pos int) string {
	id := strings.TrimSpace(utils.ToString(v))
	if id == "" {
		return strconv.Itoa(pos + 1)
	}
	return id
}

// ConfirmRequest is the body of POST /reconcile/:session/confirm.
type ConfirmRequest struct {
	MaterialID  any   `json:"material_id" swaggertype:"string"`
	WarehouseID int64 `json:"warehouse_id"`
}

// Validate checks the confirmation fields.
func (r ConfirmRequest) Validate() error {
	if r.ID() == "" {
		return fmt.Errorf("%w: material_id is required", reconcile.ErrValidation)
	}
	if r.WarehouseID <= 0 {
		return fmt.Errorf("%w: warehouse_id must be positive", reconcile.ErrValidation)
	}
	return nil
}

// ID returns the material id as a string.
func (r ConfirmRequest) ID() string {
	return strings.TrimSpace(utils.ToString(r.MaterialID))
}

// MappingCreateRequest is the body of POST /mappings.
type MappingCreateRequest struct {
	CalculatorName     string `json:"calculator_name"`
	CalculatorCategory string `json:"calculator_category"`
	WarehouseID        int64  `json:"warehouse_id"`
	MappingType        string `json:"mapping_type"`
}

// Validate checks the mapping fields.
func (r MappingCreateRequest) Validate() error {
	if strings.TrimSpace(r.CalculatorName) == "" {
		return fmt.Errorf("%w: calculator_name is required", reconcile.ErrValidation)
	}
	if r.WarehouseID <= 0 {
		return fmt.Errorf("%w: warehouse_id must be positive", reconcile.ErrValidation)
	}
	if !reconcile.MappingType(r.MappingType).Valid() {
		return fmt.Errorf("%w: mapping_type must be auto or manual", reconcile.ErrValidation)
	}
	return nil
}

// SessionView is the response of GET /reconcile/:session.
type SessionView struct {
	SessionID string            `json:"session_id"`
	State     string            `json:"state"`
	CreatedAt string            `json:"created_at"`
	Result    *reconcile.Result `json:"result,omitempty"`
}
