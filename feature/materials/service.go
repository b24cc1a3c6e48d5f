package materials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"material-reconciler/core/reconcile"

	"go.uber.org/zap"
)

// Service handles material reconciliation requests.
type Service struct {
	engine   *reconcile.Engine
	sessions *Registry
	timeout  time.Duration
	logger   *zap.Logger
}

// NewService creates a new materials service.
func NewService(engine *reconcile.Engine, sessions *Registry, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:   engine,
		sessions: sessions,
		timeout:  timeout,
		logger:   logger,
	}
}

// Reconcile validates the request, runs a batch under the request timeout
// and registers the resulting session.
func (s *Service) Reconcile(ctx context.Context, req ReconcileRequest) (*reconcile.Result, error) {
	if err := req.Validate(s.engine.Config().MaxBatch); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	session, res, err := s.engine.Reconcile(ctx, req.ToDomain())
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, reconcile.ErrTimeout) {
			return nil, fmt.Errorf("%w: %v", reconcile.ErrTimeout, err)
		}
		return nil, err
	}
	s.sessions.Put(session)
	return res, nil
}

// Session returns the current view of a session.
func (s *Service) Session(id string) (*SessionView, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return &SessionView{
		SessionID: session.ID,
		State:     session.State().String(),
		CreatedAt: session.CreatedAt.UTC().Format(time.RFC3339),
		Result:    session.Result(),
	}, nil
}

// Confirm records an operator decision within a session.
func (s *Service) Confirm(ctx context.Context, id string, req ConfirmRequest, operator string) (*reconcile.Confirmation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return session.Confirm(ctx, req.ID(), req.WarehouseID, operator)
}

// Search ranks the catalog against a free-text term.
func (s *Service) Search(ctx context.Context, term string, limit int) ([]reconcile.Candidate, error) {
	return s.engine.Search(ctx, term, limit)
}

// CreateMapping creates or replaces a mapping outside of a session.
func (s *Service) CreateMapping(ctx context.Context, req MappingCreateRequest, operator string) (*reconcile.MaterialMapping, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.engine.CreateMapping(ctx, reconcile.MappingRequest{
		CalculatorName:     req.CalculatorName,
		CalculatorCategory: req.CalculatorCategory,
		WarehouseID:        req.WarehouseID,
		MappingType:        reconcile.MappingType(req.MappingType),
		ConfirmedBy:        operator,
	})
}

// LookupMapping returns the stored mapping for a free-text name and category.
func (s *Service) LookupMapping(ctx context.Context, name, category string) (*reconcile.MaterialMapping, error) {
	return s.engine.LookupMapping(ctx, name, category)
}
