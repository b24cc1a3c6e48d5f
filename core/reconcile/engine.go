package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine matches calculator materials against the warehouse catalog.
// It is safe for concurrent use; per-batch state lives in Session.
type Engine struct {
	source IndexSource
	store  MappingStore
	scorer Scorer
	ranker *Ranker
	cfg    Config
	logger *zap.Logger
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(source IndexSource, store MappingStore, cfg Config, logger *zap.Logger) *Engine {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	scorer := NewSimilarity(cfg)
	return &Engine{
		source: source,
		store:  store,
		scorer: scorer,
		ranker: NewRanker(scorer, cfg),
		cfg:    cfg,
		logger: logger,
	}
}

// WithScorer returns a copy of the engine using a different scorer.
func (e *Engine) WithScorer(scorer Scorer) *Engine {
	c := *e
	c.scorer = scorer
	c.ranker = NewRanker(scorer, e.cfg)
	return &c
}

// Config returns the effective matching configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Reconcile runs a new session over materials and returns its result.
func (e *Engine) Reconcile(ctx context.Context, materials []CalculatorMaterial) (*Session, *Result, error) {
	s := e.NewSession(materials)
	res, err := s.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s, res, nil
}

// State is the lifecycle position of a Session.
type State int

const (
	StateInit State = iota
	StateDeduped
	StateStoreChecked
	StateScored
	StatePartitioned
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateDeduped:
		return "deduped"
	case StateStoreChecked:
		return "store_checked"
	case StateScored:
		return "scored"
	case StatePartitioned:
		return "partitioned"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Session is one reconciliation batch. Run executes it once; afterwards the
// session only changes through Confirm.
type Session struct {
	ID        string
	CreatedAt time.Time

	engine *Engine

	mu      sync.Mutex
	state   State
	failed  bool
	lines   []CalculatorMaterial
	lineKey []int // line index -> group index, -1 for invalid lines
	groups  []*group
}

// group is a set of lines sharing one normalized key.
type group struct {
	key      Key
	quantity float64
	lines    []int

	resolved    bool
	match       WarehouseMaterial
	mappingType MappingType
	method      MappingMethod
	confidence  float64
	persisted   bool
	writeErr    string

	suggestions []Candidate
	diagnostic  Diagnostic
}

// NewSession creates a session in the Init state. The input slice is copied.
func (e *Engine) NewSession(materials []CalculatorMaterial) *Session {
	lines := make([]CalculatorMaterial, len(materials))
	copy(lines, materials)
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		engine:    e,
		lines:     lines,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run executes the batch. A deadline on ctx that expires before the batch
// completes fails the whole call with ErrTimeout.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInit {
		return nil, ErrSessionDone
	}

	log := s.engine.logger.With(zap.String("session", s.ID))
	start := time.Now()

	s.dedup()
	s.state = StateDeduped

	if err := s.checkStore(ctx, log); err != nil {
		return nil, s.fail(err)
	}

	idx, catalogErr := s.engine.source.Index(ctx)
	if catalogErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, s.fail(ctxErr)
		}
		log.Warn("Catalog unavailable, affected materials will be left unmapped", zap.Error(catalogErr))
	}
	s.verifyStoreHits(idx, log)
	s.state = StateStoreChecked

	if catalogErr == nil {
		if err := s.score(ctx, idx, log); err != nil {
			return nil, s.fail(err)
		}
	}
	s.state = StateScored

	for _, g := range s.groups {
		if g.resolved {
			continue
		}
		if catalogErr != nil {
			g.suggestions = nil
			g.diagnostic = DiagnosticCatalogUnavailable
		}
	}
	s.state = StatePartitioned

	res := s.result()
	s.state = StateDone

	log.Info("Reconciliation finished",
		zap.Int("total", res.Summary.Total),
		zap.Int("unique_keys", res.Summary.UniqueKeys),
		zap.Int("processed", res.Summary.Processed),
		zap.Int("unmapped", res.Summary.Unmapped),
		zap.Duration("duration", time.Since(start)))

	return res, nil
}

// Result returns the current partition of the session, or nil before Run
// has completed.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDone || s.failed {
		return nil
	}
	return s.result()
}

// fail converts context errors into ErrTimeout and leaves the session unusable.
func (s *Session) fail(err error) error {
	s.state = StateDone
	s.failed = true
	s.groups = nil
	s.lineKey = nil
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// dedup groups lines by normalized key. Lines with an empty key are kept out
// of every group.
func (s *Session) dedup() {
	byKey := make(map[string]int)
	s.lineKey = make([]int, len(s.lines))

	for i, m := range s.lines {
		key := Normalize(m.Name, m.Category)
		if key.Empty() {
			s.lineKey[i] = -1
			continue
		}
		id := key.ID()
		gi, ok := byKey[id]
		if !ok {
			gi = len(s.groups)
			byKey[id] = gi
			s.groups = append(s.groups, &group{key: key})
		}
		g := s.groups[gi]
		g.quantity += m.Quantity
		g.lines = append(g.lines, i)
		s.lineKey[i] = gi
	}
}

func (s *Session) checkStore(ctx context.Context, log *zap.Logger) error {
	if s.engine.store == nil {
		return nil
	}

	found := make([]*MaterialMapping, len(s.groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.engine.cfg.Workers)

	for i, grp := range s.groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := s.engine.store.Lookup(gctx, grp.key)
			if err != nil {
				if !errors.Is(err, ErrMappingNotFound) {
					log.Warn("Mapping lookup failed, falling back to scoring",
						zap.String("key", grp.key.StoreName()),
						zap.Error(err))
				}
				return nil
			}
			found[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, m := range found {
		if m == nil {
			continue
		}
		grp := s.groups[i]
		grp.resolved = true
		grp.match = WarehouseMaterial{ID: m.WarehouseID}
		grp.mappingType = m.MappingType
		grp.method = MethodStore
		grp.confidence = m.Confidence
		grp.persisted = true
	}
	return nil
}

// verifyStoreHits attaches catalog entries to store hits. A hit whose entry
// has left the catalog is discarded so the group gets scored instead. Without
// a catalog, hits are kept with the bare warehouse id.
func (s *Session) verifyStoreHits(idx *Index, log *zap.Logger) {
	if idx == nil {
		return
	}
	for _, grp := range s.groups {
		if !grp.resolved || grp.method != MethodStore {
			continue
		}
		entry, ok := idx.Get(grp.match.ID)
		if !ok {
			log.Warn("Stored mapping points to a missing catalog entry",
				zap.String("key", grp.key.StoreName()),
				zap.Int64("warehouse_id", grp.match.ID))
			*grp = group{key: grp.key, quantity: grp.quantity, lines: grp.lines}
			continue
		}
		grp.match = entry
	}
}

func (s *Session) score(ctx context.Context, idx *Index, log *zap.Logger) error {
	cfg := s.engine.cfg
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for _, grp := range s.groups {
		if grp.resolved {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			candidates := s.engine.ranker.RankKey(grp.key, idx, cfg.SuggestionLimit)
			grp.suggestions = candidates
			if len(candidates) == 0 || !cfg.Accepts(candidates[0].Similarity) {
				return nil
			}

			top := candidates[0]
			grp.resolved = true
			grp.match = top.WarehouseMaterial
			grp.mappingType = MappingAuto
			grp.method = MethodAuto
			grp.confidence = top.Similarity
			grp.persisted = true

			if s.engine.store == nil {
				return nil
			}
			_, err := s.engine.store.Upsert(gctx, MaterialMapping{
				CalculatorName:     grp.key.StoreName(),
				CalculatorCategory: grp.key.Category,
				WarehouseID:        top.ID,
				MappingType:        MappingAuto,
				Confidence:         top.Similarity,
			})
			if err != nil {
				log.Error("Failed to persist auto mapping",
					zap.String("key", grp.key.StoreName()),
					zap.Int64("warehouse_id", top.ID),
					zap.Error(err))
				grp.persisted = false
				grp.writeErr = fmt.Errorf("%w: %v", ErrStoreWrite, err).Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// result expands groups back to the original lines in input order.
func (s *Session) result() *Result {
	res := &Result{
		SessionID: s.ID,
		Processed: []ProcessedItem{},
		Unmapped:  []UnmappedItem{},
	}
	res.Summary.Total = len(s.lines)
	res.Summary.UniqueKeys = len(s.groups)

	for i, line := range s.lines {
		gi := s.lineKey[i]
		if gi < 0 {
			res.Unmapped = append(res.Unmapped, UnmappedItem{
				CalculatorMaterial: line,
				SuggestedMatches:   []MatchSuggestion{},
				Diagnostic:         DiagnosticValidation,
			})
			res.Summary.Invalid++
			continue
		}

		grp := s.groups[gi]
		if grp.resolved {
			res.Processed = append(res.Processed, ProcessedItem{
				CalculatorMaterial: line,
				WarehouseMatch:     grp.match,
				MappingType:        grp.mappingType,
				MappingMethod:      grp.method,
				Confidence:         grp.confidence,
				Persisted:          grp.persisted,
				Error:              grp.writeErr,
			})
			switch grp.method {
			case MethodStore:
				res.Summary.FromStore++
			case MethodAuto:
				res.Summary.Auto++
			case MethodManual:
				res.Summary.Manual++
			}
			if !grp.persisted {
				res.Summary.NotPersisted++
			}
			continue
		}

		suggestions := make([]MatchSuggestion, len(grp.suggestions))
		for j, c := range grp.suggestions {
			suggestions[j] = MatchSuggestion{
				CalculatorMaterial: line,
				WarehouseMatch:     c.WarehouseMaterial,
				Similarity:         c.Similarity,
			}
		}
		res.Unmapped = append(res.Unmapped, UnmappedItem{
			CalculatorMaterial: line,
			SuggestedMatches:   suggestions,
			Diagnostic:         grp.diagnostic,
		})
	}

	res.Summary.Processed = len(res.Processed)
	res.Summary.Unmapped = len(res.Unmapped)
	return res
}

// Quantities returns the summed quantity per normalized key, in first-seen order.
func (s *Session) Quantities() []KeyQuantity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]KeyQuantity, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, KeyQuantity{Name: g.key.StoreName(), Category: g.key.Category, Quantity: g.quantity, Lines: len(g.lines)})
	}
	return out
}

// KeyQuantity is the aggregated demand for one normalized key.
type KeyQuantity struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity float64 `json:"quantity"`
	Lines    int     `json:"lines"`
}
