package reconcile

import "sort"

// Index is a catalog snapshot with every entry normalized once.
// It is immutable after BuildIndex and safe for concurrent use.
type Index struct {
	entries    []indexedEntry
	byID       map[int64]int
	byCategory map[string][]int
}

type indexedEntry struct {
	material WarehouseMaterial
	key      Key
}

// BuildIndex normalizes a catalog listing. Entries are ordered by id so that
// ranking ties resolve the same way regardless of source order.
func BuildIndex(materials []WarehouseMaterial) *Index {
	sorted := make([]WarehouseMaterial, len(materials))
	copy(sorted, materials)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	idx := &Index{
		entries:    make([]indexedEntry, 0, len(sorted)),
		byID:       make(map[int64]int, len(sorted)),
		byCategory: make(map[string][]int),
	}
	for _, m := range sorted {
		if _, dup := idx.byID[m.ID]; dup {
			continue
		}
		key := Normalize(m.Name, m.Category)
		pos := len(idx.entries)
		idx.entries = append(idx.entries, indexedEntry{material: m, key: key})
		idx.byID[m.ID] = pos
		if key.Category != "" {
			idx.byCategory[key.Category] = append(idx.byCategory[key.Category], pos)
		}
	}
	return idx
}

// Len returns the number of catalog entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Get returns the catalog entry with the given id.
func (idx *Index) Get(id int64) (WarehouseMaterial, bool) {
	pos, ok := idx.byID[id]
	if !ok {
		return WarehouseMaterial{}, false
	}
	return idx.entries[pos].material, true
}

// Materials returns the catalog entries ordered by id.
func (idx *Index) Materials() []WarehouseMaterial {
	out := make([]WarehouseMaterial, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.material
	}
	return out
}

// Ranker orders catalog entries by similarity to a calculator material.
type Ranker struct {
	scorer Scorer
	limit  int
	floor  float64
}

// NewRanker creates a ranker. limit is the default result size when callers pass 0.
func NewRanker(scorer Scorer, cfg Config) *Ranker {
	cfg = cfg.withDefaults()
	return &Ranker{scorer: scorer, limit: cfg.SuggestionLimit, floor: cfg.CategoryFloor}
}

// Rank returns the top suggestions for a calculator material.
func (r *Ranker) Rank(material CalculatorMaterial, idx *Index, limit int) []MatchSuggestion {
	candidates := r.RankKey(Normalize(material.Name, material.Category), idx, limit)
	out := make([]MatchSuggestion, len(candidates))
	for i, c := range candidates {
		out[i] = MatchSuggestion{
			CalculatorMaterial: material,
			WarehouseMatch:     c.WarehouseMaterial,
			Similarity:         c.Similarity,
		}
	}
	return out
}

// RankKey scores a normalized key against the catalog. When the key has a
// category and some same-category entry scores above the floor, only that
// category is ranked; otherwise the full catalog is.
func (r *Ranker) RankKey(key Key, idx *Index, limit int) []Candidate {
	if key.Empty() || idx == nil || idx.Len() == 0 {
		return nil
	}
	limit = r.effectiveLimit(limit)

	if key.Category != "" {
		if positions := idx.byCategory[key.Category]; len(positions) > 0 {
			scored := r.score(key, idx, positions)
			if len(scored) > 0 && scored[0].Similarity > r.floor {
				return truncate(scored, limit)
			}
		}
	}

	return truncate(r.score(key, idx, nil), limit)
}

// Search ranks the whole catalog against a free-text term.
func (r *Ranker) Search(term string, idx *Index, limit int) []Candidate {
	return r.RankKey(Normalize(term, ""), idx, limit)
}

// score evaluates the given positions (all entries when nil) and returns the
// non-zero candidates sorted by similarity desc, id asc.
func (r *Ranker) score(key Key, idx *Index, positions []int) []Candidate {
	n := len(positions)
	if positions == nil {
		n = len(idx.entries)
	}

	out := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		pos := i
		if positions != nil {
			pos = positions[i]
		}
		e := idx.entries[pos]
		s := r.scorer.Compare(key, e.key)
		if s <= 0 {
			continue
		}
		out = append(out, Candidate{WarehouseMaterial: e.material, Similarity: s})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *Ranker) effectiveLimit(limit int) int {
	if limit <= 0 {
		return r.limit
	}
	if limit > maxSuggestionLimit {
		return maxSuggestionLimit
	}
	return limit
}

func truncate(c []Candidate, limit int) []Candidate {
	if len(c) > limit {
		return c[:limit]
	}
	return c
}
