package reconcile

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Scorer compares two normalized keys and returns a similarity in [0,1].
// Implementations must be deterministic.
type Scorer interface {
	Compare(a, b Key) float64
}

// Similarity is the default Scorer: weighted token overlap, edit distance
// and category agreement.
type Similarity struct {
	tokenWeight    float64
	editWeight     float64
	categoryBonus  float64
	unitsInOverlap bool
}

// NewSimilarity creates a scorer from the matching configuration.
func NewSimilarity(cfg Config) *Similarity {
	return &Similarity{
		tokenWeight:    cfg.TokenWeight,
		editWeight:     cfg.EditWeight,
		categoryBonus:  cfg.CategoryBonus,
		unitsInOverlap: cfg.UnitsInOverlap,
	}
}

// Score compares a normalized calculator key with a catalog entry.
func (s *Similarity) Score(key Key, entry WarehouseMaterial) float64 {
	return s.Compare(key, Normalize(entry.Name, entry.Category))
}

// Compare implements Scorer.
func (s *Similarity) Compare(a, b Key) float64 {
	if a.Empty() || b.Empty() {
		return 0
	}

	score := s.tokenWeight*Jaccard(a.Tokens(s.unitsInOverlap), b.Tokens(s.unitsInOverlap)) +
		s.editWeight*EditSimilarity(a.Name, b.Name)
	if a.Category != "" && strings.EqualFold(a.Category, b.Category) {
		score += s.categoryBonus
	}

	return round6(clamp(score, 0, 1))
}

// Jaccard returns |A ∩ B| / |A ∪ B| over the token sets of a and b.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// EditSimilarity returns 1 - levenshtein(a, b) / max(len(a), len(b)),
// with lengths counted in runes. Empty input scores 0.
func EditSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	denom := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > denom {
		denom = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return math.Max(0, 1-float64(dist)/float64(denom))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
