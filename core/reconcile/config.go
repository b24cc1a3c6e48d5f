package reconcile

import "runtime"

// Config holds the tunable matching parameters.
// Values are loaded from MATCHING_* environment variables.
type Config struct {
	// AutoAccept is the inclusive score at which a candidate is accepted without review.
	// It is compared against the six-decimal score returned to clients.
	AutoAccept float64 `mapstructure:"auto_accept" default:"0.85"`

	// ManualConfidence is the confidence stored for operator-confirmed mappings.
	ManualConfidence float64 `mapstructure:"manual_confidence" default:"0.9"`

	// SuggestionLimit is the number of suggestions returned per unmapped item.
	SuggestionLimit int `mapstructure:"suggestion_limit" default:"5"`

	// CategoryFloor is the minimal same-category score that enables category pre-filtering.
	CategoryFloor float64 `mapstructure:"category_floor" default:"0.1"`

	// Workers bounds the scoring pool. Zero means runtime.NumCPU().
	Workers int `mapstructure:"workers" default:"0"`

	TokenWeight   float64 `mapstructure:"token_weight" default:"0.6"`
	EditWeight    float64 `mapstructure:"edit_weight" default:"0.3"`
	CategoryBonus float64 `mapstructure:"category_bonus" default:"0.1"`

	// UnitsInOverlap adds canonical unit tokens ("16мм") to the token overlap,
	// so materials differing only by size do not collapse onto one entry.
	UnitsInOverlap bool `mapstructure:"units_in_overlap" default:"true"`

	// MaxBatch caps the number of lines accepted in one request.
	MaxBatch int `mapstructure:"max_batch" default:"1000"`
}

const maxSuggestionLimit = 50

// DefaultConfig returns the built-in matching parameters.
func DefaultConfig() Config {
	return Config{
		AutoAccept:       0.85,
		ManualConfidence: 0.9,
		SuggestionLimit:  5,
		CategoryFloor:    0.1,
		TokenWeight:      0.6,
		EditWeight:       0.3,
		CategoryBonus:    0.1,
		UnitsInOverlap:   true,
		MaxBatch:         1000,
	}
}

// withDefaults fills zero values that would make the engine unusable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.AutoAccept <= 0 || c.AutoAccept > 1 {
		c.AutoAccept = d.AutoAccept
	}
	if c.ManualConfidence <= 0 || c.ManualConfidence > 1 {
		c.ManualConfidence = d.ManualConfidence
	}
	if c.SuggestionLimit <= 0 {
		c.SuggestionLimit = d.SuggestionLimit
	}
	if c.SuggestionLimit > maxSuggestionLimit {
		c.SuggestionLimit = maxSuggestionLimit
	}
	if c.CategoryFloor < 0 {
		c.CategoryFloor = d.CategoryFloor
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TokenWeight == 0 && c.EditWeight == 0 && c.CategoryBonus == 0 {
		c.TokenWeight, c.EditWeight, c.CategoryBonus = d.TokenWeight, d.EditWeight, d.CategoryBonus
	}
	if c.MaxBatch <= 0 {
		c.MaxBatch = d.MaxBatch
	}
	return c
}

// Accepts reports whether score reaches the auto-accept threshold.
// The boundary is inclusive. Scores are compared as reported, after rounding
// to six decimals, so a raw 0.8499996 counts as 0.85.
func (c Config) Accepts(score float64) bool {
	return score >= c.AutoAccept
}
