package matcher

import (
	"fmt"
	"math"
	"time"
)

// Default configuration values.
const (
	// DefaultAlpha balances label similarity against structural
	// agreement in score propagation.
	DefaultAlpha = 0.5

	// DefaultMaxRounds caps the number of propagation rounds.
	DefaultMaxRounds = 10

	// DefaultTolerance stops propagation early once the largest
	// per-entry change in a round falls below it.
	DefaultTolerance = 1e-3

	// DefaultExpansionBudget bounds the number of frontier pops so
	// pathological inputs cannot run unbounded.
	DefaultExpansionBudget = 1 << 20
)

// Config tunes a single query execution. The zero value of MaxRounds,
// Tolerance, ExpansionBudget and Workers means "use the default";
// Alpha and MinScore are taken literally (an Alpha of 0 is a legal
// pure-structure weighting), so callers overriding a subset of options
// should start from DefaultConfig.
type Config struct {
	// Alpha is the label-vs-structure mixing weight in [0,1].
	// score' = Alpha*label + (1-Alpha)*structural.
	Alpha float64 `json:"alpha"`

	// MaxRounds is the propagation round cap.
	MaxRounds int `json:"max_rounds"`

	// Tolerance is the convergence threshold on the max absolute
	// per-entry change between rounds.
	Tolerance float64 `json:"tolerance"`

	// MinScore drops candidates scoring below it during search.
	// The default 0 keeps every staged candidate.
	MinScore float64 `json:"min_score"`

	// ExpansionBudget bounds frontier pops across all workers.
	ExpansionBudget int64 `json:"expansion_budget"`

	// Workers partitions the initial search branches across this many
	// goroutines. 1 (the default) preserves strict best-first order.
	Workers int `json:"workers"`

	// Timeout aborts the search when exceeded; 0 disables it.
	// Results found before the deadline are still returned.
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Alpha:           DefaultAlpha,
		MaxRounds:       DefaultMaxRounds,
		Tolerance:       DefaultTolerance,
		MinScore:        0,
		ExpansionBudget: DefaultExpansionBudget,
		Workers:         1,
	}
}

// withDefaults fills unset fields and validates the rest.
func (c Config) withDefaults() (Config, error) {
	if c.MaxRounds == 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.Tolerance == 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.ExpansionBudget == 0 {
		c.ExpansionBudget = DefaultExpansionBudget
	}
	if c.Workers == 0 {
		c.Workers = 1
	}

	switch {
	case math.IsNaN(c.Alpha) || c.Alpha < 0 || c.Alpha > 1:
		return c, fmt.Errorf("%w: alpha %v outside [0,1]", ErrBadConfig, c.Alpha)
	case c.MaxRounds < 0:
		return c, fmt.Errorf("%w: negative max rounds %d", ErrBadConfig, c.MaxRounds)
	case math.IsNaN(c.Tolerance) || c.Tolerance < 0:
		return c, fmt.Errorf("%w: negative tolerance %v", ErrBadConfig, c.Tolerance)
	case math.IsNaN(c.MinScore) || c.MinScore < 0 || c.MinScore > 1:
		return c, fmt.Errorf("%w: min score %v outside [0,1]", ErrBadConfig, c.MinScore)
	case c.ExpansionBudget < 0:
		return c, fmt.Errorf("%w: negative expansion budget %d", ErrBadConfig, c.ExpansionBudget)
	case c.Workers < 0:
		return c, fmt.Errorf("%w: negative worker count %d", ErrBadConfig, c.Workers)
	case c.Timeout < 0:
		return c, fmt.Errorf("%w: negative timeout %v", ErrBadConfig, c.Timeout)
	}
	return c, nil
}
