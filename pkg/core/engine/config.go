package engine

import "time"

// Strategy selects which metaheuristic the optimizer runs
type Strategy string

const (
	StrategyGreedy       Strategy = "GREEDY"
	StrategyHillClimbing Strategy = "HILL_CLIMBING"
	StrategyAnnealing    Strategy = "SIMULATED_ANNEALING"
	StrategyGenetic      Strategy = "GENETIC"
)

// Config controls one generation run.
// Weights conceptually sum to 1; the objective is their weighted combination.
type Config struct {
	Strategy             Strategy
	FairnessWeight       float64
	EfficiencyWeight     float64
	ConstraintWeight     float64
	MaxIterations        int
	ConvergenceThreshold float64
	RandomizationFactor  float64 // in [0,1], gates all stochastic behavior

	// MaxConsecutiveDays is the streak cap; candidates at or above it are
	// excluded from new assignments
	MaxConsecutiveDays int

	// WeekendAnalystsPerDay is the target slot count per weekend day
	WeekendAnalystsPerDay int

	// Timeout caps a single optimization pass; zero means no wall-clock cap
	Timeout time.Duration

	// ScreenerStrategy selects how weekday screener duty is sub-assigned
	ScreenerStrategy ScreenerStrategy

	// WeekendStrategy selects how optional weekend candidates are ranked
	WeekendStrategy WeekendStrategy

	// Seed makes the run reproducible when non-zero
	Seed int64
}

// ScreenerStrategy selects the screener sub-assignment policy
type ScreenerStrategy string

const (
	// ScreenerScored picks the highest scoring-function candidate
	ScreenerScored ScreenerStrategy = "scored"
	// ScreenerRoundRobin rotates duty through the shift pool by recency
	ScreenerRoundRobin ScreenerStrategy = "round-robin"
)

// WeekendStrategy selects how the optional weekend tier is ranked
type WeekendStrategy string

const (
	// WeekendRotationFairness ranks by recency- and count-based rotation score
	WeekendRotationFairness WeekendStrategy = "rotation-fairness"
	// WeekendLowestStreak ranks by lowest current streak first
	WeekendLowestStreak WeekendStrategy = "lowest-streak"
)

// DefaultConfig is the documented default algorithm configuration
func DefaultConfig() Config {
	return Config{
		Strategy:              StrategyHillClimbing,
		FairnessWeight:        0.4,
		EfficiencyWeight:      0.3,
		ConstraintWeight:      0.3,
		MaxIterations:         1000,
		ConvergenceThreshold:  0.001,
		RandomizationFactor:   0.1,
		MaxConsecutiveDays:    5,
		WeekendAnalystsPerDay: 1,
		ScreenerStrategy:      ScreenerScored,
		WeekendStrategy:       WeekendRotationFairness,
	}
}
