package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// OptimizeResult carries the improved assignment set plus execution metadata
// consumed by the reliability gate
type OptimizeResult struct {
	Assignments []model.Assignment
	Score       float64
	Iterations  int
	Elapsed     time.Duration
	Converged   bool
}

// Optimizer improves a feasible assignment set by repeatedly perturbing and
// recombining it to maximize the weighted objective. Four interchangeable
// search strategies operate on the same representation and objective, so the
// reliability gate's fallback ladder can swap them freely.
type Optimizer struct {
	objective *Objective
	random    *RandomController
	logger    *zap.Logger
}

// NewOptimizer creates an optimizer over the given objective
func NewOptimizer(objective *Objective, random *RandomController, logger *zap.Logger) *Optimizer {
	return &Optimizer{
		objective: objective,
		random:    random,
		logger:    logger,
	}
}

// Optimize runs the configured strategy over the initial assignment set.
// An unknown strategy selector falls back to greedy deterministically.
func (o *Optimizer) Optimize(initial []model.Assignment, ctx *OptimizeContext, cfg Config) OptimizeResult {
	start := time.Now()

	var result OptimizeResult
	switch cfg.Strategy {
	case StrategyHillClimbing:
		result = o.hillClimb(initial, ctx, cfg, start)
	case StrategyAnnealing:
		result = o.anneal(initial, ctx, cfg, start)
	case StrategyGenetic:
		result = o.genetic(initial, ctx, cfg, start)
	case StrategyGreedy:
		result = o.greedy(initial, ctx, cfg, start)
	default:
		o.logger.Warn("Unknown optimization strategy, falling back to greedy",
			zap.String("strategy", string(cfg.Strategy)))
		result = o.greedy(initial, ctx, cfg, start)
	}

	result.Elapsed = time.Since(start)
	o.logger.Debug("Optimization finished",
		zap.String("strategy", string(cfg.Strategy)),
		zap.Int("iterations", result.Iterations),
		zap.Float64("score", result.Score),
		zap.Duration("elapsed", result.Elapsed))

	return result
}

// deadlineExceeded reports whether the pass has exhausted its wall-clock cap
func deadlineExceeded(cfg Config, start time.Time) bool {
	return cfg.Timeout > 0 && time.Since(start) >= cfg.Timeout
}

// cloneAssignments deep-copies an assignment set so candidates never share
// backing storage
func cloneAssignments(assignments []model.Assignment) []model.Assignment {
	clone := make([]model.Assignment, len(assignments))
	copy(clone, assignments)
	return clone
}

// swapWorkers exchanges the workers of assignments i and j in place
func swapWorkers(assignments []model.Assignment, i, j int) {
	assignments[i].WorkerID, assignments[j].WorkerID = assignments[j].WorkerID, assignments[i].WorkerID
	assignments[i].IsScreener, assignments[j].IsScreener = assignments[j].IsScreener, assignments[i].IsScreener
}

// swapPreservesUniqueness reports whether swapping workers between i and j
// keeps the one-assignment-per-(worker, date) invariant intact
func swapPreservesUniqueness(assignments []model.Assignment, i, j int) bool {
	if assignments[i].WorkerID == assignments[j].WorkerID {
		return false
	}
	dateI := model.DateKey(assignments[i].Date)
	dateJ := model.DateKey(assignments[j].Date)
	if dateI == dateJ {
		return true
	}

	for k, a := range assignments {
		if k == i || k == j {
			continue
		}
		key := model.DateKey(a.Date)
		// Worker j moving onto date i must not collide, and vice versa
		if a.WorkerID == assignments[j].WorkerID && key == dateI {
			return false
		}
		if a.WorkerID == assignments[i].WorkerID && key == dateJ {
			return false
		}
	}
	return true
}

// randomSwapNeighbor produces a single random-swap neighbor, or the unchanged
// clone when no uniqueness-preserving swap is found quickly
func (o *Optimizer) randomSwapNeighbor(assignments []model.Assignment) []model.Assignment {
	neighbor := cloneAssignments(assignments)
	if len(neighbor) < 2 {
		return neighbor
	}

	for attempt := 0; attempt < 10; attempt++ {
		i := o.random.Intn(len(neighbor))
		j := o.random.Intn(len(neighbor))
		if i == j || !swapPreservesUniqueness(neighbor, i, j) {
			continue
		}
		swapWorkers(neighbor, i, j)
		return neighbor
	}
	return neighbor
}
