package engine

import (
	"time"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// greedy iterates all index pairs and applies the first swap that improves
// the objective by more than the convergence threshold, restarting the scan
// after each accepted swap. Stops when a full pass yields no improving swap
// or the iteration budget is spent.
func (o *Optimizer) greedy(initial []model.Assignment, ctx *OptimizeContext, cfg Config, start time.Time) OptimizeResult {
	current := cloneAssignments(initial)
	currentScore := o.objective.Score(current, ctx, cfg)

	iterations := 0
	improved := true

	for improved && iterations < cfg.MaxIterations && !deadlineExceeded(cfg, start) {
		improved = false

	scan:
		for i := 0; i < len(current); i++ {
			for j := i + 1; j < len(current); j++ {
				iterations++
				if iterations >= cfg.MaxIterations || deadlineExceeded(cfg, start) {
					break scan
				}
				if !swapPreservesUniqueness(current, i, j) {
					continue
				}

				candidate := cloneAssignments(current)
				swapWorkers(candidate, i, j)
				candidateScore := o.objective.Score(candidate, ctx, cfg)

				if candidateScore > currentScore+cfg.ConvergenceThreshold {
					current = candidate
					currentScore = candidateScore
					improved = true
					break scan
				}
			}
		}
	}

	return OptimizeResult{
		Assignments: current,
		Score:       currentScore,
		Iterations:  iterations,
		Converged:   !improved,
	}
}
