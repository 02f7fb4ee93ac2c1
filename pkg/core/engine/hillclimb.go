package engine

import (
	"time"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

const (
	hillClimbNeighbors       = 10
	hillClimbRestartInterval = 100
)

// hillClimb generates a batch of random single-swap neighbors each iteration
// and keeps the best one if it improves over the current solution by more
// than the convergence threshold. After a stretch of stagnant iterations it
// attempts one random restart before declaring a local optimum.
func (o *Optimizer) hillClimb(initial []model.Assignment, ctx *OptimizeContext, cfg Config, start time.Time) OptimizeResult {
	current := cloneAssignments(initial)
	currentScore := o.objective.Score(current, ctx, cfg)

	best := cloneAssignments(current)
	bestScore := currentScore

	stagnant := 0
	restarted := false
	localOptimum := false
	iterations := 0

	for iterations < cfg.MaxIterations && !deadlineExceeded(cfg, start) {
		iterations++

		var bestNeighbor []model.Assignment
		bestNeighborScore := currentScore

		for n := 0; n < hillClimbNeighbors; n++ {
			neighbor := o.randomSwapNeighbor(current)
			score := o.objective.Score(neighbor, ctx, cfg)
			if score > bestNeighborScore {
				bestNeighbor = neighbor
				bestNeighborScore = score
			}
		}

		if bestNeighbor != nil && bestNeighborScore > currentScore+cfg.ConvergenceThreshold {
			current = bestNeighbor
			currentScore = bestNeighborScore
			stagnant = 0

			if currentScore > bestScore {
				best = cloneAssignments(current)
				bestScore = currentScore
			}
			continue
		}

		stagnant++
		if stagnant >= hillClimbRestartInterval {
			if restarted {
				// Second stretch of stagnation after a restart: local optimum
				localOptimum = true
				break
			}
			// Random restart: shuffle the current solution with a few swaps
			restarted = true
			stagnant = 0
			for n := 0; n < hillClimbNeighbors; n++ {
				current = o.randomSwapNeighbor(current)
			}
			currentScore = o.objective.Score(current, ctx, cfg)
		}
	}

	if currentScore > bestScore {
		best = current
		bestScore = currentScore
	}

	return OptimizeResult{
		Assignments: best,
		Score:       bestScore,
		Iterations:  iterations,
		Converged:   localOptimum,
	}
}
