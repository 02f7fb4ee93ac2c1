package engine

import (
	"math"
	"time"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

const (
	annealingInitialTemp = 1.0
	annealingCoolingRate = 0.95
	annealingMinTemp     = 0.01
)

// anneal runs simulated annealing with a single random-swap neighbor per
// iteration. Worse neighbors are accepted with probability exp(delta/T)
// adjusted by controller noise, allowing escapes from local optima while the
// temperature is high. The best-ever solution is tracked independently of the
// possibly-worse current state.
func (o *Optimizer) anneal(initial []model.Assignment, ctx *OptimizeContext, cfg Config, start time.Time) OptimizeResult {
	current := cloneAssignments(initial)
	currentScore := o.objective.Score(current, ctx, cfg)

	best := cloneAssignments(current)
	bestScore := currentScore

	temperature := annealingInitialTemp
	iterations := 0

	for temperature > annealingMinTemp && iterations < cfg.MaxIterations && !deadlineExceeded(cfg, start) {
		iterations++

		neighbor := o.randomSwapNeighbor(current)
		neighborScore := o.objective.Score(neighbor, ctx, cfg)
		delta := neighborScore - currentScore

		accept := delta > 0
		if !accept {
			probability := o.random.AcceptanceNoise(math.Exp(delta / temperature))
			accept = o.random.Float64() < probability
		}

		if accept {
			current = neighbor
			currentScore = neighborScore

			if currentScore > bestScore {
				best = cloneAssignments(current)
				bestScore = currentScore
			}
		}

		temperature *= annealingCoolingRate
	}

	return OptimizeResult{
		Assignments: best,
		Score:       bestScore,
		Iterations:  iterations,
		Converged:   temperature <= annealingMinTemp,
	}
}
