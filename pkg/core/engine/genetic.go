package engine

import (
	"sort"
	"time"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

const (
	geneticPopulationSize = 20
	geneticElitismRatio   = 0.2
	geneticTournamentSize = 3
	geneticCrossoverRate  = 0.8
	geneticMutationRate   = 0.1
)

type individual struct {
	assignments []model.Assignment
	score       float64
}

// genetic evolves a population seeded from the initial solution plus random
// neighbors. Each generation keeps the top fifth unchanged and fills the rest
// through tournament selection, midpoint crossover, and single-swap mutation.
func (o *Optimizer) genetic(initial []model.Assignment, ctx *OptimizeContext, cfg Config, start time.Time) OptimizeResult {
	generations := cfg.MaxIterations / 10
	if generations < 1 {
		generations = 1
	}

	population := make([]individual, 0, geneticPopulationSize)
	population = append(population, individual{assignments: cloneAssignments(initial)})
	for len(population) < geneticPopulationSize {
		population = append(population, individual{assignments: o.randomSwapNeighbor(initial)})
	}
	for i := range population {
		population[i].score = o.objective.Score(population[i].assignments, ctx, cfg)
	}

	best := individual{assignments: cloneAssignments(initial), score: population[0].score}
	iterations := 0

	for gen := 0; gen < generations && !deadlineExceeded(cfg, start); gen++ {
		iterations++

		sort.Slice(population, func(i, j int) bool {
			return population[i].score > population[j].score
		})

		if population[0].score > best.score {
			best = individual{
				assignments: cloneAssignments(population[0].assignments),
				score:       population[0].score,
			}
		}

		eliteCount := int(float64(geneticPopulationSize) * geneticElitismRatio)
		if eliteCount < 1 {
			eliteCount = 1
		}

		next := make([]individual, 0, geneticPopulationSize)
		next = append(next, population[:eliteCount]...)

		for len(next) < geneticPopulationSize {
			parent1 := o.tournamentSelect(population)
			parent2 := o.tournamentSelect(population)

			var child []model.Assignment
			if o.random.Float64() < geneticCrossoverRate {
				child = o.crossover(parent1.assignments, parent2.assignments)
			} else {
				child = cloneAssignments(parent1.assignments)
			}

			if o.random.Float64() < geneticMutationRate {
				child = o.randomSwapNeighbor(child)
			}

			next = append(next, individual{
				assignments: child,
				score:       o.objective.Score(child, ctx, cfg),
			})
		}

		population = next
	}

	for i := range population {
		if population[i].score > best.score {
			best = individual{
				assignments: cloneAssignments(population[i].assignments),
				score:       population[i].score,
			}
		}
	}

	return OptimizeResult{
		Assignments: best.assignments,
		Score:       best.score,
		Iterations:  iterations,
		Converged:   iterations >= generations,
	}
}

// tournamentSelect picks the fittest of a small random sample
func (o *Optimizer) tournamentSelect(population []individual) individual {
	best := population[o.random.Intn(len(population))]
	for i := 1; i < geneticTournamentSize; i++ {
		contender := population[o.random.Intn(len(population))]
		if contender.score > best.score {
			best = contender
		}
	}
	return best
}

// crossover splits the first parent at its midpoint and merges in the second
// parent's assignments for dates the first half does not already cover,
// preserving the one-assignment-per-(worker, date) invariant
func (o *Optimizer) crossover(parent1, parent2 []model.Assignment) []model.Assignment {
	mid := len(parent1) / 2
	child := cloneAssignments(parent1[:mid])

	usedSlots := make(map[string]bool, len(parent1))
	coveredDates := make(map[string]bool)
	for _, a := range child {
		usedSlots[a.WorkerID+"|"+model.DateKey(a.Date)] = true
		coveredDates[model.DateKey(a.Date)] = true
	}

	mergedDates := make(map[string]bool)
	for _, a := range parent2 {
		key := model.DateKey(a.Date)
		if coveredDates[key] {
			continue
		}
		if usedSlots[a.WorkerID+"|"+key] {
			continue
		}
		child = append(child, a)
		usedSlots[a.WorkerID+"|"+key] = true
		mergedDates[key] = true
	}

	// Top up dates neither the first half nor the second parent covered
	for _, a := range parent1[mid:] {
		key := model.DateKey(a.Date)
		if coveredDates[key] || mergedDates[key] {
			continue
		}
		if usedSlots[a.WorkerID+"|"+key] {
			continue
		}
		child = append(child, a)
		usedSlots[a.WorkerID+"|"+key] = true
	}

	return child
}
