package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

func optimizerFixture(seed int64) (*Optimizer, *OptimizeContext, Config) {
	cfg := DefaultConfig()
	cfg.RandomizationFactor = 0
	cfg.MaxIterations = 300

	random := NewRandomController(seed, cfg.RandomizationFactor)
	objective := NewObjective(NewValidator(), NewEvaluator(), random)
	optimizer := NewOptimizer(objective, random, zap.NewNop())

	ctx := &OptimizeContext{
		Workers: []*model.Worker{
			{ID: "alice", Name: "Alice", Affinity: model.AffinityMorning},
			{ID: "bob", Name: "Bob", Affinity: model.AffinityMorning},
			{ID: "carol", Name: "Carol", Affinity: model.AffinityEvening},
		},
		RangeStart: day(1),
		RangeEnd:   day(8),
	}
	return optimizer, ctx, cfg
}

// skewedAssignments packs one worker with six days in a rolling week so an
// improving swap always exists
func skewedAssignments() []model.Assignment {
	var assignments []model.Assignment
	for _, d := range []int{2, 3, 4, 5, 6, 8} {
		assignments = append(assignments, assignmentOn("alice", day(d)))
	}
	assignments = append(assignments, assignmentOn("bob", day(1)))
	assignments = append(assignments, assignmentOn("carol", day(7)))
	return assignments
}

func assertUniqueSlots(t *testing.T, assignments []model.Assignment) {
	t.Helper()
	seen := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		key := a.WorkerID + "|" + model.DateKey(a.Date)
		assert.False(t, seen[key], "duplicate slot %s", key)
		seen[key] = true
	}
}

func TestOptimize_AllStrategiesImproveOrHold(t *testing.T) {
	for _, strategy := range []Strategy{StrategyGreedy, StrategyHillClimbing, StrategyAnnealing, StrategyGenetic} {
		t.Run(string(strategy), func(t *testing.T) {
			optimizer, ctx, cfg := optimizerFixture(11)
			cfg.Strategy = strategy

			initial := skewedAssignments()
			initialScore := optimizer.objective.Raw(initial, ctx, cfg)

			result := optimizer.Optimize(initial, ctx, cfg)

			assert.GreaterOrEqual(t, result.Score, initialScore)
			assert.Greater(t, result.Iterations, 0)
			assert.Len(t, result.Assignments, len(initial))
			assertUniqueSlots(t, result.Assignments)
		})
	}
}

func TestOptimize_GreedyRemovesRollingBreach(t *testing.T) {
	optimizer, ctx, cfg := optimizerFixture(11)
	cfg.Strategy = StrategyGreedy

	result := optimizer.Optimize(skewedAssignments(), ctx, cfg)

	validation := NewValidator().Validate(result.Assignments, nil)
	assert.True(t, validation.IsValid)
}

func TestOptimize_SeededDeterminism(t *testing.T) {
	run := func() OptimizeResult {
		optimizer, ctx, cfg := optimizerFixture(23)
		cfg.Strategy = StrategyHillClimbing
		return optimizer.Optimize(skewedAssignments(), ctx, cfg)
	}

	first := run()
	second := run()

	assert.Equal(t, first.Score, second.Score)
	require.Equal(t, len(first.Assignments), len(second.Assignments))
	for i := range first.Assignments {
		assert.Equal(t, first.Assignments[i].WorkerID, second.Assignments[i].WorkerID)
	}
}

func TestOptimize_HillClimbConvergedOnLocalOptimum(t *testing.T) {
	optimizer, ctx, cfg := optimizerFixture(11)
	cfg.Strategy = StrategyHillClimbing

	// A single assignment has no distinct neighbors, so the search stagnates
	// through a restart and declares a local optimum before the iteration cap
	solo := []model.Assignment{assignmentOn("alice", day(1))}
	result := optimizer.Optimize(solo, ctx, cfg)
	assert.True(t, result.Converged)
	assert.Less(t, result.Iterations, cfg.MaxIterations)

	// Ending on the iteration cap is not convergence
	cfg.MaxIterations = 50
	capped := optimizer.Optimize(solo, ctx, cfg)
	assert.False(t, capped.Converged)
	assert.Equal(t, 50, capped.Iterations)
}

func TestOptimize_UnknownStrategyFallsBack(t *testing.T) {
	optimizer, ctx, cfg := optimizerFixture(11)
	cfg.Strategy = Strategy("BOGUS")

	initial := skewedAssignments()
	result := optimizer.Optimize(initial, ctx, cfg)

	assert.GreaterOrEqual(t, result.Score, optimizer.objective.Raw(initial, ctx, cfg))
	assert.Len(t, result.Assignments, len(initial))
}

func TestSwapPreservesUniqueness(t *testing.T) {
	assignments := []model.Assignment{
		assignmentOn("alice", day(1)),
		assignmentOn("bob", day(1)),
		assignmentOn("alice", day(2)),
	}

	// Same worker never swaps with itself
	assert.False(t, swapPreservesUniqueness(assignments, 0, 2))
	// Same date is always safe
	assert.True(t, swapPreservesUniqueness(assignments, 0, 1))
	// Bob moving onto day 2 is fine, but alice moving onto day 1 collides
	// with her other slot there
	assert.False(t, swapPreservesUniqueness(assignments, 1, 2))
}

func TestRandomSwapNeighbor(t *testing.T) {
	optimizer, _, _ := optimizerFixture(11)

	initial := skewedAssignments()
	for i := 0; i < 20; i++ {
		neighbor := optimizer.randomSwapNeighbor(initial)
		assert.Len(t, neighbor, len(initial))
		assertUniqueSlots(t, neighbor)
	}

	// Sub-pair inputs come back unchanged
	single := []model.Assignment{assignmentOn("alice", day(1))}
	assert.Equal(t, single, optimizer.randomSwapNeighbor(single))
}

func TestCrossover_PreservesUniqueness(t *testing.T) {
	optimizer, _, _ := optimizerFixture(11)

	parent1 := skewedAssignments()
	parent2 := make([]model.Assignment, len(parent1))
	copy(parent2, parent1)
	for i := range parent2 {
		parent2[i].WorkerID = fmt.Sprintf("w%d", i%3)
	}

	child := optimizer.crossover(parent1, parent2)
	assertUniqueSlots(t, child)
}

func TestObjective_RawPerfectSchedule(t *testing.T) {
	optimizer, ctx, cfg := optimizerFixture(11)

	// Full coverage, near-even split, no violations
	var assignments []model.Assignment
	workerIDs := []string{"alice", "bob", "carol", "alice", "bob", "carol", "alice", "bob"}
	for d := 1; d <= 8; d++ {
		assignments = append(assignments, assignmentOn(workerIDs[d-1], day(d)))
	}

	raw := optimizer.objective.Raw(assignments, ctx, cfg)
	assert.Greater(t, raw, 0.8)
	assert.LessOrEqual(t, raw, 1.0)

	// With zero randomization, Score is exactly Raw
	assert.Equal(t, raw, optimizer.objective.Score(assignments, ctx, cfg))
}

func TestOptimizeContext_TotalDays(t *testing.T) {
	ctx := &OptimizeContext{RangeStart: day(1), RangeEnd: day(8)}
	assert.Equal(t, 8, ctx.TotalDays())
}
