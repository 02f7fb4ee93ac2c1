package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

func fairnessWorkers() []*model.Worker {
	return []*model.Worker{
		{ID: "alice", Name: "Alice", Affinity: model.AffinityMorning},
		{ID: "bob", Name: "Bob", Affinity: model.AffinityMorning},
		{ID: "carol", Name: "Carol", Affinity: model.AffinityEvening},
	}
}

func TestEvaluate_UniformWorkload(t *testing.T) {
	e := NewEvaluator()

	var assignments []model.Assignment
	for _, id := range []string{"alice", "bob", "carol"} {
		for _, d := range []int{2, 3, 4, 5} {
			assignments = append(assignments, assignmentOn(id, day(d)))
		}
	}

	snapshot := e.Evaluate(assignments, fairnessWorkers())

	assert.Equal(t, 0.0, snapshot.WorkloadGini)
	assert.Equal(t, 0.0, snapshot.WorkloadStdDev)
	assert.Equal(t, 1.0, snapshot.WorkloadMaxMin)
	require.Len(t, snapshot.Loads, 3)
	for _, load := range snapshot.Loads {
		assert.Equal(t, 4, load.TotalDays)
	}
	// Even spread: the weighted overall score should be near its max
	assert.Greater(t, snapshot.OverallScore, 0.9)
}

func TestEvaluate_SkewedWorkloadRecommends(t *testing.T) {
	e := NewEvaluator()

	var assignments []model.Assignment
	for d := 2; d <= 11; d++ {
		assignments = append(assignments, assignmentOn("alice", day(d)))
	}
	assignments = append(assignments, assignmentOn("bob", day(2)))

	snapshot := e.Evaluate(assignments, fairnessWorkers())

	assert.Greater(t, snapshot.WorkloadGini, 0.0)
	assert.NotEmpty(t, snapshot.Recommendations)
}

func TestEvaluate_LongStreakRecommends(t *testing.T) {
	e := NewEvaluator()

	// Seven consecutive days trips the streak recommendation
	var assignments []model.Assignment
	for d := 2; d <= 8; d++ {
		assignments = append(assignments, assignmentOn("alice", day(d)))
	}

	snapshot := e.Evaluate(assignments, []*model.Worker{
		{ID: "alice", Name: "Alice", Affinity: model.AffinityMorning},
	})

	require.Len(t, snapshot.Loads, 1)
	assert.Equal(t, 7, snapshot.Loads[0].LongestStreak)
	assert.NotEmpty(t, snapshot.Recommendations)
}

func TestEvaluate_EmptySchedule(t *testing.T) {
	e := NewEvaluator()

	snapshot := e.Evaluate(nil, fairnessWorkers())

	assert.Equal(t, 0.0, snapshot.WorkloadGini)
	require.Len(t, snapshot.Loads, 3)
}

func TestGini(t *testing.T) {
	assert.Equal(t, 0.0, gini(nil))
	assert.Equal(t, 0.0, gini([]float64{0, 0, 0}))
	assert.Equal(t, 0.0, gini([]float64{4, 4, 4}))
	// One worker holding everything approaches maximal inequality
	assert.Greater(t, gini([]float64{12, 0, 0}), 0.6)
}

func TestDistributionFairness(t *testing.T) {
	assert.Equal(t, 1.0, distributionFairness(nil))
	assert.Equal(t, 1.0, distributionFairness([]float64{0, 0}))
	assert.Equal(t, 1.0, distributionFairness([]float64{3, 3, 3}))
	assert.Less(t, distributionFairness([]float64{6, 0}), 1.0)
}

func TestMaxMinRatio(t *testing.T) {
	assert.Equal(t, 0.0, maxMinRatio([]float64{3, 0}))
	assert.Equal(t, 2.0, maxMinRatio([]float64{2, 4}))
}

func TestLongestConsecutiveRun(t *testing.T) {
	dates := []time.Time{day(2), day(3), day(4), day(6), day(7)}
	assert.Equal(t, 3, longestConsecutiveRun(dates))
	assert.Equal(t, 0, longestConsecutiveRun(nil))
	assert.Equal(t, 1, longestConsecutiveRun([]time.Time{day(9)}))
}

func TestEvaluate_ScreenerFairnessPerCohort(t *testing.T) {
	e := NewEvaluator()

	workers := fairnessWorkers()

	// Screener days uneven inside the morning cohort, even in the evening cohort
	aliceScreens := assignmentOn("alice", day(2))
	aliceScreens.IsScreener = true
	aliceScreens2 := assignmentOn("alice", day(3))
	aliceScreens2.IsScreener = true
	carolScreens := assignmentOn("carol", day(2))
	carolScreens.IsScreener = true

	uneven := e.Evaluate([]model.Assignment{
		aliceScreens, aliceScreens2, carolScreens,
		assignmentOn("bob", day(2)), assignmentOn("bob", day(3)),
	}, workers)

	bobScreens := assignmentOn("bob", day(3))
	bobScreens.IsScreener = true
	even := e.Evaluate([]model.Assignment{
		aliceScreens, bobScreens, carolScreens,
		assignmentOn("alice", day(3)), assignmentOn("bob", day(2)),
	}, workers)

	assert.Greater(t, even.ScreenerFairness, uneven.ScreenerFairness)
}
