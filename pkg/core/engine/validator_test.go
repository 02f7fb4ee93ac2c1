package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func assignmentOn(workerID string, date time.Time) model.Assignment {
	return model.Assignment{
		ID:       workerID + "-" + model.DateKey(date),
		Date:     date,
		WorkerID: workerID,
		Shift:    model.ShiftMorning,
		Origin:   model.OriginNew,
	}
}

func TestValidate_CleanSchedule(t *testing.T) {
	v := NewValidator()

	assignments := []model.Assignment{
		assignmentOn("alice", day(2)),
		assignmentOn("alice", day(3)),
		assignmentOn("bob", day(2)),
	}

	result := v.Validate(assignments, nil)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Violations)
	assert.Equal(t, 1.0, result.Score)
}

func TestValidate_BlackoutIsHardCritical(t *testing.T) {
	v := NewValidator()

	constraints := []model.GlobalConstraint{
		{
			ID:       "c1",
			Kind:     model.ConstraintBlackoutDate,
			Interval: model.DateInterval{Start: day(5), End: day(6)},
			Severity: model.SeverityHard,
		},
	}
	assignments := []model.Assignment{
		assignmentOn("alice", day(4)),
		assignmentOn("alice", day(5)),
		assignmentOn("bob", day(6)),
	}

	result := v.Validate(assignments, constraints)

	assert.False(t, result.IsValid)
	require.Len(t, result.Violations, 2)
	for _, violation := range result.Violations {
		assert.Equal(t, model.ConstraintBlackoutDate, violation.Kind)
		assert.Equal(t, ViolationCritical, violation.Level)
		assert.True(t, violation.Hard)
	}
	assert.NotEmpty(t, result.Suggestions)
}

func TestValidate_RollingWindow(t *testing.T) {
	v := NewValidator()

	// Six worked days inside March 2-8 breaches the 5-in-7 cap
	var assignments []model.Assignment
	for _, d := range []int{2, 3, 4, 5, 6, 8} {
		assignments = append(assignments, assignmentOn("alice", day(d)))
	}
	// Five in seven is allowed
	for _, d := range []int{2, 3, 4, 5, 6} {
		assignments = append(assignments, assignmentOn("bob", day(d)))
	}

	result := v.Validate(assignments, nil)

	assert.False(t, result.IsValid)
	require.Len(t, result.Violations, 1)
	violation := result.Violations[0]
	assert.Equal(t, KindRollingWindow, violation.Kind)
	assert.Equal(t, ViolationCritical, violation.Level)
	assert.True(t, violation.Hard)
	assert.Equal(t, "alice", violation.WorkerID)
	assert.Equal(t, 6, violation.AffectedCount)
}

func TestValidate_RollingWindowReportedOncePerWorker(t *testing.T) {
	v := NewValidator()

	// Ten consecutive days: several windows breach, but one report suffices
	var assignments []model.Assignment
	for d := 2; d <= 11; d++ {
		assignments = append(assignments, assignmentOn("alice", day(d)))
	}

	result := v.Validate(assignments, nil)

	count := 0
	for _, violation := range result.Violations {
		if violation.Kind == KindRollingWindow {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestValidate_ScreenerLimits(t *testing.T) {
	v := NewValidator()

	constraints := []model.GlobalConstraint{
		{
			ID:             "max",
			Kind:           model.ConstraintMaxScreenerDays,
			TargetWorkerID: "alice",
			Severity:       model.SeveritySoft,
			Params:         model.ConstraintParams{MaxScreenerDays: 2},
		},
		{
			ID:             "min",
			Kind:           model.ConstraintMinScreenerDays,
			TargetWorkerID: "bob",
			Severity:       model.SeveritySoft,
			Params:         model.ConstraintParams{MinScreenerDays: 1},
		},
	}

	var assignments []model.Assignment
	for _, d := range []int{2, 3, 4} {
		a := assignmentOn("alice", day(d))
		a.IsScreener = true
		assignments = append(assignments, a)
	}
	assignments = append(assignments, assignmentOn("bob", day(2)))

	result := v.Validate(assignments, constraints)

	// Soft violations do not invalidate the schedule
	assert.True(t, result.IsValid)
	require.Len(t, result.Violations, 2)

	byKind := make(map[model.ConstraintKind]Violation)
	for _, violation := range result.Violations {
		byKind[violation.Kind] = violation
	}
	assert.Equal(t, ViolationMedium, byKind[model.ConstraintMaxScreenerDays].Level)
	assert.Equal(t, ViolationLow, byKind[model.ConstraintMinScreenerDays].Level)
}

func TestValidate_ScreenerLimitDefaults(t *testing.T) {
	v := NewValidator()

	// Zero-valued params fall back to the documented defaults (max 10)
	constraints := []model.GlobalConstraint{
		{
			ID:             "max",
			Kind:           model.ConstraintMaxScreenerDays,
			TargetWorkerID: "alice",
		},
	}

	var assignments []model.Assignment
	for d := 1; d <= 11; d++ {
		a := assignmentOn("alice", day(d))
		a.IsScreener = true
		assignments = append(assignments, a)
	}

	result := v.Validate(assignments, constraints)

	found := false
	for _, violation := range result.Violations {
		if violation.Kind == model.ConstraintMaxScreenerDays {
			found = true
			assert.Equal(t, 1, violation.AffectedCount)
		}
	}
	assert.True(t, found)
}

func TestValidate_ScreenerPreferences(t *testing.T) {
	v := NewValidator()

	constraints := []model.GlobalConstraint{
		{
			ID:             "pref",
			Kind:           model.ConstraintPreferredScreener,
			TargetWorkerID: "alice",
			Interval:       model.DateInterval{Start: day(1), End: day(31)},
		},
		{
			ID:             "unavail",
			Kind:           model.ConstraintUnavailableScreener,
			TargetWorkerID: "bob",
			Interval:       model.DateInterval{Start: day(1), End: day(31)},
		},
	}

	bobScreens := assignmentOn("bob", day(3))
	bobScreens.IsScreener = true
	assignments := []model.Assignment{
		assignmentOn("alice", day(2)), // present but never screens
		bobScreens,
	}

	result := v.Validate(assignments, constraints)

	byKind := make(map[model.ConstraintKind]Violation)
	for _, violation := range result.Violations {
		byKind[violation.Kind] = violation
	}
	assert.Contains(t, byKind, model.ConstraintPreferredScreener)
	assert.Contains(t, byKind, model.ConstraintUnavailableScreener)
	assert.Equal(t, ViolationMedium, byKind[model.ConstraintUnavailableScreener].Level)
}

func TestValidate_ScoreSeverityWeighting(t *testing.T) {
	v := NewValidator()

	constraints := []model.GlobalConstraint{
		{
			ID:       "c1",
			Kind:     model.ConstraintBlackoutDate,
			Interval: model.DateInterval{Start: day(5), End: day(5)},
		},
	}
	// 10 assignments, 1 critical violation touching 1: score = 1 - 1.0*1/10
	var assignments []model.Assignment
	for d := 1; d <= 10; d++ {
		assignments = append(assignments, assignmentOn("w"+string(rune('a'+d)), day(d)))
	}

	result := v.Validate(assignments, constraints)
	assert.InDelta(t, 0.9, result.Score, 1e-9)
}

func TestValidate_EmptySchedule(t *testing.T) {
	v := NewValidator()

	result := v.Validate(nil, nil)
	assert.True(t, result.IsValid)
	assert.Equal(t, 1.0, result.Score)
}
