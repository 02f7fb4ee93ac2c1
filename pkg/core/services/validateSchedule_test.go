package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/db"
)

func scheduleFixture() ([]db.Schedule, map[string][]db.Assignment) {
	schedules := []db.Schedule{
		{ID: "old", RangeStart: "2026-02-01", RangeEnd: "2026-02-14", CreatedAt: "2026-02-01T10:00:00Z"},
		{ID: "new", RangeStart: "2026-03-01", RangeEnd: "2026-03-14", CreatedAt: "2026-03-01T10:00:00Z"},
	}
	assignments := map[string][]db.Assignment{
		"old": {
			{ID: "a1", ScheduleID: "old", WorkerID: "a-analyst", Date: "2026-02-02", Shift: "morning"},
		},
		"new": {
			{ID: "a2", ScheduleID: "new", WorkerID: "a-analyst", Date: "2026-03-02", Shift: "morning"},
			{ID: "a3", ScheduleID: "new", WorkerID: "b-analyst", Date: "2026-03-02", Shift: "evening"},
		},
	}
	return schedules, assignments
}

func TestValidateSchedule_ExplicitID(t *testing.T) {
	schedules, assignments := scheduleFixture()
	mock := &mockStore{
		workers:     rosterFixture(),
		schedules:   schedules,
		assignments: assignments,
	}

	result, err := ValidateSchedule(context.Background(), mock, zap.NewNop(), "old")
	require.NoError(t, err)

	assert.Equal(t, "old", result.ScheduleID)
	assert.True(t, result.Validation.IsValid)
}

func TestValidateSchedule_DefaultsToLatest(t *testing.T) {
	schedules, assignments := scheduleFixture()
	mock := &mockStore{
		workers:     rosterFixture(),
		schedules:   schedules,
		assignments: assignments,
	}

	result, err := ValidateSchedule(context.Background(), mock, zap.NewNop(), "")
	require.NoError(t, err)

	assert.Equal(t, "new", result.ScheduleID)
	assert.Len(t, result.Fairness.Loads, 9)
}

func TestValidateSchedule_DetectsRollingBreach(t *testing.T) {
	var assignments []db.Assignment
	for _, d := range []string{"02", "03", "04", "05", "06", "07"} {
		assignments = append(assignments, db.Assignment{
			ID:         "a" + d,
			ScheduleID: "s1",
			WorkerID:   "a-analyst",
			Date:       "2026-03-" + d,
			Shift:      "morning",
		})
	}
	mock := &mockStore{
		workers:     rosterFixture(),
		schedules:   []db.Schedule{{ID: "s1", CreatedAt: "2026-03-01T10:00:00Z"}},
		assignments: map[string][]db.Assignment{"s1": assignments},
	}

	result, err := ValidateSchedule(context.Background(), mock, zap.NewNop(), "s1")
	require.NoError(t, err)

	assert.False(t, result.Validation.IsValid)
	assert.NotEmpty(t, result.Validation.Violations)
}

func TestValidateSchedule_NoSchedules(t *testing.T) {
	mock := &mockStore{workers: rosterFixture()}

	_, err := ValidateSchedule(context.Background(), mock, zap.NewNop(), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no schedules found")
}

func TestValidateSchedule_UnknownID(t *testing.T) {
	schedules, assignments := scheduleFixture()
	mock := &mockStore{
		workers:     rosterFixture(),
		schedules:   schedules,
		assignments: assignments,
	}

	_, err := ValidateSchedule(context.Background(), mock, zap.NewNop(), "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
