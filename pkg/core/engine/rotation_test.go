package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

func testStateMachine(cfg Config) *StateMachine {
	return NewStateMachine(NewScorer(), NewRandomController(7, cfg.RandomizationFactor), zap.NewNop(), cfg)
}

// One worker per rotation pattern; March 1 2026 is a Sunday
func rotationWorkers() []*model.Worker {
	return []*model.Worker{
		{ID: "alice", Name: "Alice", Affinity: model.AffinityMorning, StartingPattern: model.PatternSunThu},
		{ID: "bob", Name: "Bob", Affinity: model.AffinityMorning, StartingPattern: model.PatternMonFri},
		{ID: "carol", Name: "Carol", Affinity: model.AffinityEvening, StartingPattern: model.PatternTueSat},
	}
}

func weekInput(workers []*model.Worker) GenerationInput {
	return GenerationInput{
		RangeStart: day(1),
		RangeEnd:   day(7),
		Workers:    workers,
	}
}

func assignmentsByKey(assignments []model.Assignment) map[string]model.Assignment {
	byKey := make(map[string]model.Assignment, len(assignments))
	for _, a := range assignments {
		byKey[a.WorkerID+"|"+model.DateKey(a.Date)] = a
	}
	return byKey
}

func TestGenerate_OneWeek(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	result := sm.Generate(weekInput(rotationWorkers()))

	byKey := assignmentsByKey(result.Assignments)

	// One assignment per (worker, date)
	assert.Len(t, byKey, len(result.Assignments))

	// Sunday belongs to the SUN_THU holder, Saturday to the TUE_SAT holder
	sunday, ok := byKey["alice|2026-03-01"]
	require.True(t, ok)
	assert.Equal(t, model.ShiftWeekend, sunday.Shift)

	saturday, ok := byKey["carol|2026-03-07"]
	require.True(t, ok)
	assert.Equal(t, model.ShiftWeekend, saturday.Shift)

	// Friday is outside the SUN_THU pattern
	_, ok = byKey["alice|2026-03-06"]
	assert.False(t, ok)

	// Carol's pattern starts on Tuesday
	_, ok = byKey["carol|2026-03-02"]
	assert.False(t, ok)
	_, ok = byKey["carol|2026-03-03"]
	assert.True(t, ok)

	assert.Empty(t, result.Conflicts)
	assert.Equal(t, 0, result.FallbackCount)
}

func TestGenerate_PatternsRotateWeekly(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	result := sm.Generate(GenerationInput{
		RangeStart: day(1),
		RangeEnd:   day(14),
		Workers:    rotationWorkers(),
	})

	byKey := assignmentsByKey(result.Assignments)

	// Week two: MON_FRI advances to SUN_THU, SUN_THU advances to TUE_SAT
	sunday, ok := byKey["bob|2026-03-08"]
	require.True(t, ok)
	assert.Equal(t, model.ShiftWeekend, sunday.Shift)

	saturday, ok := byKey["alice|2026-03-14"]
	require.True(t, ok)
	assert.Equal(t, model.ShiftWeekend, saturday.Shift)
}

func TestGenerate_VacationFallsToOptionalTier(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	workers := rotationWorkers()
	workers[0].Vacations = []model.DateInterval{{Start: day(1), End: day(1)}}

	result := sm.Generate(weekInput(workers))

	byKey := assignmentsByKey(result.Assignments)
	_, aliceWorks := byKey["alice|2026-03-01"]
	assert.False(t, aliceWorks)

	// The slot passes to the weekend-capable optional tier
	carol, ok := byKey["carol|2026-03-01"]
	require.True(t, ok)
	assert.Equal(t, model.ShiftWeekend, carol.Shift)
	assert.Equal(t, 0, result.FallbackCount)
}

func TestGenerate_FallbackRecruitment(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	// Both weekend-capable workers are away on the first Sunday
	workers := rotationWorkers()
	workers[0].Vacations = []model.DateInterval{{Start: day(1), End: day(1)}}
	workers[2].Vacations = []model.DateInterval{{Start: day(1), End: day(1)}}

	result := sm.Generate(GenerationInput{
		RangeStart: day(1),
		RangeEnd:   day(1),
		Workers:    workers,
	})

	byKey := assignmentsByKey(result.Assignments)
	bob, ok := byKey["bob|2026-03-01"]
	require.True(t, ok)
	assert.Equal(t, model.ShiftWeekend, bob.Shift)
	assert.Equal(t, 1, result.FallbackCount)
}

func TestGenerate_MissingWeekendCoverage(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	workers := rotationWorkers()
	for _, w := range workers {
		w.Vacations = []model.DateInterval{{Start: day(1), End: day(1)}}
	}

	result := sm.Generate(GenerationInput{
		RangeStart: day(1),
		RangeEnd:   day(1),
		Workers:    workers,
	})

	assert.Empty(t, result.Assignments)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, model.ConflictMissingWeekendCoverage, result.Conflicts[0].Type)
	assert.Equal(t, model.ConflictCritical, result.Conflicts[0].Severity)
}

func TestGenerate_InsufficientStaffOnWeekday(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	workers := rotationWorkers()
	for _, w := range workers {
		w.Vacations = []model.DateInterval{{Start: day(2), End: day(2)}}
	}

	result := sm.Generate(GenerationInput{
		RangeStart: day(2),
		RangeEnd:   day(2),
		Workers:    workers,
	})

	assert.Empty(t, result.Assignments)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, model.ConflictInsufficientStaff, result.Conflicts[0].Type)
}

func TestGenerate_BlackoutSkipsDay(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	input := weekInput(rotationWorkers())
	input.Constraints = []model.GlobalConstraint{
		{
			ID:       "holiday",
			Kind:     model.ConstraintBlackoutDate,
			Interval: model.DateInterval{Start: day(3), End: day(3)},
			Severity: model.SeverityHard,
		},
	}

	result := sm.Generate(input)

	for _, a := range result.Assignments {
		assert.NotEqual(t, "2026-03-03", model.DateKey(a.Date))
	}
	found := false
	for _, c := range result.Conflicts {
		if c.Type == model.ConflictBlackoutDate {
			found = true
			assert.Equal(t, model.ConflictCritical, c.Severity)
		}
	}
	assert.True(t, found)
}

func TestGenerate_WeekendSlotOverride(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	input := weekInput(rotationWorkers())
	input.WeekendSlotOverrides = map[string]int{"2026-03-01": 2}

	result := sm.Generate(input)

	byKey := assignmentsByKey(result.Assignments)
	_, alice := byKey["alice|2026-03-01"]
	_, carol := byKey["carol|2026-03-01"]
	assert.True(t, alice)
	assert.True(t, carol)
}

func TestGenerate_MandatoryExceedsSlots(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	workers := []*model.Worker{
		{ID: "alice", Name: "Alice", Affinity: model.AffinityMorning, StartingPattern: model.PatternSunThu},
		{ID: "dave", Name: "Dave", Affinity: model.AffinityMorning, StartingPattern: model.PatternSunThu},
	}

	result := sm.Generate(GenerationInput{
		RangeStart: day(1),
		RangeEnd:   day(1),
		Workers:    workers,
	})

	// Both mandatory workers are assigned despite the single configured slot
	assert.Len(t, result.Assignments, 2)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, model.ConflictMandatoryOverride, result.Conflicts[0].Type)
	assert.Equal(t, model.ConflictLow, result.Conflicts[0].Severity)
}

func TestGenerate_OverwriteReported(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	input := weekInput(rotationWorkers())
	input.Existing = []model.Assignment{
		{
			ID:       "prev",
			Date:     day(3),
			WorkerID: "carol",
			Shift:    model.ShiftMorning,
			Origin:   model.OriginNew,
		},
	}

	result := sm.Generate(input)

	byKey := assignmentsByKey(result.Assignments)
	carol, ok := byKey["carol|2026-03-03"]
	require.True(t, ok)
	assert.Equal(t, model.OriginOverwrite, carol.Origin)
	assert.Equal(t, model.ShiftEvening, carol.Shift)

	// Carol is the only evening analyst, so she also takes screener duty;
	// the overwrite record reflects the final state, not the commit-time one
	assert.True(t, carol.IsScreener)

	require.Len(t, result.Overwrites, 1)
	overwrite := result.Overwrites[0]
	assert.Equal(t, "carol", overwrite.WorkerID)
	assert.Equal(t, model.ShiftMorning, overwrite.PreviousShift)
	assert.Equal(t, model.ShiftEvening, overwrite.ProposedShift)
	assert.False(t, overwrite.PreviousScreen)
	assert.True(t, overwrite.ProposedScreen)
}

func TestGenerate_OverwriteReportedForScreenerOnlyChange(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	input := weekInput(rotationWorkers())
	input.Existing = []model.Assignment{
		{
			ID:         "prev",
			Date:       day(3),
			WorkerID:   "carol",
			Shift:      model.ShiftEvening,
			IsScreener: false,
		},
	}

	result := sm.Generate(input)

	// Same shift as before, but carol gains screener duty
	require.Len(t, result.Overwrites, 1)
	overwrite := result.Overwrites[0]
	assert.Equal(t, "carol", overwrite.WorkerID)
	assert.Equal(t, model.ShiftEvening, overwrite.PreviousShift)
	assert.Equal(t, model.ShiftEvening, overwrite.ProposedShift)
	assert.False(t, overwrite.PreviousScreen)
	assert.True(t, overwrite.ProposedScreen)
}

func TestGenerate_UnchangedCarryoverNotReportedAsOverwrite(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	input := weekInput(rotationWorkers())
	input.Existing = []model.Assignment{
		{
			ID:         "prev",
			Date:       day(3),
			WorkerID:   "carol",
			Shift:      model.ShiftEvening,
			IsScreener: true,
		},
	}

	result := sm.Generate(input)

	byKey := assignmentsByKey(result.Assignments)
	carol, ok := byKey["carol|2026-03-03"]
	require.True(t, ok)
	assert.Equal(t, model.OriginOverwrite, carol.Origin)
	assert.True(t, carol.IsScreener)

	assert.Empty(t, result.Overwrites)
}

func TestGenerate_ScreenerPerShift(t *testing.T) {
	sm := testStateMachine(DefaultConfig())

	workers := rotationWorkers()
	workers[0].Skills = []string{model.SkillScreenerTrained}

	result := sm.Generate(GenerationInput{
		RangeStart: day(3), // Tuesday: all three patterns cover it
		RangeEnd:   day(3),
		Workers:    workers,
	})

	screeners := make(map[model.ShiftType]int)
	for _, a := range result.Assignments {
		if a.IsScreener {
			screeners[a.Shift]++
		}
	}
	assert.Equal(t, 1, screeners[model.ShiftMorning])
	assert.Equal(t, 1, screeners[model.ShiftEvening])
}

func TestGenerate_StreakCapExcludes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConsecutiveDays = 2
	sm := testStateMachine(cfg)

	result := sm.Generate(weekInput([]*model.Worker{
		{ID: "alice", Name: "Alice", Affinity: model.AffinityMorning, StartingPattern: model.PatternSunThu},
	}))

	// SUN_THU covers five days; the cap forces a rest day after every two
	var worked []string
	for _, a := range result.Assignments {
		worked = append(worked, model.DateKey(a.Date))
	}
	assert.Equal(t, []string{"2026-03-01", "2026-03-02", "2026-03-04", "2026-03-05"}, worked)
}

func TestGenerate_SeededRunsAreReproducible(t *testing.T) {
	run := func() []model.Assignment {
		sm := testStateMachine(DefaultConfig())
		return sm.Generate(GenerationInput{
			RangeStart: day(1),
			RangeEnd:   day(31),
			Workers:    rotationWorkers(),
		}).Assignments
	}

	first := run()
	second := run()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].WorkerID, second[i].WorkerID)
		assert.Equal(t, first[i].Date, second[i].Date)
		assert.Equal(t, first[i].Shift, second[i].Shift)
		assert.Equal(t, first[i].IsScreener, second[i].IsScreener)
	}
}

func TestNextMonth(t *testing.T) {
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), nextMonth(day(15)))
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		nextMonth(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)))
}
