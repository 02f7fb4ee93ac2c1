package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// GenerationInput is the snapshot a generation run consumes. All collections
// are plain in-memory data; the engine performs no I/O.
type GenerationInput struct {
	RangeStart  time.Time
	RangeEnd    time.Time
	Workers     []*model.Worker
	Existing    []model.Assignment
	Constraints []model.GlobalConstraint

	// WeekendSlotOverrides maps date keys to a weekend slot count that
	// replaces the configured default for that date
	WeekendSlotOverrides map[string]int

	// DataQuality is the caller's input-quality estimate in (0,1]; zero is
	// treated as unspecified and scored as 1
	DataQuality float64
}

// GenerationResult is the raw output of one state-machine pass
type GenerationResult struct {
	Assignments   []model.Assignment
	Conflicts     []model.Conflict
	Overwrites    []model.Overwrite
	FallbackCount int
}

// StateMachine is the day-by-day rotation generator. It walks the date range
// in month-sized increments so later months see the actual (possibly
// fallback-adjusted) assignments of earlier months as history, applies the
// rotating weekly patterns, handles weekend slot selection with its
// mandatory/optional/fallback tiers, and delegates screener sub-assignment to
// the scoring function.
//
// Fully deterministic given a fixed RNG seed; terminates after the last day
// in range.
type StateMachine struct {
	scorer *Scorer
	random *RandomController
	logger *zap.Logger
	cfg    Config

	// rangeStart anchors weekly pattern rotation for the current run
	rangeStart time.Time
}

// NewStateMachine creates a rotation state machine
func NewStateMachine(scorer *Scorer, random *RandomController, logger *zap.Logger, cfg Config) *StateMachine {
	return &StateMachine{
		scorer: scorer,
		random: random,
		logger: logger,
		cfg:    cfg,
	}
}

// Generate produces an initial feasible assignment set for the input range
func (sm *StateMachine) Generate(input GenerationInput) GenerationResult {
	result := GenerationResult{
		Assignments: []model.Assignment{},
		Conflicts:   []model.Conflict{},
		Overwrites:  []model.Overwrite{},
	}

	sm.rangeStart = input.RangeStart
	history := NewHistory(input.Existing)
	existingByKey := indexAssignments(input.Existing)

	workerIDs := make([]string, len(input.Workers))
	for i, w := range input.Workers {
		workerIDs[i] = w.ID
	}

	// Month-sized increments: each month's decisions become history before
	// the next month is processed
	for monthStart := input.RangeStart; !monthStart.After(input.RangeEnd); monthStart = nextMonth(monthStart) {
		monthEnd := nextMonth(monthStart).AddDate(0, 0, -1)
		if monthEnd.After(input.RangeEnd) {
			monthEnd = input.RangeEnd
		}

		sm.logger.Debug("Processing month",
			zap.String("from", model.DateKey(monthStart)),
			zap.String("to", model.DateKey(monthEnd)))

		for date := monthStart; !date.After(monthEnd); date = date.AddDate(0, 0, 1) {
			sm.processDay(date, input, history, existingByKey, &result)
			history.CloseDay(date, workerIDs)
		}
	}

	// Screener duty is decided after assignments are committed; reconcile the
	// flags from history onto the output set, then report each pre-existing
	// assignment whose final shift or screener state differs as an overwrite
	for i := range result.Assignments {
		a := &result.Assignments[i]
		if history.ScreenedOn(a.WorkerID, a.Date) {
			a.IsScreener = true
		}
		if a.Origin != model.OriginOverwrite {
			continue
		}
		prev := existingByKey[assignmentKey(a.WorkerID, a.Date)]
		if prev.Shift != a.Shift || prev.IsScreener != a.IsScreener {
			result.Overwrites = append(result.Overwrites, model.Overwrite{
				Date:           a.Date,
				WorkerID:       a.WorkerID,
				PreviousShift:  prev.Shift,
				PreviousScreen: prev.IsScreener,
				ProposedShift:  a.Shift,
				ProposedScreen: a.IsScreener,
			})
		}
	}

	return result
}

// processDay handles one calendar day: blackout skip, weekday cohort
// assignment plus screener duty, or weekend slot selection
func (sm *StateMachine) processDay(date time.Time, input GenerationInput, history *History, existing map[string]model.Assignment, result *GenerationResult) {
	if blackout, ok := sm.blackoutFor(date, input.Constraints); ok {
		result.Conflicts = append(result.Conflicts, model.Conflict{
			Type:     model.ConflictBlackoutDate,
			Severity: model.ConflictCritical,
			Date:     date,
			Message:  fmt.Sprintf("no assignments on %s: blackout %s", model.DateKey(date), blackout.ID),
		})
		return
	}

	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		sm.assignWeekend(date, input, history, existing, result)
		return
	}

	sm.assignWeekday(date, input, history, existing, result)
}

// assignWeekday assigns each shift-affinity cohort's pattern-eligible workers
// and then sub-assigns screener duty per shift
func (sm *StateMachine) assignWeekday(date time.Time, input GenerationInput, history *History, existing map[string]model.Assignment, result *GenerationResult) {
	morning := sm.weekdayCandidates(date, input, history, model.AffinityMorning)
	evening := sm.weekdayCandidates(date, input, history, model.AffinityEvening)

	morning, evening = sm.rebalanceCohorts(date, history, morning, evening, len(input.Workers))

	assignedMorning := sm.commitCohort(date, model.ShiftMorning, morning, input, history, existing, result)
	assignedEvening := sm.commitCohort(date, model.ShiftEvening, evening, input, history, existing, result)

	if len(assignedMorning)+len(assignedEvening) == 0 {
		result.Conflicts = append(result.Conflicts, model.Conflict{
			Type:     model.ConflictInsufficientStaff,
			Severity: model.ConflictHigh,
			Date:     date,
			Message:  fmt.Sprintf("no eligible analysts for %s", model.DateKey(date)),
		})
		return
	}

	sm.assignScreener(date, model.ShiftMorning, assignedMorning, history, len(input.Workers))
	sm.assignScreener(date, model.ShiftEvening, assignedEvening, history, len(input.Workers))
}

// weekdayCandidates builds one cohort's eligible workers for a weekday:
// pattern covers the weekday, not on vacation, streak below the cap
func (sm *StateMachine) weekdayCandidates(date time.Time, input GenerationInput, history *History, affinity model.ShiftAffinity) []*model.Worker {
	var candidates []*model.Worker
	for _, w := range input.Workers {
		// Workers with no stated affinity default to the morning cohort.
		cohort := w.Affinity
		if cohort == model.AffinityNone {
			cohort = model.AffinityMorning
		}
		if cohort != affinity {
			continue
		}
		if !model.PatternOn(w, input.RangeStart, date).Covers(date.Weekday()) {
			continue
		}
		if w.OnVacation(date) {
			continue
		}
		if history.Streak(w.ID) >= sm.cfg.MaxConsecutiveDays {
			continue
		}
		candidates = append(candidates, w)
	}
	return candidates
}

// rebalanceCohorts optionally moves morning-affinity workers to evening
// coverage when the morning pool outnumbers the evening pool by more than one
func (sm *StateMachine) rebalanceCohorts(date time.Time, history *History, morning, evening []*model.Worker, poolSize int) ([]*model.Worker, []*model.Worker) {
	for len(morning) > len(evening)+1 {
		// Move whichever morning candidate scores best for evening coverage
		bestIdx := 0
		bestScore := -1.0
		for i, w := range morning {
			score := sm.scorer.Score(Candidate{
				Worker:   w,
				Date:     date,
				Shift:    model.ShiftEvening,
				History:  history,
				PoolSize: poolSize,
			})
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		moved := morning[bestIdx]
		morning = append(morning[:bestIdx], morning[bestIdx+1:]...)
		evening = append(evening, moved)

		sm.logger.Debug("Rebalanced morning analyst to evening coverage",
			zap.String("worker", moved.ID),
			zap.String("date", model.DateKey(date)))
	}
	return morning, evening
}

// commitCohort records assignments for every candidate in the cohort,
// tagging overwrites of pre-existing assignments
func (sm *StateMachine) commitCohort(date time.Time, shift model.ShiftType, cohort []*model.Worker, input GenerationInput, history *History, existing map[string]model.Assignment, result *GenerationResult) []*model.Worker {
	assigned := make([]*model.Worker, 0, len(cohort))
	for _, w := range cohort {
		a := sm.commitAssignment(date, shift, w, history, existing, result, false)
		if a {
			assigned = append(assigned, w)
		}
	}
	return assigned
}

// commitAssignment records one assignment, tagging its origin. Overwrite
// records are emitted at the end of the run, once screener state is final.
// Returns false if the worker already holds a same-run assignment for the
// date.
func (sm *StateMachine) commitAssignment(date time.Time, shift model.ShiftType, w *model.Worker, history *History, existing map[string]model.Assignment, result *GenerationResult, fallback bool) bool {
	if history.WorkedOn(w.ID, date) {
		if _, pre := existing[assignmentKey(w.ID, date)]; !pre {
			// Already assigned in this run; uniqueness invariant holds
			return false
		}
	}

	origin := model.OriginNew
	if _, ok := existing[assignmentKey(w.ID, date)]; ok {
		origin = model.OriginOverwrite
	}

	assignment := model.Assignment{
		ID:       uuid.New().String(),
		Date:     date,
		WorkerID: w.ID,
		Shift:    shift,
		Origin:   origin,
	}

	result.Assignments = append(result.Assignments, assignment)
	history.Record(assignment, fallback)
	return true
}

// blackoutFor returns the blackout constraint covering the date, if any
func (sm *StateMachine) blackoutFor(date time.Time, constraints []model.GlobalConstraint) (model.GlobalConstraint, bool) {
	for _, c := range constraints {
		if c.Kind == model.ConstraintBlackoutDate && c.Interval.Contains(date) {
			return c, true
		}
	}
	return model.GlobalConstraint{}, false
}

// indexAssignments keys existing assignments by (worker, date)
func indexAssignments(assignments []model.Assignment) map[string]model.Assignment {
	index := make(map[string]model.Assignment, len(assignments))
	for _, a := range assignments {
		index[assignmentKey(a.WorkerID, a.Date)] = a
	}
	return index
}

func assignmentKey(workerID string, date time.Time) string {
	return workerID + "|" + model.DateKey(date)
}

// nextMonth returns the first day of the month after the given date's month
func nextMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location()).AddDate(0, 1, 0)
}
