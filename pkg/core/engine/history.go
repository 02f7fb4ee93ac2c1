package engine

import (
	"time"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// History is the accumulated assignment state a generation run threads through
// each day and month of processing. Earlier months' (possibly
// fallback-adjusted) decisions are visible to later months through this value
// rather than through shared mutable caches.
type History struct {
	// byWorker holds each worker's assigned date keys
	byWorker map[string]map[string]model.Assignment

	// streaks tracks consecutive worked calendar days per worker
	streaks map[string]int

	// screenerDates tracks date keys on which each worker screened
	screenerDates map[string]map[string]bool

	// weekendCounts tracks weekend assignments per worker
	weekendCounts map[string]int

	// coverageCounts tracks fallback/ad-hoc recruitment occurrences per worker
	coverageCounts map[string]int
}

// NewHistory builds a History seeded from existing assignments
func NewHistory(existing []model.Assignment) *History {
	h := &History{
		byWorker:       make(map[string]map[string]model.Assignment),
		streaks:        make(map[string]int),
		screenerDates:  make(map[string]map[string]bool),
		weekendCounts:  make(map[string]int),
		coverageCounts: make(map[string]int),
	}
	for _, a := range existing {
		h.Record(a, false)
	}
	return h
}

// Record adds an assignment to the history. fallback marks ad-hoc coverage
// recruitment so the fatigue factor can penalize repeat occurrences.
func (h *History) Record(a model.Assignment, fallback bool) {
	key := model.DateKey(a.Date)

	if h.byWorker[a.WorkerID] == nil {
		h.byWorker[a.WorkerID] = make(map[string]model.Assignment)
	}
	_, replacing := h.byWorker[a.WorkerID][key]
	h.byWorker[a.WorkerID][key] = a

	if a.IsScreener {
		if h.screenerDates[a.WorkerID] == nil {
			h.screenerDates[a.WorkerID] = make(map[string]bool)
		}
		h.screenerDates[a.WorkerID][key] = true
	}

	// Replacing an assignment on the same date must not double-count
	if replacing {
		return
	}

	wd := a.Date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		h.weekendCounts[a.WorkerID]++
	}

	if fallback {
		h.coverageCounts[a.WorkerID]++
	}
}

// MarkScreener upgrades an already-recorded assignment to screener duty
func (h *History) MarkScreener(workerID string, date time.Time) {
	key := model.DateKey(date)
	if a, ok := h.byWorker[workerID][key]; ok {
		a.IsScreener = true
		h.byWorker[workerID][key] = a
	}
	if h.screenerDates[workerID] == nil {
		h.screenerDates[workerID] = make(map[string]bool)
	}
	h.screenerDates[workerID][key] = true
}

// WorkedOn reports whether the worker has an assignment on the date
func (h *History) WorkedOn(workerID string, date time.Time) bool {
	_, ok := h.byWorker[workerID][model.DateKey(date)]
	return ok
}

// AssignmentOn returns the worker's assignment on the date, if any
func (h *History) AssignmentOn(workerID string, date time.Time) (model.Assignment, bool) {
	a, ok := h.byWorker[workerID][model.DateKey(date)]
	return a, ok
}

// Streak returns the worker's current consecutive-day streak
func (h *History) Streak(workerID string) int {
	return h.streaks[workerID]
}

// CloseDay runs end-of-day streak bookkeeping: increment for every worker
// assigned on the date, reset to zero for everyone else
func (h *History) CloseDay(date time.Time, workerIDs []string) {
	for _, id := range workerIDs {
		if h.WorkedOn(id, date) {
			h.streaks[id]++
		} else {
			h.streaks[id] = 0
		}
	}
}

// ConsecutiveDaysBefore counts worked days immediately preceding the date,
// looking back at most lookback days
func (h *History) ConsecutiveDaysBefore(workerID string, date time.Time, lookback int) int {
	count := 0
	for i := 1; i <= lookback; i++ {
		if !h.WorkedOn(workerID, date.AddDate(0, 0, -i)) {
			break
		}
		count++
	}
	return count
}

// ShiftsInWindow counts assignments in the trailing window of the given
// length ending at date (inclusive)
func (h *History) ShiftsInWindow(workerID string, date time.Time, days int) int {
	count := 0
	for i := 0; i < days; i++ {
		if h.WorkedOn(workerID, date.AddDate(0, 0, -i)) {
			count++
		}
	}
	return count
}

// ScreenerCountInWindow counts screener duties in the trailing window ending
// at date (inclusive)
func (h *History) ScreenerCountInWindow(workerID string, date time.Time, days int) int {
	count := 0
	for i := 0; i < days; i++ {
		if h.screenerDates[workerID][model.DateKey(date.AddDate(0, 0, -i))] {
			count++
		}
	}
	return count
}

// ScreenedOn reports whether the worker held screener duty on the date
func (h *History) ScreenedOn(workerID string, date time.Time) bool {
	return h.screenerDates[workerID][model.DateKey(date)]
}

// ScreenerCountInCalendarWeek counts screener duties in the Sunday-anchored
// calendar week containing the date
func (h *History) ScreenerCountInCalendarWeek(workerID string, date time.Time) int {
	weekStart := date.AddDate(0, 0, -int(date.Weekday()))
	count := 0
	for i := 0; i < 7; i++ {
		if h.screenerDates[workerID][model.DateKey(weekStart.AddDate(0, 0, i))] {
			count++
		}
	}
	return count
}

// WeekendCount returns the worker's accumulated weekend assignment count
func (h *History) WeekendCount(workerID string) int {
	return h.weekendCounts[workerID]
}

// CoverageCount returns how often the worker was recruited through fallback
func (h *History) CoverageCount(workerID string) int {
	return h.coverageCounts[workerID]
}

// TotalAssignments returns the worker's total recorded assignment count
func (h *History) TotalAssignments(workerID string) int {
	return len(h.byWorker[workerID])
}

// LastWeekendAssignment returns the most recent weekend date key the worker
// worked, or an empty string if none
func (h *History) LastWeekendAssignment(workerID string) string {
	last := ""
	for key, a := range h.byWorker[workerID] {
		wd := a.Date.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			continue
		}
		if key > last {
			last = key
		}
	}
	return last
}
