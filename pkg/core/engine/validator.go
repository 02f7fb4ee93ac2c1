package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// ViolationLevel ranks constraint violations for scoring
type ViolationLevel string

const (
	ViolationCritical ViolationLevel = "CRITICAL"
	ViolationHigh     ViolationLevel = "HIGH"
	ViolationMedium   ViolationLevel = "MEDIUM"
	ViolationLow      ViolationLevel = "LOW"
)

// severityWeights convert violation levels into score penalties
var severityWeights = map[ViolationLevel]float64{
	ViolationCritical: 1.0,
	ViolationHigh:     0.7,
	ViolationMedium:   0.4,
	ViolationLow:      0.1,
}

// Violation describes one constraint breach found in an assignment set
type Violation struct {
	Kind        model.ConstraintKind
	Level       ViolationLevel
	Hard        bool
	WorkerID    string // optional
	Date        time.Time
	Description string
	// AffectedCount is how many assignments this violation touches
	AffectedCount int
}

// ValidationResult is the validator's verdict on an assignment set
type ValidationResult struct {
	IsValid     bool
	Violations  []Violation
	Score       float64 // in [0,1]
	Suggestions []string
}

// Validator checks assignment sets against hard and soft constraints.
// Stateless; safe to share across runs.
type Validator struct{}

// NewValidator creates a constraint validator
func NewValidator() *Validator {
	return &Validator{}
}

// KindRollingWindow tags rolling 7-day rule breaches, which arise from the
// schedule itself rather than from any configured GlobalConstraint
const KindRollingWindow model.ConstraintKind = "rolling-7-day"

// MaxShiftsPerRollingWeek is the hard cap on assigned days inside any 7
// consecutive calendar days. This is the single most important safety
// constraint and must never be bypassed by objective weighting.
const MaxShiftsPerRollingWeek = 5

// Validate checks an assignment set against the given global constraints
func (v *Validator) Validate(assignments []model.Assignment, constraints []model.GlobalConstraint) ValidationResult {
	result := ValidationResult{
		Violations:  []Violation{},
		Suggestions: []string{},
	}

	result.Violations = append(result.Violations, v.checkBlackouts(assignments, constraints)...)
	result.Violations = append(result.Violations, v.checkRollingWindow(assignments)...)
	result.Violations = append(result.Violations, v.checkScreenerLimits(assignments, constraints)...)
	result.Violations = append(result.Violations, v.checkScreenerPreferences(assignments, constraints)...)

	result.Score = v.score(result.Violations, len(assignments))

	// Valid iff no hard violation remains, independent of the soft score
	result.IsValid = true
	for _, violation := range result.Violations {
		if violation.Hard {
			result.IsValid = false
		}
		if violation.Level == ViolationCritical || violation.Level == ViolationHigh {
			result.Suggestions = append(result.Suggestions, violation.Description)
		}
	}

	return result
}

// checkBlackouts flags any assignment dated inside a blackout interval
func (v *Validator) checkBlackouts(assignments []model.Assignment, constraints []model.GlobalConstraint) []Violation {
	var violations []Violation

	for _, c := range constraints {
		if c.Kind != model.ConstraintBlackoutDate {
			continue
		}
		for _, a := range assignments {
			if !c.Interval.Contains(a.Date) {
				continue
			}
			violations = append(violations, Violation{
				Kind:          model.ConstraintBlackoutDate,
				Level:         ViolationCritical,
				Hard:          true,
				WorkerID:      a.WorkerID,
				Date:          a.Date,
				Description:   fmt.Sprintf("assignment for worker %s on %s falls inside blackout interval", a.WorkerID, model.DateKey(a.Date)),
				AffectedCount: 1,
			})
		}
	}

	return violations
}

// checkRollingWindow enforces the rolling 7-day rule per worker: no more than
// MaxShiftsPerRollingWeek assigned days inside any trailing 7-day window.
// Reported once per worker, not once per offending day.
func (v *Validator) checkRollingWindow(assignments []model.Assignment) []Violation {
	byWorker := make(map[string][]time.Time)
	for _, a := range assignments {
		byWorker[a.WorkerID] = append(byWorker[a.WorkerID], a.Date)
	}

	var violations []Violation
	workerIDs := make([]string, 0, len(byWorker))
	for id := range byWorker {
		workerIDs = append(workerIDs, id)
	}
	sort.Strings(workerIDs)

	for _, workerID := range workerIDs {
		dates := byWorker[workerID]
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		worst := 0
		for i, date := range dates {
			windowStart := date.AddDate(0, 0, -6)
			count := 0
			for j := i; j >= 0; j-- {
				if dates[j].Before(windowStart) {
					break
				}
				count++
			}
			if count > worst {
				worst = count
			}
		}

		if worst > MaxShiftsPerRollingWeek {
			violations = append(violations, Violation{
				Kind:          KindRollingWindow,
				Level:         ViolationCritical,
				Hard:          true,
				WorkerID:      workerID,
				Description:   fmt.Sprintf("worker %s has %d assigned days inside a 7-day window (max %d)", workerID, worst, MaxShiftsPerRollingWeek),
				AffectedCount: worst,
			})
		}
	}

	return violations
}

// checkScreenerLimits enforces per-worker min/max screener-day counts.
// Limits come from typed constraint parameters with documented defaults.
func (v *Validator) checkScreenerLimits(assignments []model.Assignment, constraints []model.GlobalConstraint) []Violation {
	screenerCounts := make(map[string]int)
	for _, a := range assignments {
		if a.IsScreener {
			screenerCounts[a.WorkerID]++
		}
	}

	var violations []Violation
	for _, c := range constraints {
		switch c.Kind {
		case model.ConstraintMaxScreenerDays:
			limit := c.Params.MaxScreenerDays
			if limit == 0 {
				limit = model.DefaultMaxScreenerDays
			}
			if count := screenerCounts[c.TargetWorkerID]; count > limit {
				violations = append(violations, Violation{
					Kind:          c.Kind,
					Level:         ViolationMedium,
					WorkerID:      c.TargetWorkerID,
					Description:   fmt.Sprintf("worker %s has %d screener days (max %d)", c.TargetWorkerID, count, limit),
					AffectedCount: count - limit,
				})
			}
		case model.ConstraintMinScreenerDays:
			limit := c.Params.MinScreenerDays
			if limit == 0 {
				limit = model.DefaultMinScreenerDays
			}
			if count := screenerCounts[c.TargetWorkerID]; count < limit {
				violations = append(violations, Violation{
					Kind:          c.Kind,
					Level:         ViolationLow,
					WorkerID:      c.TargetWorkerID,
					Description:   fmt.Sprintf("worker %s has %d screener days (min %d)", c.TargetWorkerID, count, limit),
					AffectedCount: limit - count,
				})
			}
		}
	}

	return violations
}

// checkScreenerPreferences flags preferred screeners left unused and
// unavailable screeners that were used inside the constraint interval
func (v *Validator) checkScreenerPreferences(assignments []model.Assignment, constraints []model.GlobalConstraint) []Violation {
	var violations []Violation

	for _, c := range constraints {
		switch c.Kind {
		case model.ConstraintPreferredScreener:
			used := false
			for _, a := range assignments {
				if a.WorkerID == c.TargetWorkerID && a.IsScreener && c.Interval.Contains(a.Date) {
					used = true
					break
				}
			}
			if !used {
				violations = append(violations, Violation{
					Kind:          c.Kind,
					Level:         ViolationLow,
					WorkerID:      c.TargetWorkerID,
					Description:   fmt.Sprintf("preferred screener %s was not used between %s and %s", c.TargetWorkerID, model.DateKey(c.Interval.Start), model.DateKey(c.Interval.End)),
					AffectedCount: 1,
				})
			}
		case model.ConstraintUnavailableScreener:
			for _, a := range assignments {
				if a.WorkerID == c.TargetWorkerID && a.IsScreener && c.Interval.Contains(a.Date) {
					violations = append(violations, Violation{
						Kind:          c.Kind,
						Level:         ViolationMedium,
						WorkerID:      c.TargetWorkerID,
						Date:          a.Date,
						Description:   fmt.Sprintf("unavailable screener %s assigned screener duty on %s", c.TargetWorkerID, model.DateKey(a.Date)),
						AffectedCount: 1,
					})
				}
			}
		}
	}

	return violations
}

// score converts violations into a [0,1] constraint score:
// 1 - sum(severityWeight * affected/total), clamped
func (v *Validator) score(violations []Violation, totalAssignments int) float64 {
	if totalAssignments == 0 {
		if len(violations) == 0 {
			return 1.0
		}
		return 0.0
	}

	score := 1.0
	for _, violation := range violations {
		affected := violation.AffectedCount
		if affected < 1 {
			affected = 1
		}
		score -= severityWeights[violation.Level] * float64(affected) / float64(totalAssignments)
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
