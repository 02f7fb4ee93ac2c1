package model

import "time"

// DateFormat is the canonical date representation used across the planner
const DateFormat = "2006-01-02"

// DateKey returns the canonical date string for a point in time
func DateKey(t time.Time) string {
	return t.Format(DateFormat)
}

// ShiftAffinity is a worker's declared shift preference
type ShiftAffinity string

const (
	AffinityMorning ShiftAffinity = "morning"
	AffinityEvening ShiftAffinity = "evening"
	AffinityNone    ShiftAffinity = "none"
)

func (a ShiftAffinity) IsValid() bool {
	return a == AffinityMorning || a == AffinityEvening || a == AffinityNone
}

// ShiftType identifies which shift an assignment covers
type ShiftType string

const (
	ShiftMorning ShiftType = "morning"
	ShiftEvening ShiftType = "evening"
	ShiftWeekend ShiftType = "weekend"
)

// EmploymentCategory distinguishes staff contract types
type EmploymentCategory string

const (
	EmploymentFullTime   EmploymentCategory = "full-time"
	EmploymentPartTime   EmploymentCategory = "part-time"
	EmploymentContractor EmploymentCategory = "contractor"
)

// ExperienceTier ranks analysts by seniority
type ExperienceTier string

const (
	TierJunior ExperienceTier = "junior"
	TierMid    ExperienceTier = "mid"
	TierSenior ExperienceTier = "senior"
)

// SkillScreenerTrained marks analysts certified for screener duty
const SkillScreenerTrained = "screener-trained"

// DateInterval is an inclusive calendar date range
type DateInterval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the given date falls inside the interval (inclusive)
func (i DateInterval) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(i.Start.Truncate(24*time.Hour)) && !d.After(i.End.Truncate(24*time.Hour))
}

// PersonalConstraint is a worker-scoped scheduling restriction
type PersonalConstraint struct {
	Description string
	Interval    DateInterval
}

// Worker represents a schedulable analyst.
// Immutable for the duration of one generation run.
type Worker struct {
	ID              string
	Name            string
	Affinity        ShiftAffinity
	Skills          []string
	Employment      EmploymentCategory
	Experience      ExperienceTier
	Vacations       []DateInterval // ordered, approved
	Constraints     []PersonalConstraint
	StartingPattern PatternName // rotation pattern held in the week containing the range start
}

// HasSkill reports whether the worker carries the given skill tag
func (w *Worker) HasSkill(skill string) bool {
	for _, s := range w.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// OnVacation reports whether the worker has an approved vacation covering the date
func (w *Worker) OnVacation(date time.Time) bool {
	for _, v := range w.Vacations {
		if v.Contains(date) {
			return true
		}
	}
	return false
}

// AssignmentOrigin tags whether an assignment is new or replaces an existing one
type AssignmentOrigin string

const (
	OriginNew       AssignmentOrigin = "new"
	OriginOverwrite AssignmentOrigin = "overwrite"
)

// Assignment is one worker working one date.
// At most one Assignment may exist per (WorkerID, Date); candidate sets are
// replaced wholesale by the optimizer, never mutated in place.
type Assignment struct {
	ID         string
	Date       time.Time
	WorkerID   string
	Shift      ShiftType
	IsScreener bool
	Origin     AssignmentOrigin
}

// Overwrite records the before/after state when a generated assignment
// replaces an existing one
type Overwrite struct {
	Date           time.Time
	WorkerID       string
	PreviousShift  ShiftType
	PreviousScreen bool
	ProposedShift  ShiftType
	ProposedScreen bool
}

// ConstraintKind enumerates the supported global constraint types
type ConstraintKind string

const (
	ConstraintBlackoutDate           ConstraintKind = "blackout-date"
	ConstraintMaxScreenerDays        ConstraintKind = "max-screener-days"
	ConstraintMinScreenerDays        ConstraintKind = "min-screener-days"
	ConstraintPreferredScreener      ConstraintKind = "preferred-screener"
	ConstraintUnavailableScreener    ConstraintKind = "unavailable-screener"
	ConstraintSpecificWorkerRequired ConstraintKind = "specific-worker-required"
)

// ConstraintSeverity splits constraints into hard (must hold) and soft (scored)
type ConstraintSeverity string

const (
	SeverityHard ConstraintSeverity = "hard"
	SeveritySoft ConstraintSeverity = "soft"
)

// ConstraintParams carries typed numeric parameters for constraints.
// Limits arrive as explicit fields decided at the persistence boundary;
// the engine never parses free text.
type ConstraintParams struct {
	MaxScreenerDays int // 0 means use DefaultMaxScreenerDays
	MinScreenerDays int // 0 means use DefaultMinScreenerDays
}

// Default screener-day limits applied when a constraint carries no explicit value
const (
	DefaultMaxScreenerDays = 10
	DefaultMinScreenerDays = 2
)

// GlobalConstraint is a read-only scheduling rule applied across workers
type GlobalConstraint struct {
	ID             string
	Kind           ConstraintKind
	Interval       DateInterval
	TargetWorkerID string // optional
	Severity       ConstraintSeverity
	Params         ConstraintParams
	Description    string
}

// PatternName identifies one of the three weekly rotation patterns
type PatternName string

const (
	PatternSunThu PatternName = "SUN_THU"
	PatternMonFri PatternName = "MON_FRI"
	PatternTueSat PatternName = "TUE_SAT"
)

// RotationPattern is a weekly day-set that a worker cycles through.
// The three patterns form a 3-week cycle via Successor.
type RotationPattern struct {
	Name      PatternName
	Weekdays  map[time.Weekday]bool
	Successor PatternName
}

// Patterns is the fixed 3-week rotation cycle
var Patterns = map[PatternName]RotationPattern{
	PatternSunThu: {
		Name: PatternSunThu,
		Weekdays: map[time.Weekday]bool{
			time.Sunday: true, time.Monday: true, time.Tuesday: true,
			time.Wednesday: true, time.Thursday: true,
		},
		Successor: PatternTueSat,
	},
	PatternMonFri: {
		Name: PatternMonFri,
		Weekdays: map[time.Weekday]bool{
			time.Monday: true, time.Tuesday: true, time.Wednesday: true,
			time.Thursday: true, time.Friday: true,
		},
		Successor: PatternSunThu,
	},
	PatternTueSat: {
		Name: PatternTueSat,
		Weekdays: map[time.Weekday]bool{
			time.Tuesday: true, time.Wednesday: true, time.Thursday: true,
			time.Friday: true, time.Saturday: true,
		},
		Successor: PatternMonFri,
	},
}

// Covers reports whether the pattern includes the given weekday
func (p RotationPattern) Covers(day time.Weekday) bool {
	return p.Weekdays[day]
}

// MandatoryOn reports whether the pattern contractually requires the exact
// weekend day: TUE_SAT owns Saturday, SUN_THU owns Sunday
func (p RotationPattern) MandatoryOn(day time.Weekday) bool {
	switch p.Name {
	case PatternTueSat:
		return day == time.Saturday
	case PatternSunThu:
		return day == time.Sunday
	}
	return false
}

// PatternOn returns the pattern a worker holds on the given date, rotating
// weekly from the worker's starting pattern. Weeks are anchored to the Sunday
// on or before rangeStart.
func PatternOn(w *Worker, rangeStart, date time.Time) RotationPattern {
	anchor := rangeStart.AddDate(0, 0, -int(rangeStart.Weekday()))
	days := int(date.Sub(anchor).Hours() / 24)
	weeks := days / 7
	if days < 0 {
		weeks = 0
	}

	pattern := Patterns[w.StartingPattern]
	for i := 0; i < weeks%3; i++ {
		pattern = Patterns[pattern.Successor]
	}
	return pattern
}

// ConflictType enumerates the diagnostic conflict categories surfaced by a run
type ConflictType string

const (
	ConflictBlackoutDate           ConflictType = "BLACKOUT_DATE"
	ConflictHoliday                ConflictType = "HOLIDAY"
	ConflictInsufficientStaff      ConflictType = "INSUFFICIENT_STAFF"
	ConflictMissingWeekendCoverage ConflictType = "MISSING_WEEKEND_COVERAGE"
	ConflictMandatoryOverride      ConflictType = "MANDATORY_OVERRIDE"
	ConflictVacationOverlap        ConflictType = "VACATION_OVERLAP"
)

// ConflictSeverity ranks conflicts for reporting
type ConflictSeverity string

const (
	ConflictCritical ConflictSeverity = "CRITICAL"
	ConflictHigh     ConflictSeverity = "HIGH"
	ConflictMedium   ConflictSeverity = "MEDIUM"
	ConflictLow      ConflictSeverity = "LOW"
)

// Conflict is a typed, severity-tagged diagnostic surfaced alongside a schedule
type Conflict struct {
	Type     ConflictType
	Severity ConflictSeverity
	Date     time.Time
	WorkerID string // optional
	Message  string
}
