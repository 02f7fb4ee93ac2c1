package engine

import (
	"time"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// Candidate describes one (worker, date, shift) selection decision being scored
type Candidate struct {
	Worker  *model.Worker
	Date    time.Time
	Shift   model.ShiftType
	History *History

	// PoolSize is the number of workers sharing the schedule, used for the
	// per-capita expectation behind the debt factor
	PoolSize int

	// TotalAssigned is the total assignment count accumulated so far
	TotalAssigned int
}

// IsWeekend reports whether the candidate date falls on Saturday or Sunday
func (c Candidate) IsWeekend() bool {
	wd := c.Date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Factor scores one aspect of a candidate's desirability for a slot.
// Each factor returns a normalized score in [0,1] which is multiplied by the
// factor's weight before summing.
type Factor interface {
	// Name returns a human-readable identifier for this factor
	Name() string

	// Score rates the candidate in [0,1]; higher is more desirable
	Score(c Candidate) float64

	// Weight returns this factor's contribution weight
	Weight() float64
}

// Default factor weights
const (
	WeightConsecutive = 20.0
	WeightTurnaround  = 30.0
	WeightWorkload    = 15.0
	WeightPreference  = 10.0
	WeightWeekend     = 25.0
	WeightDebt        = 50.0
	WeightFatigue     = 30.0
)

// Scorer combines weighted factors into a per-candidate desirability score.
// Used for screener selection and ad-hoc fallback recruitment, where the
// highest-scoring eligible candidate wins.
type Scorer struct {
	factors []Factor
}

// NewScorer creates a scorer with the standard factor set and default weights
func NewScorer() *Scorer {
	return &Scorer{
		factors: []Factor{
			&ConsecutiveDaysFactor{weight: WeightConsecutive},
			&TurnaroundFactor{weight: WeightTurnaround},
			&WorkloadFactor{weight: WeightWorkload},
			&RolePreferenceFactor{weight: WeightPreference},
			&WeekendFairnessFactor{weight: WeightWeekend},
			&DebtRepaymentFactor{weight: WeightDebt},
			&CoverageFatigueFactor{weight: WeightFatigue},
		},
	}
}

// Score sums all weighted factor scores for the candidate
func (s *Scorer) Score(c Candidate) float64 {
	total := 0.0
	for _, f := range s.factors {
		total += f.Score(c) * f.Weight()
	}
	return total
}

// ConsecutiveDaysFactor penalizes long runs of prior consecutive workdays.
// Looks back up to 10 days: 1.0 below 5 prior days, 0.5 at exactly 5,
// 0.1 at 6, 0.0 beyond.
type ConsecutiveDaysFactor struct {
	weight float64
}

func (f *ConsecutiveDaysFactor) Name() string    { return "ConsecutiveDays" }
func (f *ConsecutiveDaysFactor) Weight() float64 { return f.weight }

func (f *ConsecutiveDaysFactor) Score(c Candidate) float64 {
	run := c.History.ConsecutiveDaysBefore(c.Worker.ID, c.Date, 10)
	switch {
	case run < 5:
		return 1.0
	case run == 5:
		return 0.5
	case run == 6:
		return 0.1
	default:
		return 0.0
	}
}

// TurnaroundFactor vetoes clopening: a late shift immediately followed by an
// early shift the next day scores 0
type TurnaroundFactor struct {
	weight float64
}

func (f *TurnaroundFactor) Name() string    { return "Turnaround" }
func (f *TurnaroundFactor) Weight() float64 { return f.weight }

func (f *TurnaroundFactor) Score(c Candidate) float64 {
	if c.Shift != model.ShiftMorning {
		return 1.0
	}
	prev, ok := c.History.AssignmentOn(c.Worker.ID, c.Date.AddDate(0, 0, -1))
	if ok && prev.Shift == model.ShiftEvening {
		return 0.0
	}
	return 1.0
}

// WorkloadFactor rates recent load from the trailing 7-day shift count:
// 1.0 for <=4, 0.7 for 5, 0.3 for >=6
type WorkloadFactor struct {
	weight float64
}

func (f *WorkloadFactor) Name() string    { return "Workload" }
func (f *WorkloadFactor) Weight() float64 { return f.weight }

func (f *WorkloadFactor) Score(c Candidate) float64 {
	count := c.History.ShiftsInWindow(c.Worker.ID, c.Date, 7)
	switch {
	case count <= 4:
		return 1.0
	case count == 5:
		return 0.7
	default:
		return 0.3
	}
}

// RolePreferenceFactor rewards matching the worker's declared shift affinity
type RolePreferenceFactor struct {
	weight float64
}

func (f *RolePreferenceFactor) Name() string    { return "RolePreference" }
func (f *RolePreferenceFactor) Weight() float64 { return f.weight }

func (f *RolePreferenceFactor) Score(c Candidate) float64 {
	switch {
	case c.Shift == model.ShiftMorning && c.Worker.Affinity == model.AffinityMorning:
		return 1.0
	case c.Shift == model.ShiftEvening && c.Worker.Affinity == model.AffinityEvening:
		return 1.0
	case c.Shift == model.ShiftWeekend && c.IsWeekend():
		return 1.0
	default:
		return 0.5
	}
}

// WeekendFairnessFactor discounts candidates who already carry weekend load:
// on weekend targets, max(0, 1 - 0.2*priorWeekendShifts); 1.0 on weekdays
type WeekendFairnessFactor struct {
	weight float64
}

func (f *WeekendFairnessFactor) Name() string    { return "WeekendFairness" }
func (f *WeekendFairnessFactor) Weight() float64 { return f.weight }

func (f *WeekendFairnessFactor) Score(c Candidate) float64 {
	if !c.IsWeekend() {
		return 1.0
	}
	score := 1.0 - 0.2*float64(c.History.WeekendCount(c.Worker.ID))
	if score < 0 {
		return 0
	}
	return score
}

// DebtRepaymentFactor rewards workers under-assigned relative to peers.
// Positive debt scores 1.0, credit scores 0.0, neutral 0.5.
type DebtRepaymentFactor struct {
	weight float64
}

func (f *DebtRepaymentFactor) Name() string    { return "DebtRepayment" }
func (f *DebtRepaymentFactor) Weight() float64 { return f.weight }

func (f *DebtRepaymentFactor) Score(c Candidate) float64 {
	if c.PoolSize == 0 {
		return 0.5
	}
	expected := float64(c.TotalAssigned) / float64(c.PoolSize)
	actual := float64(c.History.TotalAssignments(c.Worker.ID))
	switch {
	case actual < expected:
		return 1.0
	case actual > expected:
		return 0.0
	default:
		return 0.5
	}
}

// CoverageFatigueFactor penalizes repeated emergency coverage recruitment:
// 1.0/0.8/0.5/0.0 for 0/1/2/3+ recent occurrences
type CoverageFatigueFactor struct {
	weight float64
}

func (f *CoverageFatigueFactor) Name() string    { return "CoverageFatigue" }
func (f *CoverageFatigueFactor) Weight() float64 { return f.weight }

func (f *CoverageFatigueFactor) Score(c Candidate) float64 {
	switch c.History.CoverageCount(c.Worker.ID) {
	case 0:
		return 1.0
	case 1:
		return 0.8
	case 2:
		return 0.5
	default:
		return 0.0
	}
}
