package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// WorkerLoad summarizes one worker's share of a schedule
type WorkerLoad struct {
	WorkerID          string
	Name              string
	TotalDays         int
	RegularDays       int
	ScreenerDays      int
	WeekendDays       int
	LongestStreak     int
	FairnessDeviation float64 // weighted deviation from per-capita expectation
}

// FairnessSnapshot is the per-run aggregate of distribution statistics
type FairnessSnapshot struct {
	WorkloadStdDev   float64
	WorkloadGini     float64
	WorkloadMaxMin   float64 // max/min ratio; 0 when min is 0
	ScreenerFairness float64
	WeekendFairness  float64
	OverallScore     float64 // in [0,1]
	Loads            []WorkerLoad
	Recommendations  []string
}

// Evaluator computes workload distribution statistics and fairness scores.
// Stateless; safe to share across runs.
type Evaluator struct{}

// NewEvaluator creates a fairness evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Weighting of per-worker deviation components
const (
	deviationWorkWeight     = 0.6
	deviationScreenerWeight = 0.3
	deviationWeekendWeight  = 0.1
)

// Evaluate computes a FairnessSnapshot for the assignment set across workers
func (e *Evaluator) Evaluate(assignments []model.Assignment, workers []*model.Worker) FairnessSnapshot {
	loads := e.analyzeLoads(assignments, workers)

	workloads := make([]float64, len(loads))
	weekends := make([]float64, len(loads))
	for i, l := range loads {
		workloads[i] = float64(l.TotalDays)
		weekends[i] = float64(l.WeekendDays)
	}

	snapshot := FairnessSnapshot{
		WorkloadStdDev:   stdDev(workloads),
		WorkloadGini:     gini(workloads),
		WorkloadMaxMin:   maxMinRatio(workloads),
		ScreenerFairness: e.cohortScreenerFairness(loads, workers),
		WeekendFairness:  distributionFairness(weekends),
		Loads:            loads,
	}

	snapshot.OverallScore = clamp01(
		0.5*(1-snapshot.WorkloadGini) +
			0.3*snapshot.ScreenerFairness +
			0.2*snapshot.WeekendFairness)

	snapshot.Recommendations = e.recommend(loads, workloads)

	return snapshot
}

// analyzeLoads builds per-worker workload summaries
func (e *Evaluator) analyzeLoads(assignments []model.Assignment, workers []*model.Worker) []WorkerLoad {
	byWorker := make(map[string][]model.Assignment)
	for _, a := range assignments {
		byWorker[a.WorkerID] = append(byWorker[a.WorkerID], a)
	}

	loads := make([]WorkerLoad, 0, len(workers))
	for _, w := range workers {
		load := WorkerLoad{WorkerID: w.ID, Name: w.Name}

		dates := make([]time.Time, 0, len(byWorker[w.ID]))
		for _, a := range byWorker[w.ID] {
			load.TotalDays++
			if a.IsScreener {
				load.ScreenerDays++
			} else {
				load.RegularDays++
			}
			wd := a.Date.Weekday()
			if wd == time.Saturday || wd == time.Sunday {
				load.WeekendDays++
			}
			dates = append(dates, a.Date)
		}

		load.LongestStreak = longestConsecutiveRun(dates)
		loads = append(loads, load)
	}

	// Per-capita expectations drive the deviation component
	if len(loads) > 0 {
		var totalDays, totalScreener, totalWeekend float64
		for _, l := range loads {
			totalDays += float64(l.TotalDays)
			totalScreener += float64(l.ScreenerDays)
			totalWeekend += float64(l.WeekendDays)
		}
		n := float64(len(loads))
		for i := range loads {
			loads[i].FairnessDeviation = deviationWorkWeight*math.Abs(float64(loads[i].TotalDays)-totalDays/n) +
				deviationScreenerWeight*math.Abs(float64(loads[i].ScreenerDays)-totalScreener/n) +
				deviationWeekendWeight*math.Abs(float64(loads[i].WeekendDays)-totalWeekend/n)
		}
	}

	return loads
}

// cohortScreenerFairness scores screener distribution per shift-affinity
// cohort (morning pool and evening pool independently), then averages the
// cohort scores. A cohort with naturally fewer screener slots is not
// penalized for looking different from the other cohort.
func (e *Evaluator) cohortScreenerFairness(loads []WorkerLoad, workers []*model.Worker) float64 {
	affinityByID := make(map[string]model.ShiftAffinity, len(workers))
	for _, w := range workers {
		affinityByID[w.ID] = w.Affinity
	}

	var morning, evening []float64
	for _, l := range loads {
		switch affinityByID[l.WorkerID] {
		case model.AffinityEvening:
			evening = append(evening, float64(l.ScreenerDays))
		default:
			morning = append(morning, float64(l.ScreenerDays))
		}
	}

	var scores []float64
	if len(morning) > 0 {
		scores = append(scores, distributionFairness(morning))
	}
	if len(evening) > 0 {
		scores = append(scores, distributionFairness(evening))
	}
	if len(scores) == 0 {
		return 1.0
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	return total / float64(len(scores))
}

// recommend produces textual hints for reporting; the engine itself never
// consumes these
func (e *Evaluator) recommend(loads []WorkerLoad, workloads []float64) []string {
	recommendations := []string{}
	if len(loads) == 0 {
		return recommendations
	}

	avg := mean(workloads)
	sd := stdDev(workloads)

	for _, l := range loads {
		if float64(l.TotalDays) > avg+sd && sd > 0 {
			recommendations = append(recommendations, fmt.Sprintf("%s is over-loaded (%d days vs %.1f average)", l.Name, l.TotalDays, avg))
		}
		if float64(l.TotalDays) < avg-sd && sd > 0 {
			recommendations = append(recommendations, fmt.Sprintf("%s is under-loaded (%d days vs %.1f average)", l.Name, l.TotalDays, avg))
		}
		if l.LongestStreak > 5 {
			recommendations = append(recommendations, fmt.Sprintf("%s has a %d-day consecutive run", l.Name, l.LongestStreak))
		}
	}

	return recommendations
}

// distributionFairness scores a count vector as max(0, 1 - stdDev/mean).
// A zero mean scores 1: nobody has any, perfectly fair.
func distributionFairness(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 1.0
	}
	score := 1 - stdDev(values)/m
	if score < 0 {
		return 0
	}
	return score
}

// gini computes the Gini coefficient of a non-negative vector.
// An all-zero vector is defined as 0 (perfect equality).
func gini(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	total := 0.0
	for _, v := range sorted {
		total += v
	}
	if total == 0 {
		return 0
	}

	n := float64(len(sorted))
	weighted := 0.0
	for i, v := range sorted {
		weighted += (2*float64(i+1) - n - 1) * v
	}
	return weighted / (n * total)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	total := 0.0
	for _, v := range values {
		total += (v - m) * (v - m)
	}
	return total / float64(len(values))
}

func stdDev(values []float64) float64 {
	return math.Sqrt(variance(values))
}

func maxMinRatio(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if minV == 0 {
		return 0
	}
	return maxV / minV
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// longestConsecutiveRun finds the longest run of consecutive calendar days
func longestConsecutiveRun(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, current := 1, 1
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Sub(sorted[i-1]).Hours() / 24
		if gap == 1 {
			current++
			if current > longest {
				longest = current
			}
		} else if gap > 1 {
			current = 1
		}
	}
	return longest
}
