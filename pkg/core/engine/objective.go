package engine

import (
	"math"
	"time"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// OptimizeContext carries the immutable inputs an optimization pass needs to
// score candidate assignment sets
type OptimizeContext struct {
	Workers     []*model.Worker
	Constraints []model.GlobalConstraint
	RangeStart  time.Time
	RangeEnd    time.Time
}

// TotalDays returns the number of calendar days in the context's range
// (inclusive)
func (c *OptimizeContext) TotalDays() int {
	return int(c.RangeEnd.Sub(c.RangeStart).Hours()/24) + 1
}

// Objective evaluates candidate assignment sets as a weighted combination of
// fairness, constraint satisfaction, and efficiency. The evaluation is
// additionally perturbed by the randomization controller to keep repeated
// runs off deterministic plateaus.
type Objective struct {
	validator *Validator
	evaluator *Evaluator
	random    *RandomController
}

// objectivePerturbSpread is the relative perturbation applied to objective
// evaluations, scaled by the randomization factor
const objectivePerturbSpread = 0.02

// NewObjective creates an objective function over the given engines
func NewObjective(validator *Validator, evaluator *Evaluator, random *RandomController) *Objective {
	return &Objective{
		validator: validator,
		evaluator: evaluator,
		random:    random,
	}
}

// Score evaluates the assignment set with perturbation applied
func (o *Objective) Score(assignments []model.Assignment, ctx *OptimizeContext, cfg Config) float64 {
	return o.random.Perturb(o.Raw(assignments, ctx, cfg), objectivePerturbSpread)
}

// Raw evaluates the assignment set deterministically:
// fairnessWeight*fairness + constraintWeight*constraint + efficiencyWeight*efficiency
func (o *Objective) Raw(assignments []model.Assignment, ctx *OptimizeContext, cfg Config) float64 {
	fairness := o.evaluator.Evaluate(assignments, ctx.Workers).OverallScore
	constraint := o.validator.Validate(assignments, ctx.Constraints).Score
	efficiency := o.efficiency(assignments, ctx)

	return cfg.FairnessWeight*fairness + cfg.ConstraintWeight*constraint + cfg.EfficiencyWeight*efficiency
}

// efficiency = 0.6*coverageRatio + 0.4*workloadBalance, where coverage is the
// share of distinct covered days and balance is 1/(1+sqrt(variance(counts)))
func (o *Objective) efficiency(assignments []model.Assignment, ctx *OptimizeContext) float64 {
	totalDays := ctx.TotalDays()
	if totalDays <= 0 {
		return 0
	}

	coveredDays := make(map[string]bool)
	perWorker := make(map[string]float64)
	for _, a := range assignments {
		coveredDays[model.DateKey(a.Date)] = true
		perWorker[a.WorkerID]++
	}

	coverage := float64(len(coveredDays)) / float64(totalDays)

	counts := make([]float64, 0, len(ctx.Workers))
	for _, w := range ctx.Workers {
		counts = append(counts, perWorker[w.ID])
	}
	balance := 1 / (1 + math.Sqrt(variance(counts)))

	return 0.6*coverage + 0.4*balance
}
