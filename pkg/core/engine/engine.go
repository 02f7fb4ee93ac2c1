package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// Metrics captures execution measurements for one generation run
type Metrics struct {
	Elapsed       time.Duration
	Iterations    int
	FallbacksUsed int
	StrategyUsed  Strategy
	Attempts      int
}

// Result is the full outcome of one generation run
type Result struct {
	Assignments []model.Assignment
	Conflicts   []model.Conflict
	Overwrites  []model.Overwrite
	Fairness    FairnessSnapshot
	Validation  ValidationResult
	Confidence  ConfidenceScore
	Metrics     Metrics
}

// Engine wires the rotation state machine, validator, evaluator, optimizer,
// and reliability gate into the full generation pipeline. Every collaborator
// is explicitly constructed; nothing is process-global, so concurrent runs
// with separate Engine values are safe.
type Engine struct {
	validator *Validator
	evaluator *Evaluator
	gate      *ReliabilityGate
	logger    *zap.Logger
}

// New creates an engine with the standard collaborators
func New(logger *zap.Logger) *Engine {
	return &Engine{
		validator: NewValidator(),
		evaluator: NewEvaluator(),
		gate:      NewReliabilityGate(),
		logger:    logger,
	}
}

// optimizeSkipThreshold: an initial solution scoring at least this well goes
// straight to the gate without an optimization pass
const optimizeSkipThreshold = 0.95

// Generate runs the full pipeline: the state machine produces an initial
// feasible set, the validator and evaluator score it, the optimizer improves
// it when warranted, and the reliability gate converts the scores into an
// accept/retry/reject decision, walking the fallback ladder on retries.
//
// The run never aborts on constraint breaches or non-convergence; all
// user-visible failure flows through the conflict list, the confidence
// score, and the recommendation.
func (e *Engine) Generate(input GenerationInput, cfg Config) Result {
	start := time.Now()
	ladder := e.gate.FallbackLadder()

	dataQuality := input.DataQuality
	if dataQuality == 0 {
		dataQuality = 1.0
	}

	attemptCfg := cfg
	nextRung := e.ladderIndexAfter(cfg.Strategy, ladder)
	rungFloor := 0.0

	var result Result
	for attempt := 0; ; attempt++ {
		result = e.runAttempt(input, attemptCfg, cfg.Seed, attempt, dataQuality, nextRung < len(ladder))
		result.Metrics.Attempts = attempt + 1
		result.Metrics.Elapsed = time.Since(start)

		if !retryWanted(result.Confidence, rungFloor) || nextRung >= len(ladder) {
			break
		}

		step := ladder[nextRung]
		e.logger.Info("Confidence gate requested retry, applying fallback",
			zap.Int("confidence", result.Confidence.Overall),
			zap.String("next_strategy", string(step.Strategy)),
			zap.Float64("min_confidence", step.MinConfidence),
			zap.Int("rung", nextRung))
		attemptCfg = e.gate.ApplyFallback(attemptCfg, step)
		rungFloor = step.MinConfidence
		nextRung++
	}

	return result
}

// retryWanted reports whether another ladder attempt should run: the gate
// asked for a retry outright, or the attempt ran under a ladder rung and
// scored below that rung's confidence floor. Rejected runs stop the ladder.
func retryWanted(confidence ConfidenceScore, rungFloor float64) bool {
	switch confidence.Recommendation {
	case RecommendRetry:
		return true
	case RecommendReject:
		return false
	}
	return float64(confidence.Overall) < rungFloor*100
}

// runAttempt executes one full generate-validate-optimize-assess cycle
func (e *Engine) runAttempt(input GenerationInput, cfg Config, seed int64, attempt int, dataQuality float64, retriesRemain bool) Result {
	// Derive the attempt's generator deterministically from the run seed so
	// a seeded run is reproducible end to end
	random := NewRandomController(deriveSeed(seed, attempt), cfg.RandomizationFactor)
	scorer := NewScorer()
	stateMachine := NewStateMachine(scorer, random, e.logger, cfg)
	objective := NewObjective(e.validator, e.evaluator, random)
	optimizer := NewOptimizer(objective, random, e.logger)

	ctx := &OptimizeContext{
		Workers:     input.Workers,
		Constraints: input.Constraints,
		RangeStart:  input.RangeStart,
		RangeEnd:    input.RangeEnd,
	}

	generated := stateMachine.Generate(input)

	initialScore := objective.Raw(generated.Assignments, ctx, cfg)
	e.logger.Debug("Initial solution generated",
		zap.Int("assignments", len(generated.Assignments)),
		zap.Int("conflicts", len(generated.Conflicts)),
		zap.Float64("objective", initialScore))

	optimized := OptimizeResult{Assignments: generated.Assignments, Score: initialScore}
	if initialScore < optimizeSkipThreshold && len(generated.Assignments) > 1 {
		optimized = optimizer.Optimize(generated.Assignments, ctx, cfg)
	}

	validation := e.validator.Validate(optimized.Assignments, input.Constraints)
	fairness := e.evaluator.Evaluate(optimized.Assignments, input.Workers)

	confidence := e.gate.Assess(GateInput{
		ValidationScore: validation.Score,
		ViolationCount:  len(validation.Violations),
		FairnessScore:   fairness.OverallScore,
		Elapsed:         optimized.Elapsed,
		Iterations:      optimized.Iterations,
		FallbacksUsed:   generated.FallbackCount + attempt,
		ConflictCount:   len(generated.Conflicts),
		AssignmentCount: len(optimized.Assignments),
		DataQuality:     dataQuality,
		Config:          cfg,
	}, retriesRemain)

	return Result{
		Assignments: optimized.Assignments,
		Conflicts:   generated.Conflicts,
		Overwrites:  generated.Overwrites,
		Fairness:    fairness,
		Validation:  validation,
		Confidence:  confidence,
		Metrics: Metrics{
			Iterations:    optimized.Iterations,
			FallbacksUsed: generated.FallbackCount + attempt,
			StrategyUsed:  cfg.Strategy,
		},
	}
}

// ladderIndexAfter returns the ladder rung to try after the given strategy.
// An unknown strategy retries from the top of the ladder.
func (e *Engine) ladderIndexAfter(strategy Strategy, ladder []FallbackStep) int {
	for i, step := range ladder {
		if step.Strategy == strategy {
			return i + 1
		}
	}
	return 0
}

// deriveSeed keeps retries deterministic under a fixed run seed while still
// giving each attempt an independent draw sequence
func deriveSeed(seed int64, attempt int) int64 {
	if seed == 0 {
		return 0
	}
	return seed + int64(attempt)*1_000_003
}
