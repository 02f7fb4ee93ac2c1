package engine

import (
	"math"
	"time"
)

// GateStatus classifies a generated schedule's confidence
type GateStatus string

const (
	GatePass GateStatus = "PASS"
	GateWarn GateStatus = "WARN"
	GateFail GateStatus = "FAIL"
)

// Recommendation is the gate's verdict on what to do with the schedule
type Recommendation string

const (
	RecommendAccept Recommendation = "ACCEPT"
	RecommendReview Recommendation = "REVIEW"
	RecommendRetry  Recommendation = "RETRY"
	RecommendReject Recommendation = "REJECT"
)

// ConfidenceFactors are the seven named confidence components, each in [0,1]
type ConfidenceFactors struct {
	ConstraintSatisfaction float64
	Fairness               float64
	Convergence            float64
	AlgorithmStability     float64
	DataQuality            float64
	ConflictResolution     float64
	FallbackDepth          float64
}

// ConfidenceScore is the reliability gate's full verdict
type ConfidenceScore struct {
	Factors        ConfidenceFactors
	Overall        int // weighted sum scaled to [0,100]
	Gate           GateStatus
	Recommendation Recommendation
}

// GateInput carries the optimizer result plus execution metadata the gate
// evaluates
type GateInput struct {
	ValidationScore float64
	ViolationCount  int
	FairnessScore   float64
	Elapsed         time.Duration
	Iterations      int
	FallbacksUsed   int
	ConflictCount   int
	AssignmentCount int

	// DataQuality is an externally supplied input-quality estimate in [0,1]
	DataQuality float64

	Config Config
}

// Fixed factor weights
var confidenceWeights = ConfidenceFactors{
	ConstraintSatisfaction: 0.25,
	Fairness:               0.20,
	Convergence:            0.15,
	AlgorithmStability:     0.15,
	DataQuality:            0.10,
	ConflictResolution:     0.10,
	FallbackDepth:          0.05,
}

// Gate thresholds
const (
	gatePassThreshold  = 85
	gateWarnThreshold  = 70
	gateRetryThreshold = 50
)

// ReliabilityGate converts scores and execution metadata into an
// accept/retry/reject decision, and owns the ordered fallback ladder applied
// on retries. Stateless; safe to share across runs.
type ReliabilityGate struct{}

// NewReliabilityGate creates a reliability gate
func NewReliabilityGate() *ReliabilityGate {
	return &ReliabilityGate{}
}

// Assess computes the seven confidence factors and the gate decision.
// retriesRemain tells the gate whether fallback strategies are still
// available; a failing score recommends RETRY only while they are.
func (g *ReliabilityGate) Assess(input GateInput, retriesRemain bool) ConfidenceScore {
	factors := ConfidenceFactors{
		ConstraintSatisfaction: clamp01(input.ValidationScore - 0.02*float64(input.ViolationCount)),
		Fairness:               clamp01(input.FairnessScore),
		Convergence:            g.convergenceFactor(input),
		AlgorithmStability:     g.stabilityFactor(input.Config),
		DataQuality:            clamp01(input.DataQuality),
		ConflictResolution:     g.conflictFactor(input),
		FallbackDepth:          g.fallbackFactor(input.FallbacksUsed),
	}

	weighted := factors.ConstraintSatisfaction*confidenceWeights.ConstraintSatisfaction +
		factors.Fairness*confidenceWeights.Fairness +
		factors.Convergence*confidenceWeights.Convergence +
		factors.AlgorithmStability*confidenceWeights.AlgorithmStability +
		factors.DataQuality*confidenceWeights.DataQuality +
		factors.ConflictResolution*confidenceWeights.ConflictResolution +
		factors.FallbackDepth*confidenceWeights.FallbackDepth

	score := ConfidenceScore{
		Factors: factors,
		Overall: int(math.Round(100 * weighted)),
	}

	switch {
	case score.Overall >= gatePassThreshold:
		score.Gate = GatePass
		score.Recommendation = RecommendAccept
	case score.Overall >= gateWarnThreshold:
		score.Gate = GateWarn
		score.Recommendation = RecommendReview
	case score.Overall >= gateRetryThreshold:
		score.Gate = GateFail
		if retriesRemain {
			score.Recommendation = RecommendRetry
		} else {
			score.Recommendation = RecommendReject
		}
	default:
		score.Gate = GateFail
		score.Recommendation = RecommendReject
	}

	return score
}

// convergenceFactor penalizes runs that took too long, barely iterated, or
// churned far past the useful search horizon
func (g *ReliabilityGate) convergenceFactor(input GateInput) float64 {
	factor := 1.0
	if input.Elapsed > 10*time.Second {
		factor -= 0.3
	}
	if input.Iterations < 10 {
		factor -= 0.3
	}
	if input.Iterations > 500 {
		factor -= 0.2
	}
	return clamp01(factor)
}

// stabilityFactor rewards conservative weight configurations: weights that
// sum near 1 and low randomization
func (g *ReliabilityGate) stabilityFactor(cfg Config) float64 {
	weightDrift := math.Abs(1 - (cfg.FairnessWeight + cfg.EfficiencyWeight + cfg.ConstraintWeight))
	return clamp01(1 - 0.5*cfg.RandomizationFactor - weightDrift)
}

// conflictFactor = max(0, 1 - 2*conflicts/assignments)
func (g *ReliabilityGate) conflictFactor(input GateInput) float64 {
	if input.AssignmentCount == 0 {
		if input.ConflictCount == 0 {
			return 1.0
		}
		return 0.0
	}
	return clamp01(1 - 2*float64(input.ConflictCount)/float64(input.AssignmentCount))
}

// fallbackFactor steps down with each fallback used
func (g *ReliabilityGate) fallbackFactor(fallbacks int) float64 {
	switch fallbacks {
	case 0:
		return 1.0
	case 1:
		return 0.8
	case 2:
		return 0.6
	case 3:
		return 0.4
	default:
		return 0.2
	}
}

// FallbackStep is one rung of the ordered fallback ladder
type FallbackStep struct {
	Strategy      Strategy
	MaxIterations int
	Timeout       time.Duration
	MinConfidence float64
}

// FallbackLadder is the ordered retry sequence: progressively simpler, more
// deterministic strategies with lower confidence floors
func (g *ReliabilityGate) FallbackLadder() []FallbackStep {
	return []FallbackStep{
		{Strategy: StrategyGenetic, MaxIterations: 200, Timeout: 30 * time.Second, MinConfidence: 0.85},
		{Strategy: StrategyAnnealing, MaxIterations: 150, Timeout: 20 * time.Second, MinConfidence: 0.75},
		{Strategy: StrategyHillClimbing, MaxIterations: 100, Timeout: 15 * time.Second, MinConfidence: 0.65},
		{Strategy: StrategyGreedy, MaxIterations: 50, Timeout: 10 * time.Second, MinConfidence: 0.50},
	}
}

// ApplyFallback produces the retry configuration for a ladder step: favor
// fairness a little more and randomness a lot less than the failed attempt
func (g *ReliabilityGate) ApplyFallback(cfg Config, step FallbackStep) Config {
	next := cfg
	next.Strategy = step.Strategy
	next.MaxIterations = step.MaxIterations
	next.Timeout = step.Timeout

	next.FairnessWeight = cfg.FairnessWeight + 0.1
	if next.FairnessWeight > 1.0 {
		next.FairnessWeight = 1.0
	}

	next.RandomizationFactor = cfg.RandomizationFactor - 0.2
	if next.RandomizationFactor < 0.1 {
		next.RandomizationFactor = 0.1
	}

	return next
}

// AuditRecord is one historical generation outcome supplied by the caller's
// audit log. The log itself is an external collaborator.
type AuditRecord struct {
	RunID         string
	Confidence    int
	Gate          GateStatus
	FallbacksUsed int
	CreatedAt     time.Time
}

// ReliabilityMetrics summarizes historical gate outcomes
type ReliabilityMetrics struct {
	Runs              int
	SuccessRate       float64 // share of runs that passed
	AverageConfidence float64
	FallbackUsageRate float64 // share of runs that used any fallback
}

// HistoricalMetrics computes reliability metrics from a caller-supplied audit
// log
func (g *ReliabilityGate) HistoricalMetrics(records []AuditRecord) ReliabilityMetrics {
	metrics := ReliabilityMetrics{Runs: len(records)}
	if len(records) == 0 {
		return metrics
	}

	passed := 0
	usedFallback := 0
	totalConfidence := 0
	for _, r := range records {
		if r.Gate == GatePass {
			passed++
		}
		if r.FallbacksUsed > 0 {
			usedFallback++
		}
		totalConfidence += r.Confidence
	}

	n := float64(len(records))
	metrics.SuccessRate = float64(passed) / n
	metrics.AverageConfidence = float64(totalConfidence) / n
	metrics.FallbackUsageRate = float64(usedFallback) / n
	return metrics
}
