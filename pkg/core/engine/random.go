package engine

import (
	"math/rand"
	"time"
)

// RandomController provides all stochastic behavior used by the engine:
// tie-breaking, perturbation, weighted sampling, and annealing-acceptance
// noise. Every draw is gated by a single randomization factor in [0,1] so a
// run can be dialled from fully deterministic (0) to fully noisy (1).
//
// The controller wraps an explicitly seeded generator; two controllers built
// with the same seed produce identical draw sequences, making entire
// generation runs reproducible.
type RandomController struct {
	rng    *rand.Rand
	factor float64
}

// NewRandomController creates a controller with the given randomization factor.
// A zero seed falls back to the wall clock (non-reproducible).
func NewRandomController(seed int64, factor float64) *RandomController {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	return &RandomController{
		rng:    rand.New(rand.NewSource(seed)),
		factor: factor,
	}
}

// Factor returns the configured randomization factor
func (r *RandomController) Factor() float64 {
	return r.factor
}

// Float64 returns a uniform draw in [0,1)
func (r *RandomController) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a uniform draw in [0,n). n must be > 0.
func (r *RandomController) Intn(n int) int {
	return r.rng.Intn(n)
}

// Shuffle randomizes element order in place
func (r *RandomController) Shuffle(n int, swap func(i, j int)) {
	r.rng.Shuffle(n, swap)
}

// Perturb applies up to ±spread relative noise to a value, scaled by the
// randomization factor. Used to keep repeated objective evaluations off
// deterministic plateaus.
func (r *RandomController) Perturb(value, spread float64) float64 {
	if r.factor == 0 {
		return value
	}
	noise := (r.rng.Float64()*2 - 1) * spread * r.factor
	return value * (1 + noise)
}

// AcceptanceNoise adjusts an annealing acceptance probability by up to
// ±0.1×factor, clamped to [0,1]
func (r *RandomController) AcceptanceNoise(probability float64) float64 {
	adjusted := probability + (r.rng.Float64()*2-1)*0.1*r.factor
	if adjusted < 0 {
		return 0
	}
	if adjusted > 1 {
		return 1
	}
	return adjusted
}

// TieBreak picks one index out of n equally-ranked candidates
func (r *RandomController) TieBreak(n int) int {
	if n <= 1 {
		return 0
	}
	return r.rng.Intn(n)
}

// WeightedSample picks an index proportionally to the given non-negative
// weights. Returns the last index if all weights are zero.
func (r *RandomController) WeightedSample(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return len(weights) - 1
	}

	pick := r.rng.Float64() * total
	partial := 0.0
	for i, w := range weights {
		partial += w
		if partial >= pick {
			return i
		}
	}
	return len(weights) - 1
}
