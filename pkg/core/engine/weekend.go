package engine

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// assignWeekend fills the configured slot count for a Saturday or Sunday from
// the unified worker pool (shift affinity is ignored on weekends).
//
// Tiers, in fill order:
//  1. Mandatory: the worker's current pattern requires this exact day
//     (TUE_SAT on Saturday, SUN_THU on Sunday). All mandatory candidates are
//     assigned even when that exceeds the slot count; the excess is logged as
//     an override, never dropped.
//  2. Optional: eligible weekend-capable workers (holding TUE_SAT or SUN_THU
//     this week) without a mandate for this day, ranked by rotation fairness.
//  3. Fallback recruitment: the pattern requirement is relaxed entirely and
//     the full pool is ranked subject only to the two hard safety rules
//     (no vacation, streak below the cap).
func (sm *StateMachine) assignWeekend(date time.Time, input GenerationInput, history *History, existing map[string]model.Assignment, result *GenerationResult) {
	slots := sm.cfg.WeekendAnalystsPerDay
	if override, ok := input.WeekendSlotOverrides[model.DateKey(date)]; ok {
		slots = override
	}

	var mandatory, optional, reserve []*model.Worker
	for _, w := range input.Workers {
		if w.OnVacation(date) || history.Streak(w.ID) >= sm.cfg.MaxConsecutiveDays {
			continue
		}

		pattern := model.PatternOn(w, input.RangeStart, date)
		switch {
		case pattern.MandatoryOn(date.Weekday()):
			mandatory = append(mandatory, w)
		case pattern.Name == model.PatternTueSat || pattern.Name == model.PatternSunThu:
			optional = append(optional, w)
		default:
			reserve = append(reserve, w)
		}
	}

	assigned := 0

	// Tier 1: every mandatory candidate works, regardless of the slot count
	for _, w := range mandatory {
		if sm.commitWeekendAssignment(date, w, history, existing, result, false) {
			assigned++
		}
	}
	if assigned > slots {
		result.Conflicts = append(result.Conflicts, model.Conflict{
			Type:     model.ConflictMandatoryOverride,
			Severity: model.ConflictLow,
			Date:     date,
			Message:  fmt.Sprintf("%d mandatory analysts on %s exceed the configured %d slot(s)", assigned, model.DateKey(date), slots),
		})
	}

	// Tier 2: fill remaining slots from the optional tier by rotation fairness
	if assigned < slots {
		sm.rankOptionalCandidates(optional, date, history)
		for _, w := range optional {
			if assigned >= slots {
				break
			}
			if sm.commitWeekendAssignment(date, w, history, existing, result, false) {
				assigned++
			}
		}
	}

	// Tier 3: fallback recruitment from the full pool
	if assigned < slots && len(reserve) > 0 {
		sm.rankFallbackCandidates(reserve, date, history, len(input.Workers))
		for _, w := range reserve {
			if assigned >= slots {
				break
			}
			if sm.commitWeekendAssignment(date, w, history, existing, result, true) {
				assigned++
				result.FallbackCount++
				sm.logger.Debug("Fallback weekend recruitment",
					zap.String("worker", w.ID),
					zap.String("date", model.DateKey(date)))
			}
		}
	}

	if assigned < slots {
		severity := model.ConflictHigh
		if assigned == 0 {
			severity = model.ConflictCritical
		}
		result.Conflicts = append(result.Conflicts, model.Conflict{
			Type:     model.ConflictMissingWeekendCoverage,
			Severity: severity,
			Date:     date,
			Message:  fmt.Sprintf("only %d of %d weekend slot(s) filled on %s", assigned, slots, model.DateKey(date)),
		})
	}
}

// commitWeekendAssignment records a weekend assignment and updates streak and
// history immediately so the next day's scoring reflects the decision
func (sm *StateMachine) commitWeekendAssignment(date time.Time, w *model.Worker, history *History, existing map[string]model.Assignment, result *GenerationResult, fallback bool) bool {
	return sm.commitAssignment(date, model.ShiftWeekend, w, history, existing, result, fallback)
}

// rankOptionalCandidates orders the optional tier by a recency- and
// count-based rotation-fairness score over accumulated history, including
// same-run assignments. Equal scores are broken by the randomization
// controller.
func (sm *StateMachine) rankOptionalCandidates(candidates []*model.Worker, date time.Time, history *History) {
	scores := make(map[string]float64, len(candidates))
	for _, w := range candidates {
		scores[w.ID] = sm.rotationFairnessScore(w, date, history)
	}

	sm.random.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i].ID] > scores[candidates[j].ID]
	})
}

// rankFallbackCandidates orders the fallback pool by fairness score, then by
// lowest current streak
func (sm *StateMachine) rankFallbackCandidates(candidates []*model.Worker, date time.Time, history *History, poolSize int) {
	scores := make(map[string]float64, len(candidates))
	for _, w := range candidates {
		scores[w.ID] = sm.scorer.Score(Candidate{
			Worker:   w,
			Date:     date,
			Shift:    model.ShiftWeekend,
			History:  history,
			PoolSize: poolSize,
		})
	}

	sm.random.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		if scores[candidates[i].ID] != scores[candidates[j].ID] {
			return scores[candidates[i].ID] > scores[candidates[j].ID]
		}
		return history.Streak(candidates[i].ID) < history.Streak(candidates[j].ID)
	})
}

// rotationFairnessScore rewards workers whose last weekend duty is far in the
// past and penalizes accumulated weekend load
func (sm *StateMachine) rotationFairnessScore(w *model.Worker, date time.Time, history *History) float64 {
	const maxRecencyDays = 60.0

	recency := maxRecencyDays
	if last := history.LastWeekendAssignment(w.ID); last != "" {
		lastDate, err := time.Parse(model.DateFormat, last)
		if err == nil {
			days := date.Sub(lastDate).Hours() / 24
			if days < recency {
				recency = days
			}
		}
	}

	switch sm.cfg.WeekendStrategy {
	case WeekendLowestStreak:
		return recency - float64(history.Streak(w.ID))*7
	default:
		return recency - float64(history.WeekendCount(w.ID))*7
	}
}
