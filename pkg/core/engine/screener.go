package engine

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/model"
)

// Screener-specific score adjustments layered on top of the scoring function
const (
	screenerRecentPenalty   = 40.0 // screened twice in trailing week or screened yesterday
	screenerRotationPenalty = 20.0 // inside a weekend-rotation window and already screened this week
	screenerTrainedBonus    = 15.0 // carries the screener-trained skill tag
)

// assignScreener picks screener duty for one shift from the workers already
// scheduled to work it. The scoring function's base score is adjusted with
// screener-specific penalties and the trained-skill bonus; the highest score
// wins, with ties broken by the randomization controller.
func (sm *StateMachine) assignScreener(date time.Time, shift model.ShiftType, pool []*model.Worker, history *History, poolSize int) {
	if len(pool) == 0 {
		return
	}

	var chosen *model.Worker
	switch sm.cfg.ScreenerStrategy {
	case ScreenerRoundRobin:
		chosen = sm.pickScreenerRoundRobin(date, pool, history)
	default:
		chosen = sm.pickScreenerScored(date, shift, pool, history, poolSize)
	}

	if chosen == nil {
		return
	}

	history.MarkScreener(chosen.ID, date)
	sm.logger.Debug("Screener assigned",
		zap.String("worker", chosen.ID),
		zap.String("date", model.DateKey(date)),
		zap.String("shift", string(shift)))
}

// pickScreenerScored selects the highest screener score; equal scores fall to
// the controller's tie-break
func (sm *StateMachine) pickScreenerScored(date time.Time, shift model.ShiftType, pool []*model.Worker, history *History, poolSize int) *model.Worker {
	bestScore := 0.0
	var best []*model.Worker

	for _, w := range pool {
		score := sm.screenerScore(w, date, shift, history, poolSize)
		switch {
		case best == nil || score > bestScore:
			best = []*model.Worker{w}
			bestScore = score
		case score == bestScore:
			best = append(best, w)
		}
	}

	if best == nil {
		return nil
	}
	return best[sm.random.TieBreak(len(best))]
}

// pickScreenerRoundRobin rotates duty to whoever screened least in the
// trailing week, breaking ties by pool order shuffled once
func (sm *StateMachine) pickScreenerRoundRobin(date time.Time, pool []*model.Worker, history *History) *model.Worker {
	shuffled := make([]*model.Worker, len(pool))
	copy(shuffled, pool)
	sm.random.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	sort.SliceStable(shuffled, func(i, j int) bool {
		return history.ScreenerCountInWindow(shuffled[i].ID, date, 7) <
			history.ScreenerCountInWindow(shuffled[j].ID, date, 7)
	})
	return shuffled[0]
}

// screenerScore is the scoring function's candidate score with screener
// adjustments applied
func (sm *StateMachine) screenerScore(w *model.Worker, date time.Time, shift model.ShiftType, history *History, poolSize int) float64 {
	score := sm.scorer.Score(Candidate{
		Worker:   w,
		Date:     date,
		Shift:    shift,
		History:  history,
		PoolSize: poolSize,
	})

	// Heavy penalty for recent screener load or back-to-back duty
	recentCount := history.ScreenerCountInWindow(w.ID, date, 7)
	screenedYesterday := history.ScreenedOn(w.ID, date.AddDate(0, 0, -1))
	if recentCount >= 2 || screenedYesterday {
		score -= screenerRecentPenalty
	}

	// Workers inside an active weekend-rotation window who already screened
	// this calendar week get deprioritized
	if sm.inWeekendRotationWindow(w, date) && history.ScreenerCountInCalendarWeek(w.ID, date) >= 1 {
		score -= screenerRotationPenalty
	}

	if w.HasSkill(model.SkillScreenerTrained) {
		score += screenerTrainedBonus
	}

	return score
}

// inWeekendRotationWindow reports whether the worker's current pattern is one
// of the weekend-owning patterns this week
func (sm *StateMachine) inWeekendRotationWindow(w *model.Worker, date time.Time) bool {
	name := model.PatternOn(w, sm.rangeStart, date).Name
	return name == model.PatternTueSat || name == model.PatternSunThu
}
