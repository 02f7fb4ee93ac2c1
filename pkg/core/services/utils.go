package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/internal/config"
	"github.com/bishwash/shiftplanner/pkg/core/engine"
	"github.com/bishwash/shiftplanner/pkg/core/model"
	"github.com/bishwash/shiftplanner/pkg/db"
)

// buildEngineConfig merges yaml engine settings over the engine defaults
func buildEngineConfig(settings config.EngineSettings) engine.Config {
	cfg := engine.DefaultConfig()

	if settings.Strategy != "" {
		cfg.Strategy = engine.Strategy(settings.Strategy)
	}
	if settings.FairnessWeight > 0 {
		cfg.FairnessWeight = settings.FairnessWeight
	}
	if settings.EfficiencyWeight > 0 {
		cfg.EfficiencyWeight = settings.EfficiencyWeight
	}
	if settings.ConstraintWeight > 0 {
		cfg.ConstraintWeight = settings.ConstraintWeight
	}
	if settings.MaxIterations > 0 {
		cfg.MaxIterations = settings.MaxIterations
	}
	if settings.ConvergenceThreshold > 0 {
		cfg.ConvergenceThreshold = settings.ConvergenceThreshold
	}
	if settings.RandomizationFactor > 0 {
		cfg.RandomizationFactor = settings.RandomizationFactor
	}
	if settings.MaxConsecutiveDays > 0 {
		cfg.MaxConsecutiveDays = settings.MaxConsecutiveDays
	}
	if settings.WeekendAnalystsPerDay > 0 {
		cfg.WeekendAnalystsPerDay = settings.WeekendAnalystsPerDay
	}
	if settings.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(settings.TimeoutSeconds) * time.Second
	}
	if settings.ScreenerStrategy != "" {
		cfg.ScreenerStrategy = engine.ScreenerStrategy(settings.ScreenerStrategy)
	}
	if settings.WeekendStrategy != "" {
		cfg.WeekendStrategy = engine.WeekendStrategy(settings.WeekendStrategy)
	}
	if settings.Seed != 0 {
		cfg.Seed = settings.Seed
	}

	return cfg
}

// buildWorkers converts worker and vacation records into engine workers.
// Inactive workers are dropped; vacations are attached by worker ID.
func buildWorkers(records []db.Worker, vacations []db.Vacation) ([]*model.Worker, error) {
	vacationsByWorker := make(map[string][]model.DateInterval)
	for _, v := range vacations {
		start, err := time.Parse(model.DateFormat, v.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid vacation start for worker %s: %w", v.WorkerID, err)
		}
		end, err := time.Parse(model.DateFormat, v.End)
		if err != nil {
			return nil, fmt.Errorf("invalid vacation end for worker %s: %w", v.WorkerID, err)
		}
		vacationsByWorker[v.WorkerID] = append(vacationsByWorker[v.WorkerID], model.DateInterval{Start: start, End: end})
	}

	workers := make([]*model.Worker, 0, len(records))
	for _, rec := range records {
		if !rec.Active {
			continue
		}

		affinity := model.ShiftAffinity(rec.Affinity)
		if !affinity.IsValid() {
			affinity = model.AffinityNone
		}

		pattern := model.PatternName(rec.StartingPattern)
		if _, ok := model.Patterns[pattern]; !ok {
			pattern = model.PatternMonFri
		}

		workers = append(workers, &model.Worker{
			ID:              rec.ID,
			Name:            rec.Name,
			Affinity:        affinity,
			Skills:          rec.Skills,
			Employment:      model.EmploymentCategory(rec.Employment),
			Experience:      model.ExperienceTier(rec.Experience),
			Vacations:       vacationsByWorker[rec.ID],
			StartingPattern: pattern,
		})
	}

	return workers, nil
}

// buildConstraints converts constraint records into engine constraints
func buildConstraints(records []db.Constraint) ([]model.GlobalConstraint, error) {
	constraints := make([]model.GlobalConstraint, 0, len(records))
	for _, rec := range records {
		c := model.GlobalConstraint{
			ID:             rec.ID,
			Kind:           model.ConstraintKind(rec.Kind),
			TargetWorkerID: rec.WorkerID,
			Severity:       model.ConstraintSeverity(rec.Severity),
			Description:    rec.Description,
			Params: model.ConstraintParams{
				MaxScreenerDays: rec.MaxScreenerDays,
				MinScreenerDays: rec.MinScreenerDays,
			},
		}

		if rec.Start != "" {
			start, err := time.Parse(model.DateFormat, rec.Start)
			if err != nil {
				return nil, fmt.Errorf("invalid constraint start date %q: %w", rec.Start, err)
			}
			c.Interval.Start = start
			c.Interval.End = start
		}
		if rec.End != "" {
			end, err := time.Parse(model.DateFormat, rec.End)
			if err != nil {
				return nil, fmt.Errorf("invalid constraint end date %q: %w", rec.End, err)
			}
			c.Interval.End = end
		}

		constraints = append(constraints, c)
	}

	return constraints, nil
}

// expandBlackoutOverrides expands rrule blackout overrides into blackout
// constraints for every matching date within the range
func expandBlackoutOverrides(overrides []config.BlackoutOverride, rangeStart, rangeEnd time.Time, logger *zap.Logger) ([]model.GlobalConstraint, error) {
	constraints := make([]model.GlobalConstraint, 0)

	for i, override := range overrides {
		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for blackout override %d: %w", i, err)
		}

		rule.DTStart(rangeStart.AddDate(0, 0, -7))
		occurrences := rule.Between(rangeStart, rangeEnd, true)
		for _, occurrence := range occurrences {
			date := time.Date(occurrence.Year(), occurrence.Month(), occurrence.Day(), 0, 0, 0, 0, time.UTC)
			constraints = append(constraints, model.GlobalConstraint{
				ID:          uuid.New().String(),
				Kind:        model.ConstraintBlackoutDate,
				Interval:    model.DateInterval{Start: date, End: date},
				Severity:    model.SeverityHard,
				Description: override.Reason,
			})
		}

		logger.Debug("Expanded blackout override",
			zap.Int("index", i),
			zap.String("rrule", override.RRule),
			zap.Int("dates", len(occurrences)))
	}

	return constraints, nil
}

// expandWeekendSlotOverrides expands rrule weekend slot overrides into a
// per-date slot count map keyed by canonical date string
func expandWeekendSlotOverrides(overrides []config.WeekendSlotOverride, rangeStart, rangeEnd time.Time, logger *zap.Logger) (map[string]int, error) {
	slots := make(map[string]int)

	for i, override := range overrides {
		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for weekend slot override %d: %w", i, err)
		}

		rule.DTStart(rangeStart.AddDate(0, 0, -7))
		occurrences := rule.Between(rangeStart, rangeEnd, true)
		for _, occurrence := range occurrences {
			slots[occurrence.Format(model.DateFormat)] = override.Slots
		}

		logger.Debug("Expanded weekend slot override",
			zap.Int("index", i),
			zap.String("rrule", override.RRule),
			zap.Int("slots", override.Slots),
			zap.Int("dates", len(occurrences)))
	}

	return slots, nil
}

// findLatestSchedule finds the schedule with the most recent range start
func findLatestSchedule(schedules []db.Schedule) *db.Schedule {
	if len(schedules) == 0 {
		return nil
	}

	latest := &schedules[0]
	latestDate, err := time.Parse(model.DateFormat, latest.RangeStart)
	if err != nil {
		return latest
	}

	for i := 1; i < len(schedules); i++ {
		currentDate, err := time.Parse(model.DateFormat, schedules[i].RangeStart)
		if err != nil {
			continue
		}

		if currentDate.After(latestDate) {
			latest = &schedules[i]
			latestDate = currentDate
		}
	}

	return latest
}

// toModelAssignments converts assignment records into engine assignments
func toModelAssignments(records []db.Assignment) ([]model.Assignment, error) {
	assignments := make([]model.Assignment, 0, len(records))
	for _, rec := range records {
		date, err := time.Parse(model.DateFormat, rec.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid assignment date %q: %w", rec.Date, err)
		}
		assignments = append(assignments, model.Assignment{
			ID:         rec.ID,
			Date:       date,
			WorkerID:   rec.WorkerID,
			Shift:      model.ShiftType(rec.Shift),
			IsScreener: rec.IsScreener,
			Origin:     model.AssignmentOrigin(rec.Origin),
		})
	}
	return assignments, nil
}

// toAssignmentRecords converts engine assignments into database records
func toAssignmentRecords(scheduleID string, assignments []model.Assignment) []db.Assignment {
	records := make([]db.Assignment, len(assignments))
	for i, a := range assignments {
		records[i] = db.Assignment{
			ID:         a.ID,
			ScheduleID: scheduleID,
			WorkerID:   a.WorkerID,
			Date:       model.DateKey(a.Date),
			Shift:      string(a.Shift),
			IsScreener: a.IsScreener,
			Origin:     string(a.Origin),
		}
	}
	return records
}
