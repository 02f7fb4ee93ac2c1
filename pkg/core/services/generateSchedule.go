package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/internal/config"
	"github.com/bishwash/shiftplanner/pkg/core/engine"
	"github.com/bishwash/shiftplanner/pkg/core/model"
	"github.com/bishwash/shiftplanner/pkg/db"
)

// GenerateScheduleStore defines the database operations needed for generating a schedule
type GenerateScheduleStore interface {
	GetWorkers(ctx context.Context) ([]db.Worker, error)
	GetVacations(ctx context.Context) ([]db.Vacation, error)
	GetConstraints(ctx context.Context) ([]db.Constraint, error)
	GetSchedules(ctx context.Context) ([]db.Schedule, error)
	GetAssignments(ctx context.Context, scheduleID string) ([]db.Assignment, error)
	InsertSchedule(ctx context.Context, schedule *db.Schedule, assignments []db.Assignment) error
	InsertAudit(ctx context.Context, audit *db.ReliabilityAudit) error
}

// GenerateScheduleResult contains the generation outcome
type GenerateScheduleResult struct {
	ScheduleID string
	RangeStart time.Time
	RangeEnd   time.Time
	Saved      bool
	Engine     engine.Result
}

// GenerateSchedule runs the scheduling engine over the given date range and
// persists the result when the reliability gate does not reject it.
// If dryRun is true, nothing is saved to the database.
func GenerateSchedule(
	ctx context.Context,
	database GenerateScheduleStore,
	cfg *config.Config,
	logger *zap.Logger,
	rangeStart, rangeEnd time.Time,
	dryRun bool,
) (*GenerateScheduleResult, error) {
	logger.Debug("Starting generateSchedule",
		zap.String("range_start", model.DateKey(rangeStart)),
		zap.String("range_end", model.DateKey(rangeEnd)),
		zap.Bool("dry_run", dryRun))

	if !rangeEnd.After(rangeStart) {
		return nil, fmt.Errorf("range end %s must be after range start %s",
			model.DateKey(rangeEnd), model.DateKey(rangeStart))
	}

	// Fetch workers and vacations
	logger.Debug("Fetching workers")
	workerRecords, err := database.GetWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}
	logger.Debug("Found workers", zap.Int("count", len(workerRecords)))

	vacationRecords, err := database.GetVacations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vacations: %w", err)
	}
	logger.Debug("Found vacations", zap.Int("count", len(vacationRecords)))

	workers, err := buildWorkers(workerRecords, vacationRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to build workers: %w", err)
	}
	if len(workers) == 0 {
		return nil, fmt.Errorf("no active workers found - cannot generate a schedule")
	}

	// Fetch constraints and merge in configured blackout overrides
	logger.Debug("Fetching constraints")
	constraintRecords, err := database.GetConstraints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch constraints: %w", err)
	}

	constraints, err := buildConstraints(constraintRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to build constraints: %w", err)
	}

	blackouts, err := expandBlackoutOverrides(cfg.BlackoutOverrides, rangeStart, rangeEnd, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to expand blackout overrides: %w", err)
	}
	constraints = append(constraints, blackouts...)
	logger.Debug("Built constraints",
		zap.Int("from_database", len(constraintRecords)),
		zap.Int("from_overrides", len(blackouts)))

	slotOverrides, err := expandWeekendSlotOverrides(cfg.WeekendSlotOverrides, rangeStart, rangeEnd, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to expand weekend slot overrides: %w", err)
	}

	// Carry assignments from the latest prior schedule so regeneration
	// reports overwrites instead of silently replacing them
	existing, err := loadExistingAssignments(ctx, database, rangeStart, rangeEnd, logger)
	if err != nil {
		return nil, err
	}

	engineCfg := buildEngineConfig(cfg.Engine)
	input := engine.GenerationInput{
		RangeStart:           rangeStart,
		RangeEnd:             rangeEnd,
		Workers:              workers,
		Existing:             existing,
		Constraints:          constraints,
		WeekendSlotOverrides: slotOverrides,
		DataQuality:          dataQualityScore(workerRecords),
	}

	logger.Info("Running schedule generation",
		zap.String("strategy", string(engineCfg.Strategy)),
		zap.Int("workers", len(workers)),
		zap.Int("constraints", len(constraints)))

	eng := engine.New(logger)
	result := eng.Generate(input, engineCfg)

	logger.Info("Generation completed",
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Int("confidence", result.Confidence.Overall),
		zap.String("gate", string(result.Confidence.Gate)),
		zap.String("recommendation", string(result.Confidence.Recommendation)),
		zap.Int("attempts", result.Metrics.Attempts))

	scheduleID := uuid.New().String()

	// Record the gate outcome regardless of whether the schedule is saved
	if !dryRun {
		audit := &db.ReliabilityAudit{
			ID:             uuid.New().String(),
			ScheduleID:     scheduleID,
			Strategy:       string(result.Metrics.StrategyUsed),
			Confidence:     result.Confidence.Overall,
			Gate:           string(result.Confidence.Gate),
			Recommendation: string(result.Confidence.Recommendation),
			FallbacksUsed:  result.Metrics.FallbacksUsed,
			DurationMS:     result.Metrics.Elapsed.Milliseconds(),
		}
		if err := database.InsertAudit(ctx, audit); err != nil {
			return nil, fmt.Errorf("failed to record reliability audit: %w", err)
		}
	}

	shouldSave := !dryRun && result.Confidence.Recommendation != engine.RecommendReject

	if shouldSave {
		schedule := &db.Schedule{
			ID:         scheduleID,
			RangeStart: model.DateKey(rangeStart),
			RangeEnd:   model.DateKey(rangeEnd),
			Strategy:   string(result.Metrics.StrategyUsed),
			Confidence: result.Confidence.Overall,
			Gate:       string(result.Confidence.Gate),
		}
		records := toAssignmentRecords(scheduleID, result.Assignments)
		if err := database.InsertSchedule(ctx, schedule, records); err != nil {
			return nil, fmt.Errorf("failed to save schedule: %w", err)
		}
		logger.Info("Schedule saved",
			zap.String("schedule_id", scheduleID),
			zap.Int("assignments", len(records)))
	} else if dryRun {
		logger.Info("Dry run mode - schedule not saved")
	} else {
		logger.Warn("Schedule rejected by reliability gate - not saving",
			zap.Int("confidence", result.Confidence.Overall))
	}

	return &GenerateScheduleResult{
		ScheduleID: scheduleID,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		Saved:      shouldSave,
		Engine:     result,
	}, nil
}

// loadExistingAssignments returns assignments from the latest schedule whose
// range overlaps the requested one
func loadExistingAssignments(
	ctx context.Context,
	database GenerateScheduleStore,
	rangeStart, rangeEnd time.Time,
	logger *zap.Logger,
) ([]model.Assignment, error) {
	schedules, err := database.GetSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}

	latest := findLatestSchedule(schedules)
	if latest == nil {
		return nil, nil
	}

	latestStart, err := time.Parse(model.DateFormat, latest.RangeStart)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule range start %q: %w", latest.RangeStart, err)
	}
	latestEnd, err := time.Parse(model.DateFormat, latest.RangeEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule range end %q: %w", latest.RangeEnd, err)
	}

	if latestEnd.Before(rangeStart) || latestStart.After(rangeEnd) {
		return nil, nil
	}

	records, err := database.GetAssignments(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing assignments: %w", err)
	}

	existing, err := toModelAssignments(records)
	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded existing assignments from overlapping schedule",
		zap.String("schedule_id", latest.ID),
		zap.Int("count", len(existing)))

	return existing, nil
}

// dataQualityScore estimates roster completeness in [0,1]: the fraction of
// active workers whose affinity, experience, and rotation pattern are all set
func dataQualityScore(records []db.Worker) float64 {
	active := 0
	complete := 0
	for _, rec := range records {
		if !rec.Active {
			continue
		}
		active++
		if model.ShiftAffinity(rec.Affinity).IsValid() &&
			rec.Experience != "" &&
			model.PatternName(rec.StartingPattern) != "" {
			if _, ok := model.Patterns[model.PatternName(rec.StartingPattern)]; ok {
				complete++
			}
		}
	}
	if active == 0 {
		return 0
	}
	return float64(complete) / float64(active)
}
