package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/engine"
	"github.com/bishwash/shiftplanner/pkg/db"
)

// ValidateScheduleStore defines the database operations needed for validating a schedule
type ValidateScheduleStore interface {
	GetSchedules(ctx context.Context) ([]db.Schedule, error)
	GetAssignments(ctx context.Context, scheduleID string) ([]db.Assignment, error)
	GetConstraints(ctx context.Context) ([]db.Constraint, error)
	GetWorkers(ctx context.Context) ([]db.Worker, error)
	GetVacations(ctx context.Context) ([]db.Vacation, error)
}

// ValidateScheduleResult contains the validation and fairness reports for a schedule
type ValidateScheduleResult struct {
	ScheduleID string
	Validation engine.ValidationResult
	Fairness   engine.FairnessSnapshot
}

// ValidateSchedule re-runs constraint validation and the fairness evaluation
// against a stored schedule. An empty scheduleID validates the latest one.
func ValidateSchedule(
	ctx context.Context,
	database ValidateScheduleStore,
	logger *zap.Logger,
	scheduleID string,
) (*ValidateScheduleResult, error) {
	logger.Debug("Starting validateSchedule", zap.String("schedule_id", scheduleID))

	schedules, err := database.GetSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}
	if len(schedules) == 0 {
		return nil, fmt.Errorf("no schedules found - please generate a schedule first")
	}

	target := resolveSchedule(schedules, scheduleID)
	if target == nil {
		return nil, fmt.Errorf("schedule %s not found", scheduleID)
	}
	logger.Debug("Validating schedule", zap.String("id", target.ID))

	records, err := database.GetAssignments(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	assignments, err := toModelAssignments(records)
	if err != nil {
		return nil, err
	}

	constraintRecords, err := database.GetConstraints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch constraints: %w", err)
	}

	constraints, err := buildConstraints(constraintRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to build constraints: %w", err)
	}

	workerRecords, err := database.GetWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}
	vacationRecords, err := database.GetVacations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vacations: %w", err)
	}
	workers, err := buildWorkers(workerRecords, vacationRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to build workers: %w", err)
	}

	validation := engine.NewValidator().Validate(assignments, constraints)
	fairness := engine.NewEvaluator().Evaluate(assignments, workers)

	logger.Info("Validation completed",
		zap.String("schedule_id", target.ID),
		zap.Bool("valid", validation.IsValid),
		zap.Int("violations", len(validation.Violations)),
		zap.Float64("fairness", fairness.OverallScore))

	return &ValidateScheduleResult{
		ScheduleID: target.ID,
		Validation: validation,
		Fairness:   fairness,
	}, nil
}

// resolveSchedule picks the schedule with the given ID, or the latest when empty
func resolveSchedule(schedules []db.Schedule, scheduleID string) *db.Schedule {
	if scheduleID == "" {
		return findLatestSchedule(schedules)
	}
	for i := range schedules {
		if schedules[i].ID == scheduleID {
			return &schedules[i]
		}
	}
	return nil
}
