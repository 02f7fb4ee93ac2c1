package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/model"
	"github.com/bishwash/shiftplanner/pkg/db"
)

// vacationSourceICS tags vacation records that came from a calendar import
const vacationSourceICS = "ics"

// ImportVacationsStore defines the database operations needed for importing vacations
type ImportVacationsStore interface {
	GetWorkers(ctx context.Context) ([]db.Worker, error)
	InsertVacations(ctx context.Context, vacations []db.Vacation) error
	DeleteVacationsBySource(ctx context.Context, source string) error
}

// VacationCalendar parses an out-of-office calendar into per-analyst intervals
type VacationCalendar interface {
	LoadVacations(path string) (map[string][]model.DateInterval, error)
}

// ImportVacationsResult summarizes a calendar import
type ImportVacationsResult struct {
	Imported       int
	UnmatchedNames []string
}

// ImportVacations replaces all calendar-sourced vacation records with the
// contents of the given ICS file. Analysts are matched by name,
// case-insensitively; unmatched names are reported, not failed on.
func ImportVacations(
	ctx context.Context,
	database ImportVacationsStore,
	calendar VacationCalendar,
	logger *zap.Logger,
	path string,
) (*ImportVacationsResult, error) {
	logger.Debug("Starting importVacations", zap.String("path", path))

	parsed, err := calendar.LoadVacations(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load vacation calendar: %w", err)
	}
	logger.Debug("Parsed calendar", zap.Int("analysts", len(parsed)))

	workers, err := database.GetWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}

	workersByName := make(map[string]string, len(workers))
	for _, w := range workers {
		workersByName[strings.ToLower(w.Name)] = w.ID
	}

	var records []db.Vacation
	var unmatched []string
	for name, intervals := range parsed {
		workerID, ok := workersByName[strings.ToLower(name)]
		if !ok {
			unmatched = append(unmatched, name)
			logger.Warn("Calendar name does not match any worker", zap.String("name", name))
			continue
		}

		for _, iv := range intervals {
			records = append(records, db.Vacation{
				ID:       uuid.New().String(),
				WorkerID: workerID,
				Start:    model.DateKey(iv.Start),
				End:      model.DateKey(iv.End),
				Source:   vacationSourceICS,
			})
		}
	}

	// Replace the previous import wholesale so removed calendar events
	// disappear from the roster too
	if err := database.DeleteVacationsBySource(ctx, vacationSourceICS); err != nil {
		return nil, fmt.Errorf("failed to clear previous import: %w", err)
	}

	if len(records) > 0 {
		if err := database.InsertVacations(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to insert vacations: %w", err)
		}
	}

	logger.Info("Vacation import completed",
		zap.Int("imported", len(records)),
		zap.Int("unmatched_names", len(unmatched)))

	return &ImportVacationsResult{
		Imported:       len(records),
		UnmatchedNames: unmatched,
	}, nil
}
