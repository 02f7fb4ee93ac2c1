package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bishwash/shiftplanner/pkg/db"
)

// GetWorkers retrieves all worker records
func (d *DB) GetWorkers(ctx context.Context) ([]db.Worker, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, affinity, skills, employment, experience, starting_pattern, active
		FROM worker
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	var workers []db.Worker
	for rows.Next() {
		var w db.Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Affinity, &w.Skills, &w.Employment, &w.Experience, &w.StartingPattern, &w.Active); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workers: %w", err)
	}

	return workers, nil
}

// GetVacations retrieves all vacation records
func (d *DB) GetVacations(ctx context.Context) ([]db.Vacation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, worker_id, start_date, end_date, source
		FROM vacation
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vacations: %w", err)
	}
	defer rows.Close()

	var vacations []db.Vacation
	for rows.Next() {
		var v db.Vacation
		var start, end time.Time
		if err := rows.Scan(&v.ID, &v.WorkerID, &start, &end, &v.Source); err != nil {
			return nil, fmt.Errorf("failed to scan vacation: %w", err)
		}
		v.Start = start.Format("2006-01-02")
		v.End = end.Format("2006-01-02")
		vacations = append(vacations, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vacations: %w", err)
	}

	return vacations, nil
}

// InsertVacations inserts vacation records in a single transaction
func (d *DB) InsertVacations(ctx context.Context, vacations []db.Vacation) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, v := range vacations {
		_, err := tx.Exec(ctx, `
			INSERT INTO vacation (id, worker_id, start_date, end_date, source)
			VALUES ($1, $2, $3, $4, $5)
		`, v.ID, v.WorkerID, v.Start, v.End, v.Source)
		if err != nil {
			return fmt.Errorf("failed to insert vacation for worker %s: %w", v.WorkerID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit vacations: %w", err)
	}
	return nil
}

// DeleteVacationsBySource removes all vacation records imported from the given source
func (d *DB) DeleteVacationsBySource(ctx context.Context, source string) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM vacation WHERE source = $1`, source)
	if err != nil {
		return fmt.Errorf("failed to delete vacations by source: %w", err)
	}
	return nil
}
