package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bishwash/shiftplanner/pkg/db"
)

// GetSchedules retrieves all schedule records
func (d *DB) GetSchedules(ctx context.Context) ([]db.Schedule, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, range_start, range_end, strategy, confidence, gate, created_at
		FROM schedule
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []db.Schedule
	for rows.Next() {
		var s db.Schedule
		var rangeStart, rangeEnd, createdAt time.Time
		if err := rows.Scan(&s.ID, &rangeStart, &rangeEnd, &s.Strategy, &s.Confidence, &s.Gate, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		s.RangeStart = rangeStart.Format("2006-01-02")
		s.RangeEnd = rangeEnd.Format("2006-01-02")
		s.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}

// GetAssignments retrieves all assignments for a schedule
func (d *DB) GetAssignments(ctx context.Context, scheduleID string) ([]db.Assignment, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, schedule_id, worker_id, date, shift, is_screener, origin
		FROM assignment
		WHERE schedule_id = $1
	`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []db.Assignment
	for rows.Next() {
		var a db.Assignment
		var date time.Time
		if err := rows.Scan(&a.ID, &a.ScheduleID, &a.WorkerID, &date, &a.Shift, &a.IsScreener, &a.Origin); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.Date = date.Format("2006-01-02")
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// InsertSchedule inserts a schedule and its assignments in a single transaction
func (d *DB) InsertSchedule(ctx context.Context, schedule *db.Schedule, assignments []db.Assignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO schedule (id, range_start, range_end, strategy, confidence, gate)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, schedule.ID, schedule.RangeStart, schedule.RangeEnd, schedule.Strategy, schedule.Confidence, schedule.Gate)
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	for _, a := range assignments {
		_, err := tx.Exec(ctx, `
			INSERT INTO assignment (id, schedule_id, worker_id, date, shift, is_screener, origin)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, a.ID, a.ScheduleID, a.WorkerID, a.Date, a.Shift, a.IsScreener, a.Origin)
		if err != nil {
			return fmt.Errorf("failed to insert assignment for %s on %s: %w", a.WorkerID, a.Date, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schedule: %w", err)
	}
	return nil
}
