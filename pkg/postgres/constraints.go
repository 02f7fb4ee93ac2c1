package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bishwash/shiftplanner/pkg/db"
)

// GetConstraints retrieves all global constraint records
func (d *DB) GetConstraints(ctx context.Context) ([]db.Constraint, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, kind, severity, start_date, end_date, worker_id, description,
		       max_screener_days, min_screener_days
		FROM constraint_rule
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query constraints: %w", err)
	}
	defer rows.Close()

	var constraints []db.Constraint
	for rows.Next() {
		var c db.Constraint
		var start, end *time.Time
		var workerID, description *string
		if err := rows.Scan(&c.ID, &c.Kind, &c.Severity, &start, &end, &workerID, &description,
			&c.MaxScreenerDays, &c.MinScreenerDays); err != nil {
			return nil, fmt.Errorf("failed to scan constraint: %w", err)
		}
		if start != nil {
			c.Start = start.Format("2006-01-02")
		}
		if end != nil {
			c.End = end.Format("2006-01-02")
		}
		if workerID != nil {
			c.WorkerID = *workerID
		}
		if description != nil {
			c.Description = *description
		}
		constraints = append(constraints, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating constraints: %w", err)
	}

	return constraints, nil
}
