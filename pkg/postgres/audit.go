package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bishwash/shiftplanner/pkg/db"
)

// GetAudits retrieves all reliability audit records
func (d *DB) GetAudits(ctx context.Context) ([]db.ReliabilityAudit, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, schedule_id, strategy, confidence, gate, recommendation,
		       fallbacks_used, duration_ms, created_at
		FROM reliability_audit
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reliability audits: %w", err)
	}
	defer rows.Close()

	var audits []db.ReliabilityAudit
	for rows.Next() {
		var a db.ReliabilityAudit
		var createdAt time.Time
		if err := rows.Scan(&a.ID, &a.ScheduleID, &a.Strategy, &a.Confidence, &a.Gate,
			&a.Recommendation, &a.FallbacksUsed, &a.DurationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan reliability audit: %w", err)
		}
		a.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		audits = append(audits, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reliability audits: %w", err)
	}

	return audits, nil
}

// InsertAudit inserts a reliability audit record
func (d *DB) InsertAudit(ctx context.Context, audit *db.ReliabilityAudit) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO reliability_audit (id, schedule_id, strategy, confidence, gate,
			recommendation, fallbacks_used, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, audit.ID, audit.ScheduleID, audit.Strategy, audit.Confidence, audit.Gate,
		audit.Recommendation, audit.FallbacksUsed, audit.DurationMS)
	if err != nil {
		return fmt.Errorf("failed to insert reliability audit: %w", err)
	}
	return nil
}
