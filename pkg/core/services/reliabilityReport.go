package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/pkg/core/engine"
	"github.com/bishwash/shiftplanner/pkg/db"
)

// ReliabilityReportStore defines the database operations needed for the reliability report
type ReliabilityReportStore interface {
	GetAudits(ctx context.Context) ([]db.ReliabilityAudit, error)
}

// ReliabilityReportResult aggregates historical gate outcomes
type ReliabilityReportResult struct {
	Metrics engine.ReliabilityMetrics
	Audits  []db.ReliabilityAudit
}

// ReliabilityReport computes success-rate and confidence trends from the
// reliability audit log
func ReliabilityReport(
	ctx context.Context,
	database ReliabilityReportStore,
	logger *zap.Logger,
) (*ReliabilityReportResult, error) {
	logger.Debug("Starting reliabilityReport")

	audits, err := database.GetAudits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reliability audits: %w", err)
	}
	logger.Debug("Found audit records", zap.Int("count", len(audits)))

	records := make([]engine.AuditRecord, 0, len(audits))
	for _, a := range audits {
		ts, err := time.Parse(time.RFC3339, a.CreatedAt)
		if err != nil {
			ts = time.Time{}
		}
		records = append(records, engine.AuditRecord{
			RunID:         a.ID,
			Confidence:    a.Confidence,
			Gate:          engine.GateStatus(a.Gate),
			FallbacksUsed: a.FallbacksUsed,
			CreatedAt:     ts,
		})
	}

	metrics := engine.NewReliabilityGate().HistoricalMetrics(records)

	logger.Info("Reliability report computed",
		zap.Int("runs", metrics.Runs),
		zap.Float64("success_rate", metrics.SuccessRate),
		zap.Float64("avg_confidence", metrics.AverageConfidence))

	return &ReliabilityReportResult{
		Metrics: metrics,
		Audits:  audits,
	}, nil
}
