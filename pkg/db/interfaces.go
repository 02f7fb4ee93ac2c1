package db

import "context"

// WorkerStore defines the interface for worker database operations
type WorkerStore interface {
	GetWorkers(ctx context.Context) ([]Worker, error)
	GetVacations(ctx context.Context) ([]Vacation, error)
	InsertVacations(ctx context.Context, vacations []Vacation) error
	DeleteVacationsBySource(ctx context.Context, source string) error
}

// ScheduleStore defines the interface for schedule database operations
type ScheduleStore interface {
	GetSchedules(ctx context.Context) ([]Schedule, error)
	GetAssignments(ctx context.Context, scheduleID string) ([]Assignment, error)
	InsertSchedule(ctx context.Context, schedule *Schedule, assignments []Assignment) error
}

// ConstraintStore defines the interface for constraint database operations
type ConstraintStore interface {
	GetConstraints(ctx context.Context) ([]Constraint, error)
}

// AuditStore defines the interface for reliability audit operations
type AuditStore interface {
	GetAudits(ctx context.Context) ([]ReliabilityAudit, error)
	InsertAudit(ctx context.Context, audit *ReliabilityAudit) error
}
