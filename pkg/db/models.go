package db

// Worker represents a database analyst record
type Worker struct {
	ID              string
	Name            string
	Affinity        string
	Skills          []string
	Employment      string
	Experience      string
	StartingPattern string
	Active          bool
}

// Vacation represents an approved absence interval for a worker
type Vacation struct {
	ID       string
	WorkerID string
	Start    string
	End      string
	Source   string // "manual" or "ics"
}

// Schedule represents one generated schedule covering a date range
type Schedule struct {
	ID         string
	RangeStart string
	RangeEnd   string
	Strategy   string
	Confidence int
	Gate       string
	CreatedAt  string
}

// Assignment represents one worker covering one date within a schedule
type Assignment struct {
	ID         string
	ScheduleID string
	WorkerID   string
	Date       string
	Shift      string
	IsScreener bool
	Origin     string
}

// Constraint represents a global scheduling constraint record
type Constraint struct {
	ID              string
	Kind            string
	Severity        string
	Start           string
	End             string
	WorkerID        string
	Description     string
	MaxScreenerDays int
	MinScreenerDays int
}

// ReliabilityAudit records the gate outcome of one generation run
type ReliabilityAudit struct {
	ID             string
	ScheduleID     string
	Strategy       string
	Confidence     int
	Gate           string
	Recommendation string
	FallbacksUsed  int
	DurationMS     int64
	CreatedAt      string
}
