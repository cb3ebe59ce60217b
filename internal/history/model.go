// Package history persists diagnosis reports and fix sessions so the
// maintenance API can answer questions about the fleet's past.
package history

import "time"

// DiagnosisRecord flattens a report's counters for querying and keeps the
// full report as raw JSON for display.
type DiagnosisRecord struct {
	ID           uint      `gorm:"primaryKey"`
	Instance     string    `gorm:"index;uniqueIndex:idx_diag_instance_ts"`
	IP           string
	Timestamp    time.Time `gorm:"uniqueIndex:idx_diag_instance_ts"`
	ChecksPassed int
	ChecksWarned int
	ChecksFailed int
	Report       string `gorm:"type:jsonb"`
	CreatedAt    time.Time
}

type FixSessionRecord struct {
	ID          uint   `gorm:"primaryKey"`
	SessionID   string `gorm:"uniqueIndex"`
	Instance    string `gorm:"index"`
	Timestamp   time.Time
	TotalErrors int
	Fixed       int
	Failed      int
	Escalated   int
	Session     string `gorm:"type:jsonb"`
	CreatedAt   time.Time
}
