package model

import "time"

// DiagnosisReport is the aggregated outcome of one probe batch against one
// instance. It is immutable after construction; ChecksPassed + ChecksWarned +
// ChecksFailed always equals len(Checks) and len(Errors) equals ChecksFailed.
type DiagnosisReport struct {
	Instance     string                 `json:"instance"`
	IP           string                 `json:"ip"`
	Timestamp    time.Time              `json:"timestamp"`
	ChecksPassed int                    `json:"checks_passed"`
	ChecksFailed int                    `json:"checks_failed"`
	ChecksWarned int                    `json:"checks_warned"`
	Checks       map[string]CheckResult `json:"checks"`
	Errors       []string               `json:"errors"`
}

// Healthy reports whether no check ended in error state.
func (r DiagnosisReport) Healthy() bool {
	return r.ChecksFailed == 0
}
