// Package remediation attempts automated fixes for failing checks, retries
// with bounded attempts, records outcomes in the knowledge base and escalates
// what it cannot resolve.
package remediation

import "time"

// Outcome of one fix attempt.
const (
	OutcomeFixed  = "fixed"
	OutcomeFailed = "failed"
)

// FixAttempt records one applied remediation method and its verified outcome.
// A check accumulates at most MaxAttempts of these per session.
type FixAttempt struct {
	CheckName         string `json:"check_name"`
	AttemptNumber     int    `json:"attempt_number"`
	KnowledgeRefID    string `json:"knowledge_ref_id,omitempty"`
	MethodDescription string `json:"method"`
	Outcome           string `json:"outcome"`
}

// EscalationRecord is created when a check exhausts all attempts; it carries
// everything the paged operator needs to pick up where automation stopped.
type EscalationRecord struct {
	CheckName        string       `json:"check_name"`
	AttemptsTried    []FixAttempt `json:"attempts_tried"`
	NotifiedChannels []string     `json:"notified_channels"`
}

// FixSessionResult is the wire format of one fix session. The counters always
// satisfy Fixed + Failed + Escalated == TotalErrors.
type FixSessionResult struct {
	SessionID   string             `json:"session_id"`
	Instance    string             `json:"instance"`
	Timestamp   time.Time          `json:"timestamp"`
	TotalErrors int                `json:"total_errors"`
	Fixed       int                `json:"fixed"`
	Failed      int                `json:"failed"`
	Escalated   int                `json:"escalated"`
	Fixes       []FixAttempt       `json:"fixes"`
	Escalations []EscalationRecord `json:"escalations"`
}
