package remediation

import (
	"context"

	"VCS_FMS_Microservice/internal/diagnosis/model"
)

// Method sources, in the order the orchestrator prefers them.
const (
	SourceKnowledgeBase = "knowledge_base"
	SourceStatic        = "static"
	SourceAgent         = "agent"
)

// Method is one concrete remediation proposal: a command to run on the host
// and a human description of what it does. KnowledgeRefID and ProblemID are
// set only for knowledge-base-sourced methods.
type Method struct {
	Source         string
	KnowledgeRefID string
	ProblemID      string
	Description    string
	Command        string
}

// RemediationStrategy proposes methods for a failing check. Proposals must
// exclude anything in tried: a session never replays a method that already
// failed verbatim. Strategies are consulted in priority order and a strategy
// error only skips that strategy, never the whole fix.
type RemediationStrategy interface {
	Name() string
	Propose(ctx context.Context, instance string, check model.CheckResult, tried []string) ([]Method, error)
}
