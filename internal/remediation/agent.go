package remediation

import (
	"context"
	"fmt"
	"strings"

	"VCS_FMS_Microservice/internal/diagnosis/model"
)

type agentStrategy struct {
	agentCommand string
}

func (*agentStrategy) Name() string { return SourceAgent }

// Propose delegates to a coding agent installed on the host: the agent binary
// receives a natural-language task describing the failing check and is
// expected to remediate it on its own. This is the strategy of last resort;
// it proposes exactly one method per check.
func (a *agentStrategy) Propose(_ context.Context, instance string, check model.CheckResult, tried []string) ([]Method, error) {
	if a.agentCommand == "" {
		return nil, nil
	}
	description := fmt.Sprintf("agent-driven fix for %s", check.Name)
	if containsString(tried, description) {
		return nil, nil
	}
	task := fmt.Sprintf("On instance %s the diagnosis check %q failed with: %s. "+
		"Investigate and fix the underlying problem, then exit 0.",
		instance, check.Name, check.Detail)
	return []Method{{
		Source:      SourceAgent,
		Description: description,
		Command:     fmt.Sprintf("%s --task %s", a.agentCommand, shellQuote(task)),
	}}, nil
}

func NewAgentStrategy(agentCommand string) RemediationStrategy {
	return &agentStrategy{agentCommand: agentCommand}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
