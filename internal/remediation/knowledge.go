package remediation

import (
	"context"
	"fmt"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/pkg/kb"
)

type knowledgeStrategy struct {
	kb kb.Client
}

func (*knowledgeStrategy) Name() string { return SourceKnowledgeBase }

// Propose searches the knowledge base for the check's error text and turns
// recorded approaches into methods. Approaches that already worked elsewhere
// come first; failed approaches are proposed last so they are only reached
// when nothing better is left.
func (k *knowledgeStrategy) Propose(ctx context.Context, _ string, check model.CheckResult, tried []string) ([]Method, error) {
	problems, err := k.kb.Search(ctx, fmt.Sprintf("%s: %s", check.Name, check.Detail))
	if err != nil {
		return nil, fmt.Errorf("KnowledgeStrategy.Propose: %w", err)
	}
	var worked, rest []Method
	for _, problem := range problems {
		for _, approach := range problem.Approaches {
			if approach.Method == "" || containsString(tried, approach.Method) {
				continue
			}
			method := Method{
				Source:         SourceKnowledgeBase,
				KnowledgeRefID: approach.ApproachID,
				ProblemID:      problem.ProblemID,
				Description:    approach.Method,
				Command:        approach.Method,
			}
			if approach.Status == kb.ApproachWorked {
				worked = append(worked, method)
			} else {
				rest = append(rest, method)
			}
		}
	}
	return append(worked, rest...), nil
}

func NewKnowledgeStrategy(client kb.Client) RemediationStrategy {
	return &knowledgeStrategy{kb: client}
}
