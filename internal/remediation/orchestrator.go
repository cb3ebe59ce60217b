package remediation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/probe"
	"VCS_FMS_Microservice/pkg/kb"
	"VCS_FMS_Microservice/pkg/notify"
	"VCS_FMS_Microservice/pkg/remote"
)

// MaxAttempts is the per-check attempt cap; the third consecutive failure
// escalates to a human.
const MaxAttempts = 3

// Orchestrator consumes a diagnosis report and drives remediation for every
// failing check.
type Orchestrator interface {
	Fix(ctx context.Context, host remote.Host, channelID string, report model.DiagnosisReport) FixSessionResult
}

type orchestrator struct {
	collector   probe.Collector
	transport   remote.Transport
	kb          kb.Client
	notifier    notify.Notifier
	strategies  []RemediationStrategy
	logger      *zap.Logger
	execTimeout time.Duration
}

// Per-check fix states. A check starts attempting and terminates in exactly
// one of the other three states, which keeps fixed+failed+escalated equal to
// the number of failing checks.
type fixState int

const (
	stateAttempting fixState = iota
	stateFixed
	stateFailed
	stateEscalated
)

// checkFixer tracks one check's progress through the attempt loop.
type checkFixer struct {
	check     model.CheckResult
	state     fixState
	attempts  []FixAttempt
	tried     []string
	problemID string
}

func (f *checkFixer) record(attempt FixAttempt) {
	f.attempts = append(f.attempts, attempt)
	f.tried = append(f.tried, attempt.MethodDescription)
	if attempt.Outcome == OutcomeFixed {
		f.state = stateFixed
	} else if len(f.attempts) >= MaxAttempts {
		f.state = stateEscalated
	}
}

func (o *orchestrator) Fix(ctx context.Context, host remote.Host, channelID string, report model.DiagnosisReport) FixSessionResult {
	session := FixSessionResult{
		SessionID:   uuid.NewString(),
		Instance:    report.Instance,
		Timestamp:   time.Now().UTC(),
		TotalErrors: len(report.Errors),
	}
	if len(report.Errors) == 0 {
		return session
	}

	for _, errText := range report.Errors {
		name, _, _ := strings.Cut(errText, ": ")
		check, ok := report.Checks[name]
		if !ok {
			check = model.CheckResult{Name: name, Status: model.StatusError, Detail: errText}
		}
		fixer := o.fixCheck(ctx, host, report.Instance, check)
		session.Fixes = append(session.Fixes, fixer.attempts...)
		switch fixer.state {
		case stateFixed:
			session.Fixed++
		case stateEscalated:
			session.Escalated++
			session.Escalations = append(session.Escalations, EscalationRecord{
				CheckName:        check.Name,
				AttemptsTried:    fixer.attempts,
				NotifiedChannels: o.escalate(ctx, channelID, report.Instance, fixer),
			})
		default:
			session.Failed++
		}
	}

	if session.Escalated == 0 && session.Fixed > 0 {
		o.sendSummary(ctx, channelID, session)
	}
	return session
}

// fixCheck runs the attempt loop for one failing check.
func (o *orchestrator) fixCheck(ctx context.Context, host remote.Host, instance string, check model.CheckResult) *checkFixer {
	fixer := &checkFixer{check: check}
	for fixer.state == stateAttempting {
		method := o.nextMethod(ctx, instance, check, fixer.tried)
		if method == nil {
			o.logger.Warn("no untried remediation method left",
				zap.String("instance", instance),
				zap.String("check", check.Name),
				zap.Int("attempts", len(fixer.attempts)))
			fixer.state = stateFailed
			break
		}
		outcome := o.applyAndVerify(ctx, host, check.Name, *method)
		attempt := FixAttempt{
			CheckName:         check.Name,
			AttemptNumber:     len(fixer.attempts) + 1,
			KnowledgeRefID:    method.KnowledgeRefID,
			MethodDescription: method.Description,
			Outcome:           outcome,
		}
		fixer.record(attempt)
		o.recordKnowledge(ctx, instance, fixer, *method, outcome)
		o.logger.Info("fix attempt finished",
			zap.String("instance", instance),
			zap.String("check", check.Name),
			zap.Int("attempt", attempt.AttemptNumber),
			zap.String("source", method.Source),
			zap.String("outcome", outcome))
	}
	return fixer
}

// nextMethod asks each strategy in priority order for an untried method.
// Strategy errors (a down knowledge base, most commonly) skip the strategy.
func (o *orchestrator) nextMethod(ctx context.Context, instance string, check model.CheckResult, tried []string) *Method {
	for _, strategy := range o.strategies {
		methods, err := strategy.Propose(ctx, instance, check, tried)
		if err != nil {
			o.logger.Warn("remediation strategy unavailable",
				zap.String("strategy", strategy.Name()), zap.Error(err))
			continue
		}
		if len(methods) > 0 {
			return &methods[0]
		}
	}
	return nil
}

// applyAndVerify runs the method's command on the host and re-runs only the
// affected check to decide the outcome.
func (o *orchestrator) applyAndVerify(ctx context.Context, host remote.Host, checkName string, method Method) string {
	execCtx, cancel := context.WithTimeout(ctx, o.execTimeout)
	defer cancel()
	if _, err := o.transport.Exec(execCtx, host, method.Command); err != nil {
		o.logger.Error("failed to apply remediation command",
			zap.String("check", checkName), zap.Error(err))
		return OutcomeFailed
	}
	result, err := o.collector.RunCheck(ctx, host, checkName)
	if err != nil {
		o.logger.Error("failed to verify remediation",
			zap.String("check", checkName), zap.Error(err))
		return OutcomeFailed
	}
	if result.Failed() {
		return OutcomeFailed
	}
	return OutcomeFixed
}

// recordKnowledge writes the attempt outcome back to the knowledge base:
// knowledge-sourced methods update their approach status, everything else is
// posted as a new approach on a lazily created problem record. Knowledge base
// failures are logged and never interrupt the fix.
func (o *orchestrator) recordKnowledge(ctx context.Context, instance string, fixer *checkFixer, method Method, outcome string) {
	kbStatus := kb.ApproachFailed
	if outcome == OutcomeFixed {
		kbStatus = kb.ApproachWorked
	}
	if method.Source == SourceKnowledgeBase {
		if err := o.kb.UpdateApproachStatus(ctx, method.KnowledgeRefID, kbStatus); err != nil {
			o.logger.Warn("failed to update knowledge base approach", zap.Error(err))
		}
		return
	}
	if fixer.problemID == "" {
		problemID, err := o.kb.PostProblem(ctx,
			fmt.Sprintf("%s failing on %s", fixer.check.Name, instance),
			fmt.Sprintf("%s: %s", fixer.check.Name, fixer.check.Detail),
			[]string{fixer.check.Name, "auto-fix"})
		if err != nil {
			o.logger.Warn("failed to post knowledge base problem", zap.Error(err))
			return
		}
		fixer.problemID = problemID
	}
	if _, err := o.kb.PostApproach(ctx, fixer.problemID, method.Source, method.Description, kbStatus); err != nil {
		o.logger.Warn("failed to post knowledge base approach", zap.Error(err))
	}
}

func (o *orchestrator) escalate(ctx context.Context, channelID, instance string, fixer *checkFixer) []string {
	var methods []string
	for _, attempt := range fixer.attempts {
		methods = append(methods, fmt.Sprintf("%d. %s", attempt.AttemptNumber, attempt.MethodDescription))
	}
	subject := fmt.Sprintf("ESCALATION: %s on %s needs a human", fixer.check.Name, instance)
	text := fmt.Sprintf("Check %q on instance %s is still failing after %d automated attempts.\n"+
		"Error: %s\nMethods tried:\n%s",
		fixer.check.Name, instance, len(fixer.attempts), fixer.check.Detail, strings.Join(methods, "\n"))
	return o.notifier.Notify(ctx, channelID, subject, text)
}

// sendSummary sends the calm self-resolved notice so operators are not paged
// for problems automation already cleared.
func (o *orchestrator) sendSummary(ctx context.Context, channelID string, session FixSessionResult) {
	subject := fmt.Sprintf("%s: %d issue(s) auto-resolved", session.Instance, session.Fixed)
	var lines []string
	for _, fix := range session.Fixes {
		if fix.Outcome == OutcomeFixed {
			lines = append(lines, fmt.Sprintf("- %s: %s", fix.CheckName, fix.MethodDescription))
		}
	}
	o.notifier.Notify(ctx, channelID, subject, strings.Join(lines, "\n"))
}

func NewOrchestrator(collector probe.Collector, transport remote.Transport, kbClient kb.Client,
	notifier notify.Notifier, strategies []RemediationStrategy, logger *zap.Logger, execTimeout time.Duration) Orchestrator {
	if execTimeout <= 0 {
		execTimeout = 2 * time.Minute
	}
	return &orchestrator{
		collector:   collector,
		transport:   transport,
		kb:          kbClient,
		notifier:    notifier,
		strategies:  strategies,
		logger:      logger,
		execTimeout: execTimeout,
	}
}
