package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/diagnosis"
	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/pkg/remote"
)

// Collector runs the batched probe against a host and aggregates the outcome.
type Collector interface {
	// Collect verifies the channel is reachable, runs the full check set in
	// one remote round trip and returns the aggregated report. The returned
	// error is non-nil only when the channel itself was unreachable; in that
	// case the report still carries a single ssh check in error state.
	Collect(ctx context.Context, host remote.Host) (model.DiagnosisReport, error)
	// RunChecks runs a subset of checks and returns the raw results.
	RunChecks(ctx context.Context, host remote.Host, checks []string) ([]model.CheckResult, error)
	// RunCheck re-runs a single check, used to verify a fix attempt.
	RunCheck(ctx context.Context, host remote.Host, name string) (model.CheckResult, error)
}

type collector struct {
	transport      remote.Transport
	cfg            TargetConfig
	logger         *zap.Logger
	connectTimeout time.Duration
	batchTimeout   time.Duration
}

func (c *collector) Collect(ctx context.Context, host remote.Host) (model.DiagnosisReport, error) {
	if err := c.checkConnectivity(ctx, host); err != nil {
		err = fmt.Errorf("Collector.Collect: %w", err)
		report := diagnosis.Aggregate(host.Name, host.Address, []model.CheckResult{{
			Name:   model.CheckSSH,
			Status: model.StatusError,
			Detail: fmt.Sprintf("channel unreachable: %v", err),
		}})
		return report, err
	}
	results, err := c.RunChecks(ctx, host, FullCheckSet)
	if err != nil {
		// The channel answered the pre-check, so this is a check execution
		// problem: the decoded (possibly empty) results degrade per check.
		c.logger.Warn("probe batch did not complete cleanly",
			zap.String("instance", host.Name), zap.Error(err))
	}
	return diagnosis.Aggregate(host.Name, host.Address, results), nil
}

func (c *collector) RunChecks(ctx context.Context, host remote.Host, checks []string) ([]model.CheckResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.batchTimeout)
	defer cancel()
	res, err := c.transport.Exec(ctx, host, BuildScript(c.cfg, checks))
	if err != nil {
		return Decode("", checks), fmt.Errorf("Collector.RunChecks: %w", err)
	}
	return Decode(res.Stdout, checks), nil
}

func (c *collector) RunCheck(ctx context.Context, host remote.Host, name string) (model.CheckResult, error) {
	results, err := c.RunChecks(ctx, host, []string{name})
	if err != nil {
		return results[0], fmt.Errorf("Collector.RunCheck: %w", err)
	}
	return results[0], nil
}

// checkConnectivity does a trivial round trip with a short timeout before the
// batch is attempted, so an unreachable host fails fast with a distinct
// outcome instead of surfacing as thirteen failed checks.
func (c *collector) checkConnectivity(ctx context.Context, host remote.Host) error {
	ctx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()
	if _, err := c.transport.Exec(ctx, host, "echo ok"); err != nil {
		return err
	}
	return nil
}

func NewCollector(transport remote.Transport, cfg TargetConfig, logger *zap.Logger, connectTimeout, batchTimeout time.Duration) Collector {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	if batchTimeout <= 0 {
		batchTimeout = 60 * time.Second
	}
	return &collector{
		transport:      transport,
		cfg:            cfg,
		logger:         logger,
		connectTimeout: connectTimeout,
		batchTimeout:   batchTimeout,
	}
}
