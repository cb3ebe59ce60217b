// Package sweep runs the probe collector across every registered host with a
// bounded worker pool and produces a fleet-wide status snapshot.
package sweep

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/probe"
	"VCS_FMS_Microservice/pkg/remote"
)

// Per-instance statuses, in classification priority order: an unreachable
// channel wins over a dead process, which wins over any failing check.
type InstanceStatus string

const (
	StatusHealthy     InstanceStatus = "HEALTHY"
	StatusDegraded    InstanceStatus = "DEGRADED"
	StatusOffline     InstanceStatus = "OFFLINE"
	StatusUnreachable InstanceStatus = "UNREACHABLE"
)

// FleetReport is a complete snapshot; every sweep rebuilds it from scratch
// and never merges with a previous one.
type FleetReport struct {
	PerInstance map[string]InstanceStatus `json:"per_instance"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

const DefaultConcurrency = 10

type Sweeper interface {
	// Sweep diagnoses all hosts in parallel. Each host gets its own timeout
	// so one stalled channel cannot hold up the rest; cancelling ctx stops
	// launching new hosts while in-flight work finishes or times out.
	Sweep(ctx context.Context, hosts []remote.Host, concurrency int, perHostTimeout time.Duration) FleetReport
}

type sweeper struct {
	collector probe.Collector
	logger    *zap.Logger
}

func (s *sweeper) Sweep(ctx context.Context, hosts []remote.Host, concurrency int, perHostTimeout time.Duration) FleetReport {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if perHostTimeout <= 0 {
		perHostTimeout = 90 * time.Second
	}
	report := FleetReport{
		PerInstance: make(map[string]InstanceStatus, len(hosts)),
		GeneratedAt: time.Now().UTC(),
	}

	jobs := make(chan remote.Host)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range jobs {
				status := s.classify(host, perHostTimeout)
				mu.Lock()
				report.PerInstance[host.Name] = status
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, host := range hosts {
		select {
		case <-ctx.Done():
			s.logger.Warn("sweep cancelled, skipping remaining hosts")
			break dispatch
		case jobs <- host:
		}
	}
	close(jobs)
	wg.Wait()
	return report
}

func (s *sweeper) classify(host remote.Host, timeout time.Duration) InstanceStatus {
	hostCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	// Deliberately detached from the sweep ctx: cancellation stops new
	// launches but lets in-flight hosts finish within their own timeout.
	diag, err := s.collector.Collect(hostCtx, host)
	if err != nil {
		s.logger.Warn("instance unreachable", zap.String("instance", host.Name), zap.Error(err))
		return StatusUnreachable
	}
	if process, ok := diag.Checks[model.CheckGatewayProcess]; ok && process.Failed() {
		return StatusOffline
	}
	// A warned check is a breached threshold, so warn-only reports are
	// degraded too; HEALTHY means every check passed clean.
	if diag.ChecksFailed > 0 || diag.ChecksWarned > 0 {
		return StatusDegraded
	}
	return StatusHealthy
}

func NewSweeper(collector probe.Collector, logger *zap.Logger) Sweeper {
	return &sweeper{collector: collector, logger: logger}
}
