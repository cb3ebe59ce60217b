package watchdog

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner drives watchdog ticks on a fixed schedule for hosts without a
// system-level timer. SkipIfStillRunning preserves the at-most-one-tick
// guarantee the state file's single-writer model relies on.
type Runner interface {
	Start()
	Stop()
}

type runner struct {
	cron     *cron.Cron
	watchdog Watchdog
	interval time.Duration
	logger   *zap.Logger
}

func (r *runner) Start() {
	r.cron.Start()
	r.logger.Info("watchdog runner started", zap.Duration("interval", r.interval))
}

func (r *runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("watchdog runner stopped")
}

func NewRunner(watchdog Watchdog, interval time.Duration, logger *zap.Logger) (Runner, error) {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	r := &runner{cron: c, watchdog: watchdog, interval: interval, logger: logger}
	_, err := c.AddFunc("@every "+interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := watchdog.Tick(ctx); err != nil {
			logger.Error("watchdog tick failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
