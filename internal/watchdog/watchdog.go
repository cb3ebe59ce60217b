package watchdog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/probe"
	"VCS_FMS_Microservice/pkg/notify"
	"VCS_FMS_Microservice/pkg/remote"
)

// FailureThreshold is the number of consecutive failing ticks before the
// recovery procedure starts.
const FailureThreshold = 2

type Watchdog interface {
	// Tick runs one watchdog pass and returns the persisted state. The
	// external trigger guarantees at most one concurrent Tick per host.
	Tick(ctx context.Context) (WatchdogState, error)
}

type Config struct {
	Host       remote.Host
	ChannelID  string
	Target     probe.TargetConfig
	BackupDir  string
	SettleTime time.Duration
}

type watchdog struct {
	collector probe.Collector
	transport remote.Transport
	store     Store
	notifier  notify.Notifier
	cfg       Config
	logger    *zap.Logger
}

func (w *watchdog) Tick(ctx context.Context) (WatchdogState, error) {
	state, err := w.store.Load()
	if err != nil {
		return state, fmt.Errorf("Watchdog.Tick: %w", err)
	}
	failures := w.runLiveness(ctx)

	if len(failures) == 0 {
		prior := state.State
		recoveredAfter := state.ConsecutiveFailures
		state.ConsecutiveFailures = 0
		switch prior {
		case StateChecking, StateDead:
			state.State = StateRecovered
			w.logger.Info("gateway recovered",
				zap.String("instance", w.cfg.Host.Name),
				zap.Int("after_failures", recoveredAfter))
		default:
			state.State = StateHealthy
		}
		return w.persist(state)
	}

	state.ConsecutiveFailures++
	w.logger.Warn("liveness checks failing",
		zap.String("instance", w.cfg.Host.Name),
		zap.Strings("errors", failures),
		zap.Int("consecutive_failures", state.ConsecutiveFailures))

	if state.ConsecutiveFailures < FailureThreshold {
		state.State = StateChecking
		return w.persist(state)
	}
	return w.persist(w.recover(ctx, state))
}

// runLiveness runs the reduced check set and returns the failing checks'
// error texts. Disk pressure is remediated inline (vacuum old logs) before
// the tick decides anything else.
func (w *watchdog) runLiveness(ctx context.Context) []string {
	results, err := w.collector.RunChecks(ctx, w.cfg.Host, probe.LivenessCheckSet)
	if err != nil {
		w.logger.Error("liveness probe did not complete", zap.Error(err))
	}
	var failures []string
	for _, check := range results {
		if check.Name == model.CheckDiskSpace && check.Status != model.StatusOK {
			w.vacuumLogs(ctx)
		}
		if check.Failed() {
			failures = append(failures, fmt.Sprintf("%s: %s", check.Name, check.Detail))
		}
	}
	return failures
}

func (w *watchdog) vacuumLogs(ctx context.Context) {
	const vacuum = "sudo journalctl --vacuum-time=3d && sudo find /var/log/gateway -name '*.gz' -mtime +3 -delete"
	if _, err := w.transport.Exec(ctx, w.cfg.Host, vacuum); err != nil {
		w.logger.Warn("inline log vacuum failed", zap.Error(err))
	} else {
		w.logger.Info("vacuumed old logs under disk pressure")
	}
}

// recover runs the two-stage recovery: restart, and if the service still
// fails, restore the newest config snapshot and restart again. A second
// failure leaves the host DEAD for a human; there is no third stage.
func (w *watchdog) recover(ctx context.Context, state WatchdogState) WatchdogState {
	if w.restartAndVerify(ctx) {
		return w.markRecovered(ctx, state, "service restart")
	}
	w.logger.Warn("stage 1 recovery failed, restoring configuration snapshot",
		zap.String("instance", w.cfg.Host.Name))
	restore := fmt.Sprintf("sudo cp $(ls -t %s/*.json 2>/dev/null | head -1) %s",
		w.cfg.BackupDir, w.cfg.Target.ConfigPath)
	if _, err := w.transport.Exec(ctx, w.cfg.Host, restore); err != nil {
		w.logger.Error("config snapshot restore failed", zap.Error(err))
	}
	if w.restartAndVerify(ctx) {
		return w.markRecovered(ctx, state, "config snapshot restore + restart")
	}
	w.logger.Error("stage 2 recovery failed, giving up",
		zap.String("instance", w.cfg.Host.Name),
		zap.Int("consecutive_failures", state.ConsecutiveFailures))
	state.State = StateDead
	return state
}

func (w *watchdog) restartAndVerify(ctx context.Context) bool {
	restart := fmt.Sprintf("sudo systemctl restart %s", w.cfg.Target.ServiceUnit)
	if _, err := w.transport.Exec(ctx, w.cfg.Host, restart); err != nil {
		w.logger.Error("restart command failed", zap.Error(err))
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(w.cfg.SettleTime):
	}
	return len(w.runLiveness(ctx)) == 0
}

func (w *watchdog) markRecovered(ctx context.Context, state WatchdogState, how string) WatchdogState {
	state.Deaths++
	state.State = StateRecovered
	state.ConsecutiveFailures = 0
	w.logger.Info("recovery succeeded",
		zap.String("instance", w.cfg.Host.Name),
		zap.String("method", how),
		zap.Int("deaths", state.Deaths))
	w.notifier.Notify(ctx, w.cfg.ChannelID,
		fmt.Sprintf("%s: gateway restarted by watchdog", w.cfg.Host.Name),
		fmt.Sprintf("Recovered via %s (death #%d).", how, state.Deaths))
	return state
}

// persist writes the state after the tick. A persistence failure is logged
// and the in-memory decision still stands; the next tick will start from a
// fresh state via Store.Load.
func (w *watchdog) persist(state WatchdogState) (WatchdogState, error) {
	state.LastCheckedAt = time.Now().UTC()
	if err := w.store.Save(state); err != nil {
		w.logger.Error("failed to persist watchdog state", zap.Error(err))
		return state, nil
	}
	return state, nil
}

func NewWatchdog(collector probe.Collector, transport remote.Transport, store Store,
	notifier notify.Notifier, cfg Config, logger *zap.Logger) Watchdog {
	if cfg.SettleTime <= 0 {
		cfg.SettleTime = 15 * time.Second
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = strings.TrimSuffix(cfg.Target.ConfigPath, ".json") + "-backups"
	}
	return &watchdog{
		collector: collector,
		transport: transport,
		store:     store,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}
