// Package watchdog keeps a host's gateway service alive between diagnosis
// runs: a reduced liveness check set every tick, a failure counter persisted
// on the host, and a two-stage recovery once the failure threshold is hit.
package watchdog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Watchdog states.
type State string

const (
	StateHealthy   State = "HEALTHY"
	StateChecking  State = "CHECKING"
	StateRecovered State = "RECOVERED"
	StateDead      State = "DEAD"
)

// WatchdogState is the durable per-host state between ticks. Deaths counts
// how many times the gateway had to be brought back by the recovery
// procedure over the host's lifetime.
type WatchdogState struct {
	ConsecutiveFailures int       `json:"consecutive_failures"`
	State               State     `json:"state"`
	LastCheckedAt       time.Time `json:"last_checked_at"`
	Deaths              int       `json:"deaths"`
}

func freshState() WatchdogState {
	return WatchdogState{State: StateHealthy}
}

// Store persists WatchdogState between ticks.
type Store interface {
	Load() (WatchdogState, error)
	Save(state WatchdogState) error
}

type fileStore struct {
	path   string
	logger *zap.Logger
}

// Load reads the state file. A missing or corrupt file yields a fresh
// HEALTHY/0 state: after a persistence failure the previous counter cannot be
// trusted, so the loop restarts conservatively from zero.
func (s *fileStore) Load() (WatchdogState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("state file unreadable, starting fresh", zap.String("path", s.path), zap.Error(err))
		}
		return freshState(), nil
	}
	var state WatchdogState
	if err = json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("state file corrupt, starting fresh", zap.String("path", s.path), zap.Error(err))
		return freshState(), nil
	}
	return state, nil
}

// Save writes the state with a write-to-temp-then-rename so a crash mid-write
// or a concurrent diagnosis probe can never observe a torn file.
func (s *fileStore) Save(state WatchdogState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("StateStore.Save: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".watchdog-state-*")
	if err != nil {
		return fmt.Errorf("StateStore.Save: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("StateStore.Save: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("StateStore.Save: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("StateStore.Save: %w", err)
	}
	return nil
}

func NewFileStore(path string, logger *zap.Logger) Store {
	return &fileStore{path: path, logger: logger}
}
