package watchdog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/diagnosis/model"
	"VCS_FMS_Microservice/internal/probe"
	"VCS_FMS_Microservice/pkg/remote"
)

// scriptedCollector returns one liveness outcome per call, repeating the
// last entry once the script runs out.
type scriptedCollector struct {
	outcomes [][]model.CheckResult
	calls    int
}

func healthyLiveness() []model.CheckResult {
	var results []model.CheckResult
	for _, name := range probe.LivenessCheckSet {
		results = append(results, model.CheckResult{Name: name, Status: model.StatusOK})
	}
	return results
}

func failingLiveness(failing ...string) []model.CheckResult {
	var results []model.CheckResult
	for _, name := range probe.LivenessCheckSet {
		status, detail := model.StatusOK, ""
		for _, f := range failing {
			if f == name {
				status, detail = model.StatusError, "down"
			}
		}
		results = append(results, model.CheckResult{Name: name, Status: status, Detail: detail})
	}
	return results
}

func (s *scriptedCollector) Collect(ctx context.Context, host remote.Host) (model.DiagnosisReport, error) {
	panic("not used")
}

func (s *scriptedCollector) RunChecks(ctx context.Context, host remote.Host, checks []string) ([]model.CheckResult, error) {
	i := s.calls
	if i >= len(s.outcomes) {
		i = len(s.outcomes) - 1
	}
	s.calls++
	return s.outcomes[i], nil
}

func (s *scriptedCollector) RunCheck(ctx context.Context, host remote.Host, name string) (model.CheckResult, error) {
	panic("not used")
}

type memStore struct {
	state WatchdogState
	saves int
}

func (m *memStore) Load() (WatchdogState, error) { return m.state, nil }

func (m *memStore) Save(state WatchdogState) error {
	m.state = state
	m.saves++
	return nil
}

type recordingNotifier struct {
	subjects []string
}

func (r *recordingNotifier) Notify(ctx context.Context, channelID, subject, text string) []string {
	r.subjects = append(r.subjects, subject)
	return []string{"chat"}
}

type recordingTransport struct {
	commands []string
}

func (r *recordingTransport) Exec(ctx context.Context, host remote.Host, command string) (remote.ExecResult, error) {
	r.commands = append(r.commands, command)
	return remote.ExecResult{}, nil
}

func newTestWatchdog(c probe.Collector, store Store, notifier *recordingNotifier, transport *recordingTransport) Watchdog {
	return NewWatchdog(c, transport, store, notifier, Config{
		Host:       remote.Host{Name: "gw-prod-1", Address: "10.0.0.1"},
		ChannelID:  "ops",
		Target:     probe.TargetConfig{ServiceUnit: "gateway.service", ConfigPath: "/etc/gateway/config.json"},
		SettleTime: time.Millisecond,
	}, zap.NewNop())
}

func TestTickHealthy(t *testing.T) {
	store := &memStore{}
	collector := &scriptedCollector{outcomes: [][]model.CheckResult{healthyLiveness()}}
	wd := newTestWatchdog(collector, store, &recordingNotifier{}, &recordingTransport{})

	state, err := wd.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateHealthy, state.State)
	assert.Zero(t, state.ConsecutiveFailures)
	assert.Equal(t, 1, store.saves)
	assert.WithinDuration(t, time.Now().UTC(), state.LastCheckedAt, 5*time.Second)
}

func TestTickFirstFailureOnlyChecks(t *testing.T) {
	store := &memStore{}
	transport := &recordingTransport{}
	collector := &scriptedCollector{outcomes: [][]model.CheckResult{
		failingLiveness(model.CheckGatewayProcess),
	}}
	wd := newTestWatchdog(collector, store, &recordingNotifier{}, transport)

	state, err := wd.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateChecking, state.State)
	assert.Equal(t, 1, state.ConsecutiveFailures)
	// below the threshold nothing is restarted
	assert.Empty(t, transport.commands)
}

func TestTickSecondFailureRecovers(t *testing.T) {
	store := &memStore{state: WatchdogState{State: StateChecking, ConsecutiveFailures: 1}}
	transport := &recordingTransport{}
	notifier := &recordingNotifier{}
	collector := &scriptedCollector{outcomes: [][]model.CheckResult{
		failingLiveness(model.CheckGatewayProcess), // the tick's own probe
		healthyLiveness(),                          // verification after restart
	}}
	wd := newTestWatchdog(collector, store, notifier, transport)

	state, err := wd.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateRecovered, state.State)
	assert.Zero(t, state.ConsecutiveFailures)
	assert.Equal(t, 1, state.Deaths)

	require.Len(t, transport.commands, 1)
	assert.Contains(t, transport.commands[0], "systemctl restart gateway.service")
	require.Len(t, notifier.subjects, 1)
	assert.Contains(t, notifier.subjects[0], "restarted by watchdog")
}

func TestTickStageTwoRestoresConfig(t *testing.T) {
	store := &memStore{state: WatchdogState{State: StateChecking, ConsecutiveFailures: 1}}
	transport := &recordingTransport{}
	notifier := &recordingNotifier{}
	collector := &scriptedCollector{outcomes: [][]model.CheckResult{
		failingLiveness(model.CheckHealthEndpoint), // the tick's own probe
		failingLiveness(model.CheckHealthEndpoint), // still down after restart
		healthyLiveness(),                          // healthy after config restore
	}}
	wd := newTestWatchdog(collector, store, notifier, transport)

	state, err := wd.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateRecovered, state.State)
	assert.Equal(t, 1, state.Deaths)

	// restart, snapshot restore, restart
	require.Len(t, transport.commands, 3)
	assert.Contains(t, transport.commands[0], "systemctl restart")
	assert.Contains(t, transport.commands[1], "/etc/gateway/config.json")
	assert.True(t, strings.Contains(transport.commands[1], "cp"))
	assert.Contains(t, transport.commands[2], "systemctl restart")
}

func TestTickBothStagesFailLeavesDead(t *testing.T) {
	store := &memStore{state: WatchdogState{State: StateChecking, ConsecutiveFailures: 1}}
	notifier := &recordingNotifier{}
	collector := &scriptedCollector{outcomes: [][]model.CheckResult{
		failingLiveness(model.CheckGatewayProcess),
	}}
	wd := newTestWatchdog(collector, store, notifier, &recordingTransport{})

	state, err := wd.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateDead, state.State)
	// the counter is preserved for the operator
	assert.Equal(t, 2, state.ConsecutiveFailures)
	assert.Zero(t, state.Deaths)
	// a dead host is not announced as recovered
	assert.Empty(t, notifier.subjects)
}

func TestTickRecoveredStateSettlesToHealthy(t *testing.T) {
	// RECOVERED only survives one healthy tick, then the state settles
	testCases := []struct {
		name     string
		prior    State
		expected State
	}{
		{"checking recovers", StateChecking, StateRecovered},
		{"dead recovers", StateDead, StateRecovered},
		{"recovered settles", StateRecovered, StateHealthy},
		{"healthy stays", StateHealthy, StateHealthy},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStore{state: WatchdogState{State: tc.prior}}
			collector := &scriptedCollector{outcomes: [][]model.CheckResult{healthyLiveness()}}
			wd := newTestWatchdog(collector, store, &recordingNotifier{}, &recordingTransport{})

			state, err := wd.Tick(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.expected, state.State)
		})
	}
}

func TestTickVacuumsLogsUnderDiskPressure(t *testing.T) {
	store := &memStore{}
	transport := &recordingTransport{}
	collector := &scriptedCollector{outcomes: [][]model.CheckResult{
		failingLiveness(model.CheckDiskSpace),
	}}
	wd := newTestWatchdog(collector, store, &recordingNotifier{}, transport)

	_, err := wd.Tick(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, transport.commands)
	assert.Contains(t, transport.commands[0], "journalctl --vacuum")
}
