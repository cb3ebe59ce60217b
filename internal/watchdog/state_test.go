package watchdog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.json")
	store := NewFileStore(path, zap.NewNop())

	saved := WatchdogState{
		ConsecutiveFailures: 1,
		State:               StateChecking,
		LastCheckedAt:       time.Now().UTC().Truncate(time.Second),
		Deaths:              3,
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved.State, loaded.State)
	assert.Equal(t, saved.ConsecutiveFailures, loaded.ConsecutiveFailures)
	assert.Equal(t, saved.Deaths, loaded.Deaths)
	assert.True(t, saved.LastCheckedAt.Equal(loaded.LastCheckedAt))

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StateHealthy, state.State)
	assert.Zero(t, state.ConsecutiveFailures)
	assert.Zero(t, state.Deaths)
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	store := NewFileStore(path, zap.NewNop())

	// corrupt state restarts the loop conservatively
	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StateHealthy, state.State)
	assert.Zero(t, state.ConsecutiveFailures)
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchdog.json")
	store := NewFileStore(path, zap.NewNop())

	require.NoError(t, store.Save(WatchdogState{State: StateChecking, ConsecutiveFailures: 1}))
	require.NoError(t, store.Save(WatchdogState{State: StateHealthy}))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StateHealthy, state.State)
	assert.Zero(t, state.ConsecutiveFailures)
}
