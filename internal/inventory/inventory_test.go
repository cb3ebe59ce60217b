package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInventory(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validInventory = `hosts:
  - name: gw-prod-1
    address: 10.0.0.1
    port: 22
    user: fms
    key_file: /etc/fms/id_ed25519
    channel_id: ops-prod
  - name: gw-prod-2
    address: gw2.fleet.internal
    port: 2222
    user: fms
    key_file: /etc/fms/id_ed25519
`

func TestLoad(t *testing.T) {
	fleet, err := Load(writeInventory(t, validInventory))
	require.NoError(t, err)
	require.Len(t, fleet.Hosts, 2)

	assert.Equal(t, "gw-prod-1", fleet.Hosts[0].Name)
	assert.Equal(t, "10.0.0.1", fleet.Hosts[0].Address)
	assert.Equal(t, "ops-prod", fleet.Hosts[0].ChannelID)
	assert.Equal(t, 2222, fleet.Hosts[1].Port)

	hosts := fleet.HostList()
	require.Len(t, hosts, 2)
	assert.Equal(t, "gw-prod-1", hosts[0].Name)
	assert.Equal(t, "/etc/fms/id_ed25519", hosts[0].KeyFile)
	assert.False(t, hosts[0].Local)
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name: "missing user",
			content: `hosts:
  - name: gw-prod-1
    address: 10.0.0.1
    key_file: /etc/fms/id_ed25519
`,
		},
		{
			name: "invalid address",
			content: `hosts:
  - name: gw-prod-1
    address: "not a host!"
    user: fms
    key_file: /etc/fms/id_ed25519
`,
		},
		{
			name: "port out of range",
			content: `hosts:
  - name: gw-prod-1
    address: 10.0.0.1
    port: 70000
    user: fms
    key_file: /etc/fms/id_ed25519
`,
		},
		{
			name:    "not yaml",
			content: "hosts: [\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeInventory(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	fleet, err := Load(writeInventory(t, validInventory))
	require.NoError(t, err)

	t.Run("registered instance", func(t *testing.T) {
		instance, ok := fleet.Resolve("gw-prod-2")
		require.True(t, ok)
		assert.Equal(t, "gw2.fleet.internal", instance.Address)
		assert.False(t, instance.IsSelf())
		assert.False(t, instance.ResolveHost().Local)
	})

	t.Run("self resolves to local execution", func(t *testing.T) {
		instance, ok := fleet.Resolve(SelfInstance)
		require.True(t, ok)
		assert.True(t, instance.IsSelf())
		host := instance.ResolveHost()
		assert.True(t, host.Local)
		assert.Equal(t, "127.0.0.1", host.Address)
	})

	t.Run("unknown instance", func(t *testing.T) {
		_, ok := fleet.Resolve("gw-missing")
		assert.False(t, ok)
	})
}
