package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbp-deeplinks/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deeplinks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(DeviceEnv, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	hc, err := cfg.ToHarvestConfig()
	require.NoError(t, err)
	assert.Equal(t, 65*time.Second, hc.Budget())
	assert.Equal(t, domain.DefaultDevice, hc.Launch.Device.Name)
	assert.True(t, hc.Launch.Headless)
	assert.Equal(t, domain.AllHookPoints, hc.Launch.Hooks)
	require.Len(t, hc.Triggers, 3)
	assert.NotEmpty(t, hc.Triggers[0].XPath)
	assert.Equal(t, "/pay|оплатить/i", hc.Triggers[1].TextPattern)
	assert.Equal(t, "/sber pay/i", hc.Triggers[2].TextPattern)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(DeviceEnv, "")

	path := writeConfig(t, `
registry_path: /etc/deeplinks/registry.yaml
log:
  level: debug
harvest:
  driver: playwright
  headless: false
  device: Pixel 5
  navigation_timeout: 10s
  settle_timeout: 2s
  extended_wait: 0s
  trigger_xpath: ""
  trigger_patterns: ["/continue/i"]
  hooks: [open, assign]
server:
  addr: 127.0.0.1:9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/deeplinks/registry.yaml", cfg.RegistryPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)

	hc, err := cfg.ToHarvestConfig()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, hc.Budget())
	assert.Equal(t, 5*time.Second, hc.ClickTimeout, "unset keys keep defaults")
	assert.False(t, hc.Launch.Headless)
	assert.Equal(t, "Pixel 5", hc.Launch.Device.Name)
	assert.Equal(t, []domain.HookPoint{domain.HookOpen, domain.HookAssign}, hc.Launch.Hooks)
	assert.Equal(t, []domain.ClickTarget{{TextPattern: "/continue/i"}}, hc.Triggers)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv(DeviceEnv, "Galaxy S9+")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Galaxy S9+", cfg.Harvest.Device)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "bad yaml", body: "harvest: [", wantErr: "failed to parse config"},
		{name: "bad driver", body: "harvest: {driver: selenium}", wantErr: "unknown harvest driver"},
		{name: "bad device", body: "harvest: {device: Nokia}", wantErr: "unknown device profile"},
		{name: "bad hook", body: "harvest: {hooks: [teleport]}", wantErr: "unknown hook point"},
		{name: "negative wait", body: "harvest: {settle_timeout: -1s}", wantErr: "settle_timeout"},
		{name: "bad duration", body: "harvest: {settle_timeout: soon}", wantErr: "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DeviceEnv, "")
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
