package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_AddAlias(t *testing.T) {
	cfg := New("/etc/hosts")

	require.NoError(t, cfg.AddAlias("a.local"))
	require.NoError(t, cfg.AddAlias("b.local"))
	assert.Equal(t, []string{"a.local", "b.local"}, cfg.Aliases)

	t.Run("existing alias is a no-op", func(t *testing.T) {
		require.NoError(t, cfg.AddAlias("a.local"))
		assert.Equal(t, []string{"a.local", "b.local"}, cfg.Aliases)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		require.NoError(t, cfg.AddAlias("  b.local "))
		assert.Len(t, cfg.Aliases, 2)
	})

	t.Run("rejects invalid", func(t *testing.T) {
		for _, name := range []string{"", "   ", "a b", "a,b", "a#b"} {
			err := cfg.AddAlias(name)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve, name)
		}
		assert.Equal(t, []string{"a.local", "b.local"}, cfg.Aliases)
	})
}

func TestConfig_RemoveAlias(t *testing.T) {
	cfg := New("/etc/hosts")
	require.NoError(t, cfg.SetAliases([]string{"a.local", "b.local", "c.local"}))

	cfg.RemoveAlias("b.local")
	assert.Equal(t, []string{"a.local", "c.local"}, cfg.Aliases)

	t.Run("absent alias is a no-op", func(t *testing.T) {
		cfg.RemoveAlias("missing.local")
		assert.Equal(t, []string{"a.local", "c.local"}, cfg.Aliases)
	})
}

func TestConfig_SetAliases_Dedup(t *testing.T) {
	cfg := New("/etc/hosts")
	require.NoError(t, cfg.SetAliases([]string{"a", "b", "a", "c", "b"}))
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Aliases)
}

func TestConfig_SetHostsPath(t *testing.T) {
	cfg := New("/etc/hosts")

	require.NoError(t, cfg.SetHostsPath("/tmp/hosts"))
	assert.Equal(t, "/tmp/hosts", cfg.HostsPath)

	err := cfg.SetHostsPath("  ")
	require.Error(t, err)
	assert.Equal(t, "/tmp/hosts", cfg.HostsPath)
}

func TestConfig_Clone(t *testing.T) {
	cfg := New("/etc/hosts")
	require.NoError(t, cfg.AddAlias("a.local"))
	cfg.LastAddress = "10.0.0.1"

	clone := cfg.Clone()
	require.NoError(t, clone.AddAlias("b.local"))
	clone.LastAddress = "10.0.0.2"

	assert.Equal(t, []string{"a.local"}, cfg.Aliases)
	assert.Equal(t, "10.0.0.1", cfg.LastAddress)
	assert.Equal(t, []string{"a.local", "b.local"}, clone.Aliases)
}

func TestManager_Load_MissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	m := NewManagerWithLegacy(filepath.Join(tmpDir, "config.yaml"), filepath.Join(tmpDir, "none.json"))

	require.NoError(t, m.Load())

	s := m.Get()
	assert.Equal(t, DefaultHostsPath(), s.HostsPath)
	assert.Equal(t, []string{DefaultAlias}, s.Aliases)
	assert.Equal(t, DefaultWSLCommand, s.Discovery.Command)
	assert.Equal(t, DefaultInterface, s.Discovery.Interface)
	assert.Equal(t, DefaultDiscoveryTimeout, s.Discovery.Timeout)
	assert.True(t, s.Backup.Enabled)
}

func TestManager_Load_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	content := `hostsPath: /tmp/hosts
aliases:
  - a.local
  - b.local
distro: Ubuntu
discovery:
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m := NewManagerWithLegacy(path, "")
	require.NoError(t, m.Load())

	s := m.Get()
	assert.Equal(t, "/tmp/hosts", s.HostsPath)
	assert.Equal(t, []string{"a.local", "b.local"}, s.Aliases)
	assert.Equal(t, "Ubuntu", s.Distro)
	assert.Equal(t, 5*time.Second, s.Discovery.Timeout)
	// Fields missing from the file keep their defaults.
	assert.Equal(t, DefaultWSLCommand, s.Discovery.Command)

	cfg, err := s.Config()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hosts", cfg.HostsPath)
	assert.Equal(t, "Ubuntu", cfg.Distro)
	assert.Empty(t, cfg.LastAddress)
}

func TestManager_Load_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "aliases: [unclosed"},
		{"empty path", "hostsPath: \"\"\n"},
		{"bad alias", "aliases:\n  - \"has space\"\n"},
		{"duplicate alias", "aliases: [a, a]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			m := NewManagerWithLegacy(path, "")
			err := m.Load()

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, path, ce.Path)
		})
	}
}

func TestManager_Load_Legacy(t *testing.T) {
	tmpDir := t.TempDir()
	legacy := filepath.Join(tmpDir, ".wsl2-ip-host.json")

	content := `{"hosts_path":"C:\\hosts","domains":["wsl.local","api.wsl.local"],"distro":"Debian"}`
	require.NoError(t, os.WriteFile(legacy, []byte(content), 0644))

	m := NewManagerWithLegacy(filepath.Join(tmpDir, "config.yaml"), legacy)
	require.NoError(t, m.Load())

	s := m.Get()
	assert.Equal(t, `C:\hosts`, s.HostsPath)
	assert.Equal(t, []string{"wsl.local", "api.wsl.local"}, s.Aliases)
	assert.Equal(t, "Debian", s.Distro)
}

func TestManager_Load_LegacyNullDistro(t *testing.T) {
	tmpDir := t.TempDir()
	legacy := filepath.Join(tmpDir, ".wsl2-ip-host.json")

	content := `{"hosts_path":"/etc/hosts","domains":[],"distro":null}`
	require.NoError(t, os.WriteFile(legacy, []byte(content), 0644))

	m := NewManagerWithLegacy(filepath.Join(tmpDir, "config.yaml"), legacy)
	require.NoError(t, m.Load())

	s := m.Get()
	assert.Empty(t, s.Distro)
	assert.Empty(t, s.Aliases)
}

func TestManager_StoreRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	m := NewManagerWithLegacy(path, "")
	require.NoError(t, m.Load())

	cfg := New("/tmp/hosts")
	require.NoError(t, cfg.SetAliases([]string{"x.local", "y.local"}))
	cfg.SetDistro("Alpine")
	cfg.LastAddress = "10.0.0.9"

	require.NoError(t, m.Store(cfg))

	reloaded := NewManagerWithLegacy(path, "")
	require.NoError(t, reloaded.Load())

	s := reloaded.Get()
	assert.Equal(t, "/tmp/hosts", s.HostsPath)
	assert.Equal(t, []string{"x.local", "y.local"}, s.Aliases)
	assert.Equal(t, "Alpine", s.Distro)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "10.0.0.9")
}

func TestManager_Save_NothingLoaded(t *testing.T) {
	m := NewManagerWithLegacy(filepath.Join(t.TempDir(), "config.yaml"), "")
	assert.Error(t, m.Save())
}

func TestEnvironment(t *testing.T) {
	e, err := parseEnvironment(env.Options{Environment: map[string]string{
		"WSL2_IP_HOST_CONFIG":      "/tmp/custom.yaml",
		"WSL2_IP_HOST_LOG_LEVEL":   " DEBUG ",
		"WSL2_IP_HOST_WSL_COMMAND": "/usr/bin/fake-wsl",
	}})
	require.NoError(t, err)

	assert.Equal(t, "debug", e.LogLevel)
	assert.Equal(t, "/tmp/custom.yaml", e.ResolveConfigPath(""))
	assert.Equal(t, "/flag.yaml", e.ResolveConfigPath("/flag.yaml"))

	s := DefaultSettings()
	e.Apply(s)
	assert.Equal(t, "/usr/bin/fake-wsl", s.Discovery.Command)
	assert.Empty(t, s.Elevate.Writer)
}

func TestEnvironment_Defaults(t *testing.T) {
	e, err := parseEnvironment(env.Options{Environment: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, "info", e.LogLevel)
	assert.Equal(t, DefaultConfigPath(), e.ResolveConfigPath(""))
}
