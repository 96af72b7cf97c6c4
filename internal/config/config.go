// Package config holds the mutable configuration state and its YAML persistence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is used for config directories and log file names.
	AppName = "wsl2-ip-host"
	// DefaultAlias is the alias written when none is configured.
	DefaultAlias = "host.wsl.internal"
	// DefaultWSLCommand is the WSL bridge executable.
	DefaultWSLCommand = "wsl.exe"
	// DefaultInterface is the primary interface inside the WSL instance.
	DefaultInterface = "eth0"
	// DefaultDiscoveryTimeout bounds a single discovery subprocess.
	DefaultDiscoveryTimeout = 30 * time.Second
	// DefaultMaxBackups is the number of hosts backups kept.
	DefaultMaxBackups = 10

	windowsHostsPath = `C:\Windows\System32\drivers\etc\hosts`
	unixHostsPath    = "/etc/hosts"
	legacyFileName   = ".wsl2-ip-host.json"
)

// DefaultHostsPath returns the platform hosts file path.
func DefaultHostsPath() string {
	if runtime.GOOS == "windows" {
		return windowsHostsPath
	}
	return unixHostsPath
}

// DefaultConfigDir returns the default config directory path for users.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultConfigPath returns the default config file path for users.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultBackupDir returns the default directory for hosts file backups.
func DefaultBackupDir() string {
	return filepath.Join(DefaultConfigDir(), "backups")
}

// LegacyConfigPath returns the path of the JSON settings file written by
// earlier releases.
func LegacyConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, legacyFileName)
}

// Config is the live configuration state. It is owned by a single
// goroutine; everything handed out to other goroutines is a Clone.
type Config struct {
	HostsPath   string
	Aliases     []string
	Distro      string
	LastAddress string
}

// New creates a configuration targeting hostsPath with no aliases.
func New(hostsPath string) *Config {
	return &Config{HostsPath: hostsPath}
}

// SetHostsPath replaces the target path. Empty paths are rejected.
func (c *Config) SetHostsPath(path string) error {
	path = strings.TrimSpace(path)
	if err := ValidateHostsPath(path); err != nil {
		return err
	}
	c.HostsPath = path
	return nil
}

// HasAlias reports whether name is in the alias set.
func (c *Config) HasAlias(name string) bool {
	return slices.Contains(c.Aliases, name)
}

// AddAlias appends name to the alias set. Adding an existing alias is a no-op.
func (c *Config) AddAlias(name string) error {
	name = strings.TrimSpace(name)
	if err := ValidateAlias(name); err != nil {
		return err
	}
	if !c.HasAlias(name) {
		c.Aliases = append(c.Aliases, name)
	}
	return nil
}

// RemoveAlias drops name from the alias set. Removing a non-member is a no-op.
func (c *Config) RemoveAlias(name string) {
	name = strings.TrimSpace(name)
	c.Aliases = slices.DeleteFunc(c.Aliases, func(a string) bool { return a == name })
}

// SetAliases replaces the alias set, keeping first occurrences only.
func (c *Config) SetAliases(names []string) error {
	c.Aliases = nil
	for _, n := range names {
		if err := c.AddAlias(n); err != nil {
			return err
		}
	}
	return nil
}

// SetDistro sets the WSL instance selector. Empty means the default instance.
func (c *Config) SetDistro(name string) {
	c.Distro = strings.TrimSpace(name)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Aliases = slices.Clone(c.Aliases)
	return &clone
}

// Discovery configures the address discovery subprocess.
type Discovery struct {
	Command   string        `yaml:"command"`
	Interface string        `yaml:"interface"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Backup configures hosts file backups taken before each write.
type Backup struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	Max     int    `yaml:"max"`
}

// Elevate configures the privileged writer hand-off.
type Elevate struct {
	Writer string   `yaml:"writer,omitempty"`
	Prefix []string `yaml:"prefix,omitempty"`
}

// Settings is the persisted form of the configuration.
type Settings struct {
	HostsPath string    `yaml:"hostsPath"`
	Aliases   []string  `yaml:"aliases"`
	Distro    string    `yaml:"distro,omitempty"`
	Discovery Discovery `yaml:"discovery"`
	Backup    Backup    `yaml:"backup"`
	Elevate   Elevate   `yaml:"elevate,omitempty"`
	FlushDNS  bool      `yaml:"flushDNS"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		HostsPath: DefaultHostsPath(),
		Aliases:   []string{DefaultAlias},
		Discovery: Discovery{
			Command:   DefaultWSLCommand,
			Interface: DefaultInterface,
			Timeout:   DefaultDiscoveryTimeout,
		},
		Backup: Backup{
			Enabled: true,
			Dir:     DefaultBackupDir(),
			Max:     DefaultMaxBackups,
		},
		FlushDNS: true,
	}
}

// Config builds the live configuration state from the settings.
func (s *Settings) Config() (*Config, error) {
	cfg := New(s.HostsPath)
	if err := cfg.SetAliases(s.Aliases); err != nil {
		return nil, err
	}
	cfg.SetDistro(s.Distro)
	return cfg, nil
}

// Apply copies the persisted fields of cfg into the settings.
func (s *Settings) Apply(cfg *Config) {
	s.HostsPath = cfg.HostsPath
	s.Aliases = slices.Clone(cfg.Aliases)
	s.Distro = cfg.Distro
}

// ConfigError reports a settings file that exists but cannot be used.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid settings file %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// legacySettings is the JSON layout of ~/.wsl2-ip-host.json.
type legacySettings struct {
	HostsPath string   `json:"hosts_path"`
	Domains   []string `json:"domains"`
	Distro    *string  `json:"distro"`
}

// Manager handles loading and saving settings.
type Manager struct {
	path       string
	legacyPath string
	settings   *Settings
	mu         sync.RWMutex
}

// NewManager creates a new settings manager.
func NewManager(path string) *Manager {
	return &Manager{
		path:       path,
		legacyPath: LegacyConfigPath(),
	}
}

// NewManagerWithLegacy creates a manager with a custom legacy path (for testing).
func NewManagerWithLegacy(path, legacyPath string) *Manager {
	return &Manager{
		path:       path,
		legacyPath: legacyPath,
	}
}

// Path returns the settings file path.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the settings file. A missing file is not an error: the legacy
// JSON file is imported if present, otherwise defaults are used.
func (m *Manager) Load() error {
	settings := DefaultSettings()

	data, err := os.ReadFile(m.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, settings); err != nil {
			return &ConfigError{Path: m.path, Err: fmt.Errorf("failed to parse settings: %w", err)}
		}
	case errors.Is(err, os.ErrNotExist):
		if err := m.loadLegacy(settings); err != nil {
			return err
		}
	default:
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return &ConfigError{Path: m.path, Err: err}
	}

	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()

	return nil
}

func (m *Manager) loadLegacy(settings *Settings) error {
	if m.legacyPath == "" {
		return nil
	}

	data, err := os.ReadFile(m.legacyPath)
	if err != nil {
		// Absent or unreadable legacy file: keep defaults.
		return nil
	}

	var legacy legacySettings
	if err := json.Unmarshal(data, &legacy); err != nil {
		return &ConfigError{Path: m.legacyPath, Err: fmt.Errorf("failed to parse legacy settings: %w", err)}
	}

	if legacy.HostsPath != "" {
		settings.HostsPath = legacy.HostsPath
	}
	settings.Aliases = legacy.Domains
	if legacy.Distro != nil {
		settings.Distro = *legacy.Distro
	}
	return nil
}

// Get returns the current settings, or defaults when nothing was loaded.
func (m *Manager) Get() *Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return DefaultSettings()
	}
	s := *m.settings
	s.Aliases = slices.Clone(m.settings.Aliases)
	return &s
}

// Store persists the path, alias list and distro of cfg.
func (m *Manager) Store(cfg *Config) error {
	m.mu.Lock()
	if m.settings == nil {
		m.settings = DefaultSettings()
	}
	m.settings.Apply(cfg)
	m.mu.Unlock()

	return m.Save()
}

// Save writes the settings to the file.
func (m *Manager) Save() error {
	m.mu.RLock()
	settings := m.settings
	m.mu.RUnlock()

	if settings == nil {
		return fmt.Errorf("no settings loaded")
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}
