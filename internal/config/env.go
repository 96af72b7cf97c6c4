package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v9"
)

// Environment holds overrides read from environment variables.
type Environment struct {
	ConfigPath string `env:"WSL2_IP_HOST_CONFIG"`
	LogLevel   string `env:"WSL2_IP_HOST_LOG_LEVEL" envDefault:"info"`
	WSLCommand string `env:"WSL2_IP_HOST_WSL_COMMAND"`
	WriterPath string `env:"WSL2_IP_HOST_WRITER"`
}

// LoadEnvironment parses overrides from the process environment.
func LoadEnvironment() (*Environment, error) {
	return parseEnvironment(env.Options{})
}

func parseEnvironment(opts env.Options) (*Environment, error) {
	var e Environment
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	e.LogLevel = strings.ToLower(strings.TrimSpace(e.LogLevel))
	return &e, nil
}

// ResolveConfigPath returns the settings path, preferring the explicit flag
// value, then the environment, then the default.
func (e *Environment) ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if e.ConfigPath != "" {
		return e.ConfigPath
	}
	return DefaultConfigPath()
}

// Apply overlays environment overrides onto s.
func (e *Environment) Apply(s *Settings) {
	if e.WSLCommand != "" {
		s.Discovery.Command = e.WSLCommand
	}
	if e.WriterPath != "" {
		s.Elevate.Writer = e.WriterPath
	}
}
