// Package config provides validation functions for configuration.
package config

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"
)

// maxAliasLength is the longest host name a resolver accepts.
const maxAliasLength = 253

// aliasRegex rejects characters that would break a managed line or the
// comma-joined alias argument passed to the writer.
var aliasRegex = regexp.MustCompile(`^[^\s#,]+$`)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateAlias validates a single managed alias.
func ValidateAlias(name string) error {
	if name == "" {
		return &ValidationError{Field: "alias", Message: "alias is required"}
	}
	if len(name) > maxAliasLength {
		return &ValidationError{Field: "alias", Message: fmt.Sprintf("alias too long: %d characters", len(name))}
	}
	if !aliasRegex.MatchString(name) {
		return &ValidationError{Field: "alias", Message: fmt.Sprintf("invalid alias: %q", name)}
	}
	return nil
}

// ValidateHostsPath validates the target hosts file path.
func ValidateHostsPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return &ValidationError{Field: "hostsPath", Message: "hosts path is required"}
	}
	return nil
}

// ValidateAddress validates the address written onto managed lines. Only
// IPv4 addresses are published.
func ValidateAddress(address string) error {
	addr, err := netip.ParseAddr(address)
	if err != nil || !addr.Is4() {
		return &ValidationError{Field: "address", Message: fmt.Sprintf("not an IPv4 address: %q", address)}
	}
	return nil
}

// ValidateSettings validates the entire settings document.
func ValidateSettings(s *Settings) error {
	if s == nil {
		return &ValidationError{Field: "settings", Message: "settings are nil"}
	}

	if err := ValidateHostsPath(s.HostsPath); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for i, a := range s.Aliases {
		if err := ValidateAlias(strings.TrimSpace(a)); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("aliases[%d]", i),
				Message: err.Error(),
			}
		}
		if seen[a] {
			return &ValidationError{
				Field:   fmt.Sprintf("aliases[%d]", i),
				Message: fmt.Sprintf("duplicate alias: %s", a),
			}
		}
		seen[a] = true
	}

	return validateDiscovery(&s.Discovery, &s.Backup)
}

func validateDiscovery(d *Discovery, b *Backup) error {
	if strings.TrimSpace(d.Command) == "" {
		return &ValidationError{Field: "discovery.command", Message: "command is required"}
	}
	if strings.TrimSpace(d.Interface) == "" {
		return &ValidationError{Field: "discovery.interface", Message: "interface is required"}
	}
	if d.Timeout < 0 {
		return &ValidationError{Field: "discovery.timeout", Message: "timeout must not be negative"}
	}
	if b.Enabled && b.Max < 1 {
		return &ValidationError{Field: "backup.max", Message: "at least one backup must be kept"}
	}
	return nil
}
