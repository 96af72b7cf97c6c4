// Package wsl discovers the IPv4 address of a WSL instance and lists the
// installed instances.
package wsl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/config"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/sysproc"
)

// genericExitMessage is reported when a failed command printed nothing usable.
const genericExitMessage = "Unable to run ip command."

// waitDelay bounds how long a killed command's output pipes are drained.
const waitDelay = time.Second

// Runner executes a command and returns its captured output. A non-nil error
// of type *exec.ExitError means the command ran and exited non-zero.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs commands with os/exec, without a console window on Windows.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 - Argument vector, never a shell string
	sysproc.HideWindow(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Resolver queries a WSL instance for the address of its primary interface.
type Resolver struct {
	command string
	iface   string
	timeout time.Duration
	run     Runner
}

// NewResolver creates a resolver from discovery settings. A nil runner uses
// ExecRunner.
func NewResolver(d config.Discovery, run Runner) *Resolver {
	if d.Command == "" {
		d.Command = config.DefaultWSLCommand
	}
	if d.Interface == "" {
		d.Interface = config.DefaultInterface
	}
	if run == nil {
		run = ExecRunner
	}
	return &Resolver{
		command: d.Command,
		iface:   d.Interface,
		timeout: d.Timeout,
		run:     run,
	}
}

// Args returns the argument vector used to query distro. An empty distro
// selects the default instance.
func (r *Resolver) Args(distro string) []string {
	var args []string
	if distro != "" {
		args = append(args, "-d", distro)
	}
	return append(args, "--", "ip", "-4", "-br", "address", "show", r.iface)
}

// Resolve returns the IPv4 address of distro's primary interface.
func (r *Resolver) Resolve(ctx context.Context, distro string) (string, error) {
	stdout, _, err := r.exec(ctx, r.Args(distro)...)
	if err != nil {
		return "", err
	}
	return ParseAddress(string(stdout))
}

func (r *Resolver) exec(ctx context.Context, args ...string) ([]byte, []byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	stdout, stderr, err := r.run(ctx, r.command, args...)
	if err == nil {
		return stdout, stderr, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return nil, nil, &DiscoveryError{
				Kind:    KindExit,
				Message: fmt.Sprintf("%s timed out after %s", r.command, r.timeout),
				Err:     ctx.Err(),
			}
		}
		return nil, nil, &DiscoveryError{
			Kind:    KindExit,
			Message: exitMessage(stderr, stdout),
			Err:     err,
		}
	}

	return nil, nil, &DiscoveryError{
		Kind:    KindStart,
		Message: err.Error(),
		Err:     err,
	}
}

// exitMessage picks the text a failed command reported. Some wsl.exe
// variants report errors on stdout, and wsl.exe itself writes UTF-16LE.
func exitMessage(stderr, stdout []byte) string {
	for _, out := range [][]byte{stderr, stdout} {
		decoded, err := decodeOutput(out)
		if err != nil {
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(decoded, "\ufeff"))
		if text != "" && utf8.ValidString(text) && !strings.ContainsAny(text, "\x00\ufffd") {
			return text
		}
	}
	return genericExitMessage
}

// ParseAddress extracts the IPv4 address from brief `ip -4 address` output.
// The last whitespace token must be an address/prefix pair; the result is the
// last such pair whose address is IPv4, with its prefix length removed.
func ParseAddress(output string) (string, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return "", &DiscoveryError{
			Kind:    KindEmpty,
			Message: "Unable to split output text.",
		}
	}

	last := fields[len(fields)-1]
	if !strings.Contains(last, "/") {
		return "", &DiscoveryError{
			Kind:    KindMalformed,
			Message: fmt.Sprintf("Unable to separate IP from subnet: %q", last),
		}
	}

	for i := len(fields) - 1; i >= 0; i-- {
		prefix, _, found := strings.Cut(fields[i], "/")
		if !found {
			continue
		}
		if addr, err := netip.ParseAddr(prefix); err == nil && addr.Is4() {
			return addr.String(), nil
		}
	}

	return "", &DiscoveryError{
		Kind:    KindMalformed,
		Message: fmt.Sprintf("not an IPv4 address: %q", last),
	}
}
