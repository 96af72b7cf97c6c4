// Package main provides the entry point for the wsl2-ip-host application.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/client"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/config"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/logging"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/tui"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/version"
)

// appVersion is set at compile time via ldflags
var appVersion = "dev"

const (
	githubOwner = "lukaszraczylo"
	githubRepo  = "wsl2-ip-host"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// nameList collects a repeatable alias flag.
type nameList []string

func (n *nameList) String() string {
	return strings.Join(*n, ",")
}

func (n *nameList) Set(value string) error {
	*n = append(*n, value)
	return nil
}

// options holds the parsed global flags.
type options struct {
	distro      string
	distroSet   bool
	names       nameList
	configPath  string
	hostsFile   string
	dryRun      bool
	showVersion bool
	checkUpdate bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}

	fs := flag.NewFlagSet("wsl2-ip-host", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.distro, "d", "", "WSL instance to query (default instance when empty)")
	fs.StringVar(&opts.distro, "distro", "", "WSL instance to query (default instance when empty)")
	fs.Var(&opts.names, "n", "Alias to write (repeatable)")
	fs.Var(&opts.names, "name", "Alias to write (repeatable)")
	fs.StringVar(&opts.configPath, "config", "", "Path to settings file")
	fs.StringVar(&opts.hostsFile, "hosts-file", "", "Path to the hosts file")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Print the lines a write would produce without writing")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version")
	fs.BoolVar(&opts.checkUpdate, "update", false, "Check for a newer release")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "wsl2-ip-host - Publish the WSL instance address in the hosts file\n\n")
		fmt.Fprintf(stderr, "Usage:\n")
		fmt.Fprintf(stderr, "  wsl2-ip-host [flags]               Discover the address and write the hosts file\n")
		fmt.Fprintf(stderr, "  wsl2-ip-host [flags] tui [--run]   Launch the TUI (--run writes on start)\n")
		fmt.Fprintf(stderr, "  wsl2-ip-host [flags] distros       List WSL instances\n")
		fmt.Fprintf(stderr, "  wsl2-ip-host [flags] read          Print the hosts file\n")
		fmt.Fprintf(stderr, "  wsl2-ip-host [flags] preview       Print the lines a write would produce\n")
		fmt.Fprintf(stderr, "  wsl2-ip-host [flags] backups       List hosts file backups\n")
		fmt.Fprintf(stderr, "  wsl2-ip-host [flags] restore <name> Restore a backup\n")
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "d" || f.Name == "distro" {
			opts.distroSet = true
		}
	})
	return opts, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "wsl2-ip-host version %s\n", appVersion)
		return 0
	}
	if opts.checkUpdate {
		return exitCode(checkForUpdates(ctx, stdout), stderr)
	}

	command := "sync"
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	switch command {
	case "sync":
		return withApp(ctx, opts, stderr, func(a *app) error { return a.sync(ctx, stdout, opts.dryRun) })
	case "tui":
		return runTUI(ctx, opts, rest, stderr)
	case "distros":
		return withApp(ctx, opts, stderr, func(a *app) error { return a.distros(ctx, stdout) })
	case "read":
		return withApp(ctx, opts, stderr, func(a *app) error {
			return a.lines(ctx, stdout, (*client.Client).ReadRaw)
		})
	case "preview":
		return withApp(ctx, opts, stderr, func(a *app) error {
			return a.lines(ctx, stdout, (*client.Client).Preview)
		})
	case "backups":
		return withApp(ctx, opts, stderr, func(a *app) error { return a.backups(ctx, stdout) })
	case "restore":
		if len(rest) != 1 {
			fmt.Fprintln(stderr, "Usage: wsl2-ip-host restore <name>")
			return 1
		}
		return withApp(ctx, opts, stderr, func(a *app) error { return a.restore(ctx, stdout, rest[0]) })
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		return 1
	}
}

func exitCode(err error, stderr io.Writer) int {
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// withApp runs fn with a logger on stderr.
func withApp(ctx context.Context, opts *options, stderr io.Writer, fn func(*app) error) int {
	environment, err := config.LoadEnvironment()
	if err != nil {
		return exitCode(err, stderr)
	}
	level, err := logging.ParseLevel(environment.LogLevel)
	if err != nil {
		return exitCode(err, stderr)
	}
	logger := logging.New(stderr, logging.Options{Level: level})

	a, err := newApp(opts, environment, logger)
	if err != nil {
		return exitCode(err, stderr)
	}
	return exitCode(fn(a), stderr)
}

func runTUI(ctx context.Context, opts *options, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	commitOnStart := fs.Bool("run", false, "Discover the address and write the hosts file on start")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	environment, err := config.LoadEnvironment()
	if err != nil {
		return exitCode(err, stderr)
	}
	level, err := logging.ParseLevel(environment.LogLevel)
	if err != nil {
		return exitCode(err, stderr)
	}

	// The TUI owns the terminal, so logs go to a file next to the settings.
	logger, closer, err := logging.NewFile(logPath(environment.ResolveConfigPath(opts.configPath)), level)
	if err != nil {
		return exitCode(err, stderr)
	}
	defer closer.Close()

	a, err := newApp(opts, environment, logger)
	if err != nil {
		return exitCode(err, stderr)
	}

	copts := a.coordinatorOptions()
	copts.CommitOnInit = *commitOnStart

	return exitCode(a.session(ctx, copts, func(ctx context.Context, c *client.Client) error {
		return tui.Run(ctx, c, tui.Options{Logger: logger, Version: appVersion, Watch: true})
	}), stderr)
}

func checkForUpdates(ctx context.Context, stdout io.Writer) error {
	fmt.Fprintf(stdout, "wsl2-ip-host version %s\n", appVersion)
	fmt.Fprintln(stdout, "Checking for updates...")

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	checker := version.NewChecker(version.DefaultBaseURL, githubOwner, githubRepo, appVersion, nil)
	update, err := checker.Check(ctx)
	if err != nil {
		return err
	}
	if update == nil {
		fmt.Fprintln(stdout, "You are running the latest version.")
		return nil
	}

	fmt.Fprintln(stdout, update.String())
	return nil
}

func formatTimestamp(unix int64) string {
	return time.Unix(unix, 0).Format("2006-01-02 15:04:05")
}

func printTable(w io.Writer, header string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
