package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/client"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/config"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/coordinator"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/elevate"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/hosts"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/wsl"
)

// app is the wired configuration for one invocation.
type app struct {
	manager  *config.Manager
	settings *config.Settings
	cfg      *config.Config
	logger   *slog.Logger
}

// newApp loads the settings and applies environment and flag overrides.
func newApp(opts *options, environment *config.Environment, logger *slog.Logger) (*app, error) {
	manager := config.NewManager(environment.ResolveConfigPath(opts.configPath))
	if err := manager.Load(); err != nil {
		return nil, err
	}

	settings := manager.Get()
	environment.Apply(settings)

	cfg, err := settings.Config()
	if err != nil {
		return nil, err
	}
	if opts.hostsFile != "" {
		if err := cfg.SetHostsPath(opts.hostsFile); err != nil {
			return nil, err
		}
	}
	if len(opts.names) > 0 {
		if err := cfg.SetAliases(opts.names); err != nil {
			return nil, err
		}
	}
	if opts.distroSet {
		cfg.SetDistro(opts.distro)
	}

	logger.Debug("configuration loaded",
		"settings", manager.Path(),
		"hostsPath", cfg.HostsPath,
		"aliases", cfg.Aliases,
		"distro", cfg.Distro)

	return &app{
		manager:  manager,
		settings: settings,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func (a *app) coordinatorOptions() coordinator.Options {
	s := a.settings
	opts := coordinator.Options{
		Resolver: wsl.NewResolver(s.Discovery, wsl.ExecRunner),
		Launcher: elevate.NewWriterLauncher(s.Elevate.Writer, s.Elevate.Prefix),
		Settings: a.manager,
		Logger:   a.logger,
	}
	if s.Backup.Enabled {
		opts.Backups = hosts.NewBackupStore(s.Backup.Dir, s.Backup.Max)
	}
	if s.FlushDNS {
		opts.Flusher = hosts.NewFlusher()
	}
	return opts
}

// session runs the coordinator and surface side by side until both return.
// The coordinator is shut down when the surface returns.
func (a *app) session(ctx context.Context, opts coordinator.Options, surface func(context.Context, *client.Client) error) error {
	coord, err := coordinator.New(a.cfg, opts)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return coord.Run(gctx)
	})
	g.Go(func() error {
		c := client.New(coord)
		defer func() {
			if err := c.Shutdown(); err != nil {
				a.logger.Warn("failed to shut down coordinator", "error", err)
			}
		}()
		return surface(gctx, c)
	})
	return g.Wait()
}

// sync discovers the address and writes the hosts file, or prints the
// preview when running dry.
func (a *app) sync(ctx context.Context, stdout io.Writer, dryRun bool) error {
	opts := a.coordinatorOptions()
	opts.Notify = func(message string) {
		fmt.Fprintf(stdout, "✓ %s\n", message)
	}

	return a.session(ctx, opts, func(_ context.Context, c *client.Client) error {
		if dryRun {
			return printLines(stdout, c.Preview)
		}
		_, err := c.Commit()
		return err
	})
}

func (a *app) distros(ctx context.Context, stdout io.Writer) error {
	return a.session(ctx, a.coordinatorOptions(), func(_ context.Context, c *client.Client) error {
		resp, err := c.Initialize()
		if err != nil {
			return err
		}
		if len(resp.Distros) == 0 {
			fmt.Fprintln(stdout, "No WSL instances found.")
			return nil
		}
		for _, name := range resp.Distros {
			fmt.Fprintln(stdout, name)
		}
		return nil
	})
}

// lines prints the lines returned by fetch, one per line.
func (a *app) lines(ctx context.Context, stdout io.Writer, fetch func(*client.Client) ([]string, error)) error {
	return a.session(ctx, a.coordinatorOptions(), func(_ context.Context, c *client.Client) error {
		return printLines(stdout, func() ([]string, error) { return fetch(c) })
	})
}

func printLines(stdout io.Writer, fetch func() ([]string, error)) error {
	lines, err := fetch()
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func (a *app) backups(ctx context.Context, stdout io.Writer) error {
	if !a.settings.Backup.Enabled {
		fmt.Fprintln(stdout, "Backups are disabled.")
		return nil
	}

	return a.session(ctx, a.coordinatorOptions(), func(_ context.Context, c *client.Client) error {
		backups, err := c.ListBackups()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Fprintln(stdout, "No backups available.")
			return nil
		}

		rows := make([][]string, 0, len(backups))
		for _, b := range backups {
			rows = append(rows, []string{b.Name, formatTimestamp(b.Timestamp), fmt.Sprintf("%d", b.Size)})
		}
		return printTable(stdout, "NAME\tTAKEN\tBYTES", rows)
	})
}

func (a *app) restore(ctx context.Context, stdout io.Writer, name string) error {
	return a.session(ctx, a.coordinatorOptions(), func(_ context.Context, c *client.Client) error {
		message, err := c.RestoreBackup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "✓ %s\n", message)
		return nil
	})
}

// logPath places the TUI log file next to the settings file.
func logPath(settingsPath string) string {
	return filepath.Join(filepath.Dir(settingsPath), config.AppName+".log")
}
