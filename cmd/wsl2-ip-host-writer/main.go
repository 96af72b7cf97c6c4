// Package main provides the privileged hosts file writer. It is started by
// wsl2-ip-host with elevated rights when the hosts file is not writable by
// the invoking user, and takes exactly three arguments: the address, the
// comma-joined aliases and the hosts file path.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/config"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/elevate"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/hosts"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	address, aliases, path, err := elevate.ParseArgs(args)
	if errors.Is(err, elevate.ErrUsage) {
		fmt.Fprintln(stderr, "Insufficient arguments provided.")
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	environment, err := config.LoadEnvironment()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	level, err := logging.ParseLevel(environment.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	logger := logging.New(stderr, logging.Options{Level: level})

	if err := config.ValidateAddress(address); err != nil {
		logger.Error("refusing to write hosts file", "error", err)
		return 1
	}

	settings := loadSettings(environment, logger)

	var backups *hosts.BackupStore
	if settings.Backup.Enabled {
		backups = hosts.NewBackupStore(settings.Backup.Dir, settings.Backup.Max)
	}

	if err := hosts.NewReconciler(path, backups).Commit(aliases, address); err != nil {
		logger.Error("failed to write hosts file", "path", path, "error", err)
		return 1
	}
	logger.Info("hosts file updated", "path", path, "address", address, "aliases", aliases)

	if settings.FlushDNS {
		if err := hosts.NewFlusher().Flush(); err != nil {
			logger.Warn("failed to flush DNS cache", "error", err)
		}
	}
	return 0
}

// loadSettings reads the invoking user's settings for the backup and flush
// options, falling back to defaults when they cannot be loaded.
func loadSettings(environment *config.Environment, logger *slog.Logger) *config.Settings {
	manager := config.NewManager(environment.ResolveConfigPath(""))
	if err := manager.Load(); err != nil {
		logger.Warn("using default settings", "path", manager.Path(), "error", err)
		return config.DefaultSettings()
	}
	return manager.Get()
}
