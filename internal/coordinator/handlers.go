package coordinator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/config"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/elevate"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/hosts"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/protocol"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/wsl"
)

func (c *Coordinator) handleInitialize(ctx context.Context) *protocol.Response {
	resp := protocol.NewOKResponse(protocol.RequestInitialize)

	distros, err := c.opts.Resolver.Distros(ctx)
	if err != nil {
		c.log.Debug("instance listing unavailable", "error", err)
	}

	if c.opts.CommitOnInit {
		resp = c.handleCommit(ctx)
		resp.Request = protocol.RequestInitialize
	}

	resp.Snapshot = c.snapshot()
	resp.Distros = distros
	return resp
}

func (c *Coordinator) handleSetInstance(req protocol.SetInstance) *protocol.Response {
	c.cfg.SetDistro(req.Name)
	c.log.Info("instance selected", "distro", c.cfg.Distro)
	return protocol.NewOKResponse(req.Type())
}

func (c *Coordinator) handleAddAlias(req protocol.AddAlias) *protocol.Response {
	if err := c.cfg.AddAlias(req.Name); err != nil {
		return c.errorResponse(req.Type(), err)
	}
	resp := protocol.NewOKResponse(req.Type())
	resp.Snapshot = c.snapshot()
	return resp
}

func (c *Coordinator) handleRemoveAlias(req protocol.RemoveAlias) *protocol.Response {
	c.cfg.RemoveAlias(req.Name)
	resp := protocol.NewOKResponse(req.Type())
	resp.Snapshot = c.snapshot()
	return resp
}

func (c *Coordinator) handleSetTargetPath(req protocol.SetTargetPath) *protocol.Response {
	if err := c.cfg.SetHostsPath(req.Path); err != nil {
		return c.errorResponse(req.Type(), err)
	}
	c.log.Info("target path changed", "path", c.cfg.HostsPath)
	resp := protocol.NewOKResponse(req.Type())
	resp.Snapshot = c.snapshot()
	return resp
}

func (c *Coordinator) handleReadRaw() *protocol.Response {
	lines, err := c.reconciler().ReadLines()
	if err != nil {
		return c.errorResponse(protocol.RequestReadRaw, err)
	}
	resp := protocol.NewOKResponse(protocol.RequestReadRaw)
	resp.Lines = lines
	return resp
}

// discover resolves the address and caches it in the configuration.
func (c *Coordinator) discover(ctx context.Context) (string, error) {
	address, err := c.opts.Resolver.Resolve(ctx, c.cfg.Distro)
	if err != nil {
		return "", err
	}
	if address != c.cfg.LastAddress {
		c.log.Info("address discovered", "address", address, "distro", c.cfg.Distro)
	}
	c.cfg.LastAddress = address
	return address, nil
}

func (c *Coordinator) handlePreview(ctx context.Context) *protocol.Response {
	address, err := c.discover(ctx)
	if err != nil {
		return c.errorResponse(protocol.RequestPreview, err)
	}

	lines, err := c.reconciler().Preview(c.cfg.Aliases, address)
	if err != nil {
		return c.errorResponse(protocol.RequestPreview, err)
	}

	resp := protocol.NewOKResponse(protocol.RequestPreview)
	resp.Lines = lines
	resp.Snapshot = c.snapshot()
	return resp
}

func (c *Coordinator) handleCommit(ctx context.Context) *protocol.Response {
	if len(c.cfg.Aliases) == 0 {
		return protocol.NewErrorResponse(protocol.RequestCommit, protocol.ErrCodeInvalidAlias, "no aliases configured")
	}

	address, err := c.discover(ctx)
	if err != nil {
		return c.errorResponse(protocol.RequestCommit, err)
	}

	path := c.cfg.HostsPath
	access := hosts.Probe(path)
	if !access.Writable && access.Readable && c.opts.Launcher != nil {
		return c.handOff(address)
	}

	r := c.reconciler()
	if err := r.Commit(c.cfg.Aliases, address); err != nil {
		return c.errorResponse(protocol.RequestCommit, err)
	}
	c.flush()

	resp := protocol.NewOKResponse(protocol.RequestCommit)
	resp.Message = fmt.Sprintf("Wrote %d entries for %s to %s", len(c.cfg.Aliases), address, path)
	resp.Snapshot = c.snapshot()
	if lines, err := r.ReadLines(); err == nil {
		resp.Lines = lines
	}

	c.log.Info("hosts file updated", "path", path, "address", address, "aliases", len(c.cfg.Aliases))
	c.notify(resp.Message)
	return resp
}

// handOff launches the elevated writer for a target this process cannot write.
func (c *Coordinator) handOff(address string) *protocol.Response {
	path := c.cfg.HostsPath
	if err := c.opts.Launcher.Launch(address, c.cfg.Aliases, path); err != nil {
		return c.errorResponse(protocol.RequestCommit, err)
	}

	resp := protocol.NewOKResponse(protocol.RequestCommit)
	resp.Elevated = true
	resp.Message = fmt.Sprintf("Requested elevated write of %s to %s", address, path)
	resp.Snapshot = c.snapshot()

	c.log.Info("hosts file write handed off", "path", path, "address", address)
	c.notify(resp.Message)
	return resp
}

func (c *Coordinator) handleCheckAccess() *protocol.Response {
	access := hosts.Probe(c.cfg.HostsPath)
	resp := protocol.NewOKResponse(protocol.RequestCheckAccess)
	resp.Access = &protocol.AccessInfo{
		Path:     access.Path,
		Readable: access.Readable,
		Writable: access.Writable,
	}
	return resp
}

func (c *Coordinator) handleSaveSettings() *protocol.Response {
	if c.opts.Settings == nil {
		return protocol.NewErrorResponse(protocol.RequestSaveSettings, protocol.ErrCodeConfig, "settings storage is not configured")
	}
	if err := c.opts.Settings.Store(c.cfg.Clone()); err != nil {
		c.log.Warn("failed to save settings", "error", err)
		return protocol.NewErrorResponse(protocol.RequestSaveSettings, protocol.ErrCodeConfig, err.Error())
	}

	resp := protocol.NewOKResponse(protocol.RequestSaveSettings)
	resp.Message = fmt.Sprintf("Settings saved to %s", c.opts.Settings.Path())
	return resp
}

func (c *Coordinator) handleListBackups() *protocol.Response {
	resp := protocol.NewOKResponse(protocol.RequestListBackups)
	if c.opts.Backups == nil {
		resp.Message = "backups are disabled"
		return resp
	}

	backups, err := c.opts.Backups.List()
	if err != nil {
		return protocol.NewErrorResponse(protocol.RequestListBackups, protocol.ErrCodeRead,
			fmt.Sprintf("failed to list backups: %v", err))
	}

	for _, b := range backups {
		resp.Backups = append(resp.Backups, protocol.BackupInfo{
			Name:      b.Name,
			Timestamp: b.Timestamp,
			Size:      b.Size,
		})
	}
	return resp
}

func (c *Coordinator) handleRestoreBackup(req protocol.RestoreBackup) *protocol.Response {
	if err := c.reconciler().Restore(req.Name); err != nil {
		return c.errorResponse(req.Type(), err)
	}
	c.flush()

	c.log.Info("hosts file restored", "path", c.cfg.HostsPath, "backup", req.Name)
	resp := protocol.NewOKResponse(req.Type())
	resp.Message = fmt.Sprintf("Restored %s from %s", c.cfg.HostsPath, filepath.Base(req.Name))
	return resp
}

// flush is best-effort; a stale resolver cache is not a failed write.
func (c *Coordinator) flush() {
	if c.opts.Flusher == nil {
		return
	}
	if err := c.opts.Flusher.Flush(); err != nil {
		c.log.Warn("failed to flush DNS cache", "error", err)
	}
}

func (c *Coordinator) notify(message string) {
	if c.opts.Notify != nil {
		c.opts.Notify(message)
	}
}

// errorResponse maps err onto the protocol error taxonomy.
func (c *Coordinator) errorResponse(reqType protocol.RequestType, err error) *protocol.Response {
	code := errorCode(err)
	c.log.Warn("request failed", "request", reqType, "code", code, "error", err)
	return protocol.NewErrorResponse(reqType, code, err.Error())
}

func errorCode(err error) protocol.ErrorCode {
	var (
		discErr   *wsl.DiscoveryError
		readErr   *hosts.ReadError
		writeErr  *hosts.WriteError
		launchErr *elevate.LaunchError
		validErr  *config.ValidationError
		cfgErr    *config.ConfigError
	)

	switch {
	case errors.As(err, &discErr):
		return protocol.ErrCodeDiscovery
	case errors.As(err, &readErr):
		return protocol.ErrCodeRead
	case errors.As(err, &writeErr):
		return protocol.ErrCodeWrite
	case errors.As(err, &launchErr), errors.Is(err, elevate.ErrNoAliases):
		return protocol.ErrCodeElevation
	case errors.As(err, &cfgErr):
		return protocol.ErrCodeConfig
	case errors.As(err, &validErr):
		if validErr.Field == "alias" {
			return protocol.ErrCodeInvalidAlias
		}
		return protocol.ErrCodeInvalidRequest
	default:
		return protocol.ErrCodeInvalidRequest
	}
}
