// Package coordinator owns the live configuration and serves requests for it
// one at a time over a pair of channels.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/config"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/elevate"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/hosts"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/protocol"
)

// State is the coordinator lifecycle state.
type State int

const (
	// Running accepts requests.
	Running State = iota
	// Stopped is terminal and is reached only through a Shutdown request.
	Stopped
)

func (s State) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "running"
}

// Resolver discovers the address of a WSL instance.
type Resolver interface {
	Resolve(ctx context.Context, distro string) (string, error)
	Distros(ctx context.Context) ([]string, error)
}

// Flusher flushes the OS DNS cache.
type Flusher interface {
	Flush() error
}

// SettingsStore persists the configuration.
type SettingsStore interface {
	Path() string
	Store(cfg *config.Config) error
}

// Options configures a Coordinator. Resolver is required; every other
// collaborator is optional.
type Options struct {
	Resolver Resolver
	Launcher elevate.Launcher
	Flusher  Flusher
	Settings SettingsStore
	Backups  *hosts.BackupStore
	Logger   *slog.Logger

	// Newline overrides the platform line terminator used when writing.
	Newline string
	// Notify receives a user-visible message after every successful commit.
	Notify func(message string)
	// CommitOnInit makes Initialize also commit and report the outcome.
	CommitOnInit bool
}

// Coordinator is the sole owner of a config.Config.
type Coordinator struct {
	cfg   *config.Config
	opts  Options
	log   *slog.Logger
	state State

	requests  chan protocol.Request
	responses chan *protocol.Response
	done      chan struct{}
}

// New creates a coordinator owning cfg. The caller must not use cfg after
// this call.
func New(cfg *config.Config, opts Options) (*Coordinator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if opts.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Coordinator{
		cfg:       cfg,
		opts:      opts,
		log:       logger.With("component", "coordinator"),
		requests:  make(chan protocol.Request),
		responses: make(chan *protocol.Response),
		done:      make(chan struct{}),
	}, nil
}

// Requests returns the channel requests are sent on.
func (c *Coordinator) Requests() chan<- protocol.Request {
	return c.requests
}

// Responses returns the channel responses are delivered on, one per request
// and in request order.
func (c *Coordinator) Responses() <-chan *protocol.Response {
	return c.responses
}

// Done is closed once the coordinator has stopped.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Run serves requests until a Shutdown request is handled or ctx is done.
// A request that has started always runs to completion; ctx cancellation is
// only observed between requests.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)

	// Requests are never cancelled mid-flight.
	reqCtx := context.WithoutCancel(ctx)

	c.log.Debug("coordinator started")
	for c.state == Running {
		var req protocol.Request
		select {
		case req = <-c.requests:
		case <-ctx.Done():
			c.state = Stopped
			c.log.Debug("coordinator cancelled")
			return ctx.Err()
		}

		resp := c.handle(reqCtx, req)

		select {
		case c.responses <- resp:
		case <-ctx.Done():
			c.state = Stopped
			return ctx.Err()
		}
	}

	c.log.Debug("coordinator stopped")
	return nil
}

// handle dispatches one request. A panic in a handler becomes a state error
// reply and leaves the coordinator running.
func (c *Coordinator) handle(ctx context.Context, req protocol.Request) (resp *protocol.Response) {
	if req == nil {
		return protocol.NewErrorResponse("", protocol.ErrCodeInvalidRequest, "nil request")
	}

	log := c.log.With("request", req.Type(), "request_id", uuid.NewString())
	start := time.Now()
	defer func() {
		log.Debug("request handled",
			"status", resp.Status,
			"code", resp.Code,
			"duration", time.Since(start))
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Error("request handler panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
			resp = protocol.NewErrorResponse(req.Type(), protocol.ErrCodeState, "internal state error")
		}
	}()

	log.Debug("handling request")

	switch r := req.(type) {
	case protocol.Initialize:
		return c.handleInitialize(ctx)
	case protocol.SetInstance:
		return c.handleSetInstance(r)
	case protocol.AddAlias:
		return c.handleAddAlias(r)
	case protocol.RemoveAlias:
		return c.handleRemoveAlias(r)
	case protocol.SetTargetPath:
		return c.handleSetTargetPath(r)
	case protocol.ReadRaw:
		return c.handleReadRaw()
	case protocol.Preview:
		return c.handlePreview(ctx)
	case protocol.Commit:
		return c.handleCommit(ctx)
	case protocol.CheckAccess:
		return c.handleCheckAccess()
	case protocol.SaveSettings:
		return c.handleSaveSettings()
	case protocol.ListBackups:
		return c.handleListBackups()
	case protocol.RestoreBackup:
		return c.handleRestoreBackup(r)
	case protocol.Shutdown:
		c.state = Stopped
		resp := protocol.NewOKResponse(r.Type())
		resp.Message = "shutting down"
		return resp
	default:
		return protocol.NewErrorResponse(req.Type(), protocol.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown request type: %s", req.Type()))
	}
}

func (c *Coordinator) snapshot() *protocol.Snapshot {
	cfg := c.cfg.Clone()
	return &protocol.Snapshot{
		HostsPath:   cfg.HostsPath,
		Aliases:     cfg.Aliases,
		Distro:      cfg.Distro,
		LastAddress: cfg.LastAddress,
	}
}

func (c *Coordinator) reconciler() *hosts.Reconciler {
	r := hosts.NewReconciler(c.cfg.HostsPath, c.opts.Backups)
	if c.opts.Newline != "" {
		r.WithNewline(c.opts.Newline)
	}
	return r
}
