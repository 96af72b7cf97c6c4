package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/config"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/coordinator"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/hosts"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockEndpoint answers every request with a canned response.
type mockEndpoint struct {
	requests  chan protocol.Request
	responses chan *protocol.Response
	done      chan struct{}
	handler   func(protocol.Request) *protocol.Response
	wg        sync.WaitGroup
	seen      []protocol.Request
}

func newMockEndpoint(t *testing.T, handler func(protocol.Request) *protocol.Response) *mockEndpoint {
	t.Helper()
	m := &mockEndpoint{
		requests:  make(chan protocol.Request),
		responses: make(chan *protocol.Response),
		done:      make(chan struct{}),
		handler:   handler,
	}
	m.wg.Add(1)
	go m.serve()
	t.Cleanup(m.close)
	return m
}

func (m *mockEndpoint) serve() {
	defer m.wg.Done()
	for {
		select {
		case req := <-m.requests:
			m.seen = append(m.seen, req)
			resp := m.handler(req)
			select {
			case m.responses <- resp:
			case <-m.done:
				return
			}
		case <-m.done:
			return
		}
	}
}

func (m *mockEndpoint) close() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
	m.wg.Wait()
}

func (m *mockEndpoint) Requests() chan<- protocol.Request    { return m.requests }
func (m *mockEndpoint) Responses() <-chan *protocol.Response { return m.responses }
func (m *mockEndpoint) Done() <-chan struct{}                { return m.done }

func okWith(fill func(*protocol.Response)) func(protocol.Request) *protocol.Response {
	return func(req protocol.Request) *protocol.Response {
		resp := protocol.NewOKResponse(req.Type())
		if fill != nil {
			fill(resp)
		}
		return resp
	}
}

func TestClient_RequestTypes_Matrix(t *testing.T) {
	snapshot := &protocol.Snapshot{HostsPath: "/etc/hosts", Aliases: []string{"a"}}
	m := newMockEndpoint(t, okWith(func(r *protocol.Response) {
		r.Snapshot = snapshot
		r.Lines = []string{"line"}
		r.Access = &protocol.AccessInfo{Path: "/etc/hosts", Readable: true}
		r.Message = "done"
	}))
	c := New(m)

	_, err := c.Initialize()
	require.NoError(t, err)
	require.NoError(t, c.SetInstance("Ubuntu"))

	snap, err := c.AddAlias("a")
	require.NoError(t, err)
	assert.Equal(t, snapshot, snap)

	_, err = c.RemoveAlias("a")
	require.NoError(t, err)
	_, err = c.SetTargetPath("/etc/hosts")
	require.NoError(t, err)

	lines, err := c.ReadRaw()
	require.NoError(t, err)
	assert.Equal(t, []string{"line"}, lines)

	lines, err = c.Preview()
	require.NoError(t, err)
	assert.Equal(t, []string{"line"}, lines)

	_, err = c.Commit()
	require.NoError(t, err)

	access, err := c.CheckAccess()
	require.NoError(t, err)
	assert.True(t, access.Readable)

	msg, err := c.SaveSettings()
	require.NoError(t, err)
	assert.Equal(t, "done", msg)

	_, err = c.ListBackups()
	require.NoError(t, err)
	_, err = c.RestoreBackup("hosts.1.bak")
	require.NoError(t, err)

	require.NoError(t, c.Shutdown())

	want := []protocol.Request{
		protocol.Initialize{},
		protocol.SetInstance{Name: "Ubuntu"},
		protocol.AddAlias{Name: "a"},
		protocol.RemoveAlias{Name: "a"},
		protocol.SetTargetPath{Path: "/etc/hosts"},
		protocol.ReadRaw{},
		protocol.Preview{},
		protocol.Commit{},
		protocol.CheckAccess{},
		protocol.SaveSettings{},
		protocol.ListBackups{},
		protocol.RestoreBackup{Name: "hosts.1.bak"},
		protocol.Shutdown{},
	}
	assert.Equal(t, want, m.seen)
}

func TestClient_ErrorResponse(t *testing.T) {
	m := newMockEndpoint(t, func(req protocol.Request) *protocol.Response {
		return protocol.NewErrorResponse(req.Type(), protocol.ErrCodeRead, "unable to read file /etc/hosts: denied")
	})
	c := New(m)

	_, err := c.ReadRaw()
	require.Error(t, err)
	assert.Equal(t, "unable to read file /etc/hosts: denied", err.Error())
	assert.True(t, errors.Is(err, &protocol.Error{Code: protocol.ErrCodeRead}))

	// Initialize keeps the response alongside the error.
	resp, err := c.Initialize()
	assert.Error(t, err)
	assert.NotNil(t, resp)
}

func TestClient_MissingSnapshot(t *testing.T) {
	m := newMockEndpoint(t, okWith(nil))
	c := New(m)

	_, err := c.AddAlias("a")
	assert.Error(t, err)
}

func TestClient_Stopped(t *testing.T) {
	m := newMockEndpoint(t, okWith(nil))
	c := New(m)

	m.close()

	_, err := c.Send(protocol.ReadRaw{})
	assert.ErrorIs(t, err, ErrStopped)

	_, err = c.Preview()
	assert.ErrorIs(t, err, ErrStopped)

	assert.NoError(t, c.Shutdown())
}

func TestClient_ConcurrentCallsArePaired(t *testing.T) {
	m := newMockEndpoint(t, func(req protocol.Request) *protocol.Response {
		resp := protocol.NewOKResponse(req.Type())
		if r, ok := req.(protocol.AddAlias); ok {
			resp.Snapshot = &protocol.Snapshot{Aliases: []string{r.Name}}
		}
		return resp
	})
	c := New(m)

	var wg sync.WaitGroup
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			snap, err := c.AddAlias(name)
			if assert.NoError(t, err) {
				assert.Equal(t, []string{name}, snap.Aliases)
			}
		}(name)
	}
	wg.Wait()
}

func TestClient_WithCoordinator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(path, []byte("127.0.0.1 localhost\n"), 0644))

	cfg := config.New(path)
	require.NoError(t, cfg.AddAlias("host.local"))

	coord, err := coordinator.New(cfg, coordinator.Options{
		Resolver: staticResolver("10.0.0.1"),
		Backups:  hosts.NewBackupStore(filepath.Join(dir, "backups"), 3),
		Newline:  "\n",
	})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- coord.Run(context.Background()) }()

	c := New(coord)

	resp, err := c.Commit()
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "10.0.0.1")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1 localhost\n10.0.0.1 host.local # added by wsl2-ip-host\n", string(content))

	require.NoError(t, c.Shutdown())
	require.NoError(t, <-errCh)

	_, err = c.ReadRaw()
	assert.ErrorIs(t, err, ErrStopped)
}

type staticResolver string

func (s staticResolver) Resolve(context.Context, string) (string, error) { return string(s), nil }
func (s staticResolver) Distros(context.Context) ([]string, error)       { return nil, nil }
