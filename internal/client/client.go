// Package client provides a blocking client for the state coordinator.
package client

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/protocol"
)

// ErrStopped is returned once the coordinator has stopped.
var ErrStopped = errors.New("coordinator is stopped")

// Endpoint is the channel pair exposed by the coordinator.
type Endpoint interface {
	Requests() chan<- protocol.Request
	Responses() <-chan *protocol.Response
	Done() <-chan struct{}
}

// Client sends one request at a time and waits for its response. It is safe
// for concurrent use; calls are serialized.
type Client struct {
	endpoint Endpoint
	mu       sync.Mutex
}

// New creates a client for endpoint.
func New(endpoint Endpoint) *Client {
	return &Client{endpoint: endpoint}
}

// Send sends a request and receives its response. The response may carry an
// error status; only transport failures are returned as errors.
func (c *Client) Send(req protocol.Request) (*protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.endpoint.Requests() <- req:
	case <-c.endpoint.Done():
		return nil, ErrStopped
	}

	select {
	case resp := <-c.endpoint.Responses():
		return resp, nil
	case <-c.endpoint.Done():
		return nil, ErrStopped
	}
}

// call sends req and converts an error response into an error.
func (c *Client) call(req protocol.Request) (*protocol.Response, error) {
	resp, err := c.Send(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return resp, err
	}
	return resp, nil
}

// Initialize returns the current snapshot and discoverable instances. On
// error the response is still returned when the coordinator produced one.
func (c *Client) Initialize() (*protocol.Response, error) {
	return c.call(protocol.Initialize{})
}

// SetInstance selects the instance to query. An empty name selects the
// default instance.
func (c *Client) SetInstance(name string) error {
	_, err := c.call(protocol.SetInstance{Name: name})
	return err
}

// AddAlias adds an alias and returns the updated snapshot.
func (c *Client) AddAlias(name string) (*protocol.Snapshot, error) {
	return c.snapshot(protocol.AddAlias{Name: name})
}

// RemoveAlias removes an alias and returns the updated snapshot.
func (c *Client) RemoveAlias(name string) (*protocol.Snapshot, error) {
	return c.snapshot(protocol.RemoveAlias{Name: name})
}

// SetTargetPath changes the hosts file path and returns the updated snapshot.
func (c *Client) SetTargetPath(path string) (*protocol.Snapshot, error) {
	return c.snapshot(protocol.SetTargetPath{Path: path})
}

func (c *Client) snapshot(req protocol.Request) (*protocol.Snapshot, error) {
	resp, err := c.call(req)
	if err != nil {
		return nil, err
	}
	if resp.Snapshot == nil {
		return nil, fmt.Errorf("%s response has no snapshot", req.Type())
	}
	return resp.Snapshot, nil
}

// ReadRaw returns the current lines of the hosts file.
func (c *Client) ReadRaw() ([]string, error) {
	resp, err := c.call(protocol.ReadRaw{})
	if err != nil {
		return nil, err
	}
	return resp.Lines, nil
}

// Preview returns the lines a commit would write.
func (c *Client) Preview() ([]string, error) {
	resp, err := c.call(protocol.Preview{})
	if err != nil {
		return nil, err
	}
	return resp.Lines, nil
}

// Commit discovers the address and writes the hosts file, directly or through
// the elevated writer.
func (c *Client) Commit() (*protocol.Response, error) {
	return c.call(protocol.Commit{})
}

// CheckAccess returns the access flags of the hosts file.
func (c *Client) CheckAccess() (*protocol.AccessInfo, error) {
	resp, err := c.call(protocol.CheckAccess{})
	if err != nil {
		return nil, err
	}
	return resp.Access, nil
}

// SaveSettings persists the configuration and returns the status message.
func (c *Client) SaveSettings() (string, error) {
	resp, err := c.call(protocol.SaveSettings{})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListBackups returns the available backups, newest first.
func (c *Client) ListBackups() ([]protocol.BackupInfo, error) {
	resp, err := c.call(protocol.ListBackups{})
	if err != nil {
		return nil, err
	}
	return resp.Backups, nil
}

// RestoreBackup restores the named backup and returns the status message.
func (c *Client) RestoreBackup(name string) (string, error) {
	resp, err := c.call(protocol.RestoreBackup{Name: name})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Shutdown stops the coordinator. Stopping a stopped coordinator is a no-op.
func (c *Client) Shutdown() error {
	_, err := c.call(protocol.Shutdown{})
	if errors.Is(err, ErrStopped) {
		return nil
	}
	return err
}
