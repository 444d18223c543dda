package control

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client is a JSON-RPC client over a Unix domain socket, used by cmd/
// to talk to a running daemon.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient returns a Client bound to socketPath. A zero timeout
// defaults to 10s.
func NewClient(socketPath string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{socketPath: socketPath, timeout: timeout}
}

// Call sends method/params and waits for the daemon's response.
func (c *Client) Call(ctx context.Context, method string, params any) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)

	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		raw = data
	}

	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  raw,
		ID:      fmt.Sprintf("req-%d", time.Now().UnixNano()),
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		return nil, fmt.Errorf("connection closed without response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

// Status is a convenience wrapper around MethodStatus.
func (c *Client) Status(ctx context.Context) (*Response, error) {
	return c.Call(ctx, MethodStatus, nil)
}

// Stats is a convenience wrapper around MethodStats.
func (c *Client) Stats(ctx context.Context) (*Response, error) {
	return c.Call(ctx, MethodStats, nil)
}

// ConfigReload is a convenience wrapper around MethodReload.
func (c *Client) ConfigReload(ctx context.Context) (*Response, error) {
	return c.Call(ctx, MethodReload, nil)
}

// Stop is a convenience wrapper around MethodStop.
func (c *Client) Stop(ctx context.Context) (*Response, error) {
	return c.Call(ctx, MethodStop, nil)
}
