package control

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

const defaultCallTimeout = 10 * time.Second

// Client is a JSON-RPC client over a Unix domain socket, used by the
// status/reload/stop CLI subcommands to talk to a running daemon.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient constructs a Client bound to socketPath.
func NewClient(socketPath string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultCallTimeout
	}
	return &Client{socketPath: socketPath, timeout: timeout}
}

// Call sends one JSON-RPC request and waits for its response.
func (c *Client) Call(ctx context.Context, method string, params interface{}) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("control: connect to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetDeadline(deadline)

	var paramsJSON json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("control: marshal params: %w", err)
		}
		paramsJSON = data
	}

	reqID := fmt.Sprintf("req-%d", time.Now().UnixNano())
	req := JSONRPCRequest{JSONRPC: "2.0", Method: method, Params: paramsJSON, ID: reqID}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("control: send request: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("control: read response: %w", err)
		}
		return nil, fmt.Errorf("control: connection closed without response")
	}

	var jsonrpcResp JSONRPCResponse
	if err := json.Unmarshal(scanner.Bytes(), &jsonrpcResp); err != nil {
		return nil, fmt.Errorf("control: parse response: %w", err)
	}

	return &Response{ID: fmt.Sprintf("%v", jsonrpcResp.ID), Result: jsonrpcResp.Result, Error: jsonrpcResp.Error}, nil
}

// Status calls the "status" method.
func (c *Client) Status(ctx context.Context) (*Response, error) {
	return c.Call(ctx, "status", nil)
}

// Reload calls the "reload" method (SIGHUP equivalent: registry + config
// reload, §9).
func (c *Client) Reload(ctx context.Context) (*Response, error) {
	return c.Call(ctx, "reload", nil)
}

// Stop calls the "stop" method (graceful engine shutdown).
func (c *Client) Stop(ctx context.Context) (*Response, error) {
	return c.Call(ctx, "stop", nil)
}
