package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/readsplit/internal/reader"
	"github.com/1broseidon/readsplit/internal/runtimepath"
)

// ErrDaemon marks an error the daemon reported, as opposed to a failure to
// reach it.
var ErrDaemon = errors.New("daemon error")

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		// Arrange may wait several seconds for a freshly opened document.
		timeout: 30 * time.Second,
	}
}

// WithTimeout sets the per-request deadline.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	br := bufio.NewReader(conn)
	respData, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("%w: %s", ErrDaemon, resp.Error)
	}

	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetDisplays retrieves display information
func (c *Client) GetDisplays() (*DisplaysData, error) {
	var data DisplaysData
	if err := c.call(CommandGetDisplays, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Arrange asks the daemon to arrange the host and the reader showing path.
func (c *Client) Arrange(path string) (*reader.ArrangeResult, error) {
	var res reader.ArrangeResult
	if err := c.call(CommandArrange, ArrangePayload{Path: path}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Scroll forwards one scroll gesture to the reader.
func (c *Client) Scroll(p ScrollPayload) error {
	return c.call(CommandScroll, p, nil)
}

// Capture screenshots the reader window showing path.
func (c *Client) Capture(path string, reveal bool) (string, error) {
	var data CaptureData
	if err := c.call(CommandCapture, CapturePayload{Path: path, Reveal: reveal}, &data); err != nil {
		return "", err
	}
	return data.Path, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
