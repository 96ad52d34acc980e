// Package helper talks to the local input-injection helper over HTTP.
//
// The helper exposes two endpoints on loopback:
//
//	POST /scroll   {"x":..,"y":..,"dy":..}  -> 200
//	GET  /windows  -> {"windows":[{application_name, window_name, window_id, bounds}]}
package helper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is where the helper listens.
const DefaultURL = "http://127.0.0.1:60316"

// ErrUnavailable marks transport failures and non-200 answers.
var ErrUnavailable = errors.New("helper unavailable")

// StatusError is a non-200 response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, body)
}

func (e *StatusError) Is(target error) bool { return target == ErrUnavailable }

// ScrollRequest is the body of POST /scroll. Coordinates are logical
// desktop points.
type ScrollRequest struct {
	X  int `json:"x"`
	Y  int `json:"y"`
	DY int `json:"dy"`
}

// Bounds is a window rectangle as the helper reports it.
type Bounds struct {
	X      float64 `json:"X"`
	Y      float64 `json:"Y"`
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
}

// Window is one screenshotable window.
type Window struct {
	ApplicationName string `json:"application_name"`
	WindowName      string `json:"window_name"`
	WindowID        uint32 `json:"window_id"`
	Bounds          Bounds `json:"bounds"`
}

type windowsResponse struct {
	Windows []Window `json:"windows"`
}

// Client calls the helper. Each call is a single attempt.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL (DefaultURL when empty).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the helper address.
func (c *Client) BaseURL() string { return c.baseURL }

// Scroll posts one wheel gesture.
func (c *Client) Scroll(ctx context.Context, req ScrollRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal scroll request: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/scroll", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Windows lists the windows the helper can capture.
func (c *Client) Windows(ctx context.Context) ([]Window, error) {
	resp, err := c.do(ctx, http.MethodGet, "/windows", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var data windowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse windows response: %w", err)
	}
	return data.Windows, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(b)}
	}
	return resp, nil
}
