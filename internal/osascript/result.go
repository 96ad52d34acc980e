package osascript

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Result statuses reported by bridge scripts.
const (
	StatusOK         = "ok"
	StatusNotRunning = "not_running"
	StatusNoMatch    = "no_match"
	StatusError      = "error"
)

// Result is the decoded outcome of a window script.
type Result struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Name    string        `json:"name,omitempty"`
	Window  *WindowResult `json:"window,omitempty"`
}

// WindowResult carries window geometry in logical pixels.
type WindowResult struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Minimized bool   `json:"minimized"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Decode parses script output. JSON objects are the native format; the
// "success|..." and "error: ..." strings are the older text protocol.
func Decode(out string) (Result, error) {
	out = strings.TrimSpace(out)
	if strings.HasPrefix(out, "{") {
		var r Result
		if err := json.Unmarshal([]byte(out), &r); err != nil {
			return Result{}, fmt.Errorf("%w: decode result: %v", ErrBridge, err)
		}
		if r.Status == "" {
			return Result{}, fmt.Errorf("%w: result has no status: %q", ErrBridge, out)
		}
		return r, nil
	}
	return decodeLegacy(out)
}

// DecodeJSON unmarshals script output into v.
func DecodeJSON(out string, v any) error {
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), v); err != nil {
		return fmt.Errorf("%w: decode %q: %v", ErrBridge, truncate(out, 120), err)
	}
	return nil
}

func decodeLegacy(out string) (Result, error) {
	if msg, ok := strings.CutPrefix(out, "error:"); ok {
		msg = strings.TrimSpace(msg)
		if strings.Contains(msg, "is not running") {
			return Result{Status: StatusNotRunning, Message: msg}, nil
		}
		return Result{Status: StatusError, Message: msg}, nil
	}

	fields := strings.Split(out, "|")
	if fields[0] != "success" || len(fields) < 2 {
		return Result{}, fmt.Errorf("%w: unrecognized result %q", ErrBridge, truncate(out, 120))
	}
	if fields[1] == "no_matching_window_found" {
		return Result{Status: StatusNoMatch}, nil
	}

	w := &WindowResult{}
	seen := 0
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, ":")
		if !ok {
			continue
		}
		var dst *int
		switch key {
		case "x":
			dst = &w.X
		case "y":
			dst = &w.Y
		case "width":
			dst = &w.Width
		case "height":
			dst = &w.Height
		default:
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return Result{}, fmt.Errorf("%w: bad %s in %q", ErrBridge, key, out)
		}
		*dst = n
		seen++
	}
	if seen != 4 {
		return Result{}, fmt.Errorf("%w: incomplete bounds in %q", ErrBridge, out)
	}
	return Result{Status: StatusOK, Window: w}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
