// Package osascript runs scripts through the macOS automation bridge.
//
// Every call spawns one osascript process. Scripts written for this package
// print a single JSON object; Decode also accepts the older pipe-delimited
// result strings so callers never parse raw output themselves.
package osascript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrBridge marks failures of the automation bridge itself: a non-zero exit,
// a missing interpreter, or output that could not be decoded.
var ErrBridge = errors.New("automation bridge failed")

// Language selects the osascript interpreter.
type Language string

const (
	AppleScript Language = "AppleScript"
	JavaScript  Language = "JavaScript"
)

// Runner executes one script and returns its trimmed stdout.
type Runner interface {
	Run(ctx context.Context, lang Language, script string) (string, error)
}

// Error is returned when the osascript process fails.
type Error struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("osascript exited with code %d: %s", e.ExitCode, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrBridge }

// Executor is the Runner backed by the osascript binary.
type Executor struct {
	// Path is the interpreter to run. Empty means "osascript" from PATH.
	Path string
}

var _ Runner = (*Executor)(nil)

// NewExecutor returns an Executor for path (empty uses PATH lookup).
func NewExecutor(path string) *Executor {
	return &Executor{Path: path}
}

func (e *Executor) Run(ctx context.Context, lang Language, script string) (string, error) {
	bin := e.Path
	if bin == "" {
		bin = "osascript"
	}

	cmd := exec.CommandContext(ctx, bin, "-l", string(lang), "-e", script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return "", &Error{ExitCode: code, Stderr: stderr.String(), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// JSString renders s as a JavaScript string literal.
func JSString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// ASString renders s as an AppleScript string literal.
func ASString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
