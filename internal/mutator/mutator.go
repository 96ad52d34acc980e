// Package mutator applies a layout plan to the host and reader windows.
package mutator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/osascript"
	"github.com/1broseidon/readsplit/internal/platform"
)

// Mutator moves windows for one arrange operation.
type Mutator struct {
	host       platform.HostWindow
	automation platform.Automation
	logger     *slog.Logger
}

func New(host platform.HostWindow, automation platform.Automation, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{host: host, automation: automation, logger: logger}
}

// ApplyHost sizes then positions the host window. There is no idempotence
// check: both calls are cheap and always intended.
func (m *Mutator) ApplyHost(ctx context.Context, bounds geometry.PhysicalRect) error {
	if err := m.host.SetSize(ctx, bounds.Size()); err != nil {
		return fmt.Errorf("resize host window: %w", err)
	}
	if err := m.host.SetPosition(ctx, bounds.Position()); err != nil {
		return fmt.Errorf("move host window: %w", err)
	}
	m.logger.Debug("host window applied", "bounds", bounds)
	return nil
}

// ApplyTarget moves app's front window to bounds unless it is already
// there. It reports whether a move was issued. A failure here leaves the
// host window where ApplyHost put it.
func (m *Mutator) ApplyTarget(ctx context.Context, app string, bounds geometry.LogicalRect) (bool, error) {
	current, err := m.automation.FrontBounds(ctx, app)
	if err != nil {
		m.logBridgeError("read reader bounds failed", app, err)
		return false, fmt.Errorf("read %s window bounds: %w", app, err)
	}
	if current == bounds {
		m.logger.Debug("reader window already in place", "app", app, "bounds", bounds)
		return false, nil
	}

	if err := m.automation.SetFrontBounds(ctx, app, bounds); err != nil {
		m.logBridgeError("move reader window failed", app, err)
		return false, fmt.Errorf("move %s window: %w", app, err)
	}
	m.logger.Debug("reader window moved", "app", app, "from", current, "to", bounds)
	return true, nil
}

func (m *Mutator) logBridgeError(msg, app string, err error) {
	var bridgeErr *osascript.Error
	if errors.As(err, &bridgeErr) {
		m.logger.Warn(msg, "app", app, "exit_code", bridgeErr.ExitCode, "stderr", bridgeErr.Stderr)
		return
	}
	m.logger.Warn(msg, "app", app, "error", err)
}
