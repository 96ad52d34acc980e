// Package permission gates operations on OS permissions.
package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/readsplit/internal/platform"
)

// ErrDenied is returned by Require when the permission is not granted after
// the request cycle.
var ErrDenied = errors.New("permission denied")

// Gate checks one permission, requests it when absent, and checks again.
// It never loops: a denial is reported so the caller can offer remediation.
type Gate struct {
	kind   platform.PermissionKind
	prober platform.PermissionProber
	logger *slog.Logger
}

func NewGate(kind platform.PermissionKind, prober platform.PermissionProber, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{kind: kind, prober: prober, logger: logger}
}

// Kind returns the permission this gate guards.
func (g *Gate) Kind() platform.PermissionKind { return g.kind }

// Ensure reports whether the permission is granted. The answer after a
// request always comes from a fresh check, never from the request itself.
func (g *Gate) Ensure(ctx context.Context) bool {
	ok, err := g.prober.CheckPermission(ctx, g.kind)
	if err != nil {
		g.logger.Error("permission check failed", "permission", g.kind, "error", err)
		return false
	}
	if ok {
		return true
	}

	g.logger.Info("requesting permission", "permission", g.kind)
	if _, err := g.prober.RequestPermission(ctx, g.kind); err != nil {
		g.logger.Error("permission request failed", "permission", g.kind, "error", err)
		return false
	}

	ok, err = g.prober.CheckPermission(ctx, g.kind)
	if err != nil {
		g.logger.Error("permission re-check failed", "permission", g.kind, "error", err)
		return false
	}
	if !ok {
		g.logger.Warn("permission not granted", "permission", g.kind)
	}
	return ok
}

// Require is Ensure as an error.
func (g *Gate) Require(ctx context.Context) error {
	if !g.Ensure(ctx) {
		return fmt.Errorf("%w: %s", ErrDenied, g.kind)
	}
	return nil
}

// SettingsURL is the System Settings pane where the user grants kind.
func SettingsURL(kind platform.PermissionKind) string {
	const base = "x-apple.systempreferences:com.apple.preference.security?"
	switch kind {
	case platform.ScreenRecording:
		return base + "Privacy_ScreenCapture"
	default:
		return base + "Privacy_Accessibility"
	}
}
