// Package opener hands files and URLs to the desktop environment.
package opener

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/1broseidon/readsplit/internal/permission"
	"github.com/1broseidon/readsplit/internal/platform"
)

// Opener runs open(1) on macOS and xdg-open elsewhere.
type Opener struct {
	run  platform.CommandFunc
	goos string
}

func New() *Opener {
	return &Opener{run: platform.ExecCommand, goos: runtime.GOOS}
}

// NewWithRunner is New with an explicit command runner and target OS.
func NewWithRunner(run platform.CommandFunc, goos string) *Opener {
	return &Opener{run: run, goos: goos}
}

// Open opens path with app, or with the default application when app is
// empty. It returns once the request is handed off; the window appears
// asynchronously.
func (o *Opener) Open(ctx context.Context, path, app string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if o.goos == "darwin" {
		if app != "" {
			return o.run(ctx, "open", "-a", app, abs)
		}
		return o.run(ctx, "open", abs)
	}
	if app != "" {
		return o.run(ctx, app, abs)
	}
	return o.run(ctx, "xdg-open", abs)
}

// Reveal shows path in the file manager.
func (o *Opener) Reveal(ctx context.Context, path string) error {
	if o.goos == "darwin" {
		return o.run(ctx, "open", "-R", path)
	}
	return o.run(ctx, "xdg-open", filepath.Dir(path))
}

// OpenSettings opens the System Settings pane for kind. Other platforms have
// nothing to open.
func (o *Opener) OpenSettings(ctx context.Context, kind platform.PermissionKind) error {
	if o.goos != "darwin" {
		return fmt.Errorf("%w: permission settings", platform.ErrUnsupported)
	}
	return o.run(ctx, "open", permission.SettingsURL(kind))
}
