// Package capture saves a screenshot of the reader window.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/1broseidon/readsplit/internal/helper"
	"github.com/1broseidon/readsplit/internal/locator"
	"github.com/1broseidon/readsplit/internal/platform"
)

// Gate guards screen-recording permission.
type Gate interface {
	Require(ctx context.Context) error
}

// WindowLocator activates and raises the reader window.
type WindowLocator interface {
	Locate(ctx context.Context, app, title string) (locator.Located, error)
}

// WindowLister enumerates screenshotable windows.
type WindowLister interface {
	Windows(ctx context.Context) ([]helper.Window, error)
}

// Capturer writes PNG files into dir.
type Capturer struct {
	gate    Gate
	locator WindowLocator
	windows WindowLister
	shooter platform.Screenshotter
	dir     string
	logger  *slog.Logger
}

func New(gate Gate, loc WindowLocator, windows WindowLister, shooter platform.Screenshotter, dir string, logger *slog.Logger) *Capturer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capturer{gate: gate, locator: loc, windows: windows, shooter: shooter, dir: dir, logger: logger}
}

// Capture screenshots the window of app showing documentPath and returns the
// image path. Windows are matched on the document's file name, which
// separates several open documents of the same application.
func (c *Capturer) Capture(ctx context.Context, app, documentPath string) (string, error) {
	name := filepath.Base(documentPath)
	if documentPath == "" || name == "." || name == string(filepath.Separator) {
		return "", errors.New("capture: document path is empty")
	}

	if err := c.gate.Require(ctx); err != nil {
		return "", err
	}

	if _, err := c.locator.Locate(ctx, app, name); err != nil {
		return "", err
	}

	id, err := c.resolveWindowID(ctx, app, name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create capture directory: %w", err)
	}
	path := filepath.Join(c.dir, fmt.Sprintf("%s-%s.png", slug(name), uuid.NewString()[:8]))

	if err := c.shooter.CaptureWindow(ctx, id, path); err != nil {
		return "", err
	}
	c.logger.Info("window captured", "app", app, "window", id, "path", path)
	return path, nil
}

// resolveWindowID picks the screenshotable window. When the helper cannot
// be reached, the screenshotter's own window list is used if it has one.
func (c *Capturer) resolveWindowID(ctx context.Context, app, name string) (platform.WindowID, error) {
	wins, err := c.windows.Windows(ctx)
	if errors.Is(err, helper.ErrUnavailable) {
		lister, ok := c.shooter.(platform.CaptureLister)
		if !ok {
			return 0, fmt.Errorf("%w: cannot resolve a capture id for %q: %v", platform.ErrNotFound, name, err)
		}
		c.logger.Warn("window list unavailable, asking the window system", "error", err)
		wins, err = listTargets(ctx, lister, app)
	}
	if err != nil {
		return 0, fmt.Errorf("list windows: %w", err)
	}

	if w, ok := Match(wins, app, name); ok {
		return platform.WindowID(w.WindowID), nil
	}
	return 0, fmt.Errorf("%w: no screenshotable window titled %q", platform.ErrNotFound, name)
}

func listTargets(ctx context.Context, lister platform.CaptureLister, app string) ([]helper.Window, error) {
	targets, err := lister.CaptureTargets(ctx, app)
	if err != nil {
		return nil, err
	}
	wins := make([]helper.Window, 0, len(targets))
	for _, t := range targets {
		wins = append(wins, helper.Window{ApplicationName: app, WindowName: t.Title, WindowID: uint32(t.ID)})
	}
	return wins, nil
}

// Match returns the first window of app whose name contains name. Windows
// of other applications never match.
func Match(wins []helper.Window, app, name string) (helper.Window, bool) {
	for _, w := range wins {
		if strings.EqualFold(w.ApplicationName, app) && strings.Contains(w.WindowName, name) {
			return w, true
		}
	}
	return helper.Window{}, false
}

func slug(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "window"
	}
	return b.String()
}
