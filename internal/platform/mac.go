package platform

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/osascript"
)

// CommandFunc runs an external command to completion.
type CommandFunc func(ctx context.Context, name string, args ...string) error

// ExecCommand runs name with args and folds stderr into the error.
func ExecCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("%s: %w", name, err)
		}
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return nil
}

// MacBackend drives macOS through the automation bridge.
type MacBackend struct {
	runner  osascript.Runner
	command CommandFunc
	logger  *slog.Logger
}

var (
	_ Backend       = (*MacBackend)(nil)
	_ CaptureLister = (*MacBackend)(nil)
)

// NewMacBackend returns a backend running scripts through runner.
func NewMacBackend(runner osascript.Runner, logger *slog.Logger) *MacBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &MacBackend{runner: runner, command: ExecCommand, logger: logger}
}

// WithCommand replaces the runner used for non-script commands (screencapture).
func (b *MacBackend) WithCommand(fn CommandFunc) *MacBackend {
	b.command = fn
	return b
}

func (b *MacBackend) Close() error { return nil }

type macDisplay struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
	Main   bool    `json:"main"`
}

// Displays reports each screen in physical pixels. Sizes use the screen's
// own backing scale; origins use the largest scale present so that screens
// of mixed density never overlap in physical space. Origin keeps the
// NSScreen origin in points.
func (b *MacBackend) Displays(ctx context.Context) ([]DisplayInfo, error) {
	out, err := b.runner.Run(ctx, osascript.JavaScript, displaysScript)
	if err != nil {
		return nil, fmt.Errorf("enumerate displays: %w", err)
	}
	var raw []macDisplay
	if err := osascript.DecodeJSON(out, &raw); err != nil {
		return nil, fmt.Errorf("enumerate displays: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoDisplay
	}

	ref := 1.0
	for _, d := range raw {
		if geometry.Scale(d.Scale).Valid() && d.Scale > ref {
			ref = d.Scale
		}
	}

	displays := make([]DisplayInfo, 0, len(raw))
	for _, d := range raw {
		s := geometry.Scale(d.Scale)
		if !s.Valid() {
			s = 1
		}
		displays = append(displays, DisplayInfo{
			ID:   d.ID,
			Name: d.Name,
			Position: geometry.PhysicalPoint{
				X: int(math.Floor(d.X * ref)),
				Y: int(math.Floor(d.Y * ref)),
			},
			Size: geometry.PhysicalSize{
				Width:  int(math.Floor(d.Width * float64(s))),
				Height: int(math.Floor(d.Height * float64(s))),
			},
			Origin: geometry.LogicalPoint{
				X: int(math.Floor(d.X)),
				Y: int(math.Floor(d.Y)),
			},
			Scale: s,
			Main:  d.Main,
		})
	}
	return displays, nil
}

func (b *MacBackend) runWindowScript(ctx context.Context, app, script string) (osascript.Result, error) {
	out, err := b.runner.Run(ctx, osascript.JavaScript, script)
	if err != nil {
		return osascript.Result{}, err
	}
	res, err := osascript.Decode(out)
	if err != nil {
		return osascript.Result{}, err
	}
	switch res.Status {
	case osascript.StatusOK:
		return res, nil
	case osascript.StatusNotRunning:
		return res, fmt.Errorf("%w: %s is not running", ErrNotFound, app)
	case osascript.StatusNoMatch:
		return res, fmt.Errorf("%w: %s has no matching window", ErrNotFound, app)
	default:
		return res, fmt.Errorf("%w: %s", osascript.ErrBridge, res.Message)
	}
}

func (b *MacBackend) Locate(ctx context.Context, app, title string) (Window, error) {
	res, err := b.runWindowScript(ctx, app, locateScript(app, title))
	if err != nil {
		return Window{}, err
	}
	if res.Window == nil {
		return Window{}, fmt.Errorf("%w: locate result has no window", osascript.ErrBridge)
	}
	w := res.Window
	return Window{
		ID:        WindowID(w.ID),
		App:       app,
		Title:     w.Title,
		Minimized: w.Minimized,
		Bounds:    geometry.LogicalRect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height},
	}, nil
}

func (b *MacBackend) FrontBounds(ctx context.Context, app string) (geometry.LogicalRect, error) {
	res, err := b.runWindowScript(ctx, app, frontBoundsScript(app))
	if err != nil {
		return geometry.LogicalRect{}, err
	}
	if res.Window == nil {
		return geometry.LogicalRect{}, fmt.Errorf("%w: bounds result has no window", osascript.ErrBridge)
	}
	w := res.Window
	return geometry.LogicalRect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}, nil
}

func (b *MacBackend) SetFrontBounds(ctx context.Context, app string, r geometry.LogicalRect) error {
	_, err := b.runWindowScript(ctx, app, setFrontBoundsScript(app, r))
	return err
}

func (b *MacBackend) Activate(ctx context.Context, app string) error {
	_, err := b.runWindowScript(ctx, app, activateScript(app))
	return err
}

// DefaultApp asks System Events for the application that opens path.
func (b *MacBackend) DefaultApp(ctx context.Context, path string) (string, error) {
	out, err := b.runner.Run(ctx, osascript.AppleScript, defaultAppScript(path))
	if err != nil {
		return "", fmt.Errorf("default application for %s: %w", path, err)
	}
	name := strings.TrimSuffix(strings.TrimSpace(out), ".app")
	if name == "" {
		return "", fmt.Errorf("%w: no default application for %s", ErrNotFound, path)
	}
	return name, nil
}

type permissionResult struct {
	Granted bool `json:"granted"`
}

func (b *MacBackend) CheckPermission(ctx context.Context, kind PermissionKind) (bool, error) {
	return b.permission(ctx, kind, false)
}

func (b *MacBackend) RequestPermission(ctx context.Context, kind PermissionKind) (bool, error) {
	return b.permission(ctx, kind, true)
}

func (b *MacBackend) permission(ctx context.Context, kind PermissionKind, request bool) (bool, error) {
	out, err := b.runner.Run(ctx, osascript.JavaScript, permissionScript(kind, request))
	if err != nil {
		return false, fmt.Errorf("%s permission: %w", kind, err)
	}
	var res permissionResult
	if err := osascript.DecodeJSON(out, &res); err != nil {
		return false, fmt.Errorf("%s permission: %w", kind, err)
	}
	return res.Granted, nil
}

// CaptureWindow runs screencapture without shadow or sound.
func (b *MacBackend) CaptureWindow(ctx context.Context, id WindowID, path string) error {
	if err := b.command(ctx, "screencapture", "-x", "-o", "-l", strconv.FormatUint(uint64(id), 10), path); err != nil {
		return fmt.Errorf("capture window %d: %w", id, err)
	}
	return nil
}

type macCaptureTarget struct {
	App   string `json:"app"`
	Title string `json:"title"`
	ID    uint32 `json:"id"`
}

// CaptureTargets lists app's on-screen windows by CGWindowID. The ids from
// Locate are scripting ids and cannot be passed to screencapture.
func (b *MacBackend) CaptureTargets(ctx context.Context, app string) ([]CaptureTarget, error) {
	out, err := b.runner.Run(ctx, osascript.JavaScript, captureTargetsScript)
	if err != nil {
		return nil, fmt.Errorf("list capture windows: %w", err)
	}
	var raw []macCaptureTarget
	if err := osascript.DecodeJSON(out, &raw); err != nil {
		return nil, fmt.Errorf("list capture windows: %w", err)
	}
	var targets []CaptureTarget
	for _, t := range raw {
		if strings.EqualFold(t.App, app) {
			targets = append(targets, CaptureTarget{App: t.App, Title: t.Title, ID: WindowID(t.ID)})
		}
	}
	return targets, nil
}

// Host resolves app's front window, or the frontmost application's when app
// is empty. The application name is fixed at resolution time so later
// operations keep targeting the same process after focus moves.
func (b *MacBackend) Host(ctx context.Context, app string) (HostWindow, error) {
	if app == "" {
		res, err := b.runWindowScript(ctx, "frontmost application", frontmostAppScript)
		if err != nil {
			return nil, fmt.Errorf("resolve host window: %w", err)
		}
		app = res.Name
	}
	if app == "" {
		return nil, fmt.Errorf("%w: no frontmost application", ErrNotFound)
	}
	b.logger.Debug("host window resolved", "app", app)
	return &macHost{backend: b, app: app}, nil
}

// displayAt returns the display whose logical frame contains p, falling
// back to the primary display.
func (b *MacBackend) displayAt(ctx context.Context, p geometry.LogicalPoint) (DisplayInfo, error) {
	displays, err := b.Displays(ctx)
	if err != nil {
		return DisplayInfo{}, err
	}
	if d, ok := DisplayAtLogical(displays, p); ok {
		return d, nil
	}
	return MainOrFirst(displays), nil
}

// displayAtPhysical is displayAt for a physical point.
func (b *MacBackend) displayAtPhysical(ctx context.Context, p geometry.PhysicalPoint) (DisplayInfo, error) {
	displays, err := b.Displays(ctx)
	if err != nil {
		return DisplayInfo{}, err
	}
	if d, ok := DisplayAtPhysical(displays, p); ok {
		return d, nil
	}
	return MainOrFirst(displays), nil
}

// macHost moves the host window through System Events, which speaks points.
type macHost struct {
	backend *MacBackend
	app     string
}

func (h *macHost) logicalFrame(ctx context.Context) (geometry.LogicalRect, error) {
	res, err := h.backend.runWindowScript(ctx, h.app, processWindowScript(h.app))
	if err != nil {
		return geometry.LogicalRect{}, fmt.Errorf("host window frame: %w", err)
	}
	if res.Window == nil {
		return geometry.LogicalRect{}, fmt.Errorf("%w: host frame result has no window", osascript.ErrBridge)
	}
	w := res.Window
	return geometry.LogicalRect{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}, nil
}

func (h *macHost) Frame(ctx context.Context) (geometry.PhysicalRect, error) {
	frame, err := h.logicalFrame(ctx)
	if err != nil {
		return geometry.PhysicalRect{}, err
	}
	d, err := h.backend.displayAt(ctx, frame.Center())
	if err != nil {
		return geometry.PhysicalRect{}, err
	}
	pos := d.LogicalToPhysical(frame.Position())
	size := frame.Size().ToPhysical(d.Scale)
	return geometry.PhysicalRect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}, nil
}

func (h *macHost) SetSize(ctx context.Context, size geometry.PhysicalSize) error {
	frame, err := h.logicalFrame(ctx)
	if err != nil {
		return err
	}
	d, err := h.backend.displayAt(ctx, frame.Center())
	if err != nil {
		return err
	}
	l := size.ToLogical(d.Scale)
	if _, err := h.backend.runWindowScript(ctx, h.app, setProcessWindowScript(h.app, "size", l.Width, l.Height)); err != nil {
		return fmt.Errorf("resize host window: %w", err)
	}
	return nil
}

func (h *macHost) SetPosition(ctx context.Context, pos geometry.PhysicalPoint) error {
	d, err := h.backend.displayAtPhysical(ctx, pos)
	if err != nil {
		return err
	}
	l := d.PhysicalToLogical(pos)
	if _, err := h.backend.runWindowScript(ctx, h.app, setProcessWindowScript(h.app, "position", l.X, l.Y)); err != nil {
		return fmt.Errorf("move host window: %w", err)
	}
	return nil
}

func (h *macHost) Focus(ctx context.Context) error {
	return h.backend.Activate(ctx, h.app)
}

func (h *macHost) String() string { return h.app }
