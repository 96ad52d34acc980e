//go:build linux

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// X11Backend drives an X11 session through EWMH. X11 has no per-monitor
// scale, so every display reports the configured scale (1 by default).
type X11Backend struct {
	conn    *x11.Connection
	scale   geometry.Scale
	command CommandFunc
	logger  *slog.Logger
}

var (
	_ Backend       = (*X11Backend)(nil)
	_ CaptureLister = (*X11Backend)(nil)
)

// NewX11Backend opens a connection to $DISPLAY.
func NewX11Backend(scale geometry.Scale, logger *slog.Logger) (*X11Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if !scale.Valid() {
		scale = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &X11Backend{conn: conn, scale: scale, command: ExecCommand, logger: logger}, nil
}

func (b *X11Backend) Close() error {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
	return nil
}

// Displays returns the usable area of each active monitor.
func (b *X11Backend) Displays(ctx context.Context) ([]DisplayInfo, error) {
	monitors, err := b.conn.Monitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, ErrNoDisplay
	}

	displays := make([]DisplayInfo, 0, len(monitors))
	for _, m := range monitors {
		wa := b.conn.WorkArea(m)
		pos := geometry.PhysicalPoint{X: wa.X, Y: wa.Y}
		displays = append(displays, DisplayInfo{
			ID:       m.ID,
			Name:     m.Name,
			Position: pos,
			Size:     geometry.PhysicalSize{Width: wa.Width, Height: wa.Height},
			Origin:   pos.ToLogical(b.scale),
			Scale:    b.scale,
			Main:     m.Primary,
		})
	}
	sort.Slice(displays, func(i, j int) bool { return displays[i].ID < displays[j].ID })
	return displays, nil
}

func (b *X11Backend) appClients(app string, stacking bool) ([]x11.Client, error) {
	clients, err := b.conn.Clients(stacking)
	if err != nil {
		return nil, err
	}
	var out []x11.Client
	for _, cl := range clients {
		if cl.MatchesApp(app) {
			out = append(out, cl)
		}
	}
	return out, nil
}

func (b *X11Backend) physicalRect(win xproto.Window) (geometry.PhysicalRect, error) {
	x, y, w, h, err := b.conn.Geometry(win)
	if err != nil {
		return geometry.PhysicalRect{}, err
	}
	return geometry.PhysicalRect{X: x, Y: y, Width: w, Height: h}, nil
}

func (b *X11Backend) Locate(ctx context.Context, app, title string) (Window, error) {
	clients, err := b.appClients(app, false)
	if err != nil {
		return Window{}, err
	}
	if len(clients) == 0 {
		return Window{}, fmt.Errorf("%w: %s has no windows", ErrNotFound, app)
	}

	for _, cl := range clients {
		if !strings.Contains(cl.Title, title) {
			continue
		}
		if cl.Hidden {
			if err := b.conn.Restore(cl.ID); err != nil {
				b.logger.Warn("restore window failed", "window", cl.ID, "error", err)
			}
		}
		if err := b.conn.FocusWindow(cl.ID); err != nil {
			b.logger.Warn("activate window failed", "window", cl.ID, "error", err)
		}
		r, err := b.physicalRect(cl.ID)
		if err != nil {
			return Window{}, fmt.Errorf("read window geometry: %w", err)
		}
		return Window{
			ID:        WindowID(cl.ID),
			App:       app,
			Title:     cl.Title,
			Minimized: cl.Hidden,
			Bounds:    b.logicalBounds(r),
		}, nil
	}
	return Window{}, fmt.Errorf("%w: %s has no window titled %q", ErrNotFound, app, title)
}

// CaptureTargets lists app's client windows. X window ids serve both Locate
// and CaptureWindow.
func (b *X11Backend) CaptureTargets(ctx context.Context, app string) ([]CaptureTarget, error) {
	clients, err := b.appClients(app, false)
	if err != nil {
		return nil, err
	}
	targets := make([]CaptureTarget, 0, len(clients))
	for _, cl := range clients {
		targets = append(targets, CaptureTarget{App: app, Title: cl.Title, ID: WindowID(cl.ID)})
	}
	return targets, nil
}

// frontWindow is the topmost window of app in stacking order.
func (b *X11Backend) frontWindow(app string) (xproto.Window, error) {
	clients, err := b.appClients(app, true)
	if err != nil {
		return 0, err
	}
	if len(clients) == 0 {
		return 0, fmt.Errorf("%w: %s has no windows", ErrNotFound, app)
	}
	return clients[len(clients)-1].ID, nil
}

func (b *X11Backend) FrontBounds(ctx context.Context, app string) (geometry.LogicalRect, error) {
	win, err := b.frontWindow(app)
	if err != nil {
		return geometry.LogicalRect{}, err
	}
	r, err := b.physicalRect(win)
	if err != nil {
		return geometry.LogicalRect{}, err
	}
	return b.logicalBounds(r), nil
}

func (b *X11Backend) SetFrontBounds(ctx context.Context, app string, bounds geometry.LogicalRect) error {
	win, err := b.frontWindow(app)
	if err != nil {
		return err
	}
	r := b.physicalBounds(bounds)
	return b.conn.MoveResizeWindow(win, r.X, r.Y, r.Width, r.Height)
}

func (b *X11Backend) logicalBounds(r geometry.PhysicalRect) geometry.LogicalRect {
	return r.ToLogical(b.scale)
}

// physicalBounds inverts logicalBounds exactly, so a window placed with
// SetFrontBounds reads back through FrontBounds unchanged.
func (b *X11Backend) physicalBounds(r geometry.LogicalRect) geometry.PhysicalRect {
	if b.scale == 1 {
		return geometry.PhysicalRect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return r.ToPhysicalStable(b.scale)
}

func (b *X11Backend) Activate(ctx context.Context, app string) error {
	win, err := b.frontWindow(app)
	if err != nil {
		return err
	}
	return b.conn.FocusWindow(win)
}

// DefaultApp maps the xdg-mime default handler to a WM_CLASS-like name:
// org.gnome.Evince.desktop becomes Evince.
func (b *X11Backend) DefaultApp(ctx context.Context, file string) (string, error) {
	mime, err := exec.CommandContext(ctx, "xdg-mime", "query", "filetype", file).Output()
	if err != nil {
		return "", fmt.Errorf("query mime type of %s: %w", file, err)
	}
	desktop, err := exec.CommandContext(ctx, "xdg-mime", "query", "default", strings.TrimSpace(string(mime))).Output()
	if err != nil {
		return "", fmt.Errorf("query default application of %s: %w", file, err)
	}
	name := DesktopEntryApp(string(desktop))
	if name == "" {
		return "", fmt.Errorf("%w: no default application for %s", ErrNotFound, file)
	}
	return name, nil
}

// X11 has no permission model for window control or capture.
func (b *X11Backend) CheckPermission(ctx context.Context, kind PermissionKind) (bool, error) {
	return true, nil
}

func (b *X11Backend) RequestPermission(ctx context.Context, kind PermissionKind) (bool, error) {
	return true, nil
}

// CaptureWindow uses ImageMagick's import.
func (b *X11Backend) CaptureWindow(ctx context.Context, id WindowID, file string) error {
	if err := b.command(ctx, "import", "-window", "0x"+strconv.FormatUint(uint64(id), 16), file); err != nil {
		return fmt.Errorf("capture window %d: %w", id, err)
	}
	return nil
}

func (b *X11Backend) Host(ctx context.Context, app string) (HostWindow, error) {
	var win xproto.Window
	if app == "" {
		active, err := b.conn.ActiveWindow()
		if err != nil {
			return nil, fmt.Errorf("%w: no active window: %v", ErrNotFound, err)
		}
		win = active
	} else {
		front, err := b.frontWindow(app)
		if err != nil {
			return nil, err
		}
		win = front
	}
	return &x11Host{backend: b, win: win}, nil
}

type x11Host struct {
	backend *X11Backend
	win     xproto.Window
}

func (h *x11Host) Frame(ctx context.Context) (geometry.PhysicalRect, error) {
	return h.backend.physicalRect(h.win)
}

func (h *x11Host) SetSize(ctx context.Context, size geometry.PhysicalSize) error {
	r, err := h.Frame(ctx)
	if err != nil {
		return err
	}
	return h.backend.conn.MoveResizeWindow(h.win, r.X, r.Y, size.Width, size.Height)
}

func (h *x11Host) SetPosition(ctx context.Context, pos geometry.PhysicalPoint) error {
	r, err := h.Frame(ctx)
	if err != nil {
		return err
	}
	return h.backend.conn.MoveResizeWindow(h.win, pos.X, pos.Y, r.Width, r.Height)
}

func (h *x11Host) Focus(ctx context.Context) error {
	return h.backend.conn.FocusWindow(h.win)
}

// XUtil exposes the X connection for global hotkeys.
func (b *X11Backend) XUtil() *xgbutil.XUtil { return b.conn.XUtil }

// RootWindow returns the root window hotkeys are grabbed on.
func (b *X11Backend) RootWindow() xproto.Window { return b.conn.Root }
