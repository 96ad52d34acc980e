// Package platform abstracts the window system readsplit drives: display
// enumeration, the host window, and automation of another application's
// windows.
package platform

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"

	"github.com/1broseidon/readsplit/internal/geometry"
)

var (
	// ErrNotFound reports that the application is not running or has no
	// window matching the requested title. It is an expected state, not a
	// failure of the bridge.
	ErrNotFound = errors.New("window not found")
	// ErrNoDisplay reports that the window system returned no displays.
	ErrNoDisplay = errors.New("no display available")
	// ErrUnsupported is returned by backends for capabilities the platform lacks.
	ErrUnsupported = errors.New("not supported on this platform")
)

// WindowID is a platform-assigned window identifier, valid only while the
// owning process keeps the window open.
type WindowID uint32

// Window identifies a live window of another application. It is produced
// fresh by every lookup and never cached.
type Window struct {
	ID    WindowID `json:"id"`
	App   string   `json:"app"`
	Title string   `json:"title"`
	// Minimized is the state observed before the lookup restored the window.
	Minimized bool                 `json:"minimized"`
	Bounds    geometry.LogicalRect `json:"bounds"`
}

// DisplayInfo describes one monitor in physical pixels.
//
// Origin is the display's top-left in desktop logical pixels and is the
// authority for where a display sits. Position places the display in a
// physical embedding that never overlaps other displays even when their
// scales differ; convert between the two with PhysicalToLogical and
// LogicalToPhysical rather than a bare scale.
type DisplayInfo struct {
	ID       int                    `json:"id"`
	Name     string                 `json:"name"`
	Position geometry.PhysicalPoint `json:"position"`
	Size     geometry.PhysicalSize  `json:"size"`
	Origin   geometry.LogicalPoint  `json:"origin"`
	Scale    geometry.Scale         `json:"scale"`
	// Main marks the primary display.
	Main bool `json:"main"`
}

// Bounds returns the display rectangle in physical pixels.
func (d DisplayInfo) Bounds() geometry.PhysicalRect {
	return geometry.PhysicalRect{X: d.Position.X, Y: d.Position.Y, Width: d.Size.Width, Height: d.Size.Height}
}

// LogicalFrame returns the display rectangle in desktop logical pixels.
func (d DisplayInfo) LogicalFrame() geometry.LogicalRect {
	size := d.Size.ToLogical(d.Scale)
	return geometry.LogicalRect{X: d.Origin.X, Y: d.Origin.Y, Width: size.Width, Height: size.Height}
}

// PhysicalToLogical maps a physical point on d to desktop logical pixels.
func (d DisplayInfo) PhysicalToLogical(p geometry.PhysicalPoint) geometry.LogicalPoint {
	off := geometry.PhysicalPoint{X: p.X - d.Position.X, Y: p.Y - d.Position.Y}.ToLogical(d.Scale)
	return geometry.LogicalPoint{X: d.Origin.X + off.X, Y: d.Origin.Y + off.Y}
}

// LogicalToPhysical maps a desktop logical point on d to physical pixels.
func (d DisplayInfo) LogicalToPhysical(p geometry.LogicalPoint) geometry.PhysicalPoint {
	off := geometry.LogicalPoint{X: p.X - d.Origin.X, Y: p.Y - d.Origin.Y}.ToPhysical(d.Scale)
	return geometry.PhysicalPoint{X: d.Position.X + off.X, Y: d.Position.Y + off.Y}
}

// DisplayAtLogical returns the display whose logical frame contains p.
func DisplayAtLogical(displays []DisplayInfo, p geometry.LogicalPoint) (DisplayInfo, bool) {
	for _, d := range displays {
		if d.LogicalFrame().Contains(p) {
			return d, true
		}
	}
	return DisplayInfo{}, false
}

// DisplayAtPhysical returns the display whose physical bounds contain p.
func DisplayAtPhysical(displays []DisplayInfo, p geometry.PhysicalPoint) (DisplayInfo, bool) {
	for _, d := range displays {
		if d.Bounds().Contains(p) {
			return d, true
		}
	}
	return DisplayInfo{}, false
}

// MainOrFirst returns the primary display, else the first. displays must
// not be empty.
func MainOrFirst(displays []DisplayInfo) DisplayInfo {
	for _, d := range displays {
		if d.Main {
			return d
		}
	}
	return displays[0]
}

// PermissionKind names an OS permission readsplit depends on.
type PermissionKind string

const (
	Accessibility   PermissionKind = "accessibility"
	ScreenRecording PermissionKind = "screen-recording"
)

// DisplayLister enumerates attached displays.
type DisplayLister interface {
	Displays(ctx context.Context) ([]DisplayInfo, error)
}

// HostWindow is the window readsplit arranges next to the reader. All
// geometry is physical.
type HostWindow interface {
	Frame(ctx context.Context) (geometry.PhysicalRect, error)
	SetSize(ctx context.Context, size geometry.PhysicalSize) error
	SetPosition(ctx context.Context, pos geometry.PhysicalPoint) error
	Focus(ctx context.Context) error
}

// Automation controls windows of other applications. Geometry is logical.
type Automation interface {
	// Locate finds the first window of app whose title contains title,
	// restores it if minimized, activates app and raises the window.
	Locate(ctx context.Context, app, title string) (Window, error)
	// FrontBounds reads the bounds of app's front window.
	FrontBounds(ctx context.Context, app string) (geometry.LogicalRect, error)
	SetFrontBounds(ctx context.Context, app string, bounds geometry.LogicalRect) error
	Activate(ctx context.Context, app string) error
	// DefaultApp returns the application the OS opens path with.
	DefaultApp(ctx context.Context, path string) (string, error)
}

// PermissionProber checks and requests OS permissions.
type PermissionProber interface {
	CheckPermission(ctx context.Context, kind PermissionKind) (bool, error)
	// RequestPermission may show a blocking system dialog.
	RequestPermission(ctx context.Context, kind PermissionKind) (bool, error)
}

// Screenshotter writes a window's contents to an image file.
type Screenshotter interface {
	CaptureWindow(ctx context.Context, id WindowID, path string) error
}

// CaptureTarget is a window addressed by the id CaptureWindow accepts.
type CaptureTarget struct {
	App   string
	Title string
	ID    WindowID
}

// CaptureLister lists app's windows by capture id. Backends whose located
// window ids differ from their capture ids must implement it.
type CaptureLister interface {
	CaptureTargets(ctx context.Context, app string) ([]CaptureTarget, error)
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	DisplayLister
	Automation
	PermissionProber
	Screenshotter
	// Host resolves the host window: the front window of app, or of the
	// frontmost application when app is empty.
	Host(ctx context.Context, app string) (HostWindow, error)
	Close() error
}

// Options configures NewDefaultBackend.
type Options struct {
	// OsascriptPath overrides the automation bridge binary (macOS).
	OsascriptPath string
	// Scale is reported for every display where the window system has no
	// per-monitor scale (X11).
	Scale  geometry.Scale
	Logger *slog.Logger
}

// DesktopEntryApp turns a desktop entry id into an application name.
func DesktopEntryApp(entry string) string {
	entry = strings.TrimSuffix(path.Base(strings.TrimSpace(entry)), ".desktop")
	if i := strings.LastIndex(entry, "."); i >= 0 {
		entry = entry[i+1:]
	}
	return entry
}
