package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/readsplit/internal/anchorstore"
	"github.com/1broseidon/readsplit/internal/config"
	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/helper"
	"github.com/1broseidon/readsplit/internal/layout"
	"github.com/1broseidon/readsplit/internal/permission"
	"github.com/1broseidon/readsplit/internal/platform"
	"github.com/1broseidon/readsplit/internal/scroll"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeHost struct {
	b     *fakeBackend
	frame geometry.PhysicalRect
}

func (h *fakeHost) Frame(ctx context.Context) (geometry.PhysicalRect, error) { return h.frame, nil }

func (h *fakeHost) SetSize(ctx context.Context, size geometry.PhysicalSize) error {
	h.b.record("host.size %dx%d", size.Width, size.Height)
	h.frame.Width, h.frame.Height = size.Width, size.Height
	return nil
}

func (h *fakeHost) SetPosition(ctx context.Context, pos geometry.PhysicalPoint) error {
	h.b.record("host.position %d,%d", pos.X, pos.Y)
	h.frame.X, h.frame.Y = pos.X, pos.Y
	return nil
}

func (h *fakeHost) Focus(ctx context.Context) error {
	h.b.record("host.focus")
	return nil
}

type fakeBackend struct {
	mu sync.Mutex

	displays   []platform.DisplayInfo
	host       *fakeHost
	windows    map[string]platform.Window // title -> window
	front      geometry.LogicalRect
	defaultApp string
	setErr     error
	granted    map[platform.PermissionKind]bool
	captured   []string
	events     []string
}

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{
		displays: []platform.DisplayInfo{{
			ID: 1, Name: "Built-in", Size: geometry.PhysicalSize{Width: 2560, Height: 1440}, Scale: 2, Main: true,
		}},
		windows: map[string]platform.Window{},
		granted: map[platform.PermissionKind]bool{
			platform.Accessibility:   true,
			platform.ScreenRecording: true,
		},
	}
	b.host = &fakeHost{b: b, frame: geometry.PhysicalRect{X: 100, Y: 100, Width: 800, Height: 600}}
	return b
}

func (b *fakeBackend) record(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, fmt.Sprintf(format, args...))
}

func (b *fakeBackend) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

func (b *fakeBackend) addWindow(title string, bounds geometry.LogicalRect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows[title] = platform.Window{ID: 42, App: "Preview", Title: title, Bounds: bounds}
	b.front = bounds
}

func (b *fakeBackend) Displays(ctx context.Context) ([]platform.DisplayInfo, error) {
	return b.displays, nil
}

func (b *fakeBackend) Locate(ctx context.Context, app, title string) (platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t, w := range b.windows {
		if strings.Contains(t, title) {
			return w, nil
		}
	}
	return platform.Window{}, platform.ErrNotFound
}

func (b *fakeBackend) FrontBounds(ctx context.Context, app string) (geometry.LogicalRect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.front, nil
}

func (b *fakeBackend) SetFrontBounds(ctx context.Context, app string, r geometry.LogicalRect) error {
	if b.setErr != nil {
		return b.setErr
	}
	b.record("reader.bounds %d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
	b.mu.Lock()
	b.front = r
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) Activate(ctx context.Context, app string) error {
	b.record("reader.activate %s", app)
	return nil
}

func (b *fakeBackend) DefaultApp(ctx context.Context, path string) (string, error) {
	if b.defaultApp == "" {
		return "", platform.ErrNotFound
	}
	return b.defaultApp, nil
}

func (b *fakeBackend) CheckPermission(ctx context.Context, kind platform.PermissionKind) (bool, error) {
	return b.granted[kind], nil
}

func (b *fakeBackend) RequestPermission(ctx context.Context, kind platform.PermissionKind) (bool, error) {
	return true, nil
}

func (b *fakeBackend) CaptureWindow(ctx context.Context, id platform.WindowID, path string) error {
	b.mu.Lock()
	b.captured = append(b.captured, path)
	b.mu.Unlock()
	return os.WriteFile(path, []byte("png"), 0644)
}

func (b *fakeBackend) Host(ctx context.Context, app string) (platform.HostWindow, error) {
	return b.host, nil
}

func (b *fakeBackend) Close() error { return nil }

type fakeHelper struct {
	mu      sync.Mutex
	scrolls []helper.ScrollRequest
	err     error
}

func (h *fakeHelper) Scroll(ctx context.Context, req helper.ScrollRequest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.scrolls = append(h.scrolls, req)
	return nil
}

func (h *fakeHelper) Windows(ctx context.Context) ([]helper.Window, error) {
	return nil, helper.ErrUnavailable
}

type fakeOpener struct {
	b        *fakeBackend
	opened   []string
	revealed []string
	settings []platform.PermissionKind
	// window added to the backend when a document is opened
	onOpen *geometry.LogicalRect
}

func (o *fakeOpener) Open(ctx context.Context, path, app string) error {
	o.opened = append(o.opened, path)
	if o.onOpen != nil {
		o.b.addWindow(filepath.Base(path), *o.onOpen)
	}
	return nil
}

func (o *fakeOpener) Reveal(ctx context.Context, path string) error {
	o.revealed = append(o.revealed, path)
	return nil
}

func (o *fakeOpener) OpenSettings(ctx context.Context, kind platform.PermissionKind) error {
	o.settings = append(o.settings, kind)
	return nil
}

type alwaysRunning struct{}

func (alwaysRunning) Running(ctx context.Context, app string) (bool, error) { return true, nil }

type harness struct {
	c       *Coordinator
	backend *fakeBackend
	helper  *fakeHelper
	opener  *fakeOpener
	anchors *anchorstore.Memory
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	b := newFakeBackend()
	h := &harness{
		backend: b,
		helper:  &fakeHelper{},
		opener:  &fakeOpener{b: b},
		anchors: anchorstore.NewMemory(),
	}
	opts := Options{
		ReaderApp:      "Preview",
		Layout:         layout.Options{SplitPercent: 50, HostSide: layout.SideLeft},
		ScrollSpeed:    22,
		RefocusHost:    true,
		LocateAttempts: 3,
		LocateInterval: time.Millisecond,
		CaptureDir:     t.TempDir(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	h.c = New(Deps{
		Backend: b,
		Procs:   alwaysRunning{},
		Helper:  h.helper,
		Opener:  h.opener,
		Anchors: h.anchors,
		Logger:  quietLogger(),
	}, opts)
	return h
}

func TestArrange_ExistingWindow(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.addWindow("paper.pdf", geometry.LogicalRect{X: 10, Y: 10, Width: 300, Height: 300})

	res, err := h.c.Arrange(context.Background(), "/docs/paper.pdf")
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.Opened {
		t.Fatal("document should not have been opened")
	}
	if !res.TargetMoved || res.Warning != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Plan.Host != (geometry.PhysicalRect{X: 0, Y: 0, Width: 1280, Height: 1440}) {
		t.Fatalf("host = %v", res.Plan.Host)
	}

	want := []string{
		"host.size 1280x1440",
		"host.position 0,0",
		"reader.bounds 640,0 640x720",
		"host.focus",
	}
	got := h.backend.Events()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("events = %v, want %v", got, want)
	}

	a, ok, _ := h.anchors.Load()
	if !ok || a.Point != (geometry.LogicalPoint{X: 960, Y: 360}) || a.App != "Preview" || a.Title != "paper.pdf" {
		t.Fatalf("anchor = %+v, %v", a, ok)
	}
}

func TestArrange_OpensDocumentWhenMissing(t *testing.T) {
	h := newHarness(t, nil)
	h.opener.onOpen = &geometry.LogicalRect{X: 0, Y: 0, Width: 500, Height: 500}

	res, err := h.c.Arrange(context.Background(), "/docs/new.pdf")
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if !res.Opened || len(h.opener.opened) != 1 || h.opener.opened[0] != "/docs/new.pdf" {
		t.Fatalf("expected one open, got %v (%+v)", h.opener.opened, res)
	}
}

func TestArrange_GivesUpWhenWindowNeverAppears(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.c.Arrange(context.Background(), "/docs/ghost.pdf")
	if !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(h.backend.Events()) != 0 {
		t.Fatalf("nothing should move: %v", h.backend.Events())
	}
}

func TestArrange_SkipsReaderAlreadyInPlace(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.addWindow("paper.pdf", geometry.LogicalRect{X: 640, Y: 0, Width: 640, Height: 720})

	res, err := h.c.Arrange(context.Background(), "paper.pdf")
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.TargetMoved {
		t.Fatal("reader was already in place")
	}
	for _, e := range h.backend.Events() {
		if strings.HasPrefix(e, "reader.bounds") {
			t.Fatalf("unexpected reader move: %v", h.backend.Events())
		}
	}
}

func TestArrange_ReaderMoveFailureIsWarning(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.addWindow("paper.pdf", geometry.LogicalRect{})
	h.backend.setErr = errors.New("bridge exploded")

	res, err := h.c.Arrange(context.Background(), "paper.pdf")
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if !strings.Contains(res.Warning, "bridge exploded") {
		t.Fatalf("warning = %q", res.Warning)
	}
	if _, ok, _ := h.anchors.Load(); !ok {
		t.Fatal("anchor should still be stored")
	}
}

func TestArrange_RightSide(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.Layout.HostSide = layout.SideRight })
	h.backend.addWindow("paper.pdf", geometry.LogicalRect{})

	if _, err := h.c.Arrange(context.Background(), "paper.pdf"); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	got := h.backend.Events()
	if got[1] != "host.position 1280,0" || got[2] != "reader.bounds 0,0 640x720" {
		t.Fatalf("events = %v", got)
	}
}

func TestArrange_AccessibilityDenied(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.granted[platform.Accessibility] = false

	_, err := h.c.Arrange(context.Background(), "paper.pdf")
	if !errors.Is(err, permission.ErrDenied) {
		t.Fatalf("err = %v, want ErrDenied", err)
	}
	if len(h.opener.settings) != 1 || h.opener.settings[0] != platform.Accessibility {
		t.Fatalf("settings opened = %v", h.opener.settings)
	}
}

func TestArrange_DefaultApp(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.ReaderApp = "" })
	h.backend.addWindow("paper.pdf", geometry.LogicalRect{})

	if _, err := h.c.Arrange(context.Background(), "paper.pdf"); err == nil {
		t.Fatal("expected error without reader app or default")
	}

	h.backend.defaultApp = "Skim"
	res, err := h.c.Arrange(context.Background(), "paper.pdf")
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if res.App != "Skim" {
		t.Fatalf("app = %q", res.App)
	}
}

func TestArrange_EmptyPath(t *testing.T) {
	h := newHarness(t, nil)
	if _, err := h.c.Arrange(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestScroll_UsesStoredAnchor(t *testing.T) {
	h := newHarness(t, nil)
	h.anchors.Save(anchorstore.Anchor{Point: geometry.LogicalPoint{X: 960, Y: 360}, App: "Preview"})

	if err := h.c.Scroll(context.Background(), ScrollRequest{Direction: scroll.Down}); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if len(h.helper.scrolls) != 1 {
		t.Fatalf("scrolls = %v", h.helper.scrolls)
	}
	got := h.helper.scrolls[0]
	if got.X != 960 || got.Y != 360 || got.DY != 22 {
		t.Fatalf("scroll = %+v", got)
	}
	events := h.backend.Events()
	if events[0] != "reader.activate Preview" || events[len(events)-1] != "host.focus" {
		t.Fatalf("events = %v", events)
	}
}

func TestScroll_Overrides(t *testing.T) {
	h := newHarness(t, nil)
	h.anchors.Save(anchorstore.Anchor{Point: geometry.LogicalPoint{X: 1, Y: 1}, App: "Preview"})
	rev := true

	if err := h.c.Scroll(context.Background(), ScrollRequest{Direction: scroll.Down, Speed: 5, Reverse: &rev}); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if dy := h.helper.scrolls[0].DY; dy != scroll.Delta(scroll.Down, 5, true) {
		t.Fatalf("dy = %d", dy)
	}
}

func TestScroll_LocatesReaderWithoutAnchor(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.addWindow("paper.pdf", geometry.LogicalRect{X: 100, Y: 0, Width: 200, Height: 400})

	if err := h.c.Scroll(context.Background(), ScrollRequest{Direction: scroll.Up}); err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if got := h.helper.scrolls[0]; got.X != 200 || got.Y != 200 {
		t.Fatalf("scroll = %+v", got)
	}
	if a, ok, _ := h.anchors.Load(); !ok || a.Point.X != 200 {
		t.Fatalf("anchor not stored: %+v", a)
	}
}

func TestScroll_NoAnchorNoApp(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.ReaderApp = "" })
	err := h.c.Scroll(context.Background(), ScrollRequest{Direction: scroll.Down})
	if !errors.Is(err, scroll.ErrNoAnchor) {
		t.Fatalf("err = %v, want ErrNoAnchor", err)
	}
}

func TestScroll_HelperDownStillRefocuses(t *testing.T) {
	h := newHarness(t, nil)
	h.anchors.Save(anchorstore.Anchor{Point: geometry.LogicalPoint{X: 5, Y: 5}, App: "Preview"})
	h.helper.err = helper.ErrUnavailable

	err := h.c.Scroll(context.Background(), ScrollRequest{Direction: scroll.Down})
	if !errors.Is(err, helper.ErrUnavailable) {
		t.Fatalf("err = %v", err)
	}
	events := h.backend.Events()
	if events[len(events)-1] != "host.focus" {
		t.Fatalf("host not refocused: %v", events)
	}
}

func TestCapture_WritesAndReveals(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.addWindow("paper.pdf", geometry.LogicalRect{Width: 10, Height: 10})

	path, err := h.c.Capture(context.Background(), "/docs/paper.pdf", true)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("capture file missing: %v", err)
	}
	if len(h.opener.revealed) != 1 || h.opener.revealed[0] != path {
		t.Fatalf("revealed = %v", h.opener.revealed)
	}
}

func TestCapture_ScreenRecordingDenied(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.granted[platform.ScreenRecording] = false
	h.backend.addWindow("paper.pdf", geometry.LogicalRect{})

	_, err := h.c.Capture(context.Background(), "paper.pdf", false)
	if !errors.Is(err, permission.ErrDenied) {
		t.Fatalf("err = %v", err)
	}
	if len(h.opener.settings) != 1 || h.opener.settings[0] != platform.ScreenRecording {
		t.Fatalf("settings = %v", h.opener.settings)
	}
}

func TestStatusAndUpdateOptions(t *testing.T) {
	h := newHarness(t, nil)
	st, err := h.c.Status()
	if err != nil || st.Anchor != nil || st.ReaderApp != "Preview" {
		t.Fatalf("status = %+v, %v", st, err)
	}

	h.backend.addWindow("paper.pdf", geometry.LogicalRect{})
	if _, err := h.c.Arrange(context.Background(), "paper.pdf"); err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	st, _ = h.c.Status()
	if st.Anchor == nil || st.LastArrange.IsZero() {
		t.Fatalf("status after arrange = %+v", st)
	}

	opts := h.c.Options()
	opts.ReaderApp = "Skim"
	h.c.UpdateOptions(opts)
	if h.c.Options().ReaderApp != "Skim" {
		t.Fatal("options not updated")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ReaderApp = "Skim"
	cfg.HostSide = "right"
	opts := OptionsFromConfig(cfg)
	if opts.ReaderApp != "Skim" || opts.Layout.HostSide != layout.SideRight || opts.ScrollSpeed != 22 || opts.CaptureDir == "" {
		t.Fatalf("opts = %+v", opts)
	}
}
