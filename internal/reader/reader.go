// Package reader coordinates the host window and an external document
// reader: it arranges them side by side, forwards scroll gestures to the
// reader, and captures it.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/readsplit/internal/anchorstore"
	"github.com/1broseidon/readsplit/internal/capture"
	"github.com/1broseidon/readsplit/internal/config"
	"github.com/1broseidon/readsplit/internal/display"
	"github.com/1broseidon/readsplit/internal/helper"
	"github.com/1broseidon/readsplit/internal/layout"
	"github.com/1broseidon/readsplit/internal/locator"
	"github.com/1broseidon/readsplit/internal/mutator"
	"github.com/1broseidon/readsplit/internal/permission"
	"github.com/1broseidon/readsplit/internal/platform"
	"github.com/1broseidon/readsplit/internal/scroll"
)

// Helper is the local input-injection service.
type Helper interface {
	Scroll(ctx context.Context, req helper.ScrollRequest) error
	Windows(ctx context.Context) ([]helper.Window, error)
}

// Opener hands documents and URLs to the desktop.
type Opener interface {
	Open(ctx context.Context, path, app string) error
	Reveal(ctx context.Context, path string) error
	OpenSettings(ctx context.Context, kind platform.PermissionKind) error
}

// Deps are the collaborators a Coordinator drives.
type Deps struct {
	Backend platform.Backend
	Procs   locator.ProcessChecker
	Helper  Helper
	Opener  Opener
	Anchors anchorstore.Store
	Logger  *slog.Logger
}

// Options are the coordinator's tunables, normally taken from config.
type Options struct {
	ReaderApp      string
	HostApp        string
	Layout         layout.Options
	ScrollSpeed    int
	ReverseScroll  bool
	RefocusHost    bool
	LocateAttempts int
	LocateInterval time.Duration
	CaptureDir     string
}

// OptionsFromConfig maps configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ReaderApp:      cfg.ReaderApp,
		HostApp:        cfg.HostApp,
		Layout:         layout.Options{SplitPercent: cfg.SplitPercent, HostSide: layout.Side(cfg.HostSide)},
		ScrollSpeed:    cfg.ScrollSpeed,
		ReverseScroll:  cfg.ReverseScroll,
		RefocusHost:    cfg.RefocusHost,
		LocateAttempts: cfg.LocateAttempts,
		LocateInterval: cfg.LocateInterval,
		CaptureDir:     cfg.GetCaptureDir(),
	}
}

// Coordinator runs one operation at a time. Operations are serialized so
// two arranges never race on the reader window.
type Coordinator struct {
	mu sync.Mutex

	deps          Deps
	opts          Options
	logger        *slog.Logger
	accessibility *permission.Gate
	displays      *display.Resolver
	locator       *locator.Locator
	forwarder     *scroll.Forwarder
	capturer      *capture.Capturer

	lastArrange time.Time
}

func New(deps Deps, opts Options) *Coordinator {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Anchors == nil {
		deps.Anchors = anchorstore.NewMemory()
	}
	c := &Coordinator{
		deps:          deps,
		logger:        deps.Logger,
		accessibility: permission.NewGate(platform.Accessibility, deps.Backend, deps.Logger),
		displays:      display.NewResolver(deps.Backend, deps.Logger),
		forwarder:     scroll.NewForwarder(deps.Helper, deps.Logger),
	}
	c.applyOptions(opts)
	return c
}

func (c *Coordinator) applyOptions(opts Options) {
	c.opts = opts
	c.locator = locator.New(c.deps.Procs, c.deps.Backend, c.displays, c.logger,
		locator.WithRetry(opts.LocateAttempts, opts.LocateInterval))
	screen := permission.NewGate(platform.ScreenRecording, c.deps.Backend, c.logger)
	c.capturer = capture.New(screen, c.locator, c.deps.Helper, c.deps.Backend, opts.CaptureDir, c.logger)
}

// UpdateOptions swaps the options, for config reloads. It waits for a
// running operation to finish.
func (c *Coordinator) UpdateOptions(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyOptions(opts)
}

// Options returns the current options.
func (c *Coordinator) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// ArrangeResult describes one arrange.
type ArrangeResult struct {
	App     string               `json:"app"`
	Title   string               `json:"title"`
	Display platform.DisplayInfo `json:"display"`
	Plan    layout.Plan          `json:"plan"`
	Reader  locator.Located      `json:"reader"`
	// Opened is set when the document had to be opened first.
	Opened bool `json:"opened"`
	// TargetMoved is false when the reader was already in place.
	TargetMoved bool `json:"target_moved"`
	// Warning carries a reader move failure. The host window is arranged
	// regardless.
	Warning string `json:"warning,omitempty"`
}

// Arrange puts the host window on one side of its display and the reader
// window showing documentPath on the other, opening the document when no
// window shows it yet.
func (c *Coordinator) Arrange(ctx context.Context, documentPath string) (ArrangeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	log := c.logger.With("op", "arrange", "id", uuid.NewString()[:8])

	doc, err := absDocument(documentPath)
	if err != nil {
		return ArrangeResult{}, err
	}

	if err := c.accessibility.Require(ctx); err != nil {
		c.remediate(ctx, log, platform.Accessibility)
		return ArrangeResult{}, err
	}

	// Resolve the host before the reader is activated and takes focus.
	host, err := c.deps.Backend.Host(ctx, c.opts.HostApp)
	if err != nil {
		return ArrangeResult{}, fmt.Errorf("resolve host window: %w", err)
	}

	app, err := c.readerApp(ctx, doc)
	if err != nil {
		return ArrangeResult{}, err
	}
	title := filepath.Base(doc)
	res := ArrangeResult{App: app, Title: title}

	located, err := c.locator.Locate(ctx, app, title)
	if errors.Is(err, platform.ErrNotFound) {
		log.Info("reader window not found, opening document", "app", app, "document", doc)
		if err := c.deps.Opener.Open(ctx, doc, c.opts.ReaderApp); err != nil {
			return res, fmt.Errorf("open %s: %w", doc, err)
		}
		res.Opened = true
		located, err = c.locator.WaitFor(ctx, app, title)
	}
	if err != nil {
		return res, err
	}
	res.Reader = located

	disp, err := c.displays.Current(ctx, host)
	if err != nil {
		return res, err
	}
	res.Display = disp

	plan, err := layout.Compute(disp, c.opts.Layout)
	if err != nil {
		return res, err
	}
	res.Plan = plan

	m := mutator.New(host, c.deps.Backend, log)
	if err := m.ApplyHost(ctx, plan.Host); err != nil {
		return res, err
	}
	moved, err := m.ApplyTarget(ctx, app, plan.TargetOnDesktop())
	if err != nil {
		res.Warning = err.Error()
	}
	res.TargetMoved = moved

	if err := c.deps.Anchors.Save(anchorstore.Anchor{
		Point: plan.Anchor,
		App:   app,
		Title: title,
		SetAt: time.Now(),
	}); err != nil {
		log.Warn("failed to store scroll anchor", "error", err)
	}
	c.lastArrange = time.Now()

	if c.opts.RefocusHost {
		c.refocus(ctx, log, host)
	}

	log.Info("arranged",
		"app", app,
		"display", disp.Name,
		"scale", disp.Scale,
		"host", plan.Host,
		"target", plan.Target,
		"moved", moved,
	)
	return res, nil
}

// ScrollRequest is one scroll gesture. Zero Speed and nil Reverse use the
// configured values.
type ScrollRequest struct {
	Direction scroll.Direction
	Speed     int
	Reverse   *bool
}

// Scroll activates the reader and sends one gesture at the stored anchor.
// Without an anchor the configured reader's front window is located and its
// center used.
func (c *Coordinator) Scroll(ctx context.Context, req ScrollRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	log := c.logger.With("op", "scroll", "id", uuid.NewString()[:8])

	speed := req.Speed
	if speed <= 0 {
		speed = c.opts.ScrollSpeed
	}
	reversed := c.opts.ReverseScroll
	if req.Reverse != nil {
		reversed = *req.Reverse
	}

	var host platform.HostWindow
	if c.opts.RefocusHost {
		h, err := c.deps.Backend.Host(ctx, c.opts.HostApp)
		if err != nil {
			log.Debug("no host window to refocus", "error", err)
		}
		host = h
	}

	anchor, ok, err := c.deps.Anchors.Load()
	if err != nil {
		log.Warn("stored anchor unreadable", "error", err)
		ok = false
	}

	if !ok || anchor.Point.IsZero() {
		app := c.opts.ReaderApp
		if ok && anchor.App != "" {
			app = anchor.App
		}
		if app == "" {
			return scroll.ErrNoAnchor
		}
		located, err := c.locator.Locate(ctx, app, anchor.Title)
		if err != nil {
			return fmt.Errorf("locate reader for scrolling: %w", err)
		}
		anchor = anchorstore.Anchor{
			Point: located.Window.Bounds.Center(),
			App:   app,
			Title: anchor.Title,
			SetAt: time.Now(),
		}
		if err := c.deps.Anchors.Save(anchor); err != nil {
			log.Warn("failed to store scroll anchor", "error", err)
		}
	} else if err := c.deps.Backend.Activate(ctx, anchor.App); err != nil {
		log.Warn("could not activate reader", "app", anchor.App, "error", err)
	}

	err = c.forwarder.Scroll(ctx, anchor.Point, req.Direction, speed, reversed)
	if host != nil {
		c.refocus(ctx, log, host)
	}
	return err
}

// Capture screenshots the reader window showing documentPath. With reveal
// the image is shown in the file manager afterwards.
func (c *Coordinator) Capture(ctx context.Context, documentPath string, reveal bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	log := c.logger.With("op", "capture", "id", uuid.NewString()[:8])

	doc, err := absDocument(documentPath)
	if err != nil {
		return "", err
	}
	app, err := c.readerApp(ctx, doc)
	if err != nil {
		return "", err
	}

	var host platform.HostWindow
	if c.opts.RefocusHost {
		if h, err := c.deps.Backend.Host(ctx, c.opts.HostApp); err == nil {
			host = h
		}
	}

	path, err := c.capturer.Capture(ctx, app, doc)
	if host != nil {
		c.refocus(ctx, log, host)
	}
	if err != nil {
		if errors.Is(err, permission.ErrDenied) {
			c.remediate(ctx, log, platform.ScreenRecording)
		}
		return "", err
	}

	if reveal {
		if err := c.deps.Opener.Reveal(ctx, path); err != nil {
			log.Warn("reveal failed", "path", path, "error", err)
		}
	}
	return path, nil
}

// Status is a snapshot of coordinator state.
type Status struct {
	ReaderApp   string              `json:"reader_app,omitempty"`
	HostApp     string              `json:"host_app,omitempty"`
	Anchor      *anchorstore.Anchor `json:"anchor,omitempty"`
	LastArrange time.Time           `json:"last_arrange,omitempty"`
}

func (c *Coordinator) Status() (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		ReaderApp:   c.opts.ReaderApp,
		HostApp:     c.opts.HostApp,
		LastArrange: c.lastArrange,
	}
	anchor, ok, err := c.deps.Anchors.Load()
	if err != nil {
		return st, err
	}
	if ok {
		st.Anchor = &anchor
	}
	return st, nil
}

// Displays lists attached displays.
func (c *Coordinator) Displays(ctx context.Context) ([]platform.DisplayInfo, error) {
	return c.displays.All(ctx)
}

func (c *Coordinator) readerApp(ctx context.Context, doc string) (string, error) {
	if c.opts.ReaderApp != "" {
		return c.opts.ReaderApp, nil
	}
	app, err := c.deps.Backend.DefaultApp(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("no reader_app configured and no default application found: %w", err)
	}
	return app, nil
}

func (c *Coordinator) refocus(ctx context.Context, log *slog.Logger, host platform.HostWindow) {
	if err := host.Focus(ctx); err != nil {
		log.Warn("could not refocus host window", "error", err)
	}
}

func (c *Coordinator) remediate(ctx context.Context, log *slog.Logger, kind platform.PermissionKind) {
	log.Warn("permission missing, opening settings", "permission", kind)
	if err := c.deps.Opener.OpenSettings(ctx, kind); err != nil && !errors.Is(err, platform.ErrUnsupported) {
		log.Warn("could not open settings", "permission", kind, "error", err)
	}
}

func absDocument(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("document path is empty")
	}
	return filepath.Abs(p)
}
