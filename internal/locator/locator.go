// Package locator finds, restores and raises another application's window.
package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/platform"
)

// ProcessChecker reports whether an application process is running.
type ProcessChecker interface {
	Running(ctx context.Context, app string) (bool, error)
}

// ScaleLookup returns the scale of the display under a logical point.
type ScaleLookup interface {
	ScaleAt(ctx context.Context, p geometry.LogicalPoint) (geometry.Scale, error)
}

// Located is a window found by Locate. Bounds are physical; Window.Bounds
// keeps the logical rectangle the bridge reported.
type Located struct {
	Window platform.Window       `json:"window"`
	Bounds geometry.PhysicalRect `json:"bounds"`
	Scale  geometry.Scale        `json:"scale"`
}

// Locator implements window lookup with an optional bounded wait.
type Locator struct {
	procs      ProcessChecker
	automation platform.Automation
	scales     ScaleLookup
	logger     *slog.Logger

	attempts int
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Locator.
type Option func(*Locator)

// WithRetry sets the attempts and spacing used by WaitFor.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(l *Locator) {
		if attempts > 0 {
			l.attempts = attempts
		}
		if interval >= 0 {
			l.interval = interval
		}
	}
}

func New(procs ProcessChecker, automation platform.Automation, scales ScaleLookup, logger *slog.Logger, opts ...Option) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Locator{
		procs:      procs,
		automation: automation,
		scales:     scales,
		logger:     logger,
		attempts:   3,
		interval:   time.Second,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate finds the first window of app whose title contains title. A
// missing process or window yields an error wrapping platform.ErrNotFound;
// any other error is a bridge or display failure.
func (l *Locator) Locate(ctx context.Context, app, title string) (Located, error) {
	if app == "" {
		return Located{}, errors.New("locate: application name is empty")
	}

	if l.procs != nil {
		running, err := l.procs.Running(ctx, app)
		switch {
		case err != nil:
			// The bridge reports not-running on its own; keep going.
			l.logger.Warn("process check failed", "app", app, "error", err)
		case !running:
			return Located{}, fmt.Errorf("%w: %s is not running", platform.ErrNotFound, app)
		}
	}

	w, err := l.automation.Locate(ctx, app, title)
	if err != nil {
		return Located{}, err
	}

	scale, err := l.scales.ScaleAt(ctx, w.Bounds.Center())
	if err != nil {
		return Located{}, fmt.Errorf("resolve scale for %s: %w", app, err)
	}

	l.logger.Debug("window located", "app", app, "title", w.Title, "bounds", w.Bounds, "restored", w.Minimized)
	return Located{Window: w, Bounds: w.Bounds.ToPhysical(scale), Scale: scale}, nil
}

// WaitFor polls Locate while it reports NotFound, for use right after asking
// the OS to open a document. Other errors end the wait immediately.
func (l *Locator) WaitFor(ctx context.Context, app, title string) (Located, error) {
	var lastErr error
	for attempt := 1; attempt <= l.attempts; attempt++ {
		loc, err := l.Locate(ctx, app, title)
		if err == nil {
			return loc, nil
		}
		if !errors.Is(err, platform.ErrNotFound) {
			return Located{}, err
		}
		lastErr = err
		l.logger.Debug("window not ready", "app", app, "title", title, "attempt", attempt, "of", l.attempts)

		if attempt < l.attempts {
			if err := l.sleep(ctx, l.interval); err != nil {
				return Located{}, err
			}
		}
	}
	return Located{}, fmt.Errorf("gave up after %d attempts: %w", l.attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
