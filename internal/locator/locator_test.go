package locator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/osascript"
	"github.com/1broseidon/readsplit/internal/platform"
)

type fakeProcs struct {
	running bool
	err     error
}

func (f fakeProcs) Running(context.Context, string) (bool, error) { return f.running, f.err }

type fixedScale geometry.Scale

func (s fixedScale) ScaleAt(context.Context, geometry.LogicalPoint) (geometry.Scale, error) {
	return geometry.Scale(s), nil
}

// fakeAutomation returns results[i] on the i-th Locate call.
type fakeAutomation struct {
	platform.Automation
	results []locateResult
	calls   int
}

type locateResult struct {
	w   platform.Window
	err error
}

func (f *fakeAutomation) Locate(_ context.Context, app, title string) (platform.Window, error) {
	r := f.results[min(f.calls, len(f.results)-1)]
	f.calls++
	return r.w, r.err
}

var notFound = locateResult{err: fmt.Errorf("%w: no matching window", platform.ErrNotFound)}

func found(r geometry.LogicalRect) locateResult {
	return locateResult{w: platform.Window{App: "Preview", Title: "paper.pdf", Bounds: r}}
}

func newTestLocator(p ProcessChecker, a platform.Automation, opts ...Option) *Locator {
	l := New(p, a, fixedScale(2), nil, opts...)
	l.sleep = func(context.Context, time.Duration) error { return nil }
	return l
}

func TestLocate_ReturnsPhysicalBounds(t *testing.T) {
	a := &fakeAutomation{results: []locateResult{found(geometry.LogicalRect{X: 640, Y: 0, Width: 640, Height: 720})}}
	loc, err := newTestLocator(fakeProcs{running: true}, a).Locate(context.Background(), "Preview", "paper.pdf")
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
	want := geometry.PhysicalRect{X: 1280, Y: 0, Width: 1280, Height: 1440}
	if loc.Bounds != want {
		t.Fatalf("Bounds = %+v, want %+v", loc.Bounds, want)
	}
	if loc.Scale != 2 {
		t.Fatalf("Scale = %v, want 2", loc.Scale)
	}
}

func TestLocate_NotRunningIsNotFound(t *testing.T) {
	a := &fakeAutomation{results: []locateResult{found(geometry.LogicalRect{})}}
	_, err := newTestLocator(fakeProcs{running: false}, a).Locate(context.Background(), "Preview", "paper.pdf")
	if !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("Locate() error = %v, want ErrNotFound", err)
	}
	if a.calls != 0 {
		t.Fatalf("bridge called %d times for a stopped app", a.calls)
	}
}

func TestLocate_NoMatchingTitleIsNotFound(t *testing.T) {
	a := &fakeAutomation{results: []locateResult{notFound}}
	_, err := newTestLocator(fakeProcs{running: true}, a).Locate(context.Background(), "Preview", "paper.pdf")
	if !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("Locate() error = %v, want ErrNotFound", err)
	}
	if errors.Is(err, osascript.ErrBridge) {
		t.Fatal("NotFound must not be reported as a bridge failure")
	}
}

func TestLocate_ProcessCheckErrorFallsThroughToBridge(t *testing.T) {
	a := &fakeAutomation{results: []locateResult{found(geometry.LogicalRect{Width: 10, Height: 10})}}
	_, err := newTestLocator(fakeProcs{err: errors.New("proc table unreadable")}, a).Locate(context.Background(), "Preview", "x")
	if err != nil {
		t.Fatalf("Locate() error: %v", err)
	}
}

func TestWaitFor_RetriesUntilWindowAppears(t *testing.T) {
	a := &fakeAutomation{results: []locateResult{notFound, notFound, found(geometry.LogicalRect{Width: 100, Height: 100})}}
	loc, err := newTestLocator(fakeProcs{running: true}, a).WaitFor(context.Background(), "Preview", "paper.pdf")
	if err != nil {
		t.Fatalf("WaitFor() error: %v", err)
	}
	if a.calls != 3 {
		t.Fatalf("Locate called %d times, want 3", a.calls)
	}
	if loc.Window.Title != "paper.pdf" {
		t.Fatalf("WaitFor() = %+v", loc)
	}
}

func TestWaitFor_GivesUpAfterAttempts(t *testing.T) {
	a := &fakeAutomation{results: []locateResult{notFound}}
	_, err := newTestLocator(fakeProcs{running: true}, a, WithRetry(4, time.Millisecond)).WaitFor(context.Background(), "Preview", "paper.pdf")
	if !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("WaitFor() error = %v, want ErrNotFound", err)
	}
	if a.calls != 4 {
		t.Fatalf("Locate called %d times, want 4", a.calls)
	}
}

func TestWaitFor_StopsOnBridgeError(t *testing.T) {
	a := &fakeAutomation{results: []locateResult{{err: &osascript.Error{ExitCode: 1, Stderr: "boom"}}}}
	_, err := newTestLocator(fakeProcs{running: true}, a).WaitFor(context.Background(), "Preview", "paper.pdf")
	if !errors.Is(err, osascript.ErrBridge) {
		t.Fatalf("WaitFor() error = %v, want ErrBridge", err)
	}
	if a.calls != 1 {
		t.Fatalf("Locate called %d times, want 1", a.calls)
	}
}

func TestWaitFor_HonoursCancellation(t *testing.T) {
	a := &fakeAutomation{results: []locateResult{notFound}}
	l := New(fakeProcs{running: true}, a, fixedScale(1), nil, WithRetry(3, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.WaitFor(ctx, "Preview", "paper.pdf")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("WaitFor() error = %v, want context.Canceled", err)
	}
}
