package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/1broseidon/readsplit/internal/anchorstore"
	"github.com/1broseidon/readsplit/internal/geometry"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProcs struct {
	running bool
	err     error
}

func (f fakeProcs) Running(ctx context.Context, app string) (bool, error) {
	return f.running, f.err
}

func storedAnchor(t *testing.T) *anchorstore.Memory {
	t.Helper()
	m := anchorstore.NewMemory()
	if err := m.Save(anchorstore.Anchor{Point: geometry.LogicalPoint{X: 10, Y: 10}, App: "Preview", Title: "a.pdf"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	return m
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name        string
		procs       fakeProcs
		wantCleared bool
	}{
		{"reader running", fakeProcs{running: true}, false},
		{"reader quit", fakeProcs{running: false}, true},
		{"check failed", fakeProcs{err: errors.New("boom")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storedAnchor(t)
			r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, store, tt.procs)

			if got := r.ReconcileNow(context.Background()); got != tt.wantCleared {
				t.Fatalf("ReconcileNow() = %v, want %v", got, tt.wantCleared)
			}
			_, ok, _ := store.Load()
			if ok == tt.wantCleared {
				t.Fatalf("anchor present = %v after pass", ok)
			}
		})
	}
}

func TestReconcile_NoAnchor(t *testing.T) {
	r := NewReconciler(ReconcilerConfig{Logger: quietLogger()}, anchorstore.NewMemory(), fakeProcs{})
	if r.ReconcileNow(context.Background()) {
		t.Fatal("nothing to clear")
	}
}

func TestConfigWatcher_FiresOnceAfterBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("scroll_speed: 10\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var fired atomic.Int32
	w := NewConfigWatcher(path, 100*time.Millisecond, func() { fired.Add(1) }, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the watch register before writing.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("scroll_speed: 30\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	// An unrelated file in the same directory is ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(300 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("onChange fired %d times, want 1", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestConfigWatcher_MissingDirectory(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "nope", "config.yaml"), 0, func() {}, quietLogger())
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
