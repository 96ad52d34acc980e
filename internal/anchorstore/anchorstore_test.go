package anchorstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/readsplit/internal/geometry"
)

func exercise(t *testing.T, s Store) {
	t.Helper()

	if _, ok, err := s.Load(); err != nil || ok {
		t.Fatalf("empty Load() = ok %v, err %v", ok, err)
	}

	want := Anchor{
		Point: geometry.LogicalPoint{X: 960, Y: 360},
		App:   "Preview",
		Title: "paper.pdf",
		SetAt: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, ok, err := s.Load()
	if err != nil || !ok {
		t.Fatalf("Load() = ok %v, err %v", ok, err)
	}
	if got.Point != want.Point || got.App != want.App || got.Title != want.Title || !got.SetAt.Equal(want.SetAt) {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, ok, _ := s.Load(); ok {
		t.Fatal("anchor survived Clear()")
	}
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestFile(t *testing.T) {
	exercise(t, NewFile(filepath.Join(t.TempDir(), "state", "anchor.json")))
}

func TestFile_CorruptIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anchor.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewFile(path).Load(); err == nil {
		t.Fatal("Load() accepted a corrupt file")
	}
}
