// Package anchorstore keeps the scroll anchor between operations: in memory
// for the daemon, in a JSON file for one-shot CLI runs.
package anchorstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/1broseidon/readsplit/internal/geometry"
)

// Anchor is where scroll gestures go, plus the window it was computed for.
type Anchor struct {
	Point geometry.LogicalPoint `json:"point"`
	App   string                `json:"app"`
	Title string                `json:"title"`
	SetAt time.Time             `json:"set_at"`
}

// Store loads and saves the current anchor. Load reports ok=false when no
// anchor has been saved.
type Store interface {
	Load() (Anchor, bool, error)
	Save(Anchor) error
	Clear() error
}

// Memory is a Store for a long-lived process.
type Memory struct {
	mu     sync.Mutex
	anchor *Anchor
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load() (Anchor, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.anchor == nil {
		return Anchor{}, false, nil
	}
	return *m.anchor, true, nil
}

func (m *Memory) Save(a Anchor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anchor = &a
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anchor = nil
	return nil
}

// File is a Store backed by one JSON file.
type File struct {
	path string
}

func NewFile(path string) *File { return &File{path: path} }

func (f *File) Path() string { return f.path }

func (f *File) Load() (Anchor, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Anchor{}, false, nil
	}
	if err != nil {
		return Anchor{}, false, fmt.Errorf("read anchor: %w", err)
	}
	var a Anchor
	if err := json.Unmarshal(data, &a); err != nil {
		return Anchor{}, false, fmt.Errorf("%s: invalid anchor file: %w", f.path, err)
	}
	return a, true, nil
}

// Save writes through a temp file so a crash never leaves a torn file.
func (f *File) Save(a Anchor) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal anchor: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write anchor: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("write anchor: %w", err)
	}
	return nil
}

func (f *File) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
