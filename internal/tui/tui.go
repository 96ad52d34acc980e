// Package tui is the interactive settings editor behind "readsplit settings".
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/readsplit/internal/config"
	"github.com/1broseidon/readsplit/internal/ipc"
	"github.com/1broseidon/readsplit/internal/platform"
)

// Daemon is the part of the IPC client the editor uses. A nil Daemon runs
// the editor offline.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	Reload() error
}

// TUI edits one configuration file.
type TUI struct {
	configPath string
	daemon     Daemon
}

// New creates an editor for configPath.
func New(configPath string, daemon Daemon) *TUI {
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	return &TUI{configPath: configPath, daemon: daemon}
}

// Run blocks until the user quits.
func (t *TUI) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("settings requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	m, err := newModel(t.configPath, t.daemon)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// previewDisplay is the display the split preview is drawn for.
func previewDisplay(displays []platform.DisplayInfo) platform.DisplayInfo {
	for _, d := range displays {
		if d.Main {
			return d
		}
	}
	if len(displays) > 0 {
		return displays[0]
	}
	d := platform.DisplayInfo{Name: "1920x1080 (example)", Scale: 1}
	d.Size.Width, d.Size.Height = 1920, 1080
	return d
}
