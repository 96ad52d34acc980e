package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/readsplit/internal/config"
	"github.com/1broseidon/readsplit/internal/ipc"
	"github.com/1broseidon/readsplit/internal/platform"
)

// model is the root bubbletea model.
type model struct {
	configPath string
	daemon     Daemon

	// saved is what is on disk; current carries unsaved edits.
	saved   *config.Config
	current *config.Config

	status   *ipc.StatusData
	displays []platform.DisplayInfo

	form    *settingsForm
	save    saveOverlay
	message string

	width  int
	height int
}

// daemonMsg carries a refresh of daemon state.
type daemonMsg struct {
	status   *ipc.StatusData
	displays []platform.DisplayInfo
}

func newModel(configPath string, daemon Daemon) (model, error) {
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		return model{}, err
	}
	return model{
		configPath: configPath,
		daemon:     daemon,
		saved:      res.Config,
		current:    cloneConfig(res.Config),
	}, nil
}

func (m model) refresh() tea.Cmd {
	daemon := m.daemon
	if daemon == nil {
		return nil
	}
	return func() tea.Msg {
		var msg daemonMsg
		if st, err := daemon.GetStatus(); err == nil {
			msg.status = st
		}
		if ds, err := daemon.GetDisplays(); err == nil {
			msg.displays = ds.Displays
		}
		return msg
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.refresh()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case daemonMsg:
		m.status = msg.status
		if len(msg.displays) > 0 {
			m.displays = msg.displays
		}
		return m, nil
	}

	km, isKey := msg.(tea.KeyMsg)
	if isKey && km.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.save.active() {
		if isKey {
			m.save = m.save.update(km, m.current, m.configPath, m.daemon)
			if m.save.succeeded() {
				m.saved = cloneConfig(m.current)
			}
		}
		return m, nil
	}

	if m.form != nil {
		if isKey && km.String() == "esc" {
			m.form = nil
			return m, nil
		}
		cmd, done := m.form.update(msg)
		if !done {
			return m, cmd
		}
		next, err := m.form.apply(m.current)
		m.form = nil
		if err != nil {
			m.message = "Not applied: " + err.Error()
			return m, nil
		}
		m.current = next
		m.message = "Edited; ctrl+s to save"
		return m, nil
	}

	if !isKey {
		return m, nil
	}
	switch km.String() {
	case "q", "esc":
		return m, tea.Quit
	case "e":
		m.message = ""
		m.form = newSettingsForm(m.current, m.width)
		return m, m.form.form.Init()
	case "ctrl+s":
		m.save.show(m.saved, m.current)
		return m, nil
	case "r":
		m.message = "Refreshed"
		return m, m.refresh()
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	helpBar := renderHelpBar(m.message, m.width)
	contentH := max(m.height-lipgloss.Height(statusBar)-lipgloss.Height(helpBar), 1)

	var content string
	switch {
	case m.save.active():
		content = m.save.view(m.width, contentH)
	case m.form != nil:
		content = m.form.view(m.width, contentH)
	default:
		settingsW := min(m.width/2, 60)
		settings := lipgloss.NewStyle().Padding(1, 2).Render(viewSettings(m.current, settingsW))
		previewW := max(m.width-lipgloss.Width(settings)-2, 10)
		preview := lipgloss.NewStyle().PaddingTop(1).
			Render(viewPreview(m.current, previewDisplay(m.displays), previewW, min(contentH-2, 14)))
		content = lipgloss.NewStyle().Height(contentH).
			Render(lipgloss.JoinHorizontal(lipgloss.Top, settings, preview))
	}

	return lipgloss.JoinVertical(lipgloss.Left, statusBar, content, helpBar)
}

func renderStatusBar(st *ipc.StatusData, width int) string {
	var status string
	if st != nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts := []string{dot + " daemon connected"}
		if st.Anchor != nil {
			parts = append(parts, fmt.Sprintf("anchor %s @ %d,%d", st.Anchor.App, st.Anchor.Point.X, st.Anchor.Point.Y))
		} else {
			parts = append(parts, "no anchor")
		}
		status = strings.Join(parts, "  ")
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}

	return lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1).
		Render(status)
}

func renderHelpBar(message string, width int) string {
	help := "e: edit  ctrl-s: save  r: refresh  q: quit"
	if message != "" {
		help = message + "  |  " + help
	}
	return lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1).
		Render(help)
}
