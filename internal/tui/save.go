package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/readsplit/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // diff shown, awaiting confirm
	saveResult
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

// saveOverlay previews the pending YAML diff and writes it on confirm.
type saveOverlay struct {
	phase    savePhase
	lines    []diffLine
	offset   int
	err      error
	reloaded bool
}

func (s saveOverlay) active() bool { return s.phase != saveHidden }

func (s saveOverlay) succeeded() bool { return s.phase == saveResult && s.err == nil }

func (s *saveOverlay) show(saved, current *config.Config) {
	s.err = nil
	s.reloaded = false
	s.offset = 0
	s.lines = diffConfigs(saved, current)
	if len(s.lines) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.phase = savePreview
}

// update handles a key while the overlay is visible. Confirming writes cfg
// to path and asks daemon, when present, to reload.
func (s saveOverlay) update(msg tea.KeyMsg, cfg *config.Config, path string, daemon Daemon) saveOverlay {
	switch s.phase {
	case savePreview:
		switch msg.String() {
		case "esc", "n":
			s.phase = saveHidden
		case "enter", "y":
			s.err = cfg.Save(path)
			if s.err == nil && daemon != nil {
				s.reloaded = daemon.Reload() == nil
			}
			s.phase = saveResult
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.offset < len(s.lines)-1 {
				s.offset++
			}
		}
	case saveResult:
		s.phase = saveHidden
	}
	return s
}

func (s saveOverlay) view(width, height int) string {
	boxW := min(max(width-8, 30), 80)
	var content string

	switch s.phase {
	case savePreview:
		addStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		rmStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		ctxStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

		visible := max(height-10, 3)
		end := min(s.offset+visible, len(s.lines))
		rows := make([]string, 0, visible)
		for _, dl := range s.lines[s.offset:end] {
			switch dl.kind {
			case diffAdded:
				rows = append(rows, addStyle.Render("+ "+dl.text))
			case diffRemoved:
				rows = append(rows, rmStyle.Render("- "+dl.text))
			default:
				rows = append(rows, ctxStyle.Render("  "+dl.text))
			}
		}
		content = lipgloss.NewStyle().Bold(true).Render("Save config?") + "\n\n" +
			strings.Join(rows, "\n") + "\n\n" +
			lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("enter: save  esc: cancel  j/k: scroll")

	case saveResult:
		if s.err != nil {
			content = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error: " + s.err.Error())
		} else {
			content = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Render("Config saved")
			if s.reloaded {
				content += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("Daemon reloaded")
			}
		}
		content += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("press any key to dismiss")
	default:
		return ""
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// diffConfigs returns the changed YAML lines between two configs with two
// lines of context, or nil when they marshal identically.
func diffConfigs(a, b *config.Config) []diffLine {
	if a == nil || b == nil {
		return nil
	}
	ab, err := yaml.Marshal(a)
	if err != nil {
		return nil
	}
	bb, err := yaml.Marshal(b)
	if err != nil {
		return nil
	}
	as, bs := strings.TrimSpace(string(ab)), strings.TrimSpace(string(bb))
	if as == bs {
		return nil
	}
	return withContext(lcsDiff(strings.Split(as, "\n"), strings.Split(bs, "\n")), 2)
}

// lcsDiff is a longest-common-subsequence line diff.
func lcsDiff(a, b []string) []diffLine {
	m, n := len(a), len(b)
	tbl := make([][]int, m+1)
	for i := range tbl {
		tbl[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				tbl[i][j] = tbl[i+1][j+1] + 1
			case tbl[i+1][j] >= tbl[i][j+1]:
				tbl[i][j] = tbl[i+1][j]
			default:
				tbl[i][j] = tbl[i][j+1]
			}
		}
	}

	var out []diffLine
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j]:
			out = append(out, diffLine{diffContext, a[i]})
			i++
			j++
		case tbl[i+1][j] >= tbl[i][j+1]:
			out = append(out, diffLine{diffRemoved, a[i]})
			i++
		default:
			out = append(out, diffLine{diffAdded, b[j]})
			j++
		}
	}
	for ; i < m; i++ {
		out = append(out, diffLine{diffRemoved, a[i]})
	}
	for ; j < n; j++ {
		out = append(out, diffLine{diffAdded, b[j]})
	}
	return out
}

// withContext keeps changed lines plus ctx lines around each, marking
// skipped runs with "...".
func withContext(lines []diffLine, ctx int) []diffLine {
	keep := make([]bool, len(lines))
	changed := false
	for i, l := range lines {
		if l.kind == diffContext {
			continue
		}
		changed = true
		for j := max(i-ctx, 0); j <= min(i+ctx, len(lines)-1); j++ {
			keep[j] = true
		}
	}
	if !changed {
		return nil
	}

	var out []diffLine
	skipped := false
	for i, l := range lines {
		if !keep[i] {
			skipped = true
			continue
		}
		if skipped {
			out = append(out, diffLine{diffContext, "..."})
		}
		skipped = false
		out = append(out, l)
	}
	return out
}

func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	clone := *cfg
	return &clone
}
