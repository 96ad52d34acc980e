package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/readsplit/internal/config"
	"github.com/1broseidon/readsplit/internal/layout"
	"github.com/1broseidon/readsplit/internal/platform"
)

func layoutOptions(cfg *config.Config) layout.Options {
	return layout.Options{SplitPercent: cfg.SplitPercent, HostSide: layout.Side(cfg.HostSide)}
}

// summarizePlan describes the split of d in physical and logical pixels.
func summarizePlan(cfg *config.Config, d platform.DisplayInfo) string {
	plan, err := layout.Compute(d, layoutOptions(cfg))
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%s @%s • host %dx%d px • reader %dx%d pt",
		d.Name, d.Scale,
		plan.Host.Width, plan.Host.Height,
		plan.Target.Width, plan.Target.Height)
}

// renderSplitPreview draws the host and reader panes of d scaled into a
// width x height character canvas.
func renderSplitPreview(cfg *config.Config, d platform.DisplayInfo, width, height int) []string {
	if width < 8 || height < 3 {
		return emptyCanvas(width, height)
	}
	plan, err := layout.Compute(d, layoutOptions(cfg))
	if err != nil {
		return emptyCanvas(width, height)
	}

	hostCols := width * plan.Host.Width / d.Size.Width
	if hostCols < 3 {
		hostCols = 3
	}
	if hostCols > width-3 {
		hostCols = width - 3
	}

	left, right := "host", "reader"
	leftCols := hostCols
	if layout.Side(cfg.HostSide) == layout.SideRight {
		left, right = right, left
		leftCols = width - hostCols
	}

	lines := make([]string, 0, height)
	lines = append(lines, paneBorder('┌', '┐', leftCols)+paneBorder('┌', '┐', width-leftCols))
	for row := 1; row < height-1; row++ {
		l, r := "", ""
		if row == (height-1)/2 {
			l, r = left, right
		}
		lines = append(lines, paneRow(l, leftCols)+paneRow(r, width-leftCols))
	}
	lines = append(lines, paneBorder('└', '┘', leftCols)+paneBorder('└', '┘', width-leftCols))
	return lines
}

func paneBorder(lc, rc rune, cols int) string {
	return string(lc) + strings.Repeat("─", cols-2) + string(rc)
}

func paneRow(label string, cols int) string {
	inner := cols - 2
	if len(label) > inner {
		label = label[:inner]
	}
	pad := inner - len(label)
	return "│" + strings.Repeat(" ", pad/2) + label + strings.Repeat(" ", pad-pad/2) + "│"
}

func emptyCanvas(width, height int) []string {
	if width < 0 {
		width = 0
	}
	lines := make([]string, height)
	for i := range lines {
		lines[i] = strings.Repeat(" ", width)
	}
	return lines
}

func viewPreview(cfg *config.Config, d platform.DisplayInfo, width, height int) string {
	title := lipgloss.NewStyle().Bold(true).Render("Preview")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(summarizePlan(cfg, d))
	canvasH := height - 3
	if canvasH < 3 {
		canvasH = 3
	}
	canvas := lipgloss.NewStyle().Foreground(lipgloss.Color("62")).
		Render(strings.Join(renderSplitPreview(cfg, d, width, canvasH), "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, title, canvas, summary)
}
