package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/readsplit/internal/config"
)

// settingsForm holds the string-bound values huh edits; they are converted
// and validated on submit.
type settingsForm struct {
	form *huh.Form

	readerApp     string
	hostApp       string
	splitPercent  string
	hostSide      string
	scrollSpeed   string
	reverseScroll bool
	refocusHost   bool
	upHotkey      string
	downHotkey    string
	captureDir    string
	logLevel      string
}

func newSettingsForm(cfg *config.Config, width int) *settingsForm {
	f := &settingsForm{
		readerApp:     cfg.ReaderApp,
		hostApp:       cfg.HostApp,
		splitPercent:  strconv.Itoa(cfg.SplitPercent),
		hostSide:      cfg.HostSide,
		scrollSpeed:   strconv.Itoa(cfg.ScrollSpeed),
		reverseScroll: cfg.ReverseScroll,
		refocusHost:   cfg.RefocusHost,
		upHotkey:      cfg.ScrollUpHotkey,
		downHotkey:    cfg.ScrollDownHotkey,
		captureDir:    cfg.CaptureDir,
		logLevel:      strings.ToLower(cfg.LogLevel),
	}

	w := width - 4
	if w < 40 {
		w = 40
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("reader_app").
				Title("Reader App").
				Description("Application that shows documents (empty: system default)").
				Value(&f.readerApp),
			huh.NewInput().
				Key("host_app").
				Title("Host App").
				Description("Window kept beside the reader (empty: frontmost)").
				Value(&f.hostApp),
			huh.NewInput().
				Key("split_percent").
				Title("Split Percent").
				Description("Host share of the display width, 10-90").
				Validate(intInRange(10, 90)).
				Value(&f.splitPercent),
			huh.NewSelect[string]().
				Key("host_side").
				Title("Host Side").
				Options(huh.NewOptions("left", "right")...).
				Value(&f.hostSide),
			huh.NewConfirm().
				Key("refocus_host").
				Title("Refocus Host").
				Description("Give focus back to the host after arrange and scroll").
				Value(&f.refocusHost),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("scroll_speed").
				Title("Scroll Speed").
				Description("Wheel delta per gesture, 1-500").
				Validate(intInRange(1, 500)).
				Value(&f.scrollSpeed),
			huh.NewConfirm().
				Key("reverse_scroll").
				Title("Reverse Scroll").
				Value(&f.reverseScroll),
			huh.NewInput().
				Key("scroll_up_hotkey").
				Title("Scroll Up Hotkey").
				Description("X11 key sequence, e.g. Mod4-Shift-k (empty: none)").
				Value(&f.upHotkey),
			huh.NewInput().
				Key("scroll_down_hotkey").
				Title("Scroll Down Hotkey").
				Value(&f.downHotkey),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("capture_dir").
				Title("Capture Directory").
				Description("Where screenshots go (empty: cache dir)").
				Value(&f.captureDir),
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&f.logLevel),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	return f
}

func intInRange(lo, hi int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("not a number")
		}
		if v < lo || v > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

// apply returns a copy of cfg with the form values, or an error when the
// result does not validate. cfg itself is never modified.
func (f *settingsForm) apply(cfg *config.Config) (*config.Config, error) {
	next := cloneConfig(cfg)
	if next == nil {
		return nil, fmt.Errorf("failed to copy config")
	}

	next.ReaderApp = strings.TrimSpace(f.readerApp)
	next.HostApp = strings.TrimSpace(f.hostApp)
	next.HostSide = f.hostSide
	next.ReverseScroll = f.reverseScroll
	next.RefocusHost = f.refocusHost
	next.ScrollUpHotkey = strings.TrimSpace(f.upHotkey)
	next.ScrollDownHotkey = strings.TrimSpace(f.downHotkey)
	next.CaptureDir = strings.TrimSpace(f.captureDir)
	next.LogLevel = f.logLevel

	v, err := strconv.Atoi(strings.TrimSpace(f.splitPercent))
	if err != nil {
		return nil, fmt.Errorf("split_percent must be a number, got %q", f.splitPercent)
	}
	next.SplitPercent = v
	if v, err = strconv.Atoi(strings.TrimSpace(f.scrollSpeed)); err != nil {
		return nil, fmt.Errorf("scroll_speed must be a number, got %q", f.scrollSpeed)
	}
	next.ScrollSpeed = v

	if err := next.Validate(); err != nil {
		return nil, err
	}
	return next, nil
}

// update forwards msg to the form and reports whether it was submitted.
func (f *settingsForm) update(msg tea.Msg) (tea.Cmd, bool) {
	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}
	return cmd, f.form.State == huh.StateCompleted
}

func (f *settingsForm) view(width, height int) string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2).
		Render(header + "\n\n" + f.form.View())
}

// viewSettings renders the read-only summary of cfg.
func viewSettings(cfg *config.Config, width int) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(20).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	lines := []string{
		row("Reader App", orDefault(cfg.ReaderApp, "(system default)")),
		row("Host App", orDefault(cfg.HostApp, "(frontmost)")),
		row("Split", fmt.Sprintf("%d%% host %s", cfg.SplitPercent, cfg.HostSide)),
		row("Refocus Host", strconv.FormatBool(cfg.RefocusHost)),
		"",
		row("Scroll Speed", strconv.Itoa(cfg.ScrollSpeed)),
		row("Reverse Scroll", strconv.FormatBool(cfg.ReverseScroll)),
		row("Scroll Hotkeys", fmt.Sprintf("up %s  down %s",
			orDefault(cfg.ScrollUpHotkey, "-"), orDefault(cfg.ScrollDownHotkey, "-"))),
		"",
		row("Capture Dir", cfg.GetCaptureDir()),
		row("Log Level", cfg.LogLevel),
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
