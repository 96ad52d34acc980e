package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/1broseidon/readsplit/internal/anchorstore"
	"github.com/1broseidon/readsplit/internal/ipc"
	"github.com/1broseidon/readsplit/internal/permission"
	"github.com/1broseidon/readsplit/internal/platform"
	"github.com/1broseidon/readsplit/internal/reader"
	"github.com/1broseidon/readsplit/internal/runtimepath"
	"github.com/1broseidon/readsplit/internal/scroll"
)

// commonFlags are shared by every command that drives the reader.
type commonFlags struct {
	config   *string
	noDaemon *bool
	json     *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config:   fs.String("config", "", "Config file path (default: "+defaultConfigHint()+")"),
		noDaemon: fs.Bool("no-daemon", false, "Run in-process even when the daemon is running"),
		json:     fs.Bool("json", defaultJSON(), "Print JSON (default when stdout is not a terminal)"),
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// reportError prints err and, for a missing permission, how to grant it.
// Daemon errors arrive as text, so the permission is recognised by message.
func reportError(err error) int {
	fmt.Fprintln(os.Stderr, err)
	if kind, ok := deniedPermission(err); ok {
		fmt.Fprintf(os.Stderr, "Grant %s access to this terminal, then run the command again.\n", kind)
		if url := permission.SettingsURL(kind); url != "" {
			fmt.Fprintf(os.Stderr, "Settings: %s\n", url)
		}
	}
	return 1
}

func deniedPermission(err error) (platform.PermissionKind, bool) {
	msg := err.Error()
	if !errors.Is(err, permission.ErrDenied) && !strings.Contains(msg, permission.ErrDenied.Error()) {
		return "", false
	}
	if strings.Contains(msg, string(platform.ScreenRecording)) {
		return platform.ScreenRecording, true
	}
	return platform.Accessibility, true
}

func runArrange(args []string) int {
	fs := flag.NewFlagSet("arrange", flag.ContinueOnError)
	common := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: readsplit arrange [--config PATH] [--json] [--no-daemon] <document>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Move this window to one side of its display and the reader showing")
		fmt.Fprintln(os.Stderr, "<document> to the other, opening the document when needed.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "arrange requires exactly one <document>")
		fs.Usage()
		return 2
	}
	doc, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	sess, err := openSession(*common.config, *common.noDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sess.close()

	ctx, cancel := signalContext()
	defer cancel()

	res, err := sess.coord.Arrange(ctx, doc)
	if err != nil {
		return reportError(err)
	}
	if *common.json {
		return printJSON(res)
	}
	printArrangeResult(res)
	return 0
}

func printArrangeResult(res reader.ArrangeResult) {
	fmt.Printf("reader:  %s (%s)\n", res.Title, res.App)
	fmt.Printf("display: %s at %s\n", res.Display.Name, res.Display.Scale)
	fmt.Printf("host:    %s\n", res.Plan.Host)
	fmt.Printf("target:  %s\n", res.Plan.TargetOnDesktop())
	if res.Opened {
		fmt.Println("opened:  yes")
	}
	if !res.TargetMoved && res.Warning == "" {
		fmt.Println("note:    reader was already in place")
	}
	if res.Warning != "" {
		fmt.Fprintf(os.Stderr, "warning: reader not moved: %s\n", res.Warning)
	}
}

func runScroll(args []string) int {
	fs := flag.NewFlagSet("scroll", flag.ContinueOnError)
	common := addCommonFlags(fs)
	speed := fs.Int("speed", 0, "Lines per gesture (default: scroll_speed from config)")
	reverse := fs.Bool("reverse", false, "Invert the direction (default: reverse_scroll from config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: readsplit scroll [--speed N] [--reverse] up|down")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Scroll the arranged reader window and return focus here.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "scroll requires a direction")
		fs.Usage()
		return 2
	}
	dir, err := scroll.ParseDirection(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *speed < 0 {
		fmt.Fprintln(os.Stderr, "--speed must not be negative")
		return 2
	}

	req := reader.ScrollRequest{Direction: dir, Speed: *speed}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "reverse" {
			req.Reverse = reverse
		}
	})

	sess, err := openSession(*common.config, *common.noDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sess.close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := sess.coord.Scroll(ctx, req); err != nil {
		return reportError(err)
	}
	return 0
}

func runCapture(args []string) int {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	common := addCommonFlags(fs)
	reveal := fs.Bool("reveal", false, "Show the screenshot in the file manager")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: readsplit capture [--reveal] <document>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Save a PNG of the reader window showing <document> and print its path.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "capture requires exactly one <document>")
		fs.Usage()
		return 2
	}
	doc, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	sess, err := openSession(*common.config, *common.noDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sess.close()

	ctx, cancel := signalContext()
	defer cancel()

	path, err := sess.coord.Capture(ctx, doc, *reveal)
	if err != nil {
		return reportError(err)
	}
	if *common.json {
		return printJSON(ipc.CaptureData{Path: path})
	}
	fmt.Println(path)
	return 0
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	common := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: readsplit displays [--json]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "displays takes no arguments")
		fs.Usage()
		return 2
	}

	sess, err := openSession(*common.config, *common.noDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sess.close()

	ctx, cancel := signalContext()
	defer cancel()

	displays, err := sess.coord.Displays(ctx)
	if err != nil {
		return reportError(err)
	}
	if *common.json {
		return printJSON(ipc.DisplaysData{Displays: displays})
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tSIZE\tSCALE\tMAIN")
	for _, d := range displays {
		main := ""
		if d.Main {
			main = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d,%d\t%dx%d\t%s\t%s\n",
			d.ID, d.Name, d.Position.X, d.Position.Y, d.Size.Width, d.Size.Height, d.Scale, main)
	}
	tw.Flush()
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	common := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: readsplit status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the configured applications, the scroll anchor and whether the daemon runs.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	var data ipc.StatusData
	if !*common.noDaemon {
		if st, err := ipc.NewClient().WithTimeout(daemonProbeTimeout).GetStatus(); err == nil {
			data = *st
		}
	}
	if !data.DaemonRunning {
		st, err := localStatus(*common.config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data.Status = st
	}

	if *common.json {
		return printJSON(data)
	}
	fmt.Printf("daemon_running: %v\n", data.DaemonRunning)
	if data.DaemonRunning {
		fmt.Printf("uptime_seconds: %d\n", data.UptimeSeconds)
	}
	fmt.Printf("reader_app:     %s\n", orDefault(data.ReaderApp, "(system default)"))
	fmt.Printf("host_app:       %s\n", orDefault(data.HostApp, "(frontmost)"))
	if data.Anchor != nil {
		fmt.Printf("anchor:         %d,%d in %s %q\n", data.Anchor.Point.X, data.Anchor.Point.Y, data.Anchor.App, data.Anchor.Title)
	} else {
		fmt.Println("anchor:         none")
	}
	return 0
}

// localStatus reads status without touching the window system.
func localStatus(configPath string) (reader.Status, error) {
	res, err := loadConfig(configPath)
	if err != nil {
		return reader.Status{}, err
	}
	st := reader.Status{ReaderApp: res.Config.ReaderApp, HostApp: res.Config.HostApp}
	anchor, ok, err := anchorstore.NewFile(runtimepath.AnchorPath()).Load()
	if err != nil {
		return st, err
	}
	if ok {
		st.Anchor = &anchor
		st.LastArrange = anchor.SetAt
	}
	return st, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
