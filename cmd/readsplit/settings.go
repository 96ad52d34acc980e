package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/readsplit/internal/ipc"
	"github.com/1broseidon/readsplit/internal/tui"
)

func runSettings(args []string) int {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	path := fs.String("config", "", "Config file path (default: "+defaultConfigHint()+")")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: readsplit settings [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Edit the configuration interactively and preview the split.")
		fmt.Fprintln(os.Stderr, "Saving reloads a running daemon.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return 2
	}

	var daemon tui.Daemon
	if client := ipc.NewClient().WithTimeout(daemonProbeTimeout); client.Ping() == nil {
		daemon = ipc.NewClient()
	}

	if err := tui.New(*path, daemon).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
