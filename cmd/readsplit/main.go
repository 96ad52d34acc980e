package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "arrange":
		os.Exit(runArrange(os.Args[2:]))
	case "scroll":
		os.Exit(runScroll(os.Args[2:]))
	case "capture":
		os.Exit(runCapture(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "settings":
		os.Exit(runSettings(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: readsplit <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  arrange <document>  Put this window on one side and the document's reader on the other")
	fmt.Fprintln(w, "  scroll up|down      Scroll the arranged reader without leaving this window")
	fmt.Fprintln(w, "  capture <document>  Screenshot the reader window showing a document")
	fmt.Fprintln(w, "  displays            List displays and their scale factors")
	fmt.Fprintln(w, "  status              Show reader, anchor and daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  daemon              Run the readsplit daemon (foreground)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config init         Write a default config file")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  settings            Edit configuration interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands use the daemon when it is running and work in-process otherwise.")
	fmt.Fprintln(w, "Run 'readsplit <command> --help' for command-specific options.")
}
