package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/1broseidon/readsplit/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: readsplit mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'readsplit mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "Config file path (default: "+defaultConfigHint()+")")
	noDaemon := fs.Bool("no-daemon", false, "Run in-process even when the daemon is running")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: readsplit mcp serve [--config PATH] [--no-daemon]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the MCP server on stdio. Designed to be invoked by MCP clients.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Example:")
		fmt.Fprintln(os.Stderr, "  <client> mcp add readsplit -- readsplit mcp serve")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	sess, err := openSession(*configPath, *noDaemon)
	if err != nil {
		log.Printf("Failed to start: %v", err)
		return 1
	}
	defer sess.close()

	server := mcp.NewServer(sess.coord, newLogger(sess.cfg.SlogLevel()))

	ctx, cancel := signalContext()
	defer cancel()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("MCP server error: %v", err)
		return 1
	}
	return 0
}
