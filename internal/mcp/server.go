// Package mcp exposes the reader operations as Model Context Protocol tools
// so an assistant can arrange, scroll and capture a document beside the
// terminal it runs in.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/readsplit/internal/platform"
	"github.com/1broseidon/readsplit/internal/reader"
)

const (
	ServerName    = "readsplit"
	ServerVersion = "0.1.0"

	maxScrollTimes = 50
)

// Coordinator is the set of reader operations the tools drive. Both the
// in-process coordinator and the daemon client satisfy it.
type Coordinator interface {
	Arrange(ctx context.Context, path string) (reader.ArrangeResult, error)
	Scroll(ctx context.Context, req reader.ScrollRequest) error
	Capture(ctx context.Context, path string, reveal bool) (string, error)
	Status() (reader.Status, error)
	Displays(ctx context.Context) ([]platform.DisplayInfo, error)
}

// Server is the MCP server for reader coordination.
type Server struct {
	mcpServer *mcpsdk.Server
	coord     Coordinator
	logger    *slog.Logger
}

// NewServer creates a server whose tools run against coord. Logs must not
// go to stdout, which carries the protocol.
func NewServer(coord Coordinator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		coord:  coord,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "arrange_reader",
		Description: "Show a document beside the host window: the host window takes one side of its display and the document's reader window the other. Opens the document with the configured (or default) reader when no window shows it yet. Returns the resulting geometry; a warning means the host moved but the reader could not.",
	}, s.handleArrangeReader)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "scroll_reader",
		Description: "Scroll the arranged reader window up or down without leaving the host window. Requires a prior arrange_reader, or a configured reader_app whose front window is used.",
	}, s.handleScrollReader)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_reader",
		Description: "Save a PNG screenshot of the reader window showing a document and return its path. Needs screen recording permission.",
	}, s.handleCaptureReader)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List attached displays with their physical bounds and scale factors.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reader_status",
		Description: "Report the configured reader and host applications and the stored scroll anchor.",
	}, s.handleReaderStatus)
}
