package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/readsplit/internal/config"
	"github.com/1broseidon/readsplit/internal/platform"
	"github.com/1broseidon/readsplit/internal/reader"
	"github.com/1broseidon/readsplit/internal/runtimepath"
	"github.com/1broseidon/readsplit/internal/scroll"
)

// requestTimeout bounds one command, including any wait for a document
// window to appear.
const requestTimeout = 60 * time.Second

// Coordinator is the set of reader operations the daemon serves.
type Coordinator interface {
	Arrange(ctx context.Context, path string) (reader.ArrangeResult, error)
	Scroll(ctx context.Context, req reader.ScrollRequest) error
	Capture(ctx context.Context, path string, reveal bool) (string, error)
	Status() (reader.Status, error)
	Displays(ctx context.Context) ([]platform.DisplayInfo, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	configPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	coord        Coordinator
	baseCtx      context.Context
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the standard socket path
func NewServer(cfg *config.Config, configPath string, coord Coordinator, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, cfg, configPath, coord, reloadChan), nil
}

// NewServerAt creates a server listening on socketPath once started.
func NewServerAt(socketPath string, cfg *config.Config, configPath string, coord Coordinator, reloadChan chan struct{}) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		configPath: configPath,
		cfg:        cfg,
		coord:      coord,
		baseCtx:    context.Background(),
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections. Commands run under ctx.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener
	s.baseCtx = ctx

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	br := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := br.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(s.baseCtx, requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	id := uuid.NewString()[:8]
	start := time.Now()

	var resp *Response
	switch req.Command {
	case CommandReload:
		resp = s.handleReload()
	case CommandGetStatus:
		resp = s.handleGetStatus()
	case CommandGetDisplays:
		resp = s.handleGetDisplays(ctx)
	case CommandArrange:
		resp = s.handleArrange(ctx, req.Payload)
	case CommandScroll:
		resp = s.handleScroll(ctx, req.Payload)
	case CommandCapture:
		resp = s.handleCapture(ctx, req.Payload)
	default:
		resp = NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}

	if resp.Status == "ERROR" {
		log.Printf("IPC[%s]: %s failed after %s: %s", id, req.Command, time.Since(start).Round(time.Millisecond), resp.Error)
	} else if req.Command != CommandGetStatus {
		log.Printf("IPC[%s]: %s ok in %s", id, req.Command, time.Since(start).Round(time.Millisecond))
	}
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	res, err := config.LoadFromPath(s.configPath)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.cfgMu.Lock()
	s.cfg = res.Config
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	st, err := s.coord.Status()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to read status: %v", err))
	}

	status := StatusData{
		Status:        st,
		ConfigFile:    s.configPath,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleGetDisplays returns information about all displays
func (s *Server) handleGetDisplays(ctx context.Context) *Response {
	displays, err := s.coord.Displays(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get displays: %v", err))
	}

	resp, _ := NewOKResponse(DisplaysData{Displays: displays})
	return resp
}

func (s *Server) handleArrange(ctx context.Context, payload json.RawMessage) *Response {
	var req ArrangePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid arrange payload: %v", err))
	}
	if req.Path == "" {
		return NewErrorResponse("path is required")
	}

	res, err := s.coord.Arrange(ctx, req.Path)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to arrange: %v", err))
	}

	resp, err := NewOKResponse(res)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleScroll(ctx context.Context, payload json.RawMessage) *Response {
	var req ScrollPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid scroll payload: %v", err))
	}
	dir, err := scroll.ParseDirection(req.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	if err := s.coord.Scroll(ctx, reader.ScrollRequest{Direction: dir, Speed: req.Speed, Reverse: req.Reverse}); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to scroll: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleCapture(ctx context.Context, payload json.RawMessage) *Response {
	var req CapturePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid capture payload: %v", err))
	}
	if req.Path == "" {
		return NewErrorResponse("path is required")
	}

	path, err := s.coord.Capture(ctx, req.Path, req.Reveal)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to capture: %v", err))
	}

	resp, _ := NewOKResponse(CaptureData{Path: path})
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
