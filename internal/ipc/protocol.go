package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/readsplit/internal/platform"
	"github.com/1broseidon/readsplit/internal/reader"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetDisplays CommandType = "GET_DISPLAYS"
	CommandArrange     CommandType = "ARRANGE"
	CommandScroll      CommandType = "SCROLL"
	CommandCapture     CommandType = "CAPTURE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	reader.Status
	ConfigFile    string `json:"config_file,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []platform.DisplayInfo `json:"displays"`
}

type ArrangePayload struct {
	Path string `json:"path"`
}

type ScrollPayload struct {
	Direction string `json:"direction"`
	Speed     int    `json:"speed,omitempty"`
	Reverse   *bool  `json:"reverse,omitempty"`
}

type CapturePayload struct {
	Path   string `json:"path"`
	Reveal bool   `json:"reveal,omitempty"`
}

type CaptureData struct {
	Path string `json:"path"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
