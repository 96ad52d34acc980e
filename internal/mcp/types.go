package mcp

import (
	"time"

	"github.com/1broseidon/readsplit/internal/geometry"
)

// ArrangeReaderInput is the input for the arrange_reader tool.
type ArrangeReaderInput struct {
	Path string `json:"path" jsonschema:"required,Absolute path of the document to show beside the host window"`
}

// ArrangeReaderOutput is the output for the arrange_reader tool.
type ArrangeReaderOutput struct {
	App     string                `json:"app"`
	Title   string                `json:"title"`
	Display string                `json:"display"`
	Scale   float64               `json:"scale"`
	Host    geometry.PhysicalRect `json:"host"`
	Reader  geometry.LogicalRect  `json:"reader"`
	Anchor  geometry.LogicalPoint `json:"anchor"`
	Opened  bool                  `json:"opened"`
	Moved   bool                  `json:"moved"`
	Warning string                `json:"warning,omitempty"`
}

// ScrollReaderInput is the input for the scroll_reader tool.
type ScrollReaderInput struct {
	Direction string `json:"direction" jsonschema:"required,Scroll direction: up or down"`
	Speed     int    `json:"speed,omitempty" jsonschema:"Lines per gesture (default: scroll_speed from config)"`
	Reverse   *bool  `json:"reverse,omitempty" jsonschema:"Invert the direction, for natural scrolling setups (default: reverse_scroll from config)"`
	Times     int    `json:"times,omitempty" jsonschema:"Number of gestures to send (default: 1, max: 50)"`
}

// ScrollReaderOutput is the output for the scroll_reader tool.
type ScrollReaderOutput struct {
	Direction string `json:"direction"`
	Sent      int    `json:"sent"`
}

// CaptureReaderInput is the input for the capture_reader tool.
type CaptureReaderInput struct {
	Path string `json:"path" jsonschema:"required,Absolute path of the document whose reader window to capture"`
}

// CaptureReaderOutput is the output for the capture_reader tool.
type CaptureReaderOutput struct {
	Image string `json:"image"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// DisplayEntry describes one attached display.
type DisplayEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// X, Y, Width and Height are physical pixels.
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	// LogicalX and LogicalY place the display on the logical desktop.
	LogicalX int     `json:"logical_x"`
	LogicalY int     `json:"logical_y"`
	Scale    float64 `json:"scale"`
	Main     bool    `json:"main"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayEntry `json:"displays"`
}

// ReaderStatusInput is the input for the reader_status tool.
type ReaderStatusInput struct{}

// ReaderStatusOutput is the output for the reader_status tool.
type ReaderStatusOutput struct {
	ReaderApp   string    `json:"reader_app,omitempty"`
	HostApp     string    `json:"host_app,omitempty"`
	HasAnchor   bool      `json:"has_anchor"`
	AnchorApp   string    `json:"anchor_app,omitempty"`
	AnchorTitle string    `json:"anchor_title,omitempty"`
	AnchorX     int       `json:"anchor_x,omitempty"`
	AnchorY     int       `json:"anchor_y,omitempty"`
	LastArrange time.Time `json:"last_arrange,omitempty"`
}
