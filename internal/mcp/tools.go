package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/readsplit/internal/reader"
	"github.com/1broseidon/readsplit/internal/scroll"
)

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func (s *Server) handleArrangeReader(ctx context.Context, _ *mcpsdk.CallToolRequest, args ArrangeReaderInput) (*mcpsdk.CallToolResult, ArrangeReaderOutput, error) {
	if args.Path == "" {
		return nil, ArrangeReaderOutput{}, fmt.Errorf("path is required")
	}

	res, err := s.coord.Arrange(ctx, args.Path)
	if err != nil {
		s.logger.Warn("arrange_reader failed", "path", args.Path, "error", err)
		return nil, ArrangeReaderOutput{}, err
	}

	out := ArrangeReaderOutput{
		App:     res.App,
		Title:   res.Title,
		Display: res.Display.Name,
		Scale:   float64(res.Plan.Scale),
		Host:    res.Plan.Host,
		Reader:  res.Plan.TargetOnDesktop(),
		Anchor:  res.Plan.Anchor,
		Opened:  res.Opened,
		Moved:   res.TargetMoved,
		Warning: res.Warning,
	}
	if out.Warning != "" {
		return textResult("Arranged host window; %s could not be moved: %s", out.App, out.Warning), out, nil
	}
	return textResult("Arranged %s (%s) beside the host window on %s", out.Title, out.App, out.Display), out, nil
}

func (s *Server) handleScrollReader(ctx context.Context, _ *mcpsdk.CallToolRequest, args ScrollReaderInput) (*mcpsdk.CallToolResult, ScrollReaderOutput, error) {
	dir, err := scroll.ParseDirection(args.Direction)
	if err != nil {
		return nil, ScrollReaderOutput{}, err
	}
	times := args.Times
	if times <= 0 {
		times = 1
	}
	if times > maxScrollTimes {
		return nil, ScrollReaderOutput{}, fmt.Errorf("times must be at most %d, got %d", maxScrollTimes, times)
	}

	out := ScrollReaderOutput{Direction: string(dir)}
	req := reader.ScrollRequest{Direction: dir, Speed: args.Speed, Reverse: args.Reverse}
	for i := 0; i < times; i++ {
		if err := s.coord.Scroll(ctx, req); err != nil {
			if out.Sent > 0 {
				return nil, out, fmt.Errorf("scroll stopped after %d of %d gestures: %w", out.Sent, times, err)
			}
			return nil, out, err
		}
		out.Sent++
	}
	return textResult("Scrolled %s %d time(s)", dir, out.Sent), out, nil
}

func (s *Server) handleCaptureReader(ctx context.Context, _ *mcpsdk.CallToolRequest, args CaptureReaderInput) (*mcpsdk.CallToolResult, CaptureReaderOutput, error) {
	if args.Path == "" {
		return nil, CaptureReaderOutput{}, fmt.Errorf("path is required")
	}
	image, err := s.coord.Capture(ctx, args.Path, false)
	if err != nil {
		s.logger.Warn("capture_reader failed", "path", args.Path, "error", err)
		return nil, CaptureReaderOutput{}, err
	}
	return textResult("Saved screenshot to %s", image), CaptureReaderOutput{Image: image}, nil
}

func (s *Server) handleListDisplays(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	displays, err := s.coord.Displays(ctx)
	if err != nil {
		return nil, ListDisplaysOutput{}, err
	}

	out := ListDisplaysOutput{Displays: make([]DisplayEntry, 0, len(displays))}
	for _, d := range displays {
		out.Displays = append(out.Displays, DisplayEntry{
			ID:       d.ID,
			Name:     d.Name,
			X:        d.Position.X,
			Y:        d.Position.Y,
			Width:    d.Size.Width,
			Height:   d.Size.Height,
			LogicalX: d.Origin.X,
			LogicalY: d.Origin.Y,
			Scale:    float64(d.Scale),
			Main:     d.Main,
		})
	}
	return nil, out, nil
}

func (s *Server) handleReaderStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReaderStatusInput) (*mcpsdk.CallToolResult, ReaderStatusOutput, error) {
	st, err := s.coord.Status()
	if err != nil {
		return nil, ReaderStatusOutput{}, err
	}

	out := ReaderStatusOutput{
		ReaderApp:   st.ReaderApp,
		HostApp:     st.HostApp,
		LastArrange: st.LastArrange,
	}
	if st.Anchor != nil {
		out.HasAnchor = true
		out.AnchorApp = st.Anchor.App
		out.AnchorTitle = st.Anchor.Title
		out.AnchorX = st.Anchor.Point.X
		out.AnchorY = st.Anchor.Point.Y
	}
	return nil, out, nil
}
