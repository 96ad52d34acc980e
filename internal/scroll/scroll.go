// Package scroll forwards wheel gestures to the reader window through the
// local helper.
package scroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/helper"
)

// DefaultSpeed is the wheel delta per gesture.
const DefaultSpeed = 22

// ErrNoAnchor is returned when there is no point to scroll at.
var ErrNoAnchor = errors.New("no scroll anchor; arrange the reader first")

// Direction is up or down.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", fmt.Errorf("invalid scroll direction %q (want up or down)", s)
}

// Delta returns the wheel delta for one gesture. Up is negative unless
// reversed.
func Delta(dir Direction, speed int, reversed bool) int {
	delta := speed
	if reversed {
		delta = -speed
	}
	if dir == Up {
		return -delta
	}
	return delta
}

// Poster sends a scroll request.
type Poster interface {
	Scroll(ctx context.Context, req helper.ScrollRequest) error
}

// Forwarder sends single gestures without retrying; the user repeating the
// gesture is the retry.
type Forwarder struct {
	poster Poster
	logger *slog.Logger
}

func NewForwarder(poster Poster, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{poster: poster, logger: logger}
}

// Scroll sends one gesture at anchor. Activating the reader beforehand is
// the caller's job.
func (f *Forwarder) Scroll(ctx context.Context, anchor geometry.LogicalPoint, dir Direction, speed int, reversed bool) error {
	if anchor.IsZero() {
		return ErrNoAnchor
	}
	if speed <= 0 {
		speed = DefaultSpeed
	}

	req := helper.ScrollRequest{X: anchor.X, Y: anchor.Y, DY: Delta(dir, speed, reversed)}
	if err := f.poster.Scroll(ctx, req); err != nil {
		f.logger.Warn("scroll not delivered", "x", req.X, "y", req.Y, "dy", req.DY, "error", err)
		return err
	}
	f.logger.Debug("scroll delivered", "x", req.X, "y", req.Y, "dy", req.DY)
	return nil
}
