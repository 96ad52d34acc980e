// Package display resolves display geometry. Nothing is cached: every call
// re-queries the window system because monitors can change between
// operations without any signal downstream.
package display

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/platform"
)

// Resolver picks displays from a platform lister.
type Resolver struct {
	lister platform.DisplayLister
	logger *slog.Logger
}

func NewResolver(lister platform.DisplayLister, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{lister: lister, logger: logger}
}

// All returns every attached display, or ErrNoDisplay.
func (r *Resolver) All(ctx context.Context) ([]platform.DisplayInfo, error) {
	displays, err := r.lister.Displays(ctx)
	if err != nil {
		return nil, err
	}
	if len(displays) == 0 {
		return nil, platform.ErrNoDisplay
	}
	for _, d := range displays {
		if !d.Scale.Valid() {
			return nil, fmt.Errorf("display %q reports invalid scale factor %v", d.Name, float64(d.Scale))
		}
	}
	return displays, nil
}

// Current returns the display containing the center of host's frame, else
// the main display, else the first one. host may be nil.
func (r *Resolver) Current(ctx context.Context, host platform.HostWindow) (platform.DisplayInfo, error) {
	displays, err := r.All(ctx)
	if err != nil {
		return platform.DisplayInfo{}, err
	}

	if host != nil {
		frame, err := host.Frame(ctx)
		if err != nil {
			r.logger.Warn("host frame unavailable, using main display", "error", err)
		} else if d, ok := platform.DisplayAtPhysical(displays, frame.Center()); ok {
			return d, nil
		}
	}
	return platform.MainOrFirst(displays), nil
}

// ScaleAt returns the scale of the display whose logical frame contains p.
func (r *Resolver) ScaleAt(ctx context.Context, p geometry.LogicalPoint) (geometry.Scale, error) {
	displays, err := r.All(ctx)
	if err != nil {
		return 0, err
	}
	if d, ok := platform.DisplayAtLogical(displays, p); ok {
		return d.Scale, nil
	}
	return platform.MainOrFirst(displays).Scale, nil
}
