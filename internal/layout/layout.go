// Package layout computes the two-pane split between the host window and
// the reader window.
package layout

import (
	"fmt"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/platform"
)

// Side is the half of the display the host window takes.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Options tunes the split. The zero value is a 50/50 split with the host on
// the left.
type Options struct {
	// SplitPercent is the host's share of the display width.
	SplitPercent int
	HostSide     Side
}

func (o Options) normalized() Options {
	if o.SplitPercent == 0 {
		o.SplitPercent = 50
	}
	if o.HostSide == "" {
		o.HostSide = SideLeft
	}
	return o
}

// Validate checks option ranges.
func (o Options) Validate() error {
	o = o.normalized()
	if o.SplitPercent < 10 || o.SplitPercent > 90 {
		return fmt.Errorf("split_percent must be between 10 and 90, got %d", o.SplitPercent)
	}
	switch o.HostSide {
	case SideLeft, SideRight:
	default:
		return fmt.Errorf("host_side must be %q or %q, got %q", SideLeft, SideRight, o.HostSide)
	}
	return nil
}

// Plan is derived per arrange and never stored.
type Plan struct {
	// Host is where the host window goes, in physical desktop pixels.
	Host geometry.PhysicalRect `json:"host"`
	// Target is the reader window's frame relative to the display's own
	// logical frame, the form the automation bridge receives for the
	// display at the desktop origin.
	Target geometry.LogicalRect `json:"target"`
	// Origin is the display's logical origin on the desktop.
	Origin geometry.LogicalPoint `json:"origin"`
	// Anchor is the center of the reader window on the desktop, in logical
	// pixels.
	Anchor geometry.LogicalPoint `json:"anchor"`
	Scale  geometry.Scale        `json:"scale"`
}

// TargetOnDesktop returns Target translated by the display origin.
func (p Plan) TargetOnDesktop() geometry.LogicalRect {
	t := p.Target
	t.X += p.Origin.X
	t.Y += p.Origin.Y
	return t
}

// Compute splits display d. Every logical value is floored from physical,
// so the two windows may overlap by at most one physical pixel and never
// leave a gap.
func Compute(d platform.DisplayInfo, opts Options) (Plan, error) {
	if err := opts.Validate(); err != nil {
		return Plan{}, err
	}
	opts = opts.normalized()

	s := d.Scale
	if !s.Valid() {
		return Plan{}, fmt.Errorf("display %q has invalid scale factor %v", d.Name, float64(s))
	}
	w, h := d.Size.Width, d.Size.Height
	if w <= 0 || h <= 0 {
		return Plan{}, fmt.Errorf("display %q has empty size %dx%d", d.Name, w, h)
	}

	hostW := w * opts.SplitPercent / 100
	logicalW := geometry.PhysicalSize{Width: w, Height: h}.ToLogical(s)
	hostLogicalW := geometry.PhysicalSize{Width: hostW}.ToLogical(s).Width
	targetW := logicalW.Width - hostLogicalW
	if targetW <= 0 || logicalW.Height <= 0 {
		return Plan{}, fmt.Errorf("display %q is too small to split", d.Name)
	}

	plan := Plan{
		Host: geometry.PhysicalRect{
			X:      d.Position.X,
			Y:      d.Position.Y,
			Width:  hostW,
			Height: h,
		},
		Target: geometry.LogicalRect{
			X:      hostLogicalW,
			Y:      0,
			Width:  targetW,
			Height: logicalW.Height,
		},
		Origin: d.Origin,
		Scale:  s,
	}
	if opts.HostSide == SideRight {
		plan.Host.X = d.Position.X + w - hostW
		plan.Target.X = 0
	}
	plan.Anchor = plan.TargetOnDesktop().Center()
	return plan, nil
}
