package layout

import (
	"math"
	"testing"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/platform"
)

func display(w, h int, s geometry.Scale) platform.DisplayInfo {
	return platform.DisplayInfo{Name: "test", Size: geometry.PhysicalSize{Width: w, Height: h}, Scale: s, Main: true}
}

func TestCompute_RetinaHalfSplit(t *testing.T) {
	plan, err := Compute(display(2560, 1440, 2), Options{})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if want := (geometry.PhysicalRect{X: 0, Y: 0, Width: 1280, Height: 1440}); plan.Host != want {
		t.Fatalf("Host = %+v, want %+v", plan.Host, want)
	}
	if want := (geometry.LogicalRect{X: 640, Y: 0, Width: 640, Height: 720}); plan.Target != want {
		t.Fatalf("Target = %+v, want %+v", plan.Target, want)
	}
	if want := (geometry.LogicalPoint{X: 960, Y: 360}); plan.Anchor != want {
		t.Fatalf("Anchor = %+v, want %+v", plan.Anchor, want)
	}
}

func TestCompute_CoversDisplayWidth(t *testing.T) {
	for _, s := range []geometry.Scale{1, 2, 3} {
		for w := 800; w <= 4000; w++ {
			for _, side := range []Side{SideLeft, SideRight} {
				plan, err := Compute(display(w, 1000, s), Options{HostSide: side})
				if err != nil {
					t.Fatalf("Compute(%d@%v) error: %v", w, s, err)
				}
				total := plan.Host.Width + plan.Target.Width*int(s)
				if diff := total - w; diff < -1 || diff > 1 {
					t.Fatalf("width %d at %v (%s): host+target = %d", w, s, side, total)
				}
			}
		}
	}
}

func TestCompute_FractionalScales(t *testing.T) {
	tests := []struct {
		w int
		s geometry.Scale
	}{
		{2880, 1.5},
		{1366, 1.25},
	}
	for _, tt := range tests {
		plan, err := Compute(display(tt.w, 900, tt.s), Options{})
		if err != nil {
			t.Fatalf("Compute() error: %v", err)
		}
		total := float64(plan.Host.Width) + float64(plan.Target.Width)*float64(tt.s)
		if math.Abs(total-float64(tt.w)) > 1 {
			t.Fatalf("%d@%v: host+target = %v", tt.w, tt.s, total)
		}
	}
}

func TestCompute_HostOnRight(t *testing.T) {
	plan, err := Compute(display(2560, 1440, 2), Options{HostSide: SideRight})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if plan.Host.X != 1280 || plan.Target.X != 0 || plan.Target.Width != 640 {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestCompute_SecondaryDisplay(t *testing.T) {
	d := platform.DisplayInfo{
		Name:     "External",
		Position: geometry.PhysicalPoint{X: 2560, Y: 0},
		Size:     geometry.PhysicalSize{Width: 1920, Height: 1080},
		Origin:   geometry.LogicalPoint{X: 2560},
		Scale:    1,
	}
	plan, err := Compute(d, Options{SplitPercent: 60})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if plan.Host != (geometry.PhysicalRect{X: 2560, Width: 1152, Height: 1080}) {
		t.Fatalf("Host = %+v", plan.Host)
	}
	if plan.Target != (geometry.LogicalRect{X: 1152, Width: 768, Height: 1080}) {
		t.Fatalf("Target = %+v", plan.Target)
	}
	if got := plan.TargetOnDesktop(); got.X != 2560+1152 {
		t.Fatalf("TargetOnDesktop = %+v", got)
	}
	if plan.Anchor != (geometry.LogicalPoint{X: 2560 + 1152 + 384, Y: 540}) {
		t.Fatalf("Anchor = %+v", plan.Anchor)
	}
}

func TestCompute_MixedScaleSecondaryDisplay(t *testing.T) {
	// A 1x monitor right of a 1280pt 2x laptop.
	d := platform.DisplayInfo{
		Name:     "External",
		Position: geometry.PhysicalPoint{X: 2560, Y: 0},
		Size:     geometry.PhysicalSize{Width: 1920, Height: 1080},
		Origin:   geometry.LogicalPoint{X: 1280},
		Scale:    1,
	}
	plan, err := Compute(d, Options{SplitPercent: 60})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if plan.Host.Position() != d.Position {
		t.Fatalf("Host = %+v, want origin %v", plan.Host, d.Position)
	}
	if got := plan.TargetOnDesktop(); got != (geometry.LogicalRect{X: 1280 + 1152, Width: 768, Height: 1080}) {
		t.Fatalf("TargetOnDesktop = %+v", got)
	}
	if plan.Anchor != (geometry.LogicalPoint{X: 1280 + 1152 + 384, Y: 540}) {
		t.Fatalf("Anchor = %+v", plan.Anchor)
	}
}

func TestCompute_Rejects(t *testing.T) {
	tests := []struct {
		name string
		d    platform.DisplayInfo
		opts Options
	}{
		{"zero scale", display(2560, 1440, 0), Options{}},
		{"empty display", display(0, 0, 1), Options{}},
		{"split too wide", display(2560, 1440, 1), Options{SplitPercent: 95}},
		{"bad side", display(2560, 1440, 1), Options{HostSide: "top"}},
		{"too narrow", display(2, 100, 4), Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compute(tt.d, tt.opts); err == nil {
				t.Fatal("Compute() succeeded, want error")
			}
		})
	}
}
