package platform

import (
	"testing"

	"github.com/1broseidon/readsplit/internal/geometry"
)

func TestDesktopEntryApp(t *testing.T) {
	tests := map[string]string{
		"org.gnome.Evince.desktop\n": "Evince",
		"okularApplication_pdf.desktop": "okularApplication_pdf",
		"/usr/share/applications/zathura.desktop": "zathura",
		"": "",
	}
	for in, want := range tests {
		if got := DesktopEntryApp(in); got != want {
			t.Errorf("DesktopEntryApp(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayInfoFrames(t *testing.T) {
	d := DisplayInfo{
		Position: geometry.PhysicalPoint{X: 2560, Y: 0},
		Size:     geometry.PhysicalSize{Width: 3840, Height: 2160},
		Origin:   geometry.LogicalPoint{X: 1706},
		Scale:    1.5,
	}
	if got := d.Bounds(); got != (geometry.PhysicalRect{X: 2560, Width: 3840, Height: 2160}) {
		t.Fatalf("Bounds() = %+v", got)
	}
	if got := d.LogicalFrame(); got != (geometry.LogicalRect{X: 1706, Width: 2560, Height: 1440}) {
		t.Fatalf("LogicalFrame() = %+v", got)
	}
}

func TestDisplayInfo_MixedScaleConversions(t *testing.T) {
	laptop := DisplayInfo{
		Name: "Built-in", Main: true, Scale: 2,
		Size: geometry.PhysicalSize{Width: 2560, Height: 1440},
	}
	external := DisplayInfo{
		Name: "External", Scale: 1,
		Position: geometry.PhysicalPoint{X: 2560},
		Size:     geometry.PhysicalSize{Width: 1920, Height: 1080},
		Origin:   geometry.LogicalPoint{X: 1280},
	}
	displays := []DisplayInfo{laptop, external}

	tests := []struct {
		name    string
		logical geometry.LogicalPoint
		want    string
		phys    geometry.PhysicalPoint
	}{
		{"laptop origin", geometry.LogicalPoint{}, "Built-in", geometry.PhysicalPoint{}},
		{"laptop interior", geometry.LogicalPoint{X: 640, Y: 360}, "Built-in", geometry.PhysicalPoint{X: 1280, Y: 720}},
		{"external origin", geometry.LogicalPoint{X: 1280}, "External", geometry.PhysicalPoint{X: 2560}},
		{"external interior", geometry.LogicalPoint{X: 1500, Y: 250}, "External", geometry.PhysicalPoint{X: 2780, Y: 250}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := DisplayAtLogical(displays, tt.logical)
			if !ok || d.Name != tt.want {
				t.Fatalf("DisplayAtLogical(%v) = %q, %v; want %q", tt.logical, d.Name, ok, tt.want)
			}
			p := d.LogicalToPhysical(tt.logical)
			if p != tt.phys {
				t.Fatalf("LogicalToPhysical(%v) = %v, want %v", tt.logical, p, tt.phys)
			}
			back, ok := DisplayAtPhysical(displays, p)
			if !ok || back.Name != tt.want {
				t.Fatalf("DisplayAtPhysical(%v) = %q, %v; want %q", p, back.Name, ok, tt.want)
			}
			if got := back.PhysicalToLogical(p); got != tt.logical {
				t.Fatalf("PhysicalToLogical(%v) = %v, want %v", p, got, tt.logical)
			}
		})
	}
}

func TestMainOrFirst(t *testing.T) {
	a := DisplayInfo{Name: "a"}
	b := DisplayInfo{Name: "b", Main: true}
	if got := MainOrFirst([]DisplayInfo{a, b}); got.Name != "b" {
		t.Fatalf("MainOrFirst = %q, want b", got.Name)
	}
	if got := MainOrFirst([]DisplayInfo{a}); got.Name != "a" {
		t.Fatalf("MainOrFirst = %q, want a", got.Name)
	}
}
