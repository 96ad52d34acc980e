package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents an active RandR output
type Monitor struct {
	ID      int
	Name    string
	Primary bool
	X       int
	Y       int
	Width   int
	Height  int
}

// Monitors retrieves all active monitors using XRandR
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		isPrimary := false
		for _, o := range info.Outputs {
			if o == primary && primary != 0 {
				isPrimary = true
			}
		}

		monitors = append(monitors, Monitor{
			ID:      i,
			Name:    name,
			Primary: isPrimary,
			X:       int(info.X),
			Y:       int(info.Y),
			Width:   int(info.Width),
			Height:  int(info.Height),
		})
	}

	if len(monitors) > 0 && primary == 0 {
		monitors[0].Primary = true
	}
	return monitors, nil
}

// WorkArea shrinks m by the dock struts that overlap it, so windows placed
// inside do not sit under panels. It falls back to _NET_WORKAREA when no
// dock publishes struts.
func (c *Connection) WorkArea(m Monitor) Monitor {
	if c.applyDockStruts(&m) {
		return m
	}

	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return m
	}
	idx := 0
	if desk, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desk) < len(areas) {
		idx = int(desk)
	}
	wa := areas[idx]
	r := intersect(
		rect{m.X, m.Y, m.X + m.Width, m.Y + m.Height},
		rect{int(wa.X), int(wa.Y), int(wa.X) + int(wa.Width), int(wa.Y) + int(wa.Height)},
	)
	if r.empty() {
		return m
	}
	m.X, m.Y, m.Width, m.Height = r.x1, r.y1, r.x2-r.x1, r.y2-r.y1
	return m
}

type rect struct{ x1, y1, x2, y2 int }

func (r rect) empty() bool { return r.x2 <= r.x1 || r.y2 <= r.y1 }

func intersect(a, b rect) rect {
	return rect{max(a.x1, b.x1), max(a.y1, b.y1), min(a.x2, b.x2), min(a.y2, b.y2)}
}

func (c *Connection) applyDockStruts(m *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootW, rootH := int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	mon := rect{m.X, m.Y, m.X + m.Width, m.Y + m.Height}
	var left, right, top, bottom int
	for _, win := range clients {
		if !c.hasWindowType(win, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}

		sp, err := ewmh.WmStrutPartialGet(c.XUtil, win)
		if err != nil {
			// Some docks only set _NET_WM_STRUT.
			s, err := ewmh.WmStrutGet(c.XUtil, win)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
				TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
			}
		}

		if sp.Top > 0 {
			r := intersect(mon, rect{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)})
			if !r.empty() {
				top = max(top, r.y2-r.y1)
			}
		}
		if sp.Bottom > 0 {
			r := intersect(mon, rect{int(sp.BottomStartX), rootH - int(sp.Bottom), int(sp.BottomEndX) + 1, rootH})
			if !r.empty() {
				bottom = max(bottom, r.y2-r.y1)
			}
		}
		if sp.Left > 0 {
			r := intersect(mon, rect{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1})
			if !r.empty() {
				left = max(left, r.x2-r.x1)
			}
		}
		if sp.Right > 0 {
			r := intersect(mon, rect{rootW - int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY) + 1})
			if !r.empty() {
				right = max(right, r.x2-r.x1)
			}
		}
	}

	if left == 0 && right == 0 && top == 0 && bottom == 0 {
		return false
	}
	m.X += left
	m.Y += top
	m.Width = max(1, m.Width-left-right)
	m.Height = max(1, m.Height-top-bottom)
	return true
}
