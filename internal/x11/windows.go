package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Client is a managed top-level window.
type Client struct {
	ID       xproto.Window
	Class    string
	Instance string
	Title    string
	Hidden   bool
}

// MatchesApp reports whether app names the client's WM_CLASS class or instance.
func (cl Client) MatchesApp(app string) bool {
	return strings.EqualFold(cl.Class, app) || strings.EqualFold(cl.Instance, app)
}

// Clients lists normal windows in _NET_CLIENT_LIST order. When stacking is
// true the _NET_CLIENT_LIST_STACKING order is used instead (bottom to top).
func (c *Connection) Clients(stacking bool) ([]Client, error) {
	var ids []xproto.Window
	var err error
	if stacking {
		ids, err = ewmh.ClientListStackingGet(c.XUtil)
	} else {
		ids, err = ewmh.ClientListGet(c.XUtil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	clients := make([]Client, 0, len(ids))
	for _, id := range ids {
		if !c.IsNormalWindow(id) {
			continue
		}
		cl := Client{ID: id}
		if wc, err := icccm.WmClassGet(c.XUtil, id); err == nil {
			cl.Class = strings.TrimSpace(wc.Class)
			cl.Instance = strings.TrimSpace(wc.Instance)
		}
		if name, err := ewmh.WmNameGet(c.XUtil, id); err == nil && name != "" {
			cl.Title = name
		} else if name, err := icccm.WmNameGet(c.XUtil, id); err == nil {
			cl.Title = name
		}
		cl.Hidden = c.hasState(id, "_NET_WM_STATE_HIDDEN")
		clients = append(clients, cl)
	}
	return clients, nil
}

// Geometry returns the window's root-relative position and size.
func (c *Connection) Geometry(win xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(win xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore move requests on most window managers.
	c.unmaximizeWindow(win)

	if err := ewmh.MoveresizeWindow(c.XUtil, win, x, y, width, height); err != nil {
		xwindow.New(c.XUtil, win).MoveResize(x, y, width, height)
	}
	return nil
}

func (c *Connection) unmaximizeWindow(win xproto.Window) {
	if c.hasState(win, "_NET_WM_STATE_MAXIMIZED_HORZ") {
		ewmh.WmStateReq(c.XUtil, win, ewmh.StateRemove, "_NET_WM_STATE_MAXIMIZED_HORZ")
	}
	if c.hasState(win, "_NET_WM_STATE_MAXIMIZED_VERT") {
		ewmh.WmStateReq(c.XUtil, win, ewmh.StateRemove, "_NET_WM_STATE_MAXIMIZED_VERT")
	}
}

// Restore clears the hidden (minimized) state and maps the window.
func (c *Connection) Restore(win xproto.Window) error {
	if err := ewmh.WmStateReq(c.XUtil, win, ewmh.StateRemove, "_NET_WM_STATE_HIDDEN"); err != nil {
		return fmt.Errorf("failed to clear hidden state: %w", err)
	}
	return xproto.MapWindowChecked(c.XUtil.Conn(), win).Check()
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The client message is built by hand because the xgbutil ewmh request
// helper panics on this library version.
func (c *Connection) FocusWindow(win xproto.Window) error {
	atom, err := c.internAtom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// ActiveWindow returns the window holding _NET_ACTIVE_WINDOW.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil {
		return 0, err
	}
	if win == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return win, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		// Untyped windows are treated as normal.
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

func (c *Connection) hasState(win xproto.Window, state string) bool {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

func (c *Connection) hasWindowType(win xproto.Window, typ string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == typ {
			return true
		}
	}
	return false
}
