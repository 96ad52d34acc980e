// Package x11 wraps the EWMH and RandR calls readsplit needs on X11.
package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection is one X server connection plus its root window.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	atomsMu sync.Mutex
	atoms   map[string]xproto.Atom
}

// NewConnection connects to $DISPLAY.
func NewConnection() (*Connection, error) {
	return NewConnectionDisplay("")
}

// NewConnectionDisplay connects to display; empty means $DISPLAY.
func NewConnectionDisplay(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		atoms: make(map[string]xproto.Atom),
	}, nil
}

func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// internAtom looks name up once per connection.
func (c *Connection) internAtom(name string) (xproto.Atom, error) {
	c.atomsMu.Lock()
	defer c.atomsMu.Unlock()
	if atom, ok := c.atoms[name]; ok {
		return atom, nil
	}
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern atom %s: %w", name, err)
	}
	c.atoms[name] = reply.Atom
	return reply.Atom, nil
}
