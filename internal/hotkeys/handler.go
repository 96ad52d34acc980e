// Package hotkeys grabs global key sequences on X11 so the reader can be
// scrolled while another window keeps the keyboard focus.
package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/readsplit/internal/platform"
	"github.com/1broseidon/readsplit/internal/scroll"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Binding ties a key sequence to an action. An empty Keys is skipped.
type Binding struct {
	Name   string
	Keys   string
	Action func()
}

// ScrollBindings returns the bindings for the scroll up and down hotkeys.
func ScrollBindings(up, down string, scrollFn func(scroll.Direction)) []Binding {
	return []Binding{
		{Name: "scroll_up_hotkey", Keys: up, Action: func() { scrollFn(scroll.Up) }},
		{Name: "scroll_down_hotkey", Keys: down, Action: func() { scrollFn(scroll.Down) }},
	}
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
	mu     sync.Mutex
}

var initOnce sync.Once

// NewHandler creates a hotkey handler on the backend's X connection. Other
// backends yield platform.ErrUnsupported.
func NewHandler(backend platform.Backend, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, fmt.Errorf("global hotkeys: %w", platform.ErrUnsupported)
	}
	if logger == nil {
		logger = slog.Default()
	}
	xu := accessor.XUtil()

	initOnce.Do(func() {
		keybind.Initialize(xu)
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   accessor.RootWindow(),
		logger: logger,
	}, nil
}

// Bind replaces every grabbed sequence with bindings and returns how many
// were grabbed. A sequence that cannot be grabbed is logged and skipped.
func (h *Handler) Bind(bindings []Binding) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	keybind.Detach(h.xu, h.root)

	bound := 0
	for _, b := range bindings {
		if b.Keys == "" {
			continue
		}
		if err := h.registerFunc(b.Keys, b.Action); err != nil {
			h.logger.Warn("failed to register hotkey", "name", b.Name, "keys", b.Keys, "error", err)
			continue
		}
		h.logger.Info("hotkey registered", "name", b.Name, "keys", b.Keys)
		bound++
	}
	return bound
}

// registerFunc grabs keySequence on the root window. The callback runs on
// its own goroutine.
func (h *Handler) registerFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		go callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Run dispatches X events until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		xevent.Quit(h.xu)
	}()
	xevent.Main(h.xu)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
