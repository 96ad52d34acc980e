package hotkeys

import (
	"errors"
	"testing"

	"github.com/1broseidon/readsplit/internal/platform"
	"github.com/1broseidon/readsplit/internal/scroll"
)

func TestScrollBindings(t *testing.T) {
	var got []scroll.Direction
	bindings := ScrollBindings("Mod4-k", "", func(d scroll.Direction) { got = append(got, d) })

	if len(bindings) != 2 {
		t.Fatalf("bindings = %+v", bindings)
	}
	if bindings[0].Keys != "Mod4-k" || bindings[1].Keys != "" {
		t.Fatalf("keys = %q, %q", bindings[0].Keys, bindings[1].Keys)
	}
	for _, b := range bindings {
		b.Action()
	}
	if len(got) != 2 || got[0] != scroll.Up || got[1] != scroll.Down {
		t.Fatalf("directions = %v", got)
	}
}

// nonX11Backend satisfies platform.Backend without exposing an X connection.
type nonX11Backend struct {
	platform.Backend
}

func TestNewHandler_RequiresX11(t *testing.T) {
	_, err := NewHandler(nonX11Backend{}, nil)
	if !errors.Is(err, platform.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}
