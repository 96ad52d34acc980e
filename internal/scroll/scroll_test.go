package scroll

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/helper"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		dir      Direction
		speed    int
		reversed bool
		want     int
	}{
		{Up, 22, false, -22},
		{Up, 22, true, 22},
		{Down, 10, false, 10},
		{Down, 10, true, -10},
	}
	for _, tt := range tests {
		if got := Delta(tt.dir, tt.speed, tt.reversed); got != tt.want {
			t.Errorf("Delta(%s, %d, %v) = %d, want %d", tt.dir, tt.speed, tt.reversed, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection(" UP "); err != nil || d != Up {
		t.Fatalf("ParseDirection(UP) = %q, %v", d, err)
	}
	if _, err := ParseDirection("left"); err == nil {
		t.Fatal("ParseDirection(left) succeeded")
	}
}

type recordingPoster struct {
	reqs []helper.ScrollRequest
	err  error
}

func (p *recordingPoster) Scroll(_ context.Context, req helper.ScrollRequest) error {
	p.reqs = append(p.reqs, req)
	return p.err
}

func TestForwarder_SendsAtAnchor(t *testing.T) {
	p := &recordingPoster{}
	f := NewForwarder(p, nil)
	if err := f.Scroll(context.Background(), geometry.LogicalPoint{X: 960, Y: 360}, Down, 0, false); err != nil {
		t.Fatalf("Scroll() error: %v", err)
	}
	if len(p.reqs) != 1 || p.reqs[0] != (helper.ScrollRequest{X: 960, Y: 360, DY: DefaultSpeed}) {
		t.Fatalf("requests = %+v", p.reqs)
	}
}

func TestForwarder_RefusesZeroAnchor(t *testing.T) {
	p := &recordingPoster{}
	err := NewForwarder(p, nil).Scroll(context.Background(), geometry.LogicalPoint{}, Up, 22, false)
	if !errors.Is(err, ErrNoAnchor) {
		t.Fatalf("Scroll() error = %v, want ErrNoAnchor", err)
	}
	if len(p.reqs) != 0 {
		t.Fatal("request sent for a zero anchor")
	}
}

func TestForwarder_NoRetry(t *testing.T) {
	p := &recordingPoster{err: helper.ErrUnavailable}
	err := NewForwarder(p, nil).Scroll(context.Background(), geometry.LogicalPoint{X: 1, Y: 1}, Up, 22, false)
	if !errors.Is(err, helper.ErrUnavailable) {
		t.Fatalf("Scroll() error = %v", err)
	}
	if len(p.reqs) != 1 {
		t.Fatalf("sent %d requests, want exactly 1", len(p.reqs))
	}
}
