package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/1broseidon/readsplit/internal/platform"
)

type scriptedProber struct {
	checks   []bool
	request  bool
	reqErr   error
	checkN   int
	requestN int
}

func (p *scriptedProber) CheckPermission(context.Context, platform.PermissionKind) (bool, error) {
	v := p.checks[min(p.checkN, len(p.checks)-1)]
	p.checkN++
	return v, nil
}

func (p *scriptedProber) RequestPermission(context.Context, platform.PermissionKind) (bool, error) {
	p.requestN++
	return p.request, p.reqErr
}

func TestEnsure_RechecksAfterRequest(t *testing.T) {
	p := &scriptedProber{checks: []bool{false, true}, request: true}
	g := NewGate(platform.Accessibility, p, nil)

	if !g.Ensure(context.Background()) {
		t.Fatal("Ensure() = false, want true")
	}
	if p.checkN != 2 {
		t.Fatalf("check called %d times, want 2", p.checkN)
	}
	if p.requestN != 1 {
		t.Fatalf("request called %d times, want 1", p.requestN)
	}
}

func TestEnsure_DoesNotTrustRequestResult(t *testing.T) {
	p := &scriptedProber{checks: []bool{false, false}, request: true}
	g := NewGate(platform.Accessibility, p, nil)

	if g.Ensure(context.Background()) {
		t.Fatal("Ensure() = true although the re-check failed")
	}
}

func TestEnsure_GrantedSkipsRequest(t *testing.T) {
	p := &scriptedProber{checks: []bool{true}}
	g := NewGate(platform.ScreenRecording, p, nil)

	if !g.Ensure(context.Background()) {
		t.Fatal("Ensure() = false, want true")
	}
	if p.requestN != 0 || p.checkN != 1 {
		t.Fatalf("checks=%d requests=%d, want 1/0", p.checkN, p.requestN)
	}
}

func TestRequire_DeniedError(t *testing.T) {
	p := &scriptedProber{checks: []bool{false}, reqErr: errors.New("dialog dismissed")}
	err := NewGate(platform.Accessibility, p, nil).Require(context.Background())
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("Require() = %v, want ErrDenied", err)
	}
}

func TestSettingsURL(t *testing.T) {
	if got := SettingsURL(platform.Accessibility); got != "x-apple.systempreferences:com.apple.preference.security?Privacy_Accessibility" {
		t.Fatalf("accessibility url = %q", got)
	}
	if got := SettingsURL(platform.ScreenRecording); got != "x-apple.systempreferences:com.apple.preference.security?Privacy_ScreenCapture" {
		t.Fatalf("screen recording url = %q", got)
	}
}
