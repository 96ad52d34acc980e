package procs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMatchesApp(t *testing.T) {
	tests := []struct {
		app, name, exe string
		want           bool
	}{
		{"Preview", "Preview", "", true},
		{"preview", "Preview", "", true},
		{"Preview.app", "Preview", "", true},
		{"Preview", "QuickLookUIService", "/System/Applications/Preview.app/Contents/XPCServices/x", true},
		{"Skim", "skim-helper", "/Applications/Skim.app/Contents/MacOS/Skim", true},
		{"evince", "evince", "/usr/bin/evince", true},
		{"zathura", "zathura-wrap", "/usr/bin/zathura", true},
		{"Preview", "PreviewShell", "/usr/bin/previewshell", false},
		{"", "anything", "/bin/anything", false},
	}
	for _, tt := range tests {
		if got := MatchesApp(tt.app, tt.name, tt.exe); got != tt.want {
			t.Errorf("MatchesApp(%q, %q, %q) = %v, want %v", tt.app, tt.name, tt.exe, got, tt.want)
		}
	}
}

func TestRunning_FindsCurrentProcess(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Skipf("os.Executable: %v", err)
	}
	ok, err := Checker{}.Running(context.Background(), filepath.Base(exe))
	if err != nil {
		t.Fatalf("Running() error: %v", err)
	}
	if !ok {
		t.Fatalf("Running(%q) = false for the test binary itself", filepath.Base(exe))
	}
}

func TestRunning_UnknownApp(t *testing.T) {
	ok, err := Checker{}.Running(context.Background(), "readsplit-no-such-app-4f1c")
	if err != nil {
		t.Fatalf("Running() error: %v", err)
	}
	if ok {
		t.Fatal("Running() = true for a nonexistent app")
	}
}
