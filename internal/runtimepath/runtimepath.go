package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "readsplit"

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) the platform runtime dir reported by xdg (if present)
// 3) /tmp/readsplit-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	if xdg.RuntimeDir != "" {
		if info, err := os.Stat(xdg.RuntimeDir); err == nil && info.IsDir() {
			return xdg.RuntimeDir, nil
		}
	}

	tmpDir := filepath.Join(os.TempDir(), fmt.Sprintf("%s-runtime-%d", appName, os.Getuid()))
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, appName+".sock"), nil
}

// ConfigPath returns the default configuration file.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// AnchorPath returns the file one-shot CLI runs keep the scroll anchor in.
func AnchorPath() string {
	return filepath.Join(xdg.StateHome, appName, "anchor.json")
}

// CaptureDir returns the default screenshot directory.
func CaptureDir() string {
	return filepath.Join(xdg.CacheHome, appName, "captures")
}

// Reload re-reads the XDG environment variables.
func Reload() {
	xdg.Reload()
}
