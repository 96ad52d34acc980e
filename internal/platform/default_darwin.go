//go:build darwin

package platform

import "github.com/1broseidon/readsplit/internal/osascript"

// NewDefaultBackend returns the automation-bridge backend.
func NewDefaultBackend(opts Options) (Backend, error) {
	return NewMacBackend(osascript.NewExecutor(opts.OsascriptPath), opts.Logger), nil
}
