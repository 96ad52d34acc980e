// Package procs answers whether an application process is running.
package procs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// Checker scans the process table with gopsutil.
type Checker struct{}

// Running reports whether a process belonging to app exists.
func (Checker) Running(ctx context.Context, app string) (bool, error) {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}
	for _, p := range ps {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if MatchesApp(app, name, "") {
			return true, nil
		}
		exe, err := p.ExeWithContext(ctx)
		if err != nil {
			continue
		}
		if MatchesApp(app, name, exe) {
			return true, nil
		}
	}
	return false, nil
}

// MatchesApp reports whether a process with the given name and executable
// path belongs to app. macOS apps match on their bundle path, other
// platforms on the process or executable name.
func MatchesApp(app, name, exe string) bool {
	app = strings.TrimSuffix(strings.TrimSpace(app), ".app")
	if app == "" {
		return false
	}
	if strings.EqualFold(name, app) {
		return true
	}
	if exe == "" {
		return false
	}
	if strings.Contains(strings.ToLower(exe), "/"+strings.ToLower(app)+".app/") {
		return true
	}
	return strings.EqualFold(filepath.Base(exe), app)
}
