package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/1broseidon/readsplit/internal/anchorstore"
	"github.com/1broseidon/readsplit/internal/config"
	"github.com/1broseidon/readsplit/internal/geometry"
	"github.com/1broseidon/readsplit/internal/helper"
	"github.com/1broseidon/readsplit/internal/ipc"
	"github.com/1broseidon/readsplit/internal/opener"
	"github.com/1broseidon/readsplit/internal/platform"
	"github.com/1broseidon/readsplit/internal/procs"
	"github.com/1broseidon/readsplit/internal/reader"
	"github.com/1broseidon/readsplit/internal/runtimepath"
)

// daemonProbeTimeout keeps commands snappy when no daemon is running.
const daemonProbeTimeout = 500 * time.Millisecond

// session is a coordinator for one CLI invocation, either the daemon's or
// an in-process one.
type session struct {
	coord  ipc.Coordinator
	remote bool
	cfg    *config.Config
	close  func()
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.LoadFromPath(path)
}

// newLogger writes text logs to stderr; stdout is reserved for command
// output and the MCP transport.
func newLogger(level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openSession prefers a running daemon so the scroll anchor and operation
// serialization are shared across invocations.
func openSession(configPath string, noDaemon bool) (*session, error) {
	res, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg := res.Config

	if !noDaemon {
		probe := ipc.NewClient().WithTimeout(daemonProbeTimeout)
		if probe.Ping() == nil {
			return &session{
				coord:  ipc.NewRemote(ipc.NewClient()),
				remote: true,
				cfg:    cfg,
				close:  func() {},
			}, nil
		}
	}

	logger := newLogger(cfg.SlogLevel())
	coord, backend, err := newLocalCoordinator(cfg, anchorstore.NewFile(runtimepath.AnchorPath()), logger)
	if err != nil {
		return nil, err
	}
	return &session{
		coord: coord,
		cfg:   cfg,
		close: func() { backend.Close() },
	}, nil
}

// newLocalCoordinator wires the platform backend and every collaborator
// the coordinator drives.
func newLocalCoordinator(cfg *config.Config, anchors anchorstore.Store, logger *slog.Logger) (*reader.Coordinator, platform.Backend, error) {
	backend, err := platform.NewDefaultBackend(platform.Options{
		OsascriptPath: cfg.OsascriptPath,
		Scale:         geometry.Scale(cfg.GetScale()),
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to window system: %w", err)
	}

	coord := reader.New(reader.Deps{
		Backend: backend,
		Procs:   procs.Checker{},
		Helper:  helper.NewClient(cfg.HelperURL, cfg.HelperTimeout),
		Opener:  opener.New(),
		Anchors: anchors,
		Logger:  logger,
	}, reader.OptionsFromConfig(cfg))
	return coord, backend, nil
}

// defaultJSON reports whether output should be JSON when --json is not
// given: scripts and pipes get JSON, terminals get text.
func defaultJSON() bool {
	return !term.IsTerminal(int(os.Stdout.Fd()))
}
