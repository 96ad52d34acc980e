package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/readsplit/internal/anchorstore"
	"github.com/1broseidon/readsplit/internal/config"
	"github.com/1broseidon/readsplit/internal/daemon"
	"github.com/1broseidon/readsplit/internal/hotkeys"
	"github.com/1broseidon/readsplit/internal/ipc"
	"github.com/1broseidon/readsplit/internal/procs"
	"github.com/1broseidon/readsplit/internal/reader"
	"github.com/1broseidon/readsplit/internal/runtimepath"
	"github.com/1broseidon/readsplit/internal/scroll"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	configPath := fs.String("config", "", "Config file path (default: "+defaultConfigHint()+")")
	watch := fs.Bool("watch", true, "Reload when the config file changes")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: readsplit daemon [--config PATH] [--watch=false]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Serve arrange, scroll and capture requests over a local socket,")
		fmt.Fprintln(os.Stderr, "keeping the scroll anchor between commands. SIGHUP reloads config.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	path := *configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	cfg := res.Config
	log.Printf("Configuration loaded (reader: %s, split: %d%% host %s)", orDefault(cfg.ReaderApp, "default"), cfg.SplitPercent, cfg.HostSide)

	var level slog.LevelVar
	level.Set(cfg.SlogLevel())
	logger := newLogger(&level)

	if ipc.NewClient().WithTimeout(daemonProbeTimeout).Ping() == nil {
		log.Printf("Another readsplit daemon is already running")
		return 1
	}

	anchors := anchorstore.NewFile(runtimepath.AnchorPath())
	coord, backend, err := newLocalCoordinator(cfg, anchors, logger)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloadChan := make(chan struct{}, 1)
	ipcServer, err := ipc.NewServer(cfg, path, coord, reloadChan)
	if err != nil {
		log.Printf("Failed to create IPC server: %v", err)
		return 1
	}
	if err := ipcServer.Start(ctx); err != nil {
		log.Printf("Failed to start IPC server: %v", err)
		return 1
	}
	defer ipcServer.Stop()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   logger,
	}, anchors, procs.Checker{})
	// Drop an anchor left by a reader that quit while no daemon ran.
	reconciler.ReconcileNow(ctx)
	go reconciler.Run(ctx)

	var keys *hotkeys.Handler
	// bindHotkeys grabs c's scroll hotkeys, creating the handler on first use.
	bindHotkeys := func(c *config.Config) {
		if keys == nil {
			if c.ScrollUpHotkey == "" && c.ScrollDownHotkey == "" {
				return
			}
			h, err := hotkeys.NewHandler(backend, logger)
			if err != nil {
				log.Printf("Warning: scroll hotkeys disabled: %v", err)
				return
			}
			keys = h
			go keys.Run(ctx)
		}
		n := keys.Bind(hotkeys.ScrollBindings(c.ScrollUpHotkey, c.ScrollDownHotkey, func(dir scroll.Direction) {
			if err := coord.Scroll(ctx, reader.ScrollRequest{Direction: dir}); err != nil {
				log.Printf("Hotkey scroll %s failed: %v", dir, err)
			}
		}))
		log.Printf("Scroll hotkeys bound: %d", n)
	}
	bindHotkeys(cfg)

	// apply pushes a new config into every component.
	var applyMu sync.Mutex
	applied := cfg
	apply := func(newCfg *config.Config) {
		applyMu.Lock()
		defer applyMu.Unlock()
		old := applied
		applied = newCfg

		ipcServer.UpdateConfig(newCfg)
		coord.UpdateOptions(reader.OptionsFromConfig(newCfg))
		level.Set(newCfg.SlogLevel())
		if old.ScrollUpHotkey != newCfg.ScrollUpHotkey || old.ScrollDownHotkey != newCfg.ScrollDownHotkey {
			bindHotkeys(newCfg)
		}
		if old.HelperURL != newCfg.HelperURL || old.HelperTimeout != newCfg.HelperTimeout ||
			old.OsascriptPath != newCfg.OsascriptPath || old.ScaleFactorOverride != newCfg.ScaleFactorOverride {
			log.Println("helper_url, helper_timeout, osascript_path and scale_factor_override take effect after a daemon restart")
		}
	}
	reload := func(reason string) {
		res, err := config.LoadFromPath(path)
		if err != nil {
			log.Printf("Config reload (%s) failed: %v", reason, err)
			return
		}
		apply(res.Config)
		log.Printf("Config reloaded (%s)", reason)
	}

	if *watch {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			log.Printf("Warning: config watcher disabled: %v", err)
		} else {
			watcher := daemon.NewConfigWatcher(path, 0, func() { reload("file changed") }, logger)
			go func() {
				if err := watcher.Run(ctx); err != nil {
					log.Printf("Warning: config watcher stopped: %v", err)
				}
			}()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	log.Println("readsplit daemon started successfully")
	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				reload("SIGHUP")
			default:
				log.Println("Shutting down readsplit daemon...")
				return 0
			}

		case <-reloadChan:
			// Config was reloaded via IPC, update components
			apply(ipcServer.GetConfig())
		}
	}
}
