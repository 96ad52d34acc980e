// Package daemon holds the long-running helpers of the readsplit daemon.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/readsplit/internal/anchorstore"
)

// ProcessChecker reports whether an application process is running.
type ProcessChecker interface {
	Running(ctx context.Context, app string) (bool, error)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops a scroll anchor whose reader has quit, so a
// later scroll re-locates the reader instead of injecting input at a stale
// point.
type Reconciler struct {
	interval time.Duration
	anchors  anchorstore.Store
	procs    ProcessChecker
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, anchors anchorstore.Store, procs ProcessChecker) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		anchors:  anchors,
		procs:    procs,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass and reports whether the
// anchor was cleared.
func (r *Reconciler) reconcile(ctx context.Context) (cleared bool) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	anchor, ok, err := r.anchors.Load()
	if err != nil {
		r.logger.Error("reconciler: failed to load anchor", "error", err)
		return false
	}
	if !ok || anchor.App == "" {
		return false
	}

	running, err := r.procs.Running(ctx, anchor.App)
	if err != nil {
		r.logger.Warn("reconciler: process check failed", "app", anchor.App, "error", err)
		return false
	}
	if running {
		return false
	}

	r.logger.Info("reconciler: reader quit, clearing anchor", "app", anchor.App, "title", anchor.Title)
	if err := r.anchors.Clear(); err != nil {
		r.logger.Warn("reconciler: failed to clear anchor", "error", err)
		return false
	}
	return true
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) bool {
	return r.reconcile(ctx)
}
