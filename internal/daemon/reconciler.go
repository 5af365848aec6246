// Package daemon holds background jobs of the ring light daemon.
package daemon

import (
	"context"
	"log/slog"
	"time"
)

// Poster schedules work on the UI loop.
type Poster interface {
	Post(fn func())
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	// Interval between passes. Zero or negative disables the reconciler.
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-reads the display topology so overlays whose
// creation failed, or whose change notification was missed, converge.
type Reconciler struct {
	interval time.Duration
	loop     Poster
	resync   func()
	logger   *slog.Logger
}

// NewReconciler creates a reconciler that posts resync to loop on every
// tick.
func NewReconciler(cfg ReconcilerConfig, loop Poster, resync func()) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		interval: cfg.Interval,
		loop:     loop,
		resync:   resync,
		logger:   logger,
	}
}

// Enabled reports whether Run does anything.
func (r *Reconciler) Enabled() bool {
	return r.interval > 0
}

// Run starts the reconciliation loop. Blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	if !r.Enabled() {
		r.logger.Debug("reconciler disabled")
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.ReconcileNow()
		}
	}
}

// ReconcileNow posts a single pass without waiting for it.
func (r *Reconciler) ReconcileNow() {
	r.loop.Post(r.reconcile)
}

func (r *Reconciler) reconcile() {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()
	r.logger.Debug("reconciler pass")
	r.resync()
}
