package engine

import (
	"context"
	"sync/atomic"
	"time"
)

// Runner drives the simulation at a fixed wall-clock cadence. Stop
// takes effect between ticks, never mid-tick.
type Runner struct {
	sim      *Simulation
	interval time.Duration
	running  atomic.Bool
}

// NewRunner wraps a simulation with a tick driver.
func NewRunner(sim *Simulation, interval time.Duration) *Runner {
	return &Runner{sim: sim, interval: interval}
}

// Run ticks until the context is canceled or Stop is called. Blocks.
func (r *Runner) Run(ctx context.Context) {
	r.running.Store(true)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.sim.log.Info("tick loop started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.running.Store(false)
			r.sim.log.Info("tick loop stopped", "reason", ctx.Err())
			return
		case <-ticker.C:
			if !r.running.Load() {
				r.sim.log.Info("tick loop stopped")
				return
			}
			r.sim.Tick()
		}
	}
}

// Stop requests the loop to exit after the current tick.
func (r *Runner) Stop() {
	r.running.Store(false)
}

// Running reports whether the loop is active.
func (r *Runner) Running() bool {
	return r.running.Load()
}
