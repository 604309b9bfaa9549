package engine

import (
	"context"
	"time"

	"github.com/rustyeddy/propguard/broker"
)

// Runner drives cycles one after another until its context ends.
type Runner struct {
	Orchestrator *Orchestrator
	// Executor places Order outcomes. Nil means intents are only reported.
	Executor broker.OrderExecutor
	// Interval between cycles. Zero runs back to back, for replays.
	Interval time.Duration
	// Clock supplies the cycle time. Nil means time.Now.
	Clock func() time.Time
	// Step runs before every cycle after the first; false ends the run.
	Step func() bool
	// OnOutcome observes every outcome.
	OnOutcome func(Outcome)
}

// Run executes cycles and returns nil when Step is exhausted or ctx is
// cancelled. Per-cycle failures are already folded into outcomes.
func (r *Runner) Run(ctx context.Context) error {
	clock := r.Clock
	if clock == nil {
		clock = time.Now
	}

	var tick <-chan time.Time
	if r.Interval > 0 {
		t := time.NewTicker(r.Interval)
		defer t.Stop()
		tick = t.C
	}

	for first := true; ; first = false {
		if !first {
			if tick != nil {
				select {
				case <-ctx.Done():
				case <-tick:
				}
			}
			if ctx.Err() != nil {
				return nil
			}
			if r.Step != nil && !r.Step() {
				return nil
			}
		}

		out := r.Orchestrator.Cycle(ctx, clock())
		if r.Executor != nil {
			_, _ = r.Orchestrator.Execute(ctx, r.Executor, out)
		}
		if r.OnOutcome != nil {
			r.OnOutcome(out)
		}
	}
}
