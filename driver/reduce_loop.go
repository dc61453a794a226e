package driver

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rm-dr/lamb/term"
)

// progressInterval is how often a long-running reduction logs a heartbeat
// with its current step count.
const progressInterval = 2 * time.Second

// reduceLoop repeatedly calls Reduce up to reductionLimit steps, honoring
// ctx cancellation as a checkpoint-level interrupt between steps and
// consulting the stepper while step mode is on.
//
// The reduction itself and a periodic progress logger run as two errgroup
// goroutines sharing gctx, so a cancellation from the caller (ctrl-C at the
// repl) stops both promptly instead of leaving a stray heartbeat goroutine
// behind; steps/applies are atomics purely so the
// heartbeat can read them without racing the reducer.
func (d *Driver) reduceLoop(ctx context.Context, stepper Stepper, root *term.Root) (StopReason, int, int, error) {
	var steps, applies atomic.Int64
	var stopReason StopReason
	var reduceErr error

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		skipToEnd := false
		for {
			if gctx.Err() != nil {
				stopReason = StopInterrupt
				return nil
			}
			if !d.unlimited && int(steps.Load()) >= d.reductionLimit {
				stopReason = StopMaxExceeded
				return nil
			}

			kind, err := term.Reduce(root, d.ids, d.macros, d.history)
			if err != nil {
				reduceErr = err
				return err
			}
			if kind == term.ReduceNone {
				stopReason = StopBetaNormal
				return nil
			}

			n := steps.Add(1)
			if kind == term.ReduceFunctionApply {
				applies.Add(1)
			}

			if d.stepMode && !skipToEnd && stepper != nil {
				// Skip-to-end quiets the rest of this line only; step mode
				// itself stays on for the next one.
				skipToEnd = stepper.Await(gctx, int(n), kind, term.Print(root, false))
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return nil
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				d.logger.Debug("reduction in progress",
					zap.String("session", d.sessionID.String()),
					zap.Int64("steps", steps.Load()),
				)
			}
		}
	})

	_ = g.Wait()

	return stopReason, int(steps.Load()), int(applies.Load()), reduceErr
}
