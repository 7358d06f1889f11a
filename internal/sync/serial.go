package sync

import (
	"context"
	"time"
)

// SerialAction is one side-effecting calendar call.
type SerialAction func(ctx context.Context) error

// SerialExecutor applies side-effecting actions strictly one at a time, in
// order, never overlapping. The calendar service rate-limits mutating calls,
// and issuing them concurrently for one calendar both trips those limits and
// invalidates the observed-state assumptions made between calls.
type SerialExecutor struct {
	// Timeout bounds each individual action. Zero means no per-action
	// timeout.
	Timeout time.Duration
}

// Run executes every action to completion before starting the next and
// returns one error slot per action, in input order. A failed action does not
// stop the remaining ones; callers aggregate the non-nil entries after every
// independent action has been attempted. Only cancellation of ctx cuts the
// run short, in which case the untried slots carry the context error.
func (e SerialExecutor) Run(ctx context.Context, actions []SerialAction) []error {
	errs := make([]error, len(actions))
	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}

		actionCtx := ctx
		cancel := func() {}
		if e.Timeout > 0 {
			actionCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		}
		errs[i] = action(actionCtx)
		cancel()
	}
	return errs
}
