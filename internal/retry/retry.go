// Package retry provides a fixed-delay retry decorator for fallible remote
// operations.
package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Options controls the retry loop.
type Options struct {
	// Attempts is the total number of attempts, including the first.
	Attempts int
	// Delay is the fixed wait between attempts. No backoff growth.
	Delay time.Duration
}

func (o Options) withDefaults() Options {
	if o.Attempts <= 0 {
		o.Attempts = 5
	}
	if o.Delay <= 0 {
		o.Delay = 5 * time.Second
	}
	return o
}

// Do invokes op, retrying on any failure after a fixed delay, up to
// opts.Attempts total attempts. The first success wins. The final attempt's
// error is returned unchanged: no wrapping, no swallowing. Context
// cancellation aborts the wait between attempts.
func Do[T any](ctx context.Context, logger *zap.Logger, op func(context.Context) (T, error), opts Options) (T, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == opts.Attempts {
			break
		}
		logger.Warn("retrying after failure",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", opts.Attempts),
			zap.Duration("delay", opts.Delay),
			zap.Error(err),
		)

		t := time.NewTimer(opts.Delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		}
	}
	return zero, lastErr
}
