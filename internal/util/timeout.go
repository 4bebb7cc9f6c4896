package util

import (
	"context"
	"time"
)

// CallWithTimeout runs call under a deadline derived from ctx.
//
// Parameters:
//   - ctx: Parent context; its cancellation still applies.
//   - timeout: Bound for the call; zero or negative runs call on ctx unchanged.
//   - call: Runtime or registry query to bound.
//
// Returns:
//   - T: Result of call.
//   - error: Error of call, context.DeadlineExceeded when the bound is hit first.
func CallWithTimeout[T any](
	ctx context.Context,
	timeout time.Duration,
	call func(context.Context) (T, error),
) (T, error) {
	if timeout <= 0 {
		return call(ctx)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return call(callCtx)
}
