package upstream

import (
	"context"
	"time"
)

// Wait blocks for d or until the context is done, whichever comes first.
// Used for rate-limit backoff between requests to the public APIs.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
