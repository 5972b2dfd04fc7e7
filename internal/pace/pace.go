// Package pace holds the fixed courtesy delays between outbound requests.
package pace

import (
	"context"
	"time"
)

// Func waits for d or until ctx is done, whichever comes first.
type Func func(ctx context.Context, d time.Duration) error

// Wait is the real Func. It returns ctx.Err() when interrupted.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
