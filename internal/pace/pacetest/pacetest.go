// Package pacetest provides a pace.Func that records delays instead of
// sleeping.
package pacetest

import (
	"context"
	"time"
)

// Recorder collects every requested delay.
type Recorder struct {
	Delays []time.Duration
}

// Wait satisfies pace.Func. It returns immediately, or ctx.Err() when ctx
// is already done.
func (r *Recorder) Wait(ctx context.Context, d time.Duration) error {
	r.Delays = append(r.Delays, d)
	return ctx.Err()
}
