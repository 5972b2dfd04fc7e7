package pacetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ramkansal/leadfang/internal/pace"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	var f pace.Func = r.Wait
	_ = f(context.Background(), time.Second)
	_ = f(context.Background(), 500*time.Millisecond)
	if len(r.Delays) != 2 || r.Delays[0] != time.Second || r.Delays[1] != 500*time.Millisecond {
		t.Fatalf("delays = %v", r.Delays)
	}
}

func TestRecorder_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var r Recorder
	if err := r.Wait(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(r.Delays) != 1 {
		t.Fatalf("delays = %v", r.Delays)
	}
}
