package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	t.Parallel()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name   string
		ctx    context.Context
		d      time.Duration
		expect error
	}{
		{name: "elapses", ctx: context.Background(), d: 5 * time.Millisecond},
		{name: "non-positive", ctx: context.Background(), d: 0},
		{name: "cancelled before the delay", ctx: cancelled, d: time.Hour, expect: context.Canceled},
		{name: "cancelled with no delay", ctx: cancelled, d: 0, expect: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := WaitFor(tt.ctx, tt.d); !errors.Is(err, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, err)
			}
		})
	}
}

func TestWaitForDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := WaitFor(ctx, time.Minute); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("wait did not stop at the deadline, took %v", elapsed)
	}
}
