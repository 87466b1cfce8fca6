package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePinger struct {
	failures int
	calls    int
}

func (p *fakePinger) PingContext(ctx context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func noDelay(int) time.Duration { return 0 }

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{4, 8 * time.Second},
		{10, 8 * time.Second},
	}

	for _, tt := range tests {
		if got := RetryDelay(tt.failures); got != tt.want {
			t.Errorf("RetryDelay(%d) = %v, want %v", tt.failures, got, tt.want)
		}
	}
}

func TestPingWithRetry_SucceedsAfterFailures(t *testing.T) {
	p := &fakePinger{failures: 2}

	if err := pingWithRetry(context.Background(), p, 5, noDelay); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if p.calls != 3 {
		t.Errorf("expected 3 ping calls, got %d", p.calls)
	}
}

func TestPingWithRetry_GivesUp(t *testing.T) {
	p := &fakePinger{failures: 10}

	err := pingWithRetry(context.Background(), p, 3, noDelay)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if p.calls != 3 {
		t.Errorf("expected 3 ping calls, got %d", p.calls)
	}
}

func TestPingWithRetry_NonPositiveAttemptsPingsOnce(t *testing.T) {
	p := &fakePinger{}

	if err := pingWithRetry(context.Background(), p, 0, noDelay); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 ping call, got %d", p.calls)
	}
}

func TestPingWithRetry_StopsOnContextCancel(t *testing.T) {
	p := &fakePinger{failures: 10}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pingWithRetry(ctx, p, 5, func(int) time.Duration { return time.Hour })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 ping call before cancel, got %d", p.calls)
	}
}
