package governance

import (
	"testing"
	"time"
)

func TestNewRetryPolicyFillsZeroFields(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{})
	cfg := policy.Config()
	if cfg.InitialBackoff != 100*time.Millisecond {
		t.Fatalf("expected default initial backoff, got %v", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != 5*time.Second {
		t.Fatalf("expected default max backoff, got %v", cfg.MaxBackoff)
	}
	if cfg.BackoffMultiplier != 2.0 {
		t.Fatalf("expected default multiplier, got %v", cfg.BackoffMultiplier)
	}
}

func TestCalculateBackoffGrowsExponentially(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            false,
	})

	for attempt, want := range []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	} {
		if got := policy.CalculateBackoff(attempt); got != want {
			t.Fatalf("attempt %d: expected %v, got %v", attempt, want, got)
		}
	}
}

func TestCalculateBackoffRespectsCap(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            false,
	})
	if got := policy.CalculateBackoff(10); got != time.Second {
		t.Fatalf("expected capped backoff of 1s, got %v", got)
	}
}

func TestCalculateBackoffJitterStaysBounded(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	})

	for i := 0; i < 100; i++ {
		got := policy.CalculateBackoff(1)
		if got < 200*time.Millisecond || got >= 250*time.Millisecond {
			t.Fatalf("jittered backoff %v outside [200ms, 250ms)", got)
		}
	}
}
