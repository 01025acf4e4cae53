package stream

import (
	"context"
	"errors"
	"testing"
)

func TestCombineLatestPairsSingleValueSources(t *testing.T) {
	s := CombineLatest(Just(1), Just("a"))
	values, err := Collect(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("expected 1 snapshot, got %v", values)
	}
	snapshot, ok := values[0].([]any)
	if !ok || len(snapshot) != 2 {
		t.Fatalf("expected a 2-element snapshot, got %v", values[0])
	}
	if snapshot[0] != 1 || snapshot[1] != "a" {
		t.Fatalf("expected [1 a], got %v", snapshot)
	}
}

func TestCombineLatestWaitsForAllSources(t *testing.T) {
	// One source never emits: no snapshot may be produced.
	gate := make(chan struct{})
	silent := New(func(ctx context.Context, out chan<- Item) {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	items := CombineLatest(Just(1), silent).Subscribe(ctx)

	select {
	case item, open := <-items:
		if open {
			t.Fatalf("expected no emission before all sources produce, got %v", item)
		}
	default:
	}

	cancel()
	close(gate)
	for range items {
	}
}

func TestCombineLatestEmitsPerUpdateOnceReady(t *testing.T) {
	s := CombineLatest(FromSlice([]any{1, 2, 3}), Just("x"))
	values, err := Collect(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) == 0 {
		t.Fatalf("expected at least one snapshot")
	}
	final := values[len(values)-1].([]any)
	if final[0] != 3 || final[1] != "x" {
		t.Fatalf("expected final snapshot [3 x], got %v", final)
	}
}

func TestCombineLatestFailsFast(t *testing.T) {
	boom := errors.New("boom")
	_, err := Collect(context.Background(), CombineLatest(Just(1), Error(boom)))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
