package stream

import (
	"context"
	"errors"
	"testing"
)

func TestJustEmitsOneValue(t *testing.T) {
	values, err := Collect(context.Background(), Just(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 1 || values[0] != 42 {
		t.Fatalf("expected [42], got %v", values)
	}
}

func TestEmptyCompletesWithoutValues(t *testing.T) {
	values, err := Collect(context.Background(), Empty())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected no values, got %v", values)
	}
}

func TestErrorFailsImmediately(t *testing.T) {
	boom := errors.New("boom")
	values, err := Collect(context.Background(), Error(boom))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected no values before failure, got %v", values)
	}
}

func TestFromSlicePreservesOrder(t *testing.T) {
	values, err := Collect(context.Background(), FromSlice([]any{1, 2, 3}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 3 || values[0] != 1 || values[1] != 2 || values[2] != 3 {
		t.Fatalf("expected [1 2 3], got %v", values)
	}
}

func TestColdStreamsReplayPerSubscription(t *testing.T) {
	s := FromSlice([]any{"a", "b"})
	for i := 0; i < 3; i++ {
		values, err := Collect(context.Background(), s)
		if err != nil {
			t.Fatalf("subscription %d failed: %v", i, err)
		}
		if len(values) != 2 {
			t.Fatalf("subscription %d: expected 2 values, got %v", i, values)
		}
	}
}

func TestDeferBuildsFreshStreamPerSubscriber(t *testing.T) {
	builds := 0
	s := Defer(func() *Stream {
		builds++
		return Just(builds)
	})

	first, err := First(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := First(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("expected fresh streams 1 and 2, got %v and %v", first, second)
	}
}

func TestFuncBridgesCallables(t *testing.T) {
	s := Func(func(context.Context) (any, error) { return "done", nil })
	value, err := First(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "done" {
		t.Fatalf("expected done, got %v", value)
	}

	boom := errors.New("boom")
	s = Func(func(context.Context) (any, error) { return nil, boom })
	if _, err := First(context.Background(), s); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestFirstOnEmptyStream(t *testing.T) {
	if _, err := First(context.Background(), Empty()); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestSubscribeHonorsCancellation(t *testing.T) {
	blocked := New(func(ctx context.Context, out chan<- Item) {
		<-ctx.Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	items := blocked.Subscribe(ctx)
	cancel()

	if _, open := <-items; open {
		t.Fatalf("expected channel to close after cancellation")
	}
}
