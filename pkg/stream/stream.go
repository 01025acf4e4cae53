package stream

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is the default terminal error emitted by Timeout.
	ErrTimeout = errors.New("stream timed out")
	// ErrEmpty is returned by First when the stream completes without
	// producing a value.
	ErrEmpty = errors.New("stream completed without a value")
)

// Item is a single emission: a value, or a terminal error. A producer sends
// at most one Item with a non-nil Err, always as its last emission.
type Item struct {
	Value any
	Err   error
}

// Stream is a cold asynchronous sequence of values. Each Subscribe runs the
// producer from the beginning in its own goroutine.
type Stream struct {
	producer func(ctx context.Context, out chan<- Item)
}

// New builds a stream from a producer function. The producer must send every
// item through emit (or an equivalent ctx-aware select) so that cancellation
// is never blocked, and must return after sending a terminal error.
func New(producer func(ctx context.Context, out chan<- Item)) *Stream {
	return &Stream{producer: producer}
}

// Subscribe starts the producer and returns its emission channel. The channel
// is closed once the producer returns, whether by completion, failure, or
// cancellation. Callers that abandon the channel early must cancel ctx to
// release the producer goroutine.
func (s *Stream) Subscribe(ctx context.Context) <-chan Item {
	out := make(chan Item)
	go func() {
		defer close(out)
		s.producer(ctx, out)
	}()
	return out
}

// emit delivers one item unless the context is cancelled first. It reports
// whether the item was delivered.
func emit(ctx context.Context, out chan<- Item, item Item) bool {
	select {
	case out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

// sleep waits for d or until ctx is cancelled, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Collect subscribes and gathers every value until the stream terminates.
// On failure it returns the values seen so far alongside the error.
func Collect(ctx context.Context, s *Stream) ([]any, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var values []any
	for item := range s.Subscribe(ctx) {
		if item.Err != nil {
			return values, item.Err
		}
		values = append(values, item.Value)
	}
	if err := ctx.Err(); err != nil {
		return values, err
	}
	return values, nil
}

// First subscribes, returns the first value, and cancels the subscription.
// A stream that completes without emitting yields ErrEmpty.
func First(ctx context.Context, s *Stream) (any, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for item := range s.Subscribe(ctx) {
		if item.Err != nil {
			return nil, item.Err
		}
		return item.Value, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrEmpty
}
