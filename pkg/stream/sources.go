package stream

import "context"

// Just produces exactly one value and completes.
func Just(value any) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		emit(ctx, out, Item{Value: value})
	})
}

// Empty completes immediately without producing anything.
func Empty() *Stream {
	return New(func(context.Context, chan<- Item) {})
}

// Error fails immediately with err.
func Error(err error) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		emit(ctx, out, Item{Err: err})
	})
}

// FromSlice produces every element of values in order, then completes.
func FromSlice(values []any) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		for _, v := range values {
			if !emit(ctx, out, Item{Value: v}) {
				return
			}
		}
	})
}

// Defer builds the inner stream lazily at subscription time. Each subscriber
// gets a fresh inner stream.
func Defer(factory func() *Stream) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		inner := factory()
		for item := range inner.Subscribe(ctx) {
			if !emit(ctx, out, item) {
				return
			}
			if item.Err != nil {
				return
			}
		}
	})
}

// Func runs fn once per subscription, emitting its result or failing with
// its error. This is the bridge for callable work such as tool invocations.
func Func(fn func(ctx context.Context) (any, error)) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		value, err := fn(ctx)
		if err != nil {
			emit(ctx, out, Item{Err: err})
			return
		}
		emit(ctx, out, Item{Value: value})
	})
}
