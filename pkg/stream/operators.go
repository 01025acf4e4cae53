package stream

import (
	"context"
	"sync"
	"time"
)

// Map transforms each value with fn, preserving arrival order. A transform
// error fails the stream.
func Map(s *Stream, fn func(ctx context.Context, value any) (any, error)) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		srcCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		for item := range s.Subscribe(srcCtx) {
			if item.Err != nil {
				emit(ctx, out, item)
				return
			}
			mapped, err := fn(ctx, item.Value)
			if err != nil {
				emit(ctx, out, Item{Err: err})
				return
			}
			if !emit(ctx, out, Item{Value: mapped}) {
				return
			}
		}
	})
}

// FlatMap routes each source value through the stream produced by fn,
// emitting every inner value before pulling the next source value. Inner
// subscriptions are sequential, so source arrival order is preserved.
func FlatMap(s *Stream, fn func(ctx context.Context, value any) *Stream) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		srcCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		for item := range s.Subscribe(srcCtx) {
			if item.Err != nil {
				emit(ctx, out, item)
				return
			}
			inner := fn(ctx, item.Value)
			for innerItem := range inner.Subscribe(srcCtx) {
				if innerItem.Err != nil {
					emit(ctx, out, innerItem)
					return
				}
				if !emit(ctx, out, innerItem) {
					return
				}
			}
		}
	})
}

// Filter re-emits values for which pred returns true. A predicate error
// fails the stream.
func Filter(s *Stream, pred func(ctx context.Context, value any) (bool, error)) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		srcCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		for item := range s.Subscribe(srcCtx) {
			if item.Err != nil {
				emit(ctx, out, item)
				return
			}
			keep, err := pred(ctx, item.Value)
			if err != nil {
				emit(ctx, out, Item{Err: err})
				return
			}
			if !keep {
				continue
			}
			if !emit(ctx, out, item) {
				return
			}
		}
	})
}

// Concat exhausts each source strictly in order: a source is subscribed only
// after the previous one has completed. The first failure terminates the
// whole sequence.
func Concat(streams ...*Stream) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		srcCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		for _, s := range streams {
			for item := range s.Subscribe(srcCtx) {
				if item.Err != nil {
					emit(ctx, out, item)
					return
				}
				if !emit(ctx, out, item) {
					return
				}
			}
		}
	})
}

// Merge interleaves all sources' emissions as they arrive. Per-source order
// is preserved; there is no ordering guarantee across sources. The merged
// stream completes when every source has completed, and fails as soon as any
// source fails, cancelling the rest.
func Merge(streams ...*Stream) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		srcCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		funnel := make(chan Item)
		var wg sync.WaitGroup
		wg.Add(len(streams))
		for _, s := range streams {
			go func(s *Stream) {
				defer wg.Done()
				for item := range s.Subscribe(srcCtx) {
					select {
					case funnel <- item:
					case <-srcCtx.Done():
						return
					}
					if item.Err != nil {
						return
					}
				}
			}(s)
		}
		go func() {
			wg.Wait()
			close(funnel)
		}()

		for item := range funnel {
			if item.Err != nil {
				emit(ctx, out, item)
				return
			}
			if !emit(ctx, out, item) {
				return
			}
		}
	})
}

// Catch recovers from a source failure by switching to the stream produced
// by handler. Successful sources pass through unchanged.
func Catch(s *Stream, handler func(ctx context.Context, err error) *Stream) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		srcCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		for item := range s.Subscribe(srcCtx) {
			if item.Err != nil {
				fallback := handler(ctx, item.Err)
				for fbItem := range fallback.Subscribe(srcCtx) {
					if !emit(ctx, out, fbItem) {
						return
					}
					if fbItem.Err != nil {
						return
					}
				}
				return
			}
			if !emit(ctx, out, item) {
				return
			}
		}
	})
}

// Retry re-subscribes to s after a failure, up to attempts total
// subscriptions, propagating the final failure once they are exhausted.
// Values emitted by failed attempts are re-emitted by later ones; this is
// the re-subscription contract cold streams make cheap.
func Retry(s *Stream, attempts int) *Stream {
	return RetryWithDelay(s, attempts, nil)
}

// RetryWithDelay is Retry with a backoff delay between attempts. The delay
// function receives the zero-based index of the attempt that just failed.
func RetryWithDelay(s *Stream, attempts int, delay func(attempt int) time.Duration) *Stream {
	if attempts < 1 {
		attempts = 1
	}
	return New(func(ctx context.Context, out chan<- Item) {
		for attempt := 0; ; attempt++ {
			srcCtx, cancel := context.WithCancel(ctx)
			var failure error
			for item := range s.Subscribe(srcCtx) {
				if item.Err != nil {
					failure = item.Err
					break
				}
				if !emit(ctx, out, item) {
					cancel()
					return
				}
			}
			cancel()

			if failure == nil {
				return
			}
			if attempt+1 >= attempts {
				emit(ctx, out, Item{Err: failure})
				return
			}
			if delay != nil && !sleep(ctx, delay(attempt)) {
				return
			}
		}
	})
}

// Timeout fails with terr when the source produces nothing for d, measured
// from subscription and re-armed after every emission. A nil terr falls back
// to ErrTimeout.
func Timeout(s *Stream, d time.Duration, terr error) *Stream {
	if terr == nil {
		terr = ErrTimeout
	}
	return New(func(ctx context.Context, out chan<- Item) {
		srcCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		items := s.Subscribe(srcCtx)
		timer := time.NewTimer(d)
		defer timer.Stop()

		for {
			select {
			case item, open := <-items:
				if !open {
					return
				}
				if item.Err != nil {
					emit(ctx, out, item)
					return
				}
				if !emit(ctx, out, item) {
					return
				}
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(d)
			case <-timer.C:
				emit(ctx, out, Item{Err: terr})
				return
			case <-ctx.Done():
				return
			}
		}
	})
}

// Tap invokes the side-effect callbacks for each value and for the terminal
// error without altering what flows through. Either callback may be nil.
func Tap(s *Stream, onValue func(value any), onError func(err error)) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		srcCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		for item := range s.Subscribe(srcCtx) {
			if item.Err != nil {
				if onError != nil {
					onError(item.Err)
				}
				emit(ctx, out, item)
				return
			}
			if onValue != nil {
				onValue(item.Value)
			}
			if !emit(ctx, out, item) {
				return
			}
		}
	})
}
