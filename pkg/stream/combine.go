package stream

import (
	"context"
	"sync"
)

// CombineLatest combines sources by latest-value combination: once every
// source has produced at least one value, a snapshot slice of each source's
// most recent value is emitted whenever any source produces a new one.
// Snapshot order matches the argument order. The combined stream completes
// when every source has completed and fails as soon as any source fails.
func CombineLatest(streams ...*Stream) *Stream {
	return New(func(ctx context.Context, out chan<- Item) {
		srcCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		type update struct {
			index int
			item  Item
		}

		funnel := make(chan update)
		var wg sync.WaitGroup
		wg.Add(len(streams))
		for i, s := range streams {
			go func(i int, s *Stream) {
				defer wg.Done()
				for item := range s.Subscribe(srcCtx) {
					select {
					case funnel <- update{index: i, item: item}:
					case <-srcCtx.Done():
						return
					}
					if item.Err != nil {
						return
					}
				}
			}(i, s)
		}
		go func() {
			wg.Wait()
			close(funnel)
		}()

		latest := make([]any, len(streams))
		seen := make([]bool, len(streams))
		ready := 0

		for u := range funnel {
			if u.item.Err != nil {
				emit(ctx, out, u.item)
				return
			}
			if !seen[u.index] {
				seen[u.index] = true
				ready++
			}
			latest[u.index] = u.item.Value
			if ready < len(streams) {
				continue
			}
			snapshot := make([]any, len(latest))
			copy(snapshot, latest)
			if !emit(ctx, out, Item{Value: snapshot}) {
				return
			}
		}
	})
}
