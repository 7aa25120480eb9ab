package fetch

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc receives a completion counter after each item finishes.
// Calls may arrive concurrently and current is a count, not an index.
type ProgressFunc func(current, total int)

// Batch fans a fetch out over many items with an optional concurrency cap.
// A failing or panicking item maps to the zero value of V for its key and
// never affects its siblings.
type Batch[T, V any] struct {
	// Name labels log lines, e.g. "weather".
	Name string
	// Limit caps in-flight fetches; <= 0 means unbounded.
	Limit int
	Key   func(T) string
	Fetch func(ctx context.Context, item T) (V, error)
}

// Run fetches every item and returns one entry per item key.
func (b Batch[T, V]) Run(ctx context.Context, items []T, onProgress ProgressFunc) map[string]V {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		done atomic.Int64
		out  = make(map[string]V, len(items))
	)

	if b.Limit > 0 {
		g.SetLimit(b.Limit)
	}
	total := len(items)

	for _, item := range items {
		item := item
		g.Go(func() error {
			key := b.Key(item)
			v, err := b.fetchOne(ctx, item)
			if err != nil {
				log.Printf("WARN: %s fetch failed for %s: %v", b.Name, key, err)
			}

			mu.Lock()
			out[key] = v
			mu.Unlock()

			n := done.Inc()
			if onProgress != nil {
				onProgress(int(n), total)
			}
			return nil
		})
	}
	g.Wait()

	return out
}

func (b Batch[T, V]) fetchOne(ctx context.Context, item T) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			v, err = zero, fmt.Errorf("panic: %v", r)
		}
	}()

	v, err = b.Fetch(ctx, item)
	if err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}
