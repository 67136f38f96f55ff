package livequery

import (
	"context"
)

// Snapshot is one emission of a watched query.
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Watch emits the result of load immediately and again after every commit that
// touches one of tables. A failing load is emitted as Snapshot.Err and the
// watch keeps running. The channel is closed when ctx is done or the registry
// is closed.
func Watch[T any](ctx context.Context, reg *Registry, tables []string, load func(ctx context.Context) (T, error)) <-chan Snapshot[T] {
	// subscribe before the first load so no commit falls in between
	sub := reg.Subscribe(tables...)
	out := make(chan Snapshot[T])

	go func() {
		defer close(out)
		defer sub.Cancel()

		for {
			v, err := load(ctx)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- Snapshot[T]{Value: v, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case _, ok := <-sub.C:
				if !ok {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
