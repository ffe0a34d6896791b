package csg

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Parallel calls fn for i in [0, n) on up to GOMAXPROCS goroutines and
// returns the results in index order. Use it only for operands that do not
// depend on each other; each chain of operations on one value stays
// sequential inside fn.
//
// The first error cancels the context passed to the remaining calls and is
// returned. Calls already running are waited for.
func Parallel[T any](ctx context.Context, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	if n == 0 {
		return out, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			v, err := fn(gctx, i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
