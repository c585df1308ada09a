package edge

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CalculateBatch evaluates pairs concurrently with at most workers goroutines.
// Results are returned in input order. In strict mode the first invalid pair cancels the
// remaining work and its error is returned, wrapped with the pair index.
func CalculateBatch(ctx context.Context, calc *Calculator, pairs []OddsPair, workers int) ([]CLVResult, error) {
	if calc == nil {
		calc = NewCalculator()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]CLVResult, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, pair := range pairs {
		if gctx.Err() != nil {
			break
		}
		i, pair := i, pair
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := calc.Calculate(pair)
			if err != nil {
				return fmt.Errorf("pair %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancelled parent context may have stopped the loop before any goroutine failed.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
