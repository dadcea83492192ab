package batch

import (
	"context"
	"time"

	"mcpnode/internal/api"
	"mcpnode/internal/config"

	"golang.org/x/sync/errgroup"
)

// ItemFunc produces the payload for the input item at index.
type ItemFunc func(ctx context.Context, index int) (map[string]any, error)

// Executor runs item work batch by batch. Items of one batch run
// concurrently; batches never overlap.
type Executor struct {
	cfg       config.BatchConfig
	tolerance api.FailureTolerance
	logger    api.Logger
}

// New creates an Executor. A nil tolerance means failures abort the run;
// a nil logger discards diagnostics.
func New(cfg config.BatchConfig, tolerance api.FailureTolerance, logger api.Logger) *Executor {
	if cfg.ItemsPerBatch < 1 {
		cfg.ItemsPerBatch = 1
	}
	if tolerance == nil {
		tolerance = api.ContinueOnFail(false)
	}
	if logger == nil {
		logger = api.NopLogger{}
	}
	return &Executor{cfg: cfg, tolerance: tolerance, logger: logger}
}

// Run calls fn for every index in [0,n) and returns one result per index,
// in index order.
//
// With failure tolerance enabled a failing item yields a result holding
// only its error and the run continues. Otherwise the first failure aborts
// the run, cancels the rest of its batch and returns no results.
func (e *Executor) Run(ctx context.Context, n int, fn ItemFunc) ([]api.ItemResult, error) {
	results := make([]api.ItemResult, n)
	size := e.cfg.ItemsPerBatch
	batches := (n + size - 1) / size

	for b := 0; b < batches; b++ {
		start := b * size
		end := min(start+size, n)

		e.logger.Debug("Processing batch %d/%d (items %d-%d)", b+1, batches, start, end-1)
		if err := e.runBatch(ctx, start, end, fn, results); err != nil {
			return nil, err
		}

		if b < batches-1 && e.cfg.Interval > 0 {
			if err := sleep(ctx, e.cfg.Interval); err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

func (e *Executor) runBatch(ctx context.Context, start, end int, fn ItemFunc, results []api.ItemResult) error {
	tolerant := e.tolerance.Enabled()

	g, gctx := errgroup.WithContext(ctx)
	if tolerant {
		// Contained failures must not cancel their siblings.
		g = &errgroup.Group{}
		gctx = ctx
	}

	for i := start; i < end; i++ {
		g.Go(func() error {
			payload, err := fn(gctx, i)
			if err != nil {
				if !tolerant {
					return err
				}
				e.logger.Warn("Item %d failed: %v", i, err)
				results[i] = api.NewFailedItemResult(i, err)
				return nil
			}
			if payload == nil {
				payload = map[string]any{}
			}
			results[i] = api.NewItemResult(i, payload)
			return nil
		})
	}
	return g.Wait()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
