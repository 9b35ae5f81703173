package aggregate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quotesnap/internal/provider"
)

// Feed pairs an exchange table with the source that refreshes it.
type Feed struct {
	Table  *provider.Table
	Source provider.Source
}

// Result summarizes one sweep.
type Result struct {
	Exchange string
	// Updated counts quote fields that received a fresh value.
	Updated int
	// Failed counts symbols whose fetch reported an error, including
	// partial successes.
	Failed int
}

// Sweep refreshes every symbol of table from source. Failures are logged and
// leave the previous values in place; the sweep always visits every symbol.
// There is no retry: the next cycle is the retry.
func Sweep(ctx context.Context, table *provider.Table, source provider.Source, logger *zap.Logger) Result {
	res := Result{Exchange: table.Name()}
	for _, symbol := range table.Symbols() {
		update, err := fetch(ctx, source, symbol)
		if update.Buy != nil {
			res.Updated++
		}
		if update.Sell != nil {
			res.Updated++
		}
		table.Apply(symbol, update)

		if err != nil {
			res.Failed++
			logger.Warn("quote fetch failed",
				zap.String("exchange", table.Name()),
				zap.String("symbol", string(symbol)),
				zap.String("kind", provider.Kind(err)),
				zap.Bool("partial", !update.Empty()),
				zap.Error(err),
			)
		}
	}
	return res
}

// fetch calls source and turns a panic into an error scoped to symbol.
func fetch(ctx context.Context, source provider.Source, symbol provider.Symbol) (update provider.Update, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			update = provider.Update{}
			err = provider.BadResponse(source.Name(), symbol, "", fmt.Errorf("source panicked: %v", rec))
		}
	}()
	return source.Fetch(ctx, symbol, provider.Fiat)
}

// SweepAll sweeps every feed concurrently and waits for all of them. Each
// table is touched only by its own goroutine. Results are in feed order.
func SweepAll(ctx context.Context, feeds []Feed, logger *zap.Logger) []Result {
	results := make([]Result, len(feeds))
	var g errgroup.Group
	for i, f := range feeds {
		g.Go(func() error {
			results[i] = Sweep(ctx, f.Table, f.Source, logger)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
