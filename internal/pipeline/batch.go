package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/latestver/internal/model"
)

// BatchProcessor resolves multiple targets concurrently.
// Targets share no state; each gets a fresh pipeline from the factory.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each target.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent resolutions.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent resolutions.
// Default is 10 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     10,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch resolves targets concurrently and returns one resolution per
// target, in input order. A failed target does not stop the others.
//
// The returned error is a *multierror.Error listing every failed target in
// input order, or nil when all targets resolved.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []model.Target) ([]*model.Resolution, error) {
	return bp.ProcessBatchWithCallback(ctx, targets, nil)
}

// ProcessBatchWithCallback is like ProcessBatch but also hands every
// resolution to callback as soon as it and all resolutions before it are
// done. Calls are serialized and follow input order, so callback may write to
// a shared output without locking.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []model.Target,
	callback func(res *model.Resolution, index int),
) ([]*model.Resolution, error) {
	bp.logger.Info("starting batch resolution",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	var (
		mu      sync.Mutex
		next    int
		results = make([]*model.Resolution, len(targets))
	)

	err := bp.run(ctx, targets, func(res *model.Resolution, index int) {
		mu.Lock()
		defer mu.Unlock()

		results[index] = res
		for next < len(results) && results[next] != nil {
			if callback != nil {
				callback(results[next], next)
			}
			next++
		}
	})
	if err != nil {
		return results, err
	}

	var merr *multierror.Error
	failed := 0
	for _, res := range results {
		if res.Error != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", res.Target.DisplayName(), res.Error))
			failed++
		}
	}

	bp.logger.Info("batch resolution complete",
		"total_targets", len(targets),
		"failed", failed,
		"elapsed", time.Since(startTime),
	)

	return results, merr.ErrorOrNil()
}

func (bp *BatchProcessor) run(
	ctx context.Context,
	targets []model.Target,
	callback func(res *model.Resolution, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				res := model.NewResolution(target)
				res.SetError(err)
				callback(res, i)
				return nil
			}

			bp.logger.Debug("resolving target",
				"target", target.DisplayName(),
				"index", i+1,
				"total", len(targets),
			)

			res, err := bp.pipelineFactory().Run(ctx, target)
			if err != nil {
				bp.logger.Warn("resolution failed",
					"target", target.DisplayName(),
					"error", err,
				)
			} else {
				bp.logger.Debug("resolution completed",
					"target", target.DisplayName(),
					"latest", res.Latest,
				)
			}

			// Failures are recorded on the resolution so the other targets keep going.
			callback(res, i)
			return nil
		})
	}

	return g.Wait()
}
