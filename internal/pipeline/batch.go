package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/suruext/internal/config"
	"github.com/nao1215/suruext/internal/model"
)

// BatchProcessor augments several pages concurrently. Each page gets a
// fresh pipeline from the factory.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger

	results []*model.AugmentReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many pages are augmented at once. Values below
// one are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor returns a BatchProcessor using pipelineFactory.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     config.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch augments targets and returns one report per target, in
// target order. Failed pages still yield a report carrying the error; the
// returned error is only set when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.AugmentReport, error) {
	bp.logger.Info("starting batch",
		"targets", len(targets),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	bp.mu.Lock()
	bp.results = make([]*model.AugmentReport, len(targets))
	bp.mu.Unlock()

	err := bp.ProcessBatchWithCallback(ctx, targets, func(report *model.AugmentReport, index int) {
		bp.mu.Lock()
		bp.results[index] = report
		bp.mu.Unlock()
	})

	bp.logger.Info("batch complete",
		"targets", len(targets),
		"elapsed", time.Since(start),
	)
	return bp.results, err
}

// ProcessBatchWithCallback augments targets and calls callback with each
// report as soon as it is done. callback runs on the worker goroutine and
// must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(report *model.AugmentReport, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("augmenting page",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			report := model.NewAugmentReport(target)
			if err := bp.pipelineFactory().Execute(ctx, report); err != nil {
				bp.logger.Warn("augmentation failed", "target", target, "error", err)
			}
			callback(report, i)
			return nil
		})
	}

	return g.Wait()
}
