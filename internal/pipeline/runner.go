package pipeline

import (
	"context"

	"github.com/nao1215/suruext/internal/model"
)

// Runner augments single pages with a fresh default pipeline per call.
// It is safe for concurrent use.
type Runner struct {
	Services    Services
	Options     []Option
	Concurrency int
	Inject      bool
}

// Factory returns a pipeline constructor for BatchProcessor. suruID is
// applied to every page.
func (r *Runner) Factory(suruID string) func() *Pipeline {
	return func() *Pipeline {
		return DefaultPipeline(r.Services, r.Options,
			WithPipelineSuruID(suruID),
			WithPipelineConcurrency(r.Concurrency),
			WithPipelineInject(r.Inject),
		)
	}
}

// Augment runs the pipeline for target. The report is returned even when
// a step fails.
func (r *Runner) Augment(ctx context.Context, target, suruID string) (*model.AugmentReport, error) {
	report := model.NewAugmentReport(target)
	err := r.Factory(suruID)().Execute(ctx, report)
	return report, err
}
