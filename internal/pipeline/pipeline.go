package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/suruext/internal/model"
)

// Step is one stage of an augmentation. Steps run in sequence and each one
// sees the report as left by the steps before it: FetchPageStep fills the
// page body, ScrapeStep the entries, the lookup steps the lexemes and
// sitelinks, and RenderStep the output HTML.
//
// Design decision: Step is an interface rather than a function type so a
// step can carry its own clients and settings (the SPARQL client, the
// entity client, the renderer) and report a Name for logging and for
// AugmentReport.PerformedSteps.
type Step interface {
	// Do runs the step with ctx for cancellation and the report to fill.
	// Lookup failures that still allow rendering are recorded in the
	// report and Do returns nil; a returned error fails the run.
	Do(ctx context.Context, report *model.AugmentReport) error

	// Name identifies the step in logs and in the report.
	Name() string
}

// Pipeline runs steps in order over one AugmentReport.
type Pipeline struct {
	// steps run in the order they were added.
	steps []Step

	logger *slog.Logger

	// continueOnError keeps the run going after a failed step. When false
	// the first failure ends Execute.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running after a failed step. The failure is
// logged, the last error is kept in report.Error and the failed step is
// left out of PerformedSteps.
//
// Design decision: the default is to stop on the first error. An early
// failure such as an unreachable SURU page or an unparsable document leaves
// nothing for the later steps to work on, and rendering a half-filled
// report would hide the cause. Lookup steps that can degrade gracefully
// record their problems in the report instead of failing.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New returns an empty Pipeline that stops on the first error. Steps are
// added with AddStep or AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step. Steps run in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step over report and records the total duration.
//
// Design decision: ctx is checked before each step, not inside it. Steps
// pass ctx to their own HTTP calls and stop there, so Execute only needs to
// refuse to start the next step once ctx is done. A cancelled run records
// which step it stopped before in report.Error and returns ctx.Err().
//
// It returns the first step error unless continueOnError is set, in which
// case it returns nil and the last error is in the report.
func (p *Pipeline) Execute(ctx context.Context, report *model.AugmentReport) error {
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			report.Error = "cancelled before " + step.Name() + ": " + ctx.Err().Error()
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"target", report.Target,
		)

		if err := step.Do(ctx, report); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"target", report.Target,
				"error", err,
			)
			report.Error = err.Error()
			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"target", report.Target,
		)
		report.AddStep(step.Name())
	}

	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
