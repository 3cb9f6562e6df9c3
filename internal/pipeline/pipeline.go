package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/latestver/internal/model"
)

// Step is one stage of a resolution.
type Step interface {
	// Do executes the step. A returned error ends the resolution.
	Do(ctx context.Context, res *model.Resolution) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs steps in order over a resolution.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps are added with AddSteps after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// NewDefault creates the standard resolution pipeline:
// fetch, extract, select and compose.
func NewDefault(fetcher PageFetcher, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewFetchStep(fetcher),
		NewExtractStep(),
		NewSelectStep(),
		NewComposeStep(),
	)
	return p
}

// AddSteps appends steps to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence and stops at the first error.
// Cancellation is checked before each step; the running step is expected to
// honor ctx itself. The error is also recorded on res.
func (p *Pipeline) Execute(ctx context.Context, res *model.Resolution) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("resolution cancelled",
				"step", step.Name(),
				"target", res.Target.DisplayName(),
				"reason", err,
			)
			res.SetError(err)
			return err
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"target", res.Target.DisplayName(),
		)

		if err := step.Do(ctx, res); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"target", res.Target.DisplayName(),
				"error", err,
			)
			res.SetError(err)
			return err
		}

		res.PerformedSteps = append(res.PerformedSteps, step.Name())
	}

	return nil
}

// Run resolves target and returns its resolution, which is never nil.
// The target is validated before any step runs, so a bad template never
// causes a request.
func (p *Pipeline) Run(ctx context.Context, target model.Target) (*model.Resolution, error) {
	res := model.NewResolution(target)
	start := time.Now()

	err := target.Validate()
	if err != nil {
		res.SetError(err)
	} else {
		err = p.Execute(ctx, res)
	}
	res.Duration = time.Since(start)

	return res, err
}

// Resolve resolves target with the default pipeline.
func Resolve(ctx context.Context, fetcher PageFetcher, target model.Target, opts ...Option) (*model.Resolution, error) {
	return NewDefault(fetcher, opts...).Run(ctx, target)
}
