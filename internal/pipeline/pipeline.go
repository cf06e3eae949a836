package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/verbcrawl/internal/model"
	"github.com/nao1215/verbcrawl/internal/state"
)

// Task carries one pending query through the pipeline.
type Task struct {
	// Pending is the query with its parent nodes.
	Pending state.Pending

	// Records are the records fetched in this run.
	Records []model.ResultRecord

	// Completed is set once the query is marked done.
	Completed bool

	// Exported is the number of records handed to the sink.
	Exported int

	// Err is the error of the step that failed, if any.
	Err error

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string
}

// NewTask returns a task for p.
func NewTask(p state.Pending) *Task {
	return &Task{Pending: p}
}

// Query returns the state node of the task.
func (t *Task) Query() *state.Query {
	return t.Pending.Query
}

// logAttrs identifies the task in log records.
func (t *Task) logAttrs() []any {
	q := t.Pending.Query
	lemma := ""
	if t.Pending.Derived != nil {
		lemma = t.Pending.Derived.FullVerb
	}
	return []any{
		"lemma", lemma,
		"subcorpus", q.Subcorpus,
		"gramm", q.Gramm,
	}
}

// Step is one stage of processing a query.
type Step interface {
	// Do runs the step. An error stops the pipeline unless it was built
	// with WithContinueOnError.
	Do(ctx context.Context, task *Task) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs its steps in order on one task.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after one fails.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
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

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps on task. Cancellation is checked before each
// step; a step in progress is never interrupted by Execute itself.
//
// It returns the first step error unless continueOnError is set. The
// error is also recorded in task.Err.
func (p *Pipeline) Execute(ctx context.Context, task *Task) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				append(task.logAttrs(), "step", step.Name(), "reason", ctx.Err())...)
			task.Err = ctx.Err()
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", append(task.logAttrs(), "step", step.Name())...)

		if err := step.Do(ctx, task); err != nil {
			p.logger.Warn("step failed", append(task.logAttrs(), "step", step.Name(), "error", err)...)
			task.Err = err
			if !p.continueOnError {
				return err
			}
		}
		task.PerformedSteps = append(task.PerformedSteps, step.Name())
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
