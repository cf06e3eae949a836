package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/verbcrawl/internal/state"
)

// Summary reports what one Driver run did.
type Summary struct {
	// Attempted counts queries the run claimed.
	Attempted int

	// Done and Failed split Attempted by outcome. Failed queries stay
	// pending.
	Done   int
	Failed int

	// Skipped counts queries another worker had already claimed.
	Skipped int

	// Records counts records fetched in this run.
	Records int

	// Exported counts records handed to the sink.
	Exported int

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Driver runs a fresh pipeline for every pending query of a store.
type Driver struct {
	store           *state.Store
	pipelineFactory func() *Pipeline
	workers         int
	logger          *slog.Logger
	callback        func(task *Task)

	mu      sync.Mutex
	summary Summary
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithWorkers sets the number of queries crawled at once. The default is 1.
func WithWorkers(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithDriverLogger sets a custom logger for the driver.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithTaskCallback sets a function called after every query. It is called
// from the worker goroutine, so it must be safe for concurrent use when
// the driver has more than one worker.
func WithTaskCallback(callback func(task *Task)) DriverOption {
	return func(d *Driver) {
		d.callback = callback
	}
}

// NewDriver creates a Driver. pipelineFactory is called once per query.
func NewDriver(store *state.Store, pipelineFactory func() *Pipeline, opts ...DriverOption) *Driver {
	d := &Driver{
		store:           store,
		pipelineFactory: pipelineFactory,
		workers:         1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// Run processes every pending query and persists the state before it
// returns. A failed query is logged, counted and left pending; it never
// stops the run.
//
// Cancellation is checked between queries. A query already started runs
// to completion or failure, so its pages are not lost. Run returns the
// context error when it was cancelled.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	d.summary = Summary{}

	d.logger.Info("starting crawl", "workers", d.workers, "state", d.store.Path())

	var g errgroup.Group
	g.SetLimit(d.workers)

	for p := range d.store.Pending() {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			d.process(ctx, p)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	summary := d.result(start)
	if err := d.store.Persist(); err != nil {
		return summary, fmt.Errorf("failed to persist crawl state: %w", err)
	}

	d.logger.Info("crawl finished",
		"attempted", summary.Attempted,
		"done", summary.Done,
		"failed", summary.Failed,
		"records", summary.Records,
		"elapsed", summary.Elapsed,
	)

	if err := ctx.Err(); err != nil {
		d.logger.Warn("crawl interrupted; run again to resume", "reason", err)
		return summary, err
	}
	return summary, nil
}

// process claims p and runs it through a fresh pipeline.
func (d *Driver) process(ctx context.Context, p state.Pending) {
	if !d.store.Claim(p.Query) {
		d.mu.Lock()
		d.summary.Skipped++
		d.mu.Unlock()
		return
	}
	defer d.store.Release(p.Query)

	task := NewTask(p)
	d.logger.Info("crawling query", append(task.logAttrs(), "from_page", p.NextPage)...)

	// The query runs to completion even if ctx is cancelled meanwhile.
	err := d.pipelineFactory().Execute(context.WithoutCancel(ctx), task)

	d.mu.Lock()
	d.summary.Attempted++
	d.summary.Records += len(task.Records)
	d.summary.Exported += task.Exported
	if task.Completed {
		d.summary.Done++
	} else {
		d.summary.Failed++
	}
	d.mu.Unlock()

	switch {
	case err == nil:
		d.logger.Info("query done", append(task.logAttrs(), "records", len(task.Records))...)
	case task.Completed:
		// Only the sink failed; the query itself is stored.
		d.logger.Error("query done but export failed", append(task.logAttrs(), "error", err)...)
	case errors.Is(err, context.DeadlineExceeded):
		d.logger.Warn("query timed out; it stays pending", append(task.logAttrs(), "error", err)...)
	default:
		d.logger.Warn("query failed; it stays pending", append(task.logAttrs(), "error", err)...)
	}

	if d.callback != nil {
		d.callback(task)
	}
}

func (d *Driver) result(start time.Time) Summary {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.summary
	s.Elapsed = time.Since(start)
	return s
}
