package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/verbcrawl/internal/crawler"
	"github.com/nao1215/verbcrawl/internal/model"
	"github.com/nao1215/verbcrawl/internal/report"
	"github.com/nao1215/verbcrawl/internal/state"
)

// CrawlStep fetches the query's remaining pages. Each page is appended to
// the state tree and persisted before the next page is requested, so an
// interrupted crawl loses at most the page in flight.
type CrawlStep struct {
	store     *state.Store
	paginator *crawler.Paginator
}

// NewCrawlStep creates a crawl step.
func NewCrawlStep(store *state.Store, paginator *crawler.Paginator) *CrawlStep {
	return &CrawlStep{store: store, paginator: paginator}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do implements Step.
func (s *CrawlStep) Do(ctx context.Context, task *Task) error {
	q := task.Query()
	job := crawler.Job{
		Address:   q.Address,
		StartPage: s.store.NextPage(q),
		Template:  task.Pending.Template(),
	}

	records, err := s.paginator.Crawl(ctx, job, func(page int, records []model.ResultRecord) error {
		if err := s.store.AppendPage(q, page, records); err != nil {
			return fmt.Errorf("failed to store page: %w", err)
		}
		return s.store.Persist()
	})
	task.Records = records
	return err
}

// CompleteStep marks the query done and persists the state file.
type CompleteStep struct {
	store *state.Store
}

// NewCompleteStep creates a completion step.
func NewCompleteStep(store *state.Store) *CompleteStep {
	return &CompleteStep{store: store}
}

// Name returns the step name.
func (s *CompleteStep) Name() string {
	return "complete"
}

// Do implements Step.
func (s *CompleteStep) Do(_ context.Context, task *Task) error {
	if err := s.store.MarkDone(task.Query(), task.Records); err != nil {
		return fmt.Errorf("failed to mark query done: %w", err)
	}
	task.Completed = true
	return s.store.Persist()
}

// NotifyStep hands every record of a completed query to the sink. Records
// stored by earlier runs are included, so the sink always sees whole
// queries.
type NotifyStep struct {
	store  *state.Store
	sink   report.Sink
	logger *slog.Logger
}

// NewNotifyStep creates a notification step. A nil sink makes the step a
// no-op.
func NewNotifyStep(store *state.Store, sink report.Sink, logger *slog.Logger) *NotifyStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyStep{store: store, sink: sink, logger: logger}
}

// Name returns the step name.
func (s *NotifyStep) Name() string {
	return "notify"
}

// Do implements Step.
func (s *NotifyStep) Do(ctx context.Context, task *Task) error {
	if s.sink == nil || !task.Completed {
		return nil
	}
	records := s.store.Records(task.Query())
	if err := s.sink.Write(ctx, records); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	task.Exported = len(records)
	s.logger.Debug("results exported", append(task.logAttrs(), "records", len(records))...)
	return nil
}

// NewQueryPipeline returns the standard crawl, complete and notify
// pipeline.
func NewQueryPipeline(store *state.Store, paginator *crawler.Paginator, sink report.Sink, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewCrawlStep(store, paginator),
		NewCompleteStep(store),
		NewNotifyStep(store, sink, logger),
	)
	return p
}
