package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/verbcrawl/internal/model"
	"github.com/nao1215/verbcrawl/internal/state"
)

// TestCrawlStep tests page-by-page storage.
func TestCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("stores pages as they arrive", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store, q := seededStore(&dir)
		step := NewCrawlStep(store, newPaginator(&stubFetcher{pages: 2}))

		task := NewTask(pendingOf(store, q))
		if err := step.Do(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(task.Records) != 2 {
			t.Errorf("expected 2 records, got %d", len(task.Records))
		}
		if store.NextPage(q) != 2 || store.IsDone(q) {
			t.Errorf("expected next page 2 and pending, got %d done=%v", store.NextPage(q), store.IsDone(q))
		}
		if task.Records[0].Lemma != "подрать" || task.Records[0].Gramm != "praet" {
			t.Errorf("record not built from the query template: %+v", task.Records[0])
		}
	})

	t.Run("failure keeps fetched pages", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store, q := seededStore(&dir)
		fetcher := &stubFetcher{pages: 3, fail: func(_ string, page int) error {
			if page == 2 {
				return errInjected
			}
			return nil
		}}
		task := NewTask(pendingOf(store, q))
		err := NewCrawlStep(store, newPaginator(fetcher)).Do(context.Background(), task)
		if err == nil {
			t.Fatal("expected an error")
		}
		if store.NextPage(q) != 2 || len(store.Records(q)) != 2 {
			t.Errorf("expected pages 0 and 1 stored, got next page %d", store.NextPage(q))
		}

		reloaded, err := state.LoadOrCreate(store.Path(), state.WithLogger(discardLogger()))
		if err != nil {
			t.Fatalf("failed to reload: %v", err)
		}
		if reloaded.Stats().Total.Results != 2 {
			t.Error("fetched pages should be persisted before the failure")
		}
	})
}

// TestCompleteAndNotify tests completion and export.
func TestCompleteAndNotify(t *testing.T) {
	t.Parallel()

	t.Run("notify skips incomplete queries", func(t *testing.T) {
		t.Parallel()

		store, q := seededStore(nil)
		sink := &recordingSink{}
		task := NewTask(pendingOf(store, q))
		if err := NewNotifyStep(store, sink, nil).Do(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sink.len() != 0 {
			t.Error("incomplete query should not be exported")
		}
	})

	t.Run("complete then notify exports stored records", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store, q := seededStore(&dir)
		rec := pendingOf(store, q).Template()
		rec.Source = model.ParseSource("Национальный корпус (1950-2000), 4 примера")
		rec.Tokens = 4

		// Page 0 was stored by an earlier run.
		if err := store.AppendPage(q, 0, []model.ResultRecord{rec}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		task := NewTask(pendingOf(store, q))
		next := rec
		next.PageIndex = 1
		task.Records = []model.ResultRecord{next}

		if err := NewCompleteStep(store).Do(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !task.Completed || !store.IsDone(q) {
			t.Fatal("expected query to be done")
		}

		sink := &recordingSink{}
		if err := NewNotifyStep(store, sink, discardLogger()).Do(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sink.len() != 2 || task.Exported != 2 {
			t.Errorf("expected both pages exported, got %d", sink.len())
		}
		if r := sink.records[0]; r.Source.DateMiddle != 1975 || r.Tokens != 4 {
			t.Errorf("unexpected record: %+v", r)
		}
	})

	t.Run("sink errors are returned", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store, q := seededStore(&dir)
		task := NewTask(pendingOf(store, q))
		if err := NewCompleteStep(store).Do(context.Background(), task); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		errFull := errors.New("disk full")
		err := NewNotifyStep(store, &recordingSink{err: errFull}, nil).Do(context.Background(), task)
		if !errors.Is(err, errFull) {
			t.Errorf("expected sink error, got %v", err)
		}
	})
}
