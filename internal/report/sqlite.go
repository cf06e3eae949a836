package report

import (
	"context"

	"github.com/nao1215/verbcrawl/internal/database"
	"github.com/nao1215/verbcrawl/internal/model"
)

// DBSink upserts records into a ResultDB under one run ID.
type DBSink struct {
	db    *database.ResultDB
	runID string
	owned bool
}

// NewDBSink returns a sink writing to db. When owned is true, Close closes
// db.
func NewDBSink(db *database.ResultDB, runID string, owned bool) *DBSink {
	return &DBSink{db: db, runID: runID, owned: owned}
}

// RunID returns the run the sink attributes rows to.
func (s *DBSink) RunID() string {
	return s.runID
}

// Write implements Sink.
func (s *DBSink) Write(ctx context.Context, records []model.ResultRecord) error {
	return s.db.UpsertRecords(ctx, s.runID, records)
}

// Close implements Sink.
func (s *DBSink) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
