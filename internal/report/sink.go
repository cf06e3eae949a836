package report

import (
	"context"
	"errors"

	"github.com/nao1215/verbcrawl/internal/model"
)

// Sink receives exported records. Write may be called many times; Close
// flushes and releases the destination.
type Sink interface {
	Write(ctx context.Context, records []model.ResultRecord) error
	Close() error
}

// MultiSink writes to several sinks. A failing sink does not stop the
// others; all errors are joined.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink returns a Sink writing to every sink.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Len returns the number of sinks.
func (m *MultiSink) Len() int {
	return len(m.sinks)
}

// Write implements Sink.
func (m *MultiSink) Write(ctx context.Context, records []model.ResultRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Sink.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
