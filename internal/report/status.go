package report

import (
	"io"
	"time"

	"github.com/nao1215/verbcrawl/internal/state"
)

// Status is a progress summary of one crawl state file.
type Status struct {
	// StatePath is the crawl state file the summary was computed from.
	StatePath string `json:"statePath"`

	// Generated is when the summary was computed.
	Generated time.Time `json:"generated"`

	// Stats are the counts over the crawl tree.
	Stats state.Stats `json:"stats"`
}

// Complete reports whether every query is done.
func (s *Status) Complete() bool {
	return s.Stats.Total.Pending == 0
}

// Percent returns the share of done queries, 0 to 100.
func (s *Status) Percent() float64 {
	if s.Stats.Total.Queries == 0 {
		return 0
	}
	return 100 * float64(s.Stats.Total.Done) / float64(s.Stats.Total.Queries)
}

// Writer renders a Status.
type Writer interface {
	// Write outputs the status and returns the number of bytes written.
	Write(status *Status) (int, error)
}

// MultiWriter writes to multiple Writers, for example the terminal and
// a file. It stops at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the status to all configured Writers and returns the
// total bytes written.
func (m *MultiWriter) Write(status *Status) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(status)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for status writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
