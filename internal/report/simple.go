package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs a plain-text status for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds the per-verb breakdown.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the per-verb breakdown.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *SimpleWriter) Write(status *Status) (int, error) {
	var sb strings.Builder
	st := status.Stats

	sb.WriteString("=== verbcrawl status ===\n")
	fmt.Fprintf(&sb, "State file:    %s\n", status.StatePath)
	fmt.Fprintf(&sb, "Generated:     %s\n", status.Generated.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Base verbs:    %d\n", st.BaseVerbs)
	fmt.Fprintf(&sb, "Derived forms: %d\n", st.DerivedForms)
	fmt.Fprintf(&sb, "Queries:       %d done / %d total (%.1f%%)\n", st.Total.Done, st.Total.Queries, status.Percent())
	fmt.Fprintf(&sb, "Results:       %d sources, %d tokens\n", st.Total.Results, st.Total.Tokens)

	if len(st.Subcorpora) > 0 {
		sb.WriteString("\n--- By subcorpus ---\n")
		for _, s := range st.Subcorpora {
			fmt.Fprintf(&sb, "  %-8s %5d/%-5d queries  %6d sources  %7d tokens\n",
				s.Subcorpus, s.Done, s.Queries, s.Results, s.Tokens)
		}
	}

	if w.verbose && len(st.Verbs) > 0 {
		sb.WriteString("\n--- By verb ---\n")
		for _, v := range st.Verbs {
			fmt.Fprintf(&sb, "  %-16s %4d forms  %5d/%-5d queries  %6d sources\n",
				v.Simplex, v.Forms, v.Done, v.Queries, v.Results)
		}
	}

	if status.Complete() {
		sb.WriteString("\nAll queries are done.\n")
	} else {
		fmt.Fprintf(&sb, "\n%d queries pending; run `verbcrawl crawl` to resume.\n", st.Total.Pending)
	}

	return io.WriteString(w.output, sb.String())
}
