package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs the status as Markdown, suitable for a research
// log or an issue comment.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(status *Status) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, status)
	w.writeSubcorpora(md, status)
	w.writeVerbs(md, status)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title, totals and an alert on completion.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, status *Status) {
	st := status.Stats

	md.H1("verbcrawl status")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"State file", "`" + status.StatePath + "`"},
			{"Generated", status.Generated.Format("2006-01-02 15:04:05 MST")},
			{"Base verbs", strconv.Itoa(st.BaseVerbs)},
			{"Derived forms", strconv.Itoa(st.DerivedForms)},
			{"Queries done", strconv.Itoa(st.Total.Done) + " / " + strconv.Itoa(st.Total.Queries)},
			{"Progress", strconv.FormatFloat(status.Percent(), 'f', 1, 64) + "%"},
			{"Sources found", strconv.Itoa(st.Total.Results)},
			{"Tokens found", strconv.Itoa(st.Total.Tokens)},
		},
	})
	md.PlainText("")

	switch {
	case st.Total.Queries == 0:
		md.Note("The crawl state is empty. Run `verbcrawl crawl` to plan and start the crawl.")
	case status.Complete():
		md.Tip("All queries are done.")
	default:
		md.Importantf("%d queries are pending. Run `verbcrawl crawl` to resume.", st.Total.Pending)
	}
	md.PlainText("")
}

// writeSubcorpora writes the per-subcorpus table and token distribution.
func (w *MarkdownWriter) writeSubcorpora(md *markdown.Markdown, status *Status) {
	subs := status.Stats.Subcorpora
	if len(subs) == 0 {
		return
	}

	md.H2("By subcorpus")
	md.PlainText("")

	rows := make([][]string, len(subs))
	hasTokens := false
	for i, s := range subs {
		rows[i] = []string{
			s.Subcorpus.String(),
			strconv.Itoa(s.Queries),
			strconv.Itoa(s.Done),
			strconv.Itoa(s.Pending),
			strconv.Itoa(s.Results),
			strconv.Itoa(s.Tokens),
		}
		if s.Tokens > 0 {
			hasTokens = true
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Subcorpus", "Queries", "Done", "Pending", "Sources", "Tokens"},
		Rows:   rows,
	})
	md.PlainText("")

	if !hasTokens {
		return
	}
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Tokens by subcorpus"),
		piechart.WithShowData(true),
	)
	for _, s := range subs {
		if s.Tokens > 0 {
			chart.LabelAndIntValue(s.Subcorpus.String(), uint64(s.Tokens))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeVerbs writes the per-verb table.
func (w *MarkdownWriter) writeVerbs(md *markdown.Markdown, status *Status) {
	verbs := status.Stats.Verbs
	if len(verbs) == 0 {
		return
	}

	md.H2("By verb")
	md.PlainText("")

	rows := make([][]string, len(verbs))
	for i, v := range verbs {
		rows[i] = []string{
			v.Simplex,
			strconv.Itoa(v.Forms),
			strconv.Itoa(v.Done) + " / " + strconv.Itoa(v.Queries),
			strconv.Itoa(v.Results),
			strconv.Itoa(v.Tokens),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Verb", "Forms", "Queries done", "Sources", "Tokens"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [verbcrawl](https://github.com/nao1215/verbcrawl)*")
}
