// Package report writes crawl results and crawl progress.
//
// Result sinks receive ResultRecords as queries finish:
//   - CSVSink: the 14-column export as CSV, in UTF-8 or windows-1251
//   - XLSXSink: the same columns on a "Results" worksheet
//   - DBSink: rows upserted into the SQLite ResultDB
//   - MultiSink: fan-out to several sinks
//
// Status writers render a progress summary of the crawl state:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: Markdown tables and a token pie chart
//   - JSONWriter: structured JSON for scripts
package report
