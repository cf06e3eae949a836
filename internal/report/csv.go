package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/nao1215/verbcrawl/internal/model"
)

var (
	// ErrUnknownEncoding is returned by ParseEncoding.
	ErrUnknownEncoding = errors.New("unknown CSV encoding")

	// ErrEncodingMismatch is returned by AppendCSVSink when the existing
	// file is written in another encoding.
	ErrEncodingMismatch = errors.New("existing CSV file uses another encoding")
)

// Encoding is the character encoding of CSV output.
type Encoding int

const (
	// UTF8 writes UTF-8.
	UTF8 Encoding = iota

	// CP1251 writes windows-1251, which older spreadsheet software on
	// Russian-locale systems opens without an import dialog.
	CP1251
)

// String returns the canonical encoding name.
func (e Encoding) String() string {
	if e == CP1251 {
		return "windows-1251"
	}
	return "utf-8"
}

// ParseEncoding parses "utf-8", "cp1251" or "windows-1251".
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "cp1251", "windows-1251":
		return CP1251, nil
	default:
		return UTF8, fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// CSVSink writes records as CSV with the export header.
type CSVSink struct {
	mu      sync.Mutex
	w       *csv.Writer
	closer  io.Closer
	encoder *encoding.Encoder
	lossy   *encoding.Encoder
	logger  *slog.Logger
	header  bool
}

// CSVOption configures a CSVSink.
type CSVOption func(*CSVSink)

// WithEncoding sets the output encoding.
func WithEncoding(e Encoding) CSVOption {
	return func(s *CSVSink) {
		if e == CP1251 {
			s.encoder = charmap.Windows1251.NewEncoder()
			s.lossy = encoding.ReplaceUnsupported(charmap.Windows1251.NewEncoder())
		}
	}
}

// WithSinkLogger sets the logger used to report substituted fields.
func WithSinkLogger(logger *slog.Logger) CSVOption {
	return func(s *CSVSink) {
		s.logger = logger
	}
}

// NewCSVSink returns a sink writing to w. The header is written before
// the first record.
func NewCSVSink(w io.Writer, opts ...CSVOption) *CSVSink {
	s := &CSVSink{
		w:      csv.NewWriter(w),
		logger: slog.Default(),
	}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCSVSink creates (or truncates) the file at path and returns a sink
// writing to it. Close closes the file.
func CreateCSVSink(path string, opts ...CSVOption) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}
	return NewCSVSink(f, opts...), nil
}

// AppendCSVSink returns a sink that appends to the file at path when the
// file already starts with the export header. The header is not repeated.
// A missing file, or one with any other content, is created or truncated
// as by CreateCSVSink. Appending rows in an encoding other than the
// file's fails with ErrEncodingMismatch.
func AppendCSVSink(path string, opts ...CSVOption) (*CSVSink, error) {
	path = filepath.Clean(path)
	s := NewCSVSink(io.Discard, opts...)

	header, err := s.headerLine()
	if err != nil {
		return nil, err
	}
	head, err := readHead(path, len(header)+appendSampleSize)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(head, header) {
		return CreateCSVSink(path, opts...)
	}
	if !s.sameEncoding(dropPartialRune(head)) {
		return nil, fmt.Errorf("%w: %s is not %s", ErrEncodingMismatch, path, s.encodingName())
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	s = NewCSVSink(f, opts...)
	s.header = true
	return s, nil
}

// appendSampleSize is how much of an existing file is read to tell its
// encoding.
const appendSampleSize = 64 << 10

// headerLine returns the header row as the sink would write it.
func (s *CSVSink) headerLine() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(s.encodeRow(model.ExportHeader)); err != nil {
		return nil, fmt.Errorf("failed to encode CSV header: %w", err)
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// sameEncoding reports whether head can have been written by s. The
// header is ASCII, so only the rows tell: windows-1251 Cyrillic is not
// valid UTF-8, and UTF-8 Cyrillic is valid UTF-8.
func (s *CSVSink) sameEncoding(head []byte) bool {
	if !hasNonASCII(head) {
		return true
	}
	isUTF8 := utf8.Valid(head)
	if s.encoder == nil {
		return isUTF8
	}
	return !isUTF8
}

func (s *CSVSink) encodingName() string {
	if s.encoder == nil {
		return UTF8.String()
	}
	return CP1251.String()
}

// readHead returns up to n leading bytes of the file at path. A missing
// file reads as empty.
func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return buf[:read], nil
}

func hasNonASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// dropPartialRune trims a UTF-8 sequence cut off at the end of b.
func dropPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}

// Write implements Sink.
func (s *CSVSink) Write(_ context.Context, records []model.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.header {
		if err := s.w.Write(s.encodeRow(model.ExportHeader)); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		s.header = true
	}
	for _, r := range records {
		if err := s.w.Write(s.encodeRow(r.Strings())); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	s.w.Flush()
	return s.w.Error()
}

// encodeRow converts fields to the output encoding. A field that cannot be
// represented is logged and written with the unsupported characters
// replaced.
func (s *CSVSink) encodeRow(fields []string) []string {
	if s.encoder == nil {
		return fields
	}
	out := make([]string, len(fields))
	for i, field := range fields {
		encoded, err := s.encoder.String(field)
		if err != nil {
			s.logger.Warn("field cannot be encoded, substituting",
				"column", columnName(i),
				"value", field,
				"error", err,
			)
			encoded, _ = s.lossy.String(field) //nolint:errcheck // the replacing encoder does not fail on unsupported runes
		}
		out[i] = encoded
	}
	return out
}

func columnName(i int) string {
	if i < len(model.ExportHeader) {
		return model.ExportHeader[i]
	}
	return fmt.Sprintf("column %d", i+1)
}

// Close implements Sink. The header is written even when no record was.
func (s *CSVSink) Close() error {
	if err := s.Write(context.Background(), nil); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
