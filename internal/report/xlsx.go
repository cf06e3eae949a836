package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/verbcrawl/internal/model"
)

// SheetName is the worksheet that holds the results.
const SheetName = "Results"

// XLSXSink collects records into a workbook that is saved on Close.
type XLSXSink struct {
	mu     sync.Mutex
	path   string
	file   *excelize.File
	row    int
	logger *slog.Logger
}

// NewXLSXSink returns a sink that saves a workbook to path on Close.
func NewXLSXSink(path string, logger *slog.Logger) (*XLSXSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name worksheet: %w", err)
	}

	header := make([]any, len(model.ExportHeader))
	for i, h := range model.ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return &XLSXSink{path: path, file: f, row: 2, logger: logger}, nil
}

// Write implements Sink.
func (s *XLSXSink) Write(_ context.Context, records []model.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, s.row)
		if err != nil {
			return err
		}
		values := r.Values()
		if err := s.file.SetSheetRow(SheetName, cell, &values); err != nil {
			s.logger.Warn("row cannot be written, substituting", "row", s.row, "error", err)
			fallback := sanitizeRow(values)
			if err := s.file.SetSheetRow(SheetName, cell, &fallback); err != nil {
				return fmt.Errorf("failed to write row %d: %w", s.row, err)
			}
		}
		s.row++
	}
	return nil
}

// maxCellChars is the longest text a worksheet cell accepts.
const maxCellChars = 32767

// sanitizeRow replaces invalid UTF-8 and truncates over-long text.
func sanitizeRow(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			out[i] = v
			continue
		}
		s = strings.ToValidUTF8(s, "�")
		if r := []rune(s); len(r) > maxCellChars {
			s = string(r[:maxCellChars])
		}
		out[i] = s
	}
	return out
}

// Close implements Sink.
func (s *XLSXSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		_ = s.file.Close()
	}()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
