package enrich

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"enrich/internal/records"
)

// OutputSuffix is appended to the input file's basename to form the output
// file name.
const OutputSuffix = ".enrich"

// OutputPath returns the output file path for an input file.
func OutputPath(outputDir, inputPath string) string {
	return filepath.Join(outputDir, filepath.Base(inputPath)+OutputSuffix)
}

// Writer appends enriched records to an output file, one JSON object per
// line. Append mode is safe because each output path is owned by exactly one
// worker for the whole run; re-running against the same directory appends
// rather than replaces.
type Writer struct {
	file   *os.File
	buf    *bufio.Writer
	closed bool
}

// NewWriter opens the output file in append mode, creating it if needed.
func NewWriter(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	return &Writer{file: file, buf: bufio.NewWriter(file)}, nil
}

// Write appends one record as a JSON line.
func (w *Writer) Write(record records.Record) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal output record: %w", err)
	}
	if _, err := w.buf.Write(encoded); err != nil {
		return fmt.Errorf("write output record: %w", err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("write output record: %w", err)
	}
	return nil
}

// Close flushes buffered output and closes the file. Safe to call twice so
// callers can pair a defer with an explicit error-checked close.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("flush output file: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
