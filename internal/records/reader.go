package records

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Record is one JSON object parsed from a line of a JSON-lines file.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	cp := make(Record, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

const (
	// Lines longer than this abort the scan; JSON-lines corpora with
	// multi-megabyte records should be re-chunked upstream.
	maxLineBytes = 16 << 20
)

// Scanner lazily yields Records from a line-delimited JSON stream. Lines that
// fail to parse or do not hold a top-level JSON object are skipped silently;
// only I/O failures surface through Err.
type Scanner struct {
	scanner *bufio.Scanner
	closer  io.Closer
	current Record
	err     error
	skipped int
	read    int
}

// Open creates a Scanner for the file at path. A missing or unreadable file is
// the only fatal condition for the reader.
func Open(path string) (*Scanner, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	s := NewScanner(file)
	s.closer = file
	return s, nil
}

// NewScanner wraps an arbitrary reader. Used by tests and by callers that
// already hold an open stream.
func NewScanner(r io.Reader) *Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)
	return &Scanner{scanner: scanner}
}

// Next advances to the next well-formed record. It returns false at end of
// stream or on I/O error; check Err afterwards.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	for s.scanner.Scan() {
		record, ok := parseLine(s.scanner.Bytes())
		if !ok {
			s.skipped++
			continue
		}
		s.current = record
		s.read++
		return true
	}
	s.err = s.scanner.Err()
	s.current = nil
	return false
}

// Record returns the record produced by the last successful Next call.
func (s *Scanner) Record() Record { return s.current }

// Err reports a scan I/O failure, if any. Malformed lines never set it.
func (s *Scanner) Err() error { return s.err }

// Skipped counts lines dropped because they were malformed or not objects.
func (s *Scanner) Skipped() int { return s.skipped }

// Read counts records yielded so far.
func (s *Scanner) Read() int { return s.read }

// Close releases the underlying file when the Scanner owns one.
func (s *Scanner) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func parseLine(line []byte) (Record, bool) {
	var value any
	if err := json.Unmarshal(line, &value); err != nil {
		return nil, false
	}
	object, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	return Record(object), true
}
