package records_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"enrich/internal/records"
)

func writeTempFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func collect(t *testing.T, s *records.Scanner) []records.Record {
	t.Helper()
	var out []records.Record
	for s.Next() {
		out = append(out, s.Record())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestScannerYieldsOnlyWellFormedObjects(t *testing.T) {
	path := writeTempFile(t,
		`{"title": "A", "id": 1}`,
		`not json`,
		`[1, 2, 3]`,
		`"a bare string"`,
		`42`,
		`null`,
		`{"title": "B", "id": 2}`,
	)

	s, err := records.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got := collect(t, s)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["title"] != "A" || got[1]["title"] != "B" {
		t.Fatalf("records out of order: %v", got)
	}
	if s.Skipped() != 5 {
		t.Fatalf("expected 5 skipped lines, got %d", s.Skipped())
	}
	if s.Read() != 2 {
		t.Fatalf("expected read count 2, got %d", s.Read())
	}
}

func TestScannerAllLinesMalformed(t *testing.T) {
	path := writeTempFile(t, "garbage", "more garbage")
	s, err := records.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if got := collect(t, s); len(got) != 0 {
		t.Fatalf("expected no records, got %v", got)
	}
}

func TestOpenMissingFileFails(t *testing.T) {
	if _, err := records.Open(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestScannerRestartablePerCall(t *testing.T) {
	path := writeTempFile(t, `{"id": 1}`, `{"id": 2}`)

	for pass := 0; pass < 2; pass++ {
		s, err := records.Open(path)
		if err != nil {
			t.Fatalf("Open pass %d: %v", pass, err)
		}
		got := collect(t, s)
		s.Close()
		if len(got) != 2 {
			t.Fatalf("pass %d: expected 2 records, got %d", pass, len(got))
		}
	}
}

func TestScannerEmptyInput(t *testing.T) {
	s := records.NewScanner(strings.NewReader(""))
	if s.Next() {
		t.Fatal("expected no records from empty input")
	}
	if s.Err() != nil {
		t.Fatalf("unexpected error: %v", s.Err())
	}
}
