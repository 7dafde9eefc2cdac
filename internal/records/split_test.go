package records_test

import (
	"errors"
	"reflect"
	"testing"

	"enrich/internal/records"
	"enrich/internal/services"
)

func TestSplitAlignsTextAndMetadata(t *testing.T) {
	chunk := records.Chunk{
		{"title": "A", "abstract": "B", "id": float64(1)},
		{"title": "C", "abstract": "D", "id": float64(2)},
	}

	texts, metadata, err := records.Split(chunk, []string{"title", "abstract"})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	wantTexts := []string{"A\nB", "C\nD"}
	if !reflect.DeepEqual(texts, wantTexts) {
		t.Fatalf("texts = %v, want %v", texts, wantTexts)
	}

	wantMeta := []records.Record{{"id": float64(1)}, {"id": float64(2)}}
	if !reflect.DeepEqual(metadata, wantMeta) {
		t.Fatalf("metadata = %v, want %v", metadata, wantMeta)
	}
}

func TestSplitHonorsFieldOrder(t *testing.T) {
	chunk := records.Chunk{{"title": "A", "abstract": "B"}}

	texts, _, err := records.Split(chunk, []string{"abstract", "title"})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if texts[0] != "B\nA" {
		t.Fatalf("text = %q, want %q", texts[0], "B\nA")
	}
}

func TestSplitDoesNotMutateInput(t *testing.T) {
	chunk := records.Chunk{{"title": "A", "id": float64(1)}}

	if _, _, err := records.Split(chunk, []string{"title"}); err != nil {
		t.Fatalf("Split: %v", err)
	}
	if _, ok := chunk[0]["title"]; !ok {
		t.Fatal("Split removed the content field from the source record")
	}
}

func TestSplitMissingFieldIsNotFound(t *testing.T) {
	chunk := records.Chunk{
		{"title": "A", "abstract": "B"},
		{"title": "C"}, // abstract absent
	}

	_, _, err := records.Split(chunk, []string{"title", "abstract"})
	if err == nil {
		t.Fatal("expected error for missing content field")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound classification, got %v", err)
	}
}

func TestSplitNonStringFieldIsValidationError(t *testing.T) {
	chunk := records.Chunk{{"title": float64(7)}}

	_, _, err := records.Split(chunk, []string{"title"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSplitEmptyChunk(t *testing.T) {
	texts, metadata, err := records.Split(nil, []string{"title"})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(texts) != 0 || len(metadata) != 0 {
		t.Fatalf("expected empty outputs, got %v / %v", texts, metadata)
	}
}

func TestSplitKeepsUnrelatedFields(t *testing.T) {
	chunk := records.Chunk{{"body": "text", "id": "x", "nested": map[string]any{"k": "v"}}}

	_, metadata, err := records.Split(chunk, []string{"body"})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	want := records.Record{"id": "x", "nested": map[string]any{"k": "v"}}
	if !reflect.DeepEqual(metadata[0], want) {
		t.Fatalf("metadata = %v, want %v", metadata[0], want)
	}
}
