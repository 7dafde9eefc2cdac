package spacy_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"enrich/internal/annotate"
	"enrich/internal/annotate/spacy"
	"enrich/internal/records"
	"enrich/internal/services"
)

func TestHealthOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("model"); got != "en_core_web_lg" {
			t.Errorf("model query = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "model": "en_core_web_lg", "loaded": true})
	}))
	defer server.Close()

	client := spacy.NewClient(spacy.WithBaseURL(server.URL))
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}

func TestHealthModelNotLoaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "loaded": false})
	}))
	defer server.Close()

	client := spacy.NewClient(spacy.WithBaseURL(server.URL))
	err := client.Health(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestHealthUnreachable(t *testing.T) {
	client := spacy.NewClient(spacy.WithBaseURL("http://127.0.0.1:1"))
	err := client.Health(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestAnnotateAttachesMetadataByPosition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string         `json:"model"`
			Texts []string       `json:"texts"`
			Pipes annotate.Pipes `json:"pipes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !req.Pipes.Parser || req.Pipes.NER {
			t.Errorf("unexpected pipes: %+v", req.Pipes)
		}
		docs := make([]map[string]any, len(req.Texts))
		for i, text := range req.Texts {
			docs[i] = map[string]any{
				"tokens": []map[string]any{{"index": 0, "head": 0, "text": text, "lemma": text, "pos": "NOUN", "dep": "ROOT"}},
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"documents": docs})
	}))
	defer server.Close()

	client := spacy.NewClient(
		spacy.WithBaseURL(server.URL),
		spacy.WithPipes(annotate.RequiredPipes(true, false, false, false)),
	)

	metadata := []records.Record{{"id": 1}, {"id": 2}}
	docs, err := client.Annotate(context.Background(), []string{"alpha", "beta"}, metadata, 4)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Meta["id"] != 1 || docs[1].Meta["id"] != 2 {
		t.Fatalf("metadata not aligned: %v / %v", docs[0].Meta, docs[1].Meta)
	}
	if docs[1].Tokens[0].Text != "beta" {
		t.Fatalf("document order broken: %v", docs[1].Tokens)
	}
}

func TestAnnotateCountMismatchIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"documents": []map[string]any{{}}})
	}))
	defer server.Close()

	client := spacy.NewClient(spacy.WithBaseURL(server.URL))
	_, err := client.Annotate(context.Background(), []string{"a", "b"}, []records.Record{{}, {}}, 1)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestAnnotateEngineError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "model blew up"})
	}))
	defer server.Close()

	client := spacy.NewClient(spacy.WithBaseURL(server.URL))
	_, err := client.Annotate(context.Background(), []string{"a"}, []records.Record{{}}, 1)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestAnnotateLengthMismatchRejectedLocally(t *testing.T) {
	client := spacy.NewClient()
	_, err := client.Annotate(context.Background(), []string{"a"}, nil, 1)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAnnotateEmptyBatch(t *testing.T) {
	client := spacy.NewClient(spacy.WithBaseURL("http://127.0.0.1:1"))
	docs, err := client.Annotate(context.Background(), nil, nil, 1)
	if err != nil || docs != nil {
		t.Fatalf("empty batch should be a no-op, got %v / %v", docs, err)
	}
}

func TestRequiredPipes(t *testing.T) {
	cases := []struct {
		nounChunks, svos, entities, sents bool
		want                              annotate.Pipes
	}{
		{false, false, false, false, annotate.Pipes{}},
		{true, false, false, false, annotate.Pipes{Parser: true}},
		{false, true, false, false, annotate.Pipes{Parser: true}},
		{false, false, false, true, annotate.Pipes{Parser: true}},
		{false, false, true, false, annotate.Pipes{Parser: true, NER: true}},
	}
	for _, tc := range cases {
		got := annotate.RequiredPipes(tc.nounChunks, tc.svos, tc.entities, tc.sents)
		if got != tc.want {
			t.Fatalf("RequiredPipes(%v,%v,%v,%v) = %+v, want %+v",
				tc.nounChunks, tc.svos, tc.entities, tc.sents, got, tc.want)
		}
	}
}
