package annotate

import (
	"context"

	"enrich/internal/records"
)

// Annotator sends a batch of texts to an NLP engine and returns one Document
// per text. Implementations may parallelize internally (the hint suggests a
// degree of concurrency) but must preserve positional correspondence: element
// i of the result belongs to texts[i] and carries metadata[i]. That 1:1
// ordered contract is the only thing the rest of the pipeline depends on.
type Annotator interface {
	Annotate(ctx context.Context, texts []string, metadata []records.Record, hint int) ([]Document, error)
}

// Pipes lists the engine pipeline components a request needs. Trimming unused
// components is a large speedup on big corpora, so the run configuration
// computes this once and sends it with every request.
type Pipes struct {
	// Parser enables dependency parsing (noun chunks, SVO triples, sentences).
	Parser bool `json:"parser"`
	// NER enables named-entity recognition.
	NER bool `json:"ner"`
}

// RequiredPipes derives the component set from the enabled annotation flags.
// Tokenization and tagging are always on.
func RequiredPipes(nounChunks, svos, entities, sents bool) Pipes {
	return Pipes{
		Parser: nounChunks || svos || sents || entities,
		NER:    entities,
	}
}
