package annotate

import "enrich/internal/records"

// Token is one analyzed token of a document.
type Token struct {
	Index   int    `json:"index"`
	Head    int    `json:"head"`
	Text    string `json:"text"`
	Lemma   string `json:"lemma"`
	POS     string `json:"pos"`
	Dep     string `json:"dep"`
	IsStop  bool   `json:"is_stop"`
	IsPunct bool   `json:"is_punct"`
}

// NounChunk is a noun-phrase span reduced to its lemma form.
type NounChunk struct {
	Lemma      string `json:"lemma"`
	TokenCount int    `json:"token_count"`
	// LeadingDet marks spans that open with a determiner.
	LeadingDet bool `json:"leading_det"`
}

// SVOSlot is one slot of a subject-verb-object triple.
type SVOSlot struct {
	Lemma      string `json:"lemma"`
	TokenCount int    `json:"token_count"`
	// RootPOS is the coarse part-of-speech tag of the slot's root token.
	RootPOS string `json:"root_pos"`
}

// SVO is a dependency-derived subject-verb-object triple.
type SVO struct {
	Subject SVOSlot `json:"subject"`
	Verb    SVOSlot `json:"verb"`
	Object  SVOSlot `json:"object"`
}

// Entity is one named-entity mention.
type Entity struct {
	Lemma string `json:"lemma"`
	Label string `json:"label"`
}

// Document carries every annotation view the engine produced for one input
// text, plus the untouched metadata supplied alongside it. Annotation slices
// are empty when the corresponding engine component was not requested.
type Document struct {
	Tokens     []Token     `json:"tokens"`
	NounChunks []NounChunk `json:"noun_chunks"`
	SVOs       []SVO       `json:"svos"`
	Entities   []Entity    `json:"entities"`
	Sentences  []string    `json:"sents"`

	// Meta is the pass-through metadata record; never sent to or modified
	// by the engine.
	Meta records.Record `json:"-"`
}
