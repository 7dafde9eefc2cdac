// Package spacy implements the Annotator contract against a spaCy annotation
// sidecar: a small HTTP service that loads a pretrained model at startup and
// parses batches of texts on demand.
//
// The client never interprets annotations; it validates the 1:1 ordered
// response contract, re-attaches pass-through metadata by position, and maps
// transport or engine failures onto the shared error taxonomy.
package spacy
