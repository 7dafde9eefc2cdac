// Package annotate defines the contract between the record pipeline and the
// external NLP engine: the Document annotation views, the Annotator batch
// interface, and the pipeline-component selection derived from configuration.
//
// Linguistic analysis is never performed here; implementations live in
// subpackages (see spacy for the production sidecar client) and the pipeline
// treats them as opaque.
package annotate
