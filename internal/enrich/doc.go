// Package enrich assembles the per-file enrichment pipeline and the
// annotation extractors that turn engine documents into JSON output.
//
// The pipeline streams a JSON-lines file through bounded chunks, splits each
// record into enrichable text and pass-through metadata, sends batches to the
// annotation engine, and appends one enriched JSON object per record to the
// output file. Extraction semantics (token filtering, noun-chunk and SVO set
// reduction, entity label grouping) live in extract.go and are pure functions
// over a single annotated document.
package enrich
