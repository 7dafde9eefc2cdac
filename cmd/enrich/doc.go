// Command enrich is the batch NLP enrichment CLI: it streams JSON-lines
// corpora through a spaCy annotation sidecar and appends enriched records to
// per-file outputs. Subcommands cover running enrichment, inspecting the run
// ledger, listing content-field presets, and configuration utilities.
package main
