// Package services defines the shared error taxonomy and context plumbing used
// by the enrichment pipeline.
//
// Errors are tagged with sentinel markers (validation, configuration, not
// found, external tool, timeout, transient) via Wrap so callers can classify a
// failure without string matching. Context helpers carry the run identifier,
// input file, and stage name so loggers pick them up automatically.
package services
