// Package records implements the lazy record pipeline stages: reading
// JSON-lines files, batching records into bounded chunks, and splitting each
// record into enrichable text and pass-through metadata.
//
// The reader never fails on bad input lines; malformed or non-object lines
// are dropped silently so noisy feeds keep flowing. Chunk boundaries never
// reorder records, and Split keeps its two output streams aligned by position
// so enrichment results can be merged back onto the right metadata.
package records
