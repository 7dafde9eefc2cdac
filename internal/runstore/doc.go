// Package runstore persists a ledger of enrichment runs in SQLite: one row
// per run and one row per input file, updated as workers start, finish, or
// fail each file. The status command reads the ledger; the run command also
// holds a file lock here so only one run appends to an output directory at a
// time.
package runstore
