// Package dispatch fans input files out over a bounded worker pool and
// collects one result per attempted file.
package dispatch
