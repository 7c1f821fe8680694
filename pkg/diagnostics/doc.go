// Package diagnostics implements the structural validator for quiz graphs.
//
// Validation never fails: every graph, including the empty one, yields a
// non-empty ordered list of findings and a health score in [0, 100].
package diagnostics
