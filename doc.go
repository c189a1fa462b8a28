// Package delta computes and applies structural patches between JSON-like
// values. It derives a minimal ordered set of RFC 6902 operations
// transforming one value into another, applies such operations to a document
// using RFC 6901 pointer addressing, and derives the complementary inverse
// patch that undoes a given patch.
//
// Documents are the Go types produced by unmarshaling JSON:
//
//	map[string]any
//	[]any
//
// plus the scalar types string, float64, bool and nil. Values of other
// numeric Go types (int, int64, json.Number, ...) are accepted and compared
// by numeric value.
//
// The central entry points are CreatePatch, ApplyPatch (with its immutable
// and rollback variants) and CreateInversePatch. Arrays are diffed either
// positionally or, when Options.DetectMove is set, through a memoized
// longest-common-subsequence pass that recognizes relocated elements and
// emits move operations. Contiguous runs of elementary array edits can be
// batched into single operations carrying a count or an array-valued
// payload; see Options.BatchArrayOps.
package delta
