// Package codec converts between quiz graphs and their persisted records.
//
// On load, canvasData and scoreRanges are accepted either as JSON-encoded
// strings or as plain structures. Malformed fields fall back to empty values
// and are reported as FieldWarning rather than failing the load. On save,
// canvasData is always emitted as a JSON string and scoreRanges as an array.
//
// Nodes of legacy single-purpose kinds (question, lead-form, or a bare element
// type) are normalised into composite nodes holding exactly one element.
package codec
