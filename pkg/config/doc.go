// Package config ingests pipeline documents. Documents are YAML or JSON
// renderings of the IR: pipelines, typed inputs and outputs, and a recursive
// expression tree discriminated by a "type" field. Decoding is strict about
// structure but lenient about types; semantic problems surface as
// domain.Diagnostic values on the resulting Program rather than as decode
// errors.
//
// FileProvider adds hot reload on top: it watches a document on disk and
// republishes the decoded Program to subscribers whenever the file changes.
package config
