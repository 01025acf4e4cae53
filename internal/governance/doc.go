// Package governance holds cross-cutting execution policies applied around
// compiled pipelines: retry backoff and timeout resolution. The engine wires
// these into its run options; they carry no pipeline semantics of their own.
package governance
