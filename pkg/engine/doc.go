// Package engine compiles validated pipeline IR into composable value
// streams and drives their execution.
//
// Compilation resolves step ordering (topological sort with cycle
// detection), turns every expression into a stream constructor, and returns
// a CompiledPipeline. The compiled graph is immutable; one CompiledPipeline
// may be run any number of times with different input bindings. Run applies
// the cross-cutting policies (timeout, retry with backoff, debug tracing)
// around the aggregated output stream.
package engine
