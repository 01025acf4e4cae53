// Package stream implements the cold, channel-backed asynchronous value
// sequence the fluxion engine compiles pipelines into.
//
// A Stream produces zero or more values and then terminates, either by
// completing or by failing with exactly one error. Streams are cold: every
// Subscribe restarts the producer from scratch, which is what makes
// re-subscription based operators such as Retry possible.
//
// Cancellation flows through context.Context. Cancelling the context passed
// to Subscribe (or to a terminal such as Collect) propagates to every
// upstream producer, including in-flight tool invocations.
package stream
