// Package tool defines the pluggable capability boundary of the engine: a
// registry mapping tool names to asynchronous invocation functions.
//
// The registry is constructor-injected into the engine runtime rather than
// held in process-wide state, so different runtimes can compile against
// different registries concurrently. The built-in registrations are mock
// implementations that simulate latency and return structured result maps;
// they exist to exercise the compiler and are not production capabilities.
package tool
