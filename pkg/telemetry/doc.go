// Package telemetry bootstraps OpenTelemetry for the engine and records
// run- and tool-level metrics. Tracing is exported over OTLP/gRPC when an
// endpoint is configured; otherwise the global no-op providers apply and
// recording is free.
package telemetry
