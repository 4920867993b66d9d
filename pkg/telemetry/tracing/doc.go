// Package tracing sets up OpenTelemetry tracing with an OTLP gRPC exporter.
// When tracing is disabled a noop tracer is returned so call sites never
// branch on configuration.
package tracing
