// Package telemetry provides OpenTelemetry integration for distributed tracing and metrics.
// It enables observability for pipeline compilation with support for:
//   - Distributed tracing with trace IDs and span context propagation across phases
//   - Prometheus metrics for compilation and phase-level statistics
//   - Custom metrics exporters and collectors
//   - Integration with industry-standard observability platforms
package telemetry
