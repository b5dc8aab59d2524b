// Package observability provides logging, metrics, tracing, health checks,
// and graceful shutdown for the Pulse analytics engine.
//
// # Overview
//
//   - Logger: structured JSON logging on stdlib slog, with request and item
//     ids carried through context.
//   - Metrics: Prometheus collectors for the tracking write path, the
//     snapshot cache, and the leaderboard/stream gauges, exposed by the
//     daemon's /metrics endpoint.
//   - InitTracing: optional OTLP/gRPC tracer provider; disabled by default.
//   - HealthChecker: liveness and readiness probes. The engine serves safe
//     defaults with the backing store down, so a Redis outage reports
//     degraded, not unhealthy.
//   - ShutdownManager: SIGINT/SIGTERM handling with a bounded teardown.
package observability
