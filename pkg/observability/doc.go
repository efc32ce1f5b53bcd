// Package observability provides structured logging, Prometheus metrics, and
// health probes for the alert database server.
//
// Logging uses a thin wrapper over stdlib slog with JSON output. Metrics are
// registered on a caller-supplied Prometheus registry so tests can use an
// isolated one. Health probes split liveness (process is up) from readiness
// (the configured storage backend is reachable).
package observability
