// Package observability provides structured JSON logging and Prometheus
// metrics for the policy core.
//
// Logging uses a thin wrapper over stdlib slog so handlers can carry
// request-scoped fields (request ID, tenant) without threading loggers
// through every signature. Metrics are registered on an explicit registry
// and served on the health port, separate from the API port.
package observability
