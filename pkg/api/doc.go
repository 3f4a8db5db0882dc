// Package api wires the HTTP surface: the gate chain, the tenant-scoped
// resource handlers, and the health endpoints.
//
// Every /api/v1 route runs behind the full gate chain (see pkg/middleware
// for ordering). Handlers record usage only after the guarded operation
// succeeds, so rejected or failed requests never consume quota.
package api
