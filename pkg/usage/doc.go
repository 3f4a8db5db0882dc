// Package usage enforces per-plan monthly quotas and resolves tenants'
// effective plans.
//
// # Counters
//
// Usage is tracked as one counter row per (tenant, metric, UTC calendar
// month). Rows appear on first increment and counts only grow within a
// period. The postgres increment is a single INSERT ... ON CONFLICT DO
// UPDATE statement, so concurrent requests can never lose an update; the
// in-memory store gives the same guarantee under a mutex.
//
// # Plan resolution
//
// PlanResolver reads the tenant's subscription, maps it to a canonical
// plan tier, and caches the result in an expirable LRU. When redis is
// available, the billing-webhook service publishes changed tenant IDs on
// the subscription-change channel and entries are evicted immediately;
// otherwise the cache TTL bounds staleness.
//
// # Limiting
//
// Limiter answers "may this tenant consume one more unit of this metric"
// with a Decision carrying plan, used, and limit so a rejection can be
// rendered as an actionable upgrade prompt. Appointments and chatbot
// messages use the counter path; member invites count live registry rows
// against the seat limit instead.
package usage
