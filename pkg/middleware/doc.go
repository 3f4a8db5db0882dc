// Package middleware provides the HTTP authorization gates.
//
// # CRITICAL: Gate Ordering Requirements
//
// The gates have strict ordering dependencies. Incorrect order will cause
// downstream gates to reject every request with 401 (no tenant context).
//
// REQUIRED ORDERING (outer to inner):
//  1. Instrument - request ID, access log, HTTP metrics
//  2. TenantResolver - verifies the credential and sets the tenant context
//  3. RequireRole - role check (needs tenant context)
//  4. RequireSubscription - plan and subscription-state check
//  5. RequireFeature - per-feature entitlement check
//  6. EnforceAppointmentLimit / EnforceChatbotLimit / EnforceMemberLimit
//
// Example (correct):
//
//	router.Use(instrument.Handler)
//	router.Use(resolver.Handler)
//	router.Handle("/api/v1/appointments",
//	    gates.RequireRole(auth.RoleMember)(
//	        gates.EnforceAppointmentLimit(handler))).Methods("POST")
//
// Gates never skip a check when their inputs are missing: a request that
// reaches RequireRole without a tenant context is rejected with 401, not
// waved through. Each protected request is evaluated independently from
// the tenant scope threaded through its own context; no gate reads or
// writes shared session state.
package middleware
