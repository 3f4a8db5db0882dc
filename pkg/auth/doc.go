// Package auth provides identity verification and the per-request tenant
// context that every tenant-scoped operation requires.
//
// # Verification
//
// Two Verifier implementations are provided: JWTVerifier for HMAC-signed
// tokens issued by a co-located identity service, and OIDCVerifier for
// tokens from an external OIDC provider. A verifier maps a bearer token to
// an external subject ID and nothing else; tenant membership is resolved
// separately through the tenants registry.
//
// # Tenant Context
//
// TenantContext {TenantID, UserID, Role} is built once per request by the
// tenant resolver middleware and threaded through context. Store layers
// take the tenant ID as an explicit parameter on every call rather than
// relying on any connection-scoped state, so a pooled connection can never
// leak scope between requests.
package auth
