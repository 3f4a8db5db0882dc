package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bookline/bookline/pkg/auth"
	"github.com/bookline/bookline/pkg/contextkeys"
	"github.com/bookline/bookline/pkg/httputil"
	"github.com/bookline/bookline/pkg/observability"
	"github.com/bookline/bookline/pkg/tenants"
)

// TenantResolver authenticates each request and attaches the resolved
// tenant scope to the request context. Every downstream gate and handler
// reads the scope from there; nothing about the caller is kept between
// requests.
type TenantResolver struct {
	verifier    auth.Verifier
	registry    tenants.Registry
	logger      *observability.Logger
	metrics     *observability.Metrics
	publicPaths map[string]bool
}

// NewTenantResolver creates a TenantResolver. publicPaths are exact request
// paths that bypass authentication entirely (health checks, metrics).
func NewTenantResolver(verifier auth.Verifier, registry tenants.Registry, logger *observability.Logger, metrics *observability.Metrics, publicPaths []string) *TenantResolver {
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}
	return &TenantResolver{
		verifier:    verifier,
		registry:    registry,
		logger:      logger,
		metrics:     metrics,
		publicPaths: public,
	}
}

// Handler wraps an HTTP handler with tenant resolution
func (m *TenantResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		tc, err := m.Resolve(r)
		if err != nil {
			m.recordDecision("deny")
			switch {
			case auth.IsAuthentication(err):
				httputil.WriteUnauthorized(w, err.Error())
			case auth.IsAuthorization(err):
				httputil.WriteErrorMessage(w, http.StatusForbidden, err.Error())
			default:
				m.logger.WithError(err).Error("tenant resolution failed")
				httputil.WriteInternalError(w)
			}
			return
		}

		m.recordDecision("allow")
		ctx := contextkeys.WithTenant(r.Context(), tc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Resolve verifies the request credential and returns the tenant scope.
// Resolving the same token twice yields the same tuple; nothing is cached
// or kept between calls.
func (m *TenantResolver) Resolve(r *http.Request) (*auth.TenantContext, error) {
	// Extract token from Authorization header
	// Format: "Bearer <token>"
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, &auth.AuthenticationError{Message: "token required"}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, &auth.AuthenticationError{Message: "invalid token"}
	}

	subjectID, err := m.verifier.Verify(r.Context(), parts[1])
	if err != nil {
		return nil, &auth.AuthenticationError{Message: "invalid token"}
	}

	membership, err := m.registry.LookupUser(r.Context(), subjectID)
	if err != nil {
		return nil, fmt.Errorf("user lookup for %q failed: %w", subjectID, err)
	}
	if membership == nil {
		// Valid credential, but the subject is unknown, deactivated,
		// or not attached to any tenant.
		return nil, &auth.AuthorizationError{Message: "not assigned to a tenant"}
	}

	return &auth.TenantContext{
		TenantID: membership.TenantID,
		UserID:   membership.UserID,
		Role:     membership.Role,
	}, nil
}

func (m *TenantResolver) recordDecision(decision string) {
	if m.metrics != nil {
		m.metrics.RecordGateDecision("tenant_resolver", decision)
	}
}

// GetTenantContext extracts the resolved tenant scope from a request.
// Returns nil when the resolver has not run or rejected the request.
func GetTenantContext(r *http.Request) *auth.TenantContext {
	v := r.Context().Value(contextkeys.TenantKey)
	if v == nil {
		return nil
	}
	tc, ok := v.(*auth.TenantContext)
	if !ok {
		return nil
	}
	return tc
}
