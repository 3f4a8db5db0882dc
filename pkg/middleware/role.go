package middleware

import (
	"net/http"

	"github.com/bookline/bookline/pkg/auth"
	"github.com/bookline/bookline/pkg/httputil"
	"github.com/bookline/bookline/pkg/observability"
)

// roleRank orders roles from least to most privileged. A gate that requires
// a role also admits every role above it.
var roleRank = map[auth.Role]int{
	auth.RoleViewer:   0,
	auth.RoleMember:   1,
	auth.RoleProvider: 2,
	auth.RoleAdmin:    3,
	auth.RoleOwner:    4,
}

// rolesAtOrAbove lists the roles that satisfy a minimum role requirement,
// in ascending privilege order. Used to populate 403 response bodies.
func rolesAtOrAbove(min auth.Role) []auth.Role {
	var out []auth.Role
	for _, role := range []auth.Role{auth.RoleViewer, auth.RoleMember, auth.RoleProvider, auth.RoleAdmin, auth.RoleOwner} {
		if roleRank[role] >= roleRank[min] {
			out = append(out, role)
		}
	}
	return out
}

// RoleGate enforces minimum-role requirements on routes
type RoleGate struct {
	metrics *observability.Metrics
}

// NewRoleGate creates a RoleGate
func NewRoleGate(metrics *observability.Metrics) *RoleGate {
	return &RoleGate{metrics: metrics}
}

// RequireRole creates middleware that rejects requests whose resolved role
// ranks below min. Requests without a tenant context are rejected with 401;
// a missing scope is never treated as sufficient.
func (g *RoleGate) RequireRole(min auth.Role) func(http.Handler) http.Handler {
	required := rolesAtOrAbove(min)
	requiredLabels := make([]string, len(required))
	for i, role := range required {
		requiredLabels[i] = string(role)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := GetTenantContext(r)
			if tc == nil {
				g.record("deny")
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			if roleRank[tc.Role] < roleRank[min] {
				g.record("deny")
				httputil.WriteForbiddenRole(w, "insufficient role", requiredLabels, string(tc.Role))
				return
			}

			g.record("allow")
			next.ServeHTTP(w, r)
		})
	}
}

// RequireExactRoles creates middleware that admits only the listed roles.
// Used for routes like billing management where owner alone qualifies and
// the hierarchy does not apply.
func (g *RoleGate) RequireExactRoles(allowed ...auth.Role) func(http.Handler) http.Handler {
	allowedLabels := make([]string, len(allowed))
	allowedSet := make(map[auth.Role]bool, len(allowed))
	for i, role := range allowed {
		allowedLabels[i] = string(role)
		allowedSet[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := GetTenantContext(r)
			if tc == nil {
				g.record("deny")
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			if !allowedSet[tc.Role] {
				g.record("deny")
				httputil.WriteForbiddenRole(w, "insufficient role", allowedLabels, string(tc.Role))
				return
			}

			g.record("allow")
			next.ServeHTTP(w, r)
		})
	}
}

func (g *RoleGate) record(decision string) {
	if g.metrics != nil {
		g.metrics.RecordGateDecision("role", decision)
	}
}
