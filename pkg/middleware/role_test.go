package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/bookline/pkg/auth"
	"github.com/bookline/bookline/pkg/contextkeys"
)

// requestWithRole builds a request that already passed tenant resolution
func requestWithRole(method, path string, role auth.Role) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	tc := &auth.TenantContext{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Role:     role,
	}
	return req.WithContext(contextkeys.WithTenant(req.Context(), tc))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRoleGate_RequireRole(t *testing.T) {
	gate := NewRoleGate(nil)

	t.Run("viewer creating an appointment is rejected with the role gap", func(t *testing.T) {
		handler := gate.RequireRole(auth.RoleMember)(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithRole("POST", "/api/v1/appointments", auth.RoleViewer))

		require.Equal(t, http.StatusForbidden, w.Code)

		var body struct {
			Error         string   `json:"error"`
			RequiredRoles []string `json:"requiredRoles"`
			UserRole      string   `json:"userRole"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "insufficient role", body.Error)
		assert.Equal(t, []string{"member", "provider", "admin", "owner"}, body.RequiredRoles)
		assert.Equal(t, "viewer", body.UserRole)
	})

	t.Run("higher roles satisfy a lower requirement", func(t *testing.T) {
		handler := gate.RequireRole(auth.RoleMember)(okHandler())

		for _, role := range []auth.Role{auth.RoleMember, auth.RoleProvider, auth.RoleAdmin, auth.RoleOwner} {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestWithRole("POST", "/api/v1/appointments", role))
			assert.Equal(t, http.StatusOK, w.Code, "role %s should pass", role)
		}
	})

	t.Run("missing tenant context is rejected with 401", func(t *testing.T) {
		handler := gate.RequireRole(auth.RoleViewer)(okHandler())

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/usage", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRoleGate_RequireExactRoles(t *testing.T) {
	gate := NewRoleGate(nil)
	handler := gate.RequireExactRoles(auth.RoleOwner)(okHandler())

	t.Run("listed role passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithRole("GET", "/api/v1/billing", auth.RoleOwner))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("member hitting an admin-or-owner route sees both roles", func(t *testing.T) {
		adminHandler := gate.RequireExactRoles(auth.RoleAdmin, auth.RoleOwner)(okHandler())

		w := httptest.NewRecorder()
		adminHandler.ServeHTTP(w, requestWithRole("POST", "/api/v1/members/invites", auth.RoleMember))

		require.Equal(t, http.StatusForbidden, w.Code)

		var body struct {
			RequiredRoles []string `json:"requiredRoles"`
			UserRole      string   `json:"userRole"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, []string{"admin", "owner"}, body.RequiredRoles)
		assert.Equal(t, "member", body.UserRole)
	})

	t.Run("admin does not inherit owner-only access", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithRole("GET", "/api/v1/billing", auth.RoleAdmin))

		require.Equal(t, http.StatusForbidden, w.Code)

		var body struct {
			RequiredRoles []string `json:"requiredRoles"`
			UserRole      string   `json:"userRole"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, []string{"owner"}, body.RequiredRoles)
		assert.Equal(t, "admin", body.UserRole)
	})
}
