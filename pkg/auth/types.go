package auth

import (
	"strings"

	"github.com/google/uuid"
)

// Role represents tenant-level roles
type Role string

const (
	RoleOwner    Role = "owner"    // Full control including billing
	RoleAdmin    Role = "admin"    // Manage resources and members
	RoleProvider Role = "provider" // Manage own schedule and appointments
	RoleMember   Role = "member"   // Create and view resources
	RoleViewer   Role = "viewer"   // Read-only access
)

// ParseRole maps a raw role label to a canonical role. The mapping is
// total: unrecognized labels resolve to the most restrictive role.
func ParseRole(label string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(label))) {
	case RoleOwner:
		return RoleOwner
	case RoleAdmin:
		return RoleAdmin
	case RoleProvider:
		return RoleProvider
	case RoleMember:
		return RoleMember
	default:
		return RoleViewer
	}
}

// TenantContext holds the resolved identity for a single request.
// It is created once per request by the tenant resolver, never persisted,
// and never shared across requests.
type TenantContext struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     Role
}

// AuthenticationError indicates a missing or invalid credential (401)
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// AuthorizationError indicates a valid identity without access (403)
type AuthorizationError struct {
	Message       string
	RequiredRoles []Role
	UserRole      Role
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// IsAuthentication checks if an error is an authentication error
func IsAuthentication(err error) bool {
	_, ok := err.(*AuthenticationError)
	return ok
}

// IsAuthorization checks if an error is an authorization error
func IsAuthorization(err error) bool {
	_, ok := err.(*AuthorizationError)
	return ok
}
