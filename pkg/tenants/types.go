package tenants

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookline/bookline/pkg/auth"
)

// Membership is the tenant assignment of an external identity subject
type Membership struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     auth.Role
}

// Registry resolves identity subjects to tenant memberships and answers
// member-count questions for plan limiting. Every call is scoped by an
// explicit tenant or subject parameter; no session state is carried by the
// store connection.
type Registry interface {
	// LookupUser resolves an external subject ID to its tenant membership.
	// A subject with no user row, or a user row without a tenant, returns
	// (nil, nil).
	LookupUser(ctx context.Context, subjectID string) (*Membership, error)

	// CountActiveMembers returns the number of active users in a tenant.
	CountActiveMembers(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
