package tenants

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookline/bookline/pkg/auth"
)

// PostgresRegistry implements Registry using PostgreSQL
type PostgresRegistry struct {
	db *sql.DB
}

// NewPostgresRegistry creates a new PostgresRegistry
func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

// LookupUser resolves an external subject ID to its tenant membership
func (r *PostgresRegistry) LookupUser(ctx context.Context, subjectID string) (*Membership, error) {
	query := `
		SELECT id, tenant_id, role
		FROM users
		WHERE subject_id = $1 AND is_active = true
	`
	var (
		userID   uuid.UUID
		tenantID uuid.NullUUID
		role     string
	)
	err := r.db.QueryRowContext(ctx, query, subjectID).Scan(&userID, &tenantID, &role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !tenantID.Valid {
		// User exists but was never assigned to a tenant
		return nil, nil
	}
	return &Membership{
		UserID:   userID,
		TenantID: tenantID.UUID,
		Role:     auth.ParseRole(role),
	}, nil
}

// CountActiveMembers returns the number of active users in a tenant
func (r *PostgresRegistry) CountActiveMembers(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM users
		WHERE tenant_id = $1 AND is_active = true
	`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}
