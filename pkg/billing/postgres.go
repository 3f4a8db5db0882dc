package billing

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetSubscription retrieves the subscription row for a tenant.
// A missing row returns (nil, nil); absence is an expected state.
func (s *PostgresStore) GetSubscription(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	query := `
		SELECT id, tenant_id, plan, status, current_period_end, cancel_at_period_end, created_at, updated_at
		FROM subscriptions
		WHERE tenant_id = $1
	`
	sub := &Subscription{}
	err := s.db.QueryRowContext(ctx, query, tenantID).Scan(
		&sub.ID, &sub.TenantID, &sub.PlanLabel, &sub.Status,
		&sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}
