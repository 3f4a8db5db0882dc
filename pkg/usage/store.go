package usage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookline/bookline/pkg/plans"
)

// CounterRow is one tenant/metric count within a billing period
type CounterRow struct {
	TenantID uuid.UUID
	Metric   plans.Metric
	Count    int64
}

// Store persists per-tenant usage counters. One row per
// (tenant, metric, period start); rows are created on first increment and
// counts never decrease within a period.
type Store interface {
	// GetCount returns the counter for the period, or 0 if no row exists.
	GetCount(ctx context.Context, tenantID uuid.UUID, metric plans.Metric, period Period) (int64, error)

	// Increment atomically adds delta to the counter, creating the row at
	// delta if absent. Concurrent increments must all be reflected.
	Increment(ctx context.Context, tenantID uuid.UUID, metric plans.Metric, period Period, delta int64) error

	// SnapshotPeriod returns all counter rows for the period.
	SnapshotPeriod(ctx context.Context, period Period) ([]CounterRow, error)
}

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetCount returns the counter for the period, or 0 if no row exists
func (s *PostgresStore) GetCount(ctx context.Context, tenantID uuid.UUID, metric plans.Metric, period Period) (int64, error) {
	query := `
		SELECT count
		FROM usage_counters
		WHERE tenant_id = $1 AND metric = $2 AND period_start = $3
	`
	var count int64
	err := s.db.QueryRowContext(ctx, query, tenantID, string(metric), period.Start).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get usage count: %w", err)
	}
	return count, nil
}

// Increment atomically adds delta to the counter. The upsert is a single
// statement so two concurrent increments can never lose an update.
func (s *PostgresStore) Increment(ctx context.Context, tenantID uuid.UUID, metric plans.Metric, period Period, delta int64) error {
	if delta <= 0 {
		delta = 1
	}
	query := `
		INSERT INTO usage_counters (tenant_id, metric, period_start, period_end, count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, metric, period_start)
		DO UPDATE SET count = usage_counters.count + EXCLUDED.count, updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, tenantID, string(metric), period.Start, period.End, delta); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// SnapshotPeriod returns all counter rows for the period
func (s *PostgresStore) SnapshotPeriod(ctx context.Context, period Period) ([]CounterRow, error) {
	query := `
		SELECT tenant_id, metric, count
		FROM usage_counters
		WHERE period_start = $1
	`
	rows, err := s.db.QueryContext(ctx, query, period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot usage: %w", err)
	}
	defer rows.Close()

	var out []CounterRow
	for rows.Next() {
		var row CounterRow
		var metric string
		if err := rows.Scan(&row.TenantID, &metric, &row.Count); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		row.Metric = plans.Metric(metric)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usage rows: %w", err)
	}
	return out, nil
}
