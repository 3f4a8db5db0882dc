package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSubscription(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)
	tenantID := uuid.New()
	periodEnd := time.Now().AddDate(0, 1, 0)

	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "plan", "status", "current_period_end",
		"cancel_at_period_end", "created_at", "updated_at",
	}).AddRow(
		uuid.New(), tenantID, "professional", "active", periodEnd,
		false, time.Now(), time.Now(),
	)
	mock.ExpectQuery("SELECT (.+) FROM subscriptions WHERE tenant_id").
		WithArgs(tenantID).
		WillReturnRows(rows)

	sub, err := store.GetSubscription(context.Background(), tenantID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, tenantID, sub.TenantID)
	assert.Equal(t, "professional", sub.PlanLabel)
	assert.Equal(t, SubscriptionStatusActive, sub.Status)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSubscription_MissingRowIsNotAnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)
	tenantID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM subscriptions WHERE tenant_id").
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "plan", "status", "current_period_end",
			"cancel_at_period_end", "created_at", "updated_at",
		}))

	sub, err := store.GetSubscription(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSubscription_StoreFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)
	tenantID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM subscriptions WHERE tenant_id").
		WithArgs(tenantID).
		WillReturnError(errors.New("connection refused"))

	sub, err := store.GetSubscription(context.Background(), tenantID)
	assert.Error(t, err)
	assert.Nil(t, sub)
	assert.Contains(t, err.Error(), "failed to get subscription")
	assert.NoError(t, mock.ExpectationsWereMet())
}
