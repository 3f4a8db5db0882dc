package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/bookline/pkg/billing"
	"github.com/bookline/bookline/pkg/plans"
	"github.com/bookline/bookline/pkg/tenants"
)

func newTestLimiter(t *testing.T, sub *billing.Subscription, registry *memberRegistry) (*Limiter, uuid.UUID, *MemoryStore) {
	t.Helper()
	tenantID := uuid.New()
	store := &fakeBillingStore{subs: map[uuid.UUID]*billing.Subscription{}}
	if sub != nil {
		store.subs[tenantID] = sub
	}
	usageStore := NewMemoryStore()
	resolver := NewPlanResolver(store, nil, testLogger(), nil)
	limiter := NewLimiter(resolver, usageStore, registry)
	limiter.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return limiter, tenantID, usageStore
}

// memberRegistry implements tenants.Registry for limiter tests
type memberRegistry struct {
	count int64
	err   error
}

func (m *memberRegistry) LookupUser(_ context.Context, _ string) (*tenants.Membership, error) {
	return nil, nil
}

func (m *memberRegistry) CountActiveMembers(_ context.Context, _ uuid.UUID) (int64, error) {
	return m.count, m.err
}

func TestCheckLimit_StarterAtLimit(t *testing.T) {
	limiter, tenantID, store := newTestLimiter(t, &billing.Subscription{
		Status: billing.SubscriptionStatusActive, PlanLabel: "starter",
	}, &memberRegistry{})
	ctx := context.Background()

	require.NoError(t, store.Increment(ctx, tenantID, plans.MetricAppointmentsMonth, CurrentPeriod(limiter.now()), 50))

	decision, err := limiter.CanCreateAppointment(ctx, tenantID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, plans.PlanStarter, decision.Plan)
	assert.Equal(t, int64(50), decision.Used)
	assert.Equal(t, int64(50), decision.Limit)
}

func TestCheckLimit_StarterBelowLimit(t *testing.T) {
	limiter, tenantID, store := newTestLimiter(t, &billing.Subscription{
		Status: billing.SubscriptionStatusActive, PlanLabel: "starter",
	}, &memberRegistry{})
	ctx := context.Background()

	require.NoError(t, store.Increment(ctx, tenantID, plans.MetricAppointmentsMonth, CurrentPeriod(limiter.now()), 49))

	decision, err := limiter.CanCreateAppointment(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(49), decision.Used)
}

func TestCheckLimit_UnlimitedAlwaysAllowed(t *testing.T) {
	limiter, tenantID, store := newTestLimiter(t, &billing.Subscription{
		Status: billing.SubscriptionStatusActive, PlanLabel: "professional",
	}, &memberRegistry{})
	ctx := context.Background()

	require.NoError(t, store.Increment(ctx, tenantID, plans.MetricAppointmentsMonth, CurrentPeriod(limiter.now()), 100000))

	decision, err := limiter.CanCreateAppointment(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(plans.Unlimited), decision.Limit)
}

func TestCheckLimit_NoSubscriptionUsesStarterQuota(t *testing.T) {
	limiter, tenantID, _ := newTestLimiter(t, nil, &memberRegistry{})

	decision, err := limiter.CanCreateAppointment(context.Background(), tenantID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, plans.PlanStarter, decision.Plan)
	assert.Equal(t, int64(50), decision.Limit)
	assert.Equal(t, int64(0), decision.Used)
}

func TestCanUseChatbotMessage(t *testing.T) {
	limiter, tenantID, store := newTestLimiter(t, &billing.Subscription{
		Status: billing.SubscriptionStatusActive, PlanLabel: "professional",
	}, &memberRegistry{})
	ctx := context.Background()

	require.NoError(t, store.Increment(ctx, tenantID, plans.MetricChatbotMessages, CurrentPeriod(limiter.now()), 2000))

	decision, err := limiter.CanUseChatbotMessage(ctx, tenantID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, int64(2000), decision.Used)
	assert.Equal(t, int64(2000), decision.Limit)
}

func TestCanInviteMember_CountsLiveMembers(t *testing.T) {
	limiter, tenantID, _ := newTestLimiter(t, &billing.Subscription{
		Status: billing.SubscriptionStatusActive, PlanLabel: "starter",
	}, &memberRegistry{count: 3})

	decision, err := limiter.CanInviteMember(context.Background(), tenantID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, int64(3), decision.Used)
	assert.Equal(t, int64(3), decision.Limit)
}

func TestCanInviteMember_SeatAvailable(t *testing.T) {
	limiter, tenantID, _ := newTestLimiter(t, &billing.Subscription{
		Status: billing.SubscriptionStatusActive, PlanLabel: "starter",
	}, &memberRegistry{count: 2})

	decision, err := limiter.CanInviteMember(context.Background(), tenantID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestCanInviteMember_UnlimitedSkipsCount(t *testing.T) {
	limiter, tenantID, _ := newTestLimiter(t, &billing.Subscription{
		Status: billing.SubscriptionStatusActive, PlanLabel: "enterprise",
	}, &memberRegistry{err: errors.New("should not be called")})

	decision, err := limiter.CanInviteMember(context.Background(), tenantID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestIncrement_UsesCurrentPeriod(t *testing.T) {
	limiter, tenantID, store := newTestLimiter(t, nil, &memberRegistry{})
	ctx := context.Background()

	require.NoError(t, limiter.Increment(ctx, tenantID, plans.MetricAppointmentsMonth, 1))
	require.NoError(t, limiter.Increment(ctx, tenantID, plans.MetricAppointmentsMonth, 1))

	count, err := store.GetCount(ctx, tenantID, plans.MetricAppointmentsMonth, CurrentPeriod(limiter.now()))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestIsLimitExceeded(t *testing.T) {
	err := &LimitExceededError{Plan: plans.PlanStarter, Metric: plans.MetricAppointmentsMonth, Used: 50, Limit: 50}
	assert.True(t, IsLimitExceeded(err))
	assert.False(t, IsLimitExceeded(errors.New("other")))
	assert.Contains(t, err.Error(), "appointments_month")
}

func TestEnforce_ReturnsTypedError(t *testing.T) {
	limiter, tenantID, store := newTestLimiter(t, &billing.Subscription{
		Status: billing.SubscriptionStatusActive, PlanLabel: "starter",
	}, &memberRegistry{})
	ctx := context.Background()
	require.NoError(t, store.Increment(ctx, tenantID, plans.MetricAppointmentsMonth, CurrentPeriod(limiter.now()), 50))

	decision, err := limiter.Enforce(ctx, tenantID, plans.MetricAppointmentsMonth)
	require.Error(t, err)
	assert.True(t, IsLimitExceeded(err))
	require.NotNil(t, decision)
	assert.False(t, decision.Allowed)
	assert.Equal(t, int64(50), decision.Used)

	limitErr := err.(*LimitExceededError)
	assert.Equal(t, plans.PlanStarter, limitErr.Plan)
	assert.Equal(t, int64(50), limitErr.Limit)
}

func TestEnforce_AllowedReturnsNilError(t *testing.T) {
	limiter, tenantID, _ := newTestLimiter(t, nil, &memberRegistry{})

	decision, err := limiter.Enforce(context.Background(), tenantID, plans.MetricAppointmentsMonth)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEnforceMembers_TypedError(t *testing.T) {
	limiter, tenantID, _ := newTestLimiter(t, nil, &memberRegistry{count: 3})

	decision, err := limiter.EnforceMembers(context.Background(), tenantID)
	require.Error(t, err)
	assert.True(t, IsLimitExceeded(err))
	assert.Equal(t, int64(3), decision.Used)
	assert.Equal(t, int64(3), decision.Limit)
}
