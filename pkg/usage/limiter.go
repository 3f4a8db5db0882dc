package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookline/bookline/pkg/plans"
	"github.com/bookline/bookline/pkg/tenants"
)

// Decision is the outcome of a limit check. Used and Limit are returned
// even when allowed so callers can render remaining-quota hints.
type Decision struct {
	Allowed bool         `json:"allowed"`
	Plan    plans.Plan   `json:"plan"`
	Metric  plans.Metric `json:"metric"`
	Used    int64        `json:"used"`
	Limit   int64        `json:"limit"`
}

// LimitExceededError represents a usage limit rejection
type LimitExceededError struct {
	Plan   plans.Plan
	Metric plans.Metric
	Used   int64
	Limit  int64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("usage limit reached for %s", e.Metric)
}

// IsLimitExceeded checks if an error is a usage limit rejection
func IsLimitExceeded(err error) bool {
	_, ok := err.(*LimitExceededError)
	return ok
}

// Limiter enforces per-plan monthly quotas. All reads and writes are keyed
// by the UTC calendar month containing the evaluation instant.
type Limiter struct {
	resolver *PlanResolver
	store    Store
	registry tenants.Registry
	now      func() time.Time
}

// NewLimiter creates a Limiter
func NewLimiter(resolver *PlanResolver, store Store, registry tenants.Registry) *Limiter {
	return &Limiter{
		resolver: resolver,
		store:    store,
		registry: registry,
		now:      time.Now,
	}
}

// CheckLimit compares current-period usage for a counter-backed metric
// against the tenant's plan quota.
func (l *Limiter) CheckLimit(ctx context.Context, tenantID uuid.UUID, metric plans.Metric) (*Decision, error) {
	plan, err := l.resolver.GetPlan(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	limit := plans.LimitFor(plan, metric)
	if limit == plans.Unlimited {
		return &Decision{Allowed: true, Plan: plan, Metric: metric, Limit: limit}, nil
	}

	used, err := l.store.GetCount(ctx, tenantID, metric, CurrentPeriod(l.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to read usage: %w", err)
	}

	return &Decision{
		Allowed: used < limit,
		Plan:    plan,
		Metric:  metric,
		Used:    used,
		Limit:   limit,
	}, nil
}

// Increment records consumption of a counter-backed metric for the current
// period. The store-level increment is atomic; concurrent calls are all
// reflected in the final count.
func (l *Limiter) Increment(ctx context.Context, tenantID uuid.UUID, metric plans.Metric, delta int64) error {
	return l.store.Increment(ctx, tenantID, metric, CurrentPeriod(l.now()), delta)
}

// Enforce checks a counter-backed metric and returns a typed
// LimitExceededError alongside the decision when the quota is spent.
// Callers distinguish quota rejections from store failures with
// IsLimitExceeded.
func (l *Limiter) Enforce(ctx context.Context, tenantID uuid.UUID, metric plans.Metric) (*Decision, error) {
	decision, err := l.CheckLimit(ctx, tenantID, metric)
	if err != nil {
		return nil, err
	}
	return decision, decision.exceeded()
}

// EnforceMembers checks the member limit with the same error contract as
// Enforce.
func (l *Limiter) EnforceMembers(ctx context.Context, tenantID uuid.UUID) (*Decision, error) {
	decision, err := l.CanInviteMember(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return decision, decision.exceeded()
}

func (d *Decision) exceeded() error {
	if d.Allowed {
		return nil
	}
	return &LimitExceededError{Plan: d.Plan, Metric: d.Metric, Used: d.Used, Limit: d.Limit}
}

// CanCreateAppointment checks the monthly appointment quota
func (l *Limiter) CanCreateAppointment(ctx context.Context, tenantID uuid.UUID) (*Decision, error) {
	return l.CheckLimit(ctx, tenantID, plans.MetricAppointmentsMonth)
}

// CanUseChatbotMessage checks the monthly chatbot message quota
func (l *Limiter) CanUseChatbotMessage(ctx context.Context, tenantID uuid.UUID) (*Decision, error) {
	return l.CheckLimit(ctx, tenantID, plans.MetricChatbotMessages)
}

// CanInviteMember checks the member limit. Membership is counted live from
// the registry rather than from a usage counter, so removals free up seats
// immediately.
func (l *Limiter) CanInviteMember(ctx context.Context, tenantID uuid.UUID) (*Decision, error) {
	plan, err := l.resolver.GetPlan(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	limit := plans.LimitFor(plan, plans.MetricMembers)
	if limit == plans.Unlimited {
		return &Decision{Allowed: true, Plan: plan, Metric: plans.MetricMembers, Limit: limit}, nil
	}

	used, err := l.registry.CountActiveMembers(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	return &Decision{
		Allowed: used < limit,
		Plan:    plan,
		Metric:  plans.MetricMembers,
		Used:    used,
		Limit:   limit,
	}, nil
}
