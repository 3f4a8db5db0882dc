package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookline/bookline/pkg/plans"
)

// SubscriptionStatus represents the status of a subscription as written by
// the billing-webhook collaborator. This core only ever reads it.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
)

// Subscription represents a tenant's billing subscription
type Subscription struct {
	ID                uuid.UUID          `json:"id"`
	TenantID          uuid.UUID          `json:"tenant_id"`
	PlanLabel         string             `json:"plan"`
	Status            SubscriptionStatus `json:"status"`
	CurrentPeriodEnd  *time.Time         `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool               `json:"cancel_at_period_end"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Store reads subscription rows. A missing row is reported as (nil, nil):
// tenants without a subscription run on the implicit starter/active default.
type Store interface {
	GetSubscription(ctx context.Context, tenantID uuid.UUID) (*Subscription, error)
}

// DefaultGraceDays is the past-due grace window applied when none is configured
const DefaultGraceDays = 3

// terminal statuses are inactive regardless of period end
func (s SubscriptionStatus) terminal() bool {
	switch s {
	case SubscriptionStatusCanceled, SubscriptionStatusUnpaid, SubscriptionStatusIncompleteExpired:
		return true
	}
	return false
}

// ActiveAt classifies the subscription at the given instant. A nil
// subscription is the implicit starter default and counts as active.
// past_due stays active until graceDays after the current period end; when
// the period end is unknown the grace window is measured from now, which
// keeps a freshly past-due tenant usable while the webhook catches up.
func (sub *Subscription) ActiveAt(now time.Time, graceDays int) bool {
	if sub == nil {
		return true
	}
	switch sub.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
		return true
	case SubscriptionStatusPastDue:
		periodEnd := now
		if sub.CurrentPeriodEnd != nil {
			periodEnd = *sub.CurrentPeriodEnd
		}
		return !now.After(periodEnd.AddDate(0, 0, graceDays))
	default:
		if sub.Status.terminal() {
			return false
		}
		return false
	}
}

// EffectivePlan maps the subscription to a canonical plan tier. No row or a
// lapsed subscription resolves to starter; a live subscription resolves its
// stored label through plans.ParsePlan, so unrecognized labels also land on
// starter rather than widening access.
func (sub *Subscription) EffectivePlan() plans.Plan {
	if sub == nil {
		return plans.PlanStarter
	}
	switch sub.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPastDue:
		return plans.ParsePlan(sub.PlanLabel)
	default:
		return plans.PlanStarter
	}
}
