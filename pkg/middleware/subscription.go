package middleware

import (
	"net/http"
	"time"

	"github.com/bookline/bookline/pkg/billing"
	"github.com/bookline/bookline/pkg/httputil"
	"github.com/bookline/bookline/pkg/observability"
	"github.com/bookline/bookline/pkg/plans"
)

// SubscriptionGate enforces plan membership and subscription state on
// routes. The subscription row is fetched fresh per request; plan caching
// happens in the usage resolver, not here.
type SubscriptionGate struct {
	store     billing.Store
	graceDays int
	logger    *observability.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewSubscriptionGate creates a SubscriptionGate. graceDays <= 0 falls back
// to the billing default.
func NewSubscriptionGate(store billing.Store, graceDays int, logger *observability.Logger, metrics *observability.Metrics) *SubscriptionGate {
	if graceDays <= 0 {
		graceDays = billing.DefaultGraceDays
	}
	return &SubscriptionGate{
		store:     store,
		graceDays: graceDays,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// RequireSubscription creates middleware that rejects requests from tenants
// whose plan is not in allowedPlans or whose subscription has lapsed. An
// empty allowedPlans admits every plan and checks only subscription state.
//
// Plan membership is checked before subscription state, so a starter tenant
// hitting a professional-only route sees plan_not_allowed even while its
// subscription is perfectly healthy.
func (g *SubscriptionGate) RequireSubscription(allowedPlans ...plans.Plan) func(http.Handler) http.Handler {
	allowedLabels := make([]string, len(allowedPlans))
	allowedSet := make(map[plans.Plan]bool, len(allowedPlans))
	for i, p := range allowedPlans {
		allowedLabels[i] = string(p)
		allowedSet[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := GetTenantContext(r)
			if tc == nil {
				g.record("deny")
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			sub, err := g.store.GetSubscription(r.Context(), tc.TenantID)
			if err != nil {
				g.logger.WithError(err).WithField("tenant_id", tc.TenantID.String()).Error("subscription lookup failed")
				g.record("deny")
				httputil.WriteInternalError(w)
				return
			}

			plan := sub.EffectivePlan()
			if len(allowedSet) > 0 && !allowedSet[plan] {
				g.record("deny")
				httputil.WritePlanNotAllowed(w, string(plan), allowedLabels)
				return
			}

			if !sub.ActiveAt(g.now(), g.graceDays) {
				g.record("deny")
				httputil.WriteSubscriptionInactive(w, string(sub.Status))
				return
			}

			g.record("allow")
			next.ServeHTTP(w, r)
		})
	}
}

func (g *SubscriptionGate) record(decision string) {
	if g.metrics != nil {
		g.metrics.RecordGateDecision("subscription", decision)
	}
}
