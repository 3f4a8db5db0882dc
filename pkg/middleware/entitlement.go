package middleware

import (
	"net/http"

	"github.com/bookline/bookline/pkg/billing"
	"github.com/bookline/bookline/pkg/httputil"
	"github.com/bookline/bookline/pkg/observability"
	"github.com/bookline/bookline/pkg/plans"
)

// EntitlementGate enforces per-feature entitlements. A feature nobody
// declared in the entitlement table is disabled for every plan.
type EntitlementGate struct {
	store   billing.Store
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewEntitlementGate creates an EntitlementGate
func NewEntitlementGate(store billing.Store, logger *observability.Logger, metrics *observability.Metrics) *EntitlementGate {
	return &EntitlementGate{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// RequireFeature creates middleware that rejects requests from tenants whose
// effective plan does not include the feature.
func (g *EntitlementGate) RequireFeature(feature plans.Feature) func(http.Handler) http.Handler {
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
			if !plans.FeatureEnabled(plan, feature) {
				status := billing.SubscriptionStatusActive
				if sub != nil {
					status = sub.Status
				}
				g.record("deny")
				httputil.WriteFeatureNotEntitled(w, string(feature), string(plan), string(status))
				return
			}

			g.record("allow")
			next.ServeHTTP(w, r)
		})
	}
}

func (g *EntitlementGate) record(decision string) {
	if g.metrics != nil {
		g.metrics.RecordGateDecision("entitlement", decision)
	}
}
