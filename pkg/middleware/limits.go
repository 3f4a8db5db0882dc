package middleware

import (
	"net/http"

	"github.com/bookline/bookline/pkg/httputil"
	"github.com/bookline/bookline/pkg/observability"
	"github.com/bookline/bookline/pkg/plans"
	"github.com/bookline/bookline/pkg/usage"
)

// LimitGate enforces per-plan monthly quotas on consuming routes. The gate
// only checks; the handler increments after the operation succeeds, so a
// failed creation never burns quota.
type LimitGate struct {
	limiter *usage.Limiter
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewLimitGate creates a LimitGate
func NewLimitGate(limiter *usage.Limiter, logger *observability.Logger, metrics *observability.Metrics) *LimitGate {
	return &LimitGate{
		limiter: limiter,
		logger:  logger,
		metrics: metrics,
	}
}

// EnforceAppointmentLimit rejects appointment creation once the tenant's
// monthly quota is spent.
func (g *LimitGate) EnforceAppointmentLimit(next http.Handler) http.Handler {
	return g.enforce(plans.MetricAppointmentsMonth, next)
}

// EnforceChatbotLimit rejects chatbot messages once the tenant's monthly
// quota is spent.
func (g *LimitGate) EnforceChatbotLimit(next http.Handler) http.Handler {
	return g.enforce(plans.MetricChatbotMessages, next)
}

// EnforceMemberLimit rejects member invites once the tenant holds as many
// active members as the plan allows. Seats are counted live, so removing a
// member immediately frees one.
func (g *LimitGate) EnforceMemberLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := GetTenantContext(r)
		if tc == nil {
			g.record("deny")
			httputil.WriteUnauthorized(w, "authentication required")
			return
		}

		decision, err := g.limiter.EnforceMembers(r.Context(), tc.TenantID)
		g.finish(w, r, decision, err, plans.MetricMembers, next)
	})
}

func (g *LimitGate) enforce(metric plans.Metric, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc := GetTenantContext(r)
		if tc == nil {
			g.record("deny")
			httputil.WriteUnauthorized(w, "authentication required")
			return
		}

		decision, err := g.limiter.Enforce(r.Context(), tc.TenantID, metric)
		g.finish(w, r, decision, err, metric, next)
	})
}

func (g *LimitGate) finish(w http.ResponseWriter, r *http.Request, decision *usage.Decision, err error, metric plans.Metric, next http.Handler) {
	if err != nil {
		if usage.IsLimitExceeded(err) {
			g.record("deny")
			if g.metrics != nil {
				g.metrics.LimitRejectsTotal.WithLabelValues(string(decision.Plan), string(decision.Metric)).Inc()
			}
			httputil.WriteLimitReached(w, string(decision.Plan), decision.Used, decision.Limit)
			return
		}

		tc := GetTenantContext(r)
		g.logger.WithError(err).
			WithField("tenant_id", tc.TenantID.String()).
			WithField("metric", string(metric)).
			Error("usage limit check failed")
		g.record("deny")
		httputil.WriteInternalError(w)
		return
	}

	g.record("allow")
	next.ServeHTTP(w, r)
}

func (g *LimitGate) record(decision string) {
	if g.metrics != nil {
		g.metrics.RecordGateDecision("usage_limit", decision)
	}
}
