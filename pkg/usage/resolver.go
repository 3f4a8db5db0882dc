package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/bookline/bookline/pkg/billing"
	"github.com/bookline/bookline/pkg/observability"
	"github.com/bookline/bookline/pkg/plans"
)

const (
	// InvalidationChannel carries tenant IDs whose subscription changed.
	// The billing-webhook service publishes here after every write.
	InvalidationChannel = "bookline:subscription.changed"

	defaultCacheSize = 4096
	defaultCacheTTL  = 5 * time.Minute
)

// PlanResolver resolves a tenant's effective plan from its subscription,
// caching results in an expirable LRU owned by the resolver. Entries are
// evicted eagerly on subscription-change events when a redis client is
// configured; the TTL is the fallback when events are unavailable.
type PlanResolver struct {
	store   billing.Store
	cache   *expirable.LRU[uuid.UUID, plans.Plan]
	redis   *redis.Client
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewPlanResolver creates a resolver with the default cache sizing.
// redisClient may be nil; the cache then relies on TTL expiry alone.
func NewPlanResolver(store billing.Store, redisClient *redis.Client, logger *observability.Logger, metrics *observability.Metrics) *PlanResolver {
	return &PlanResolver{
		store:   store,
		cache:   expirable.NewLRU[uuid.UUID, plans.Plan](defaultCacheSize, nil, defaultCacheTTL),
		redis:   redisClient,
		logger:  logger,
		metrics: metrics,
	}
}

// GetPlan returns the tenant's effective plan. A tenant without a
// subscription row resolves to starter.
func (r *PlanResolver) GetPlan(ctx context.Context, tenantID uuid.UUID) (plans.Plan, error) {
	if plan, ok := r.cache.Get(tenantID); ok {
		if r.metrics != nil {
			r.metrics.PlanCacheHitsTotal.Inc()
		}
		return plan, nil
	}
	if r.metrics != nil {
		r.metrics.PlanCacheMissesTotal.Inc()
	}

	sub, err := r.store.GetSubscription(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve plan: %w", err)
	}

	plan := sub.EffectivePlan()
	r.cache.Add(tenantID, plan)
	return plan, nil
}

// Invalidate drops the cached plan for a tenant
func (r *PlanResolver) Invalidate(tenantID uuid.UUID) {
	r.cache.Remove(tenantID)
}

// WatchInvalidations subscribes to the subscription-change channel and
// evicts cache entries as events arrive. It blocks until ctx is canceled
// and is a no-op without a redis client.
func (r *PlanResolver) WatchInvalidations(ctx context.Context) error {
	if r.redis == nil {
		return nil
	}

	sub := r.redis.Subscribe(ctx, InvalidationChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			tenantID, err := uuid.Parse(msg.Payload)
			if err != nil {
				r.logger.WithField("payload", msg.Payload).Warn("ignoring malformed invalidation event")
				continue
			}
			r.Invalidate(tenantID)
			r.logger.WithField("tenant_id", tenantID.String()).Debug("plan cache invalidated")
		}
	}
}
