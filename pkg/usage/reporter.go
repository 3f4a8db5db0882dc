package usage

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bookline/bookline/pkg/observability"
)

// Reporter periodically exports current-period usage counters as
// prometheus gauges, giving operators per-tenant quota visibility without
// querying the database.
type Reporter struct {
	store   Store
	metrics *observability.Metrics
	logger  *observability.Logger
	cron    *cron.Cron
	now     func() time.Time
}

// NewReporter creates a Reporter
func NewReporter(store Store, metrics *observability.Metrics, logger *observability.Logger) *Reporter {
	return &Reporter{
		store:   store,
		metrics: metrics,
		logger:  logger,
		cron:    cron.New(),
		now:     time.Now,
	}
}

// Start schedules the export job. The schedule uses standard cron syntax;
// every 5 minutes is frequent enough for dashboards without load concerns.
func (r *Reporter) Start(schedule string) error {
	if schedule == "" {
		schedule = "*/5 * * * *"
	}
	if _, err := r.cron.AddFunc(schedule, r.export); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running export to finish
func (r *Reporter) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reporter) export() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := r.store.SnapshotPeriod(ctx, CurrentPeriod(r.now()))
	if err != nil {
		r.logger.WithError(err).Error("usage export failed")
		return
	}

	for _, row := range rows {
		r.metrics.UsageCurrent.WithLabelValues(row.TenantID.String(), string(row.Metric)).Set(float64(row.Count))
	}
	r.logger.WithField("counters", len(rows)).Debug("usage gauges exported")
}
