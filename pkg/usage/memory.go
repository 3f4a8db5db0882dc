package usage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/bookline/bookline/pkg/plans"
)

type counterKey struct {
	tenantID    uuid.UUID
	metric      plans.Metric
	periodStart int64
}

// MemoryStore is an in-memory Store for tests and single-node development.
// Increment holds the lock for the whole read-modify-write, giving the same
// no-lost-update guarantee as the SQL upsert.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[counterKey]int64
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[counterKey]int64)}
}

func (s *MemoryStore) key(tenantID uuid.UUID, metric plans.Metric, period Period) counterKey {
	return counterKey{tenantID: tenantID, metric: metric, periodStart: period.Start.Unix()}
}

// GetCount returns the counter for the period, or 0 if no row exists
func (s *MemoryStore) GetCount(_ context.Context, tenantID uuid.UUID, metric plans.Metric, period Period) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[s.key(tenantID, metric, period)], nil
}

// Increment atomically adds delta to the counter
func (s *MemoryStore) Increment(_ context.Context, tenantID uuid.UUID, metric plans.Metric, period Period, delta int64) error {
	if delta <= 0 {
		delta = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[s.key(tenantID, metric, period)] += delta
	return nil
}

// SnapshotPeriod returns all counter rows for the period
func (s *MemoryStore) SnapshotPeriod(_ context.Context, period Period) ([]CounterRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []CounterRow
	for k, count := range s.counters {
		if k.periodStart != period.Start.Unix() {
			continue
		}
		out = append(out, CounterRow{TenantID: k.tenantID, Metric: k.metric, Count: count})
	}
	return out, nil
}
