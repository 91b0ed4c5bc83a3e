// Package stats tracks rolling request statistics for health reporting.
package stats

import (
	"sync"
	"time"
)

// Snapshot is a consistent read of the aggregator state.
type Snapshot struct {
	TotalRequests         int64         `json:"total_requests"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
	StartTime             time.Time     `json:"start_time"`
	Uptime                time.Duration `json:"uptime"`
}

// Aggregator maintains a request count and running-mean latency.
// Safe for concurrent use; the count/average pair is updated and read
// atomically relative to each other.
type Aggregator struct {
	mu        sync.Mutex
	total     int64
	avg       time.Duration
	startTime time.Time
	now       func() time.Time
}

// New creates an Aggregator with its start time set to now.
func New() *Aggregator {
	return newWithNow(time.Now)
}

func newWithNow(now func() time.Time) *Aggregator {
	return &Aggregator{startTime: now(), now: now}
}

// Record folds one request's processing time into the running mean:
// new_avg = (old_avg × (n−1) + t) / n, with n the post-increment count.
func (a *Aggregator) Record(t time.Duration) {
	a.mu.Lock()
	a.total++
	a.avg += (t - a.avg) / time.Duration(a.total)
	a.mu.Unlock()
}

// Snapshot returns a consistent copy of the current statistics.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		TotalRequests:         a.total,
		AverageProcessingTime: a.avg,
		StartTime:             a.startTime,
		Uptime:                a.now().Sub(a.startTime),
	}
}
