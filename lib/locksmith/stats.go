package locksmith

import (
	"io"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/locksmith-go/locksmith/lib/lease"
)

// --------------------------------------------------------------------------
// Snapshot Types
// --------------------------------------------------------------------------

// CallStats holds the monotonic operation counters for the process
// lifetime. The top-level counters (Acquire, Update, Release) count
// every call regardless of outcome; the Success counters only truthy
// results; the Lock* counters actual state changes.
type CallStats struct {
	Acquire         uint64 `json:"acquire"`
	AcquireSuccess  uint64 `json:"acquire_success"`
	Update          uint64 `json:"update"`
	UpdateSuccess   uint64 `json:"update_success"`
	Release         uint64 `json:"release"`
	ReleaseSuccess  uint64 `json:"release_success"`
	WatchdogRelease uint64 `json:"watchdog_release"`
	LockCreate      uint64 `json:"lock_create"`
	LockUpdate      uint64 `json:"lock_update"`
	LockDelete      uint64 `json:"lock_delete"`
}

// LockStats holds the live lease gauge.
type LockStats struct {
	Count uint64 `json:"count"`
}

// ConsumerStats holds the waiting-consumers gauge.
type ConsumerStats struct {
	Waiting uint64 `json:"waiting"`
}

// StatisticsSnapshot is a point-in-time read of all counters and gauges.
// Counters never decrease between snapshots; gauges reflect the state of
// the table and the waiters at read time.
type StatisticsSnapshot struct {
	Calls     CallStats     `json:"calls"`
	Locks     LockStats     `json:"locks"`
	Consumers ConsumerStats `json:"consumers"`
}

// --------------------------------------------------------------------------
// Internal Counter Set
// --------------------------------------------------------------------------

// stats owns the metric set of one service instance. Counters are
// atomic, so concurrent operations never lose increments and snapshots
// never observe torn values.
type stats struct {
	set *metrics.Set

	acquire         *metrics.Counter
	acquireSuccess  *metrics.Counter
	update          *metrics.Counter
	updateSuccess   *metrics.Counter
	release         *metrics.Counter
	releaseSuccess  *metrics.Counter
	watchdogRelease *metrics.Counter
	lockCreate      *metrics.Counter
	lockUpdate      *metrics.Counter
	lockDelete      *metrics.Counter

	waiting atomic.Int64 // callers currently blocked in AcquireWait
}

// newStats creates the metric set and registers the gauges against the
// given lease table.
func newStats(table *lease.Table) *stats {
	set := metrics.NewSet()

	st := &stats{
		set:             set,
		acquire:         set.NewCounter(`locksmith_calls_total{call="acquire"}`),
		acquireSuccess:  set.NewCounter(`locksmith_calls_total{call="acquire_success"}`),
		update:          set.NewCounter(`locksmith_calls_total{call="update"}`),
		updateSuccess:   set.NewCounter(`locksmith_calls_total{call="update_success"}`),
		release:         set.NewCounter(`locksmith_calls_total{call="release"}`),
		releaseSuccess:  set.NewCounter(`locksmith_calls_total{call="release_success"}`),
		watchdogRelease: set.NewCounter(`locksmith_calls_total{call="watchdog_release"}`),
		lockCreate:      set.NewCounter(`locksmith_calls_total{call="lock_create"}`),
		lockUpdate:      set.NewCounter(`locksmith_calls_total{call="lock_update"}`),
		lockDelete:      set.NewCounter(`locksmith_calls_total{call="lock_delete"}`),
	}

	set.NewGauge(`locksmith_locks_count`, func() float64 {
		return float64(table.CountLive())
	})
	set.NewGauge(`locksmith_consumers_waiting`, func() float64 {
		return float64(st.waiting.Load())
	})

	return st
}

// snapshot builds a StatisticsSnapshot from the current counter values.
func (st *stats) snapshot(table *lease.Table) StatisticsSnapshot {
	return StatisticsSnapshot{
		Calls: CallStats{
			Acquire:         st.acquire.Get(),
			AcquireSuccess:  st.acquireSuccess.Get(),
			Update:          st.update.Get(),
			UpdateSuccess:   st.updateSuccess.Get(),
			Release:         st.release.Get(),
			ReleaseSuccess:  st.releaseSuccess.Get(),
			WatchdogRelease: st.watchdogRelease.Get(),
			LockCreate:      st.lockCreate.Get(),
			LockUpdate:      st.lockUpdate.Get(),
			LockDelete:      st.lockDelete.Get(),
		},
		Locks: LockStats{
			Count: uint64(table.CountLive()),
		},
		Consumers: ConsumerStats{
			Waiting: uint64(st.waiting.Load()),
		},
	}
}

// writePrometheus exposes the metric set in Prometheus text format.
func (st *stats) writePrometheus(w io.Writer) {
	st.set.WritePrometheus(w)
}
