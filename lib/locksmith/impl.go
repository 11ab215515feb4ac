package locksmith

import (
	"context"
	"io"
	"time"

	"github.com/locksmith-go/locksmith/lib/clock"
	"github.com/locksmith-go/locksmith/lib/lease"
)

const (
	// DefaultPollInterval is the retry interval of AcquireWait.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultSweepInterval is the interval between watchdog sweeps.
	DefaultSweepInterval = time.Second
)

// Options configures a Smith during construction.
type Options struct {
	Clock         clock.Clock   // time source (nil = system clock)
	PollInterval  time.Duration // AcquireWait retry interval (0 = default)
	SweepInterval time.Duration // watchdog sweep interval (0 = default)
}

// DefaultOptions returns the default Smith options.
func DefaultOptions() *Options {
	return &Options{
		Clock:         clock.System(),
		PollInterval:  DefaultPollInterval,
		SweepInterval: DefaultSweepInterval,
	}
}

// Smith implements ILocksmith on top of an owned lease table.
//
// A Smith is constructed with New, serves concurrent operations
// immediately, and runs its watchdog via Run until the context is
// cancelled. There is no ambient instance; whoever serves the external
// interface holds the Smith explicitly.
type Smith struct {
	table *lease.Table
	clk   clock.Clock
	stats *stats

	pollInterval  time.Duration
	sweepInterval time.Duration
}

// New creates a lock service with the specified options (optional).
func New(opts *Options) *Smith {
	if opts == nil {
		opts = DefaultOptions()
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.System()
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	sweep := opts.SweepInterval
	if sweep <= 0 {
		sweep = DefaultSweepInterval
	}

	table := lease.NewTable(clk)
	return &Smith{
		table:         table,
		clk:           clk,
		stats:         newStats(table),
		pollInterval:  poll,
		sweepInterval: sweep,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (s *Smith) Acquire(name string, validity uint64) (lease.Lease, bool) {
	s.stats.acquire.Inc()
	return s.tryAcquire(name, validity)
}

func (s *Smith) AcquireWait(ctx context.Context, name string, validity, timeout uint64) (lease.Lease, bool) {
	s.stats.acquire.Inc()

	// First attempt before any waiting, so a free lock is granted
	// without paying a poll interval.
	if l, ok := s.tryAcquire(name, validity); ok {
		return l, true
	}
	if timeout == 0 {
		return lease.Lease{}, false
	}

	// The deadline is computed once at entry.
	deadline := s.clk.Now().Add(secs(timeout))

	s.stats.waiting.Add(1)
	defer s.stats.waiting.Add(-1)

	for {
		remaining := deadline.Sub(s.clk.Now())
		if remaining <= 0 {
			return lease.Lease{}, false
		}

		wait := s.pollInterval
		if wait > remaining {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lease.Lease{}, false
		case <-timer.C:
		}

		if l, ok := s.tryAcquire(name, validity); ok {
			return l, true
		}
	}
}

func (s *Smith) Update(token string, validity uint64) bool {
	s.stats.update.Inc()
	ok := s.table.Extend(token, secs(validity))
	if ok {
		s.stats.updateSuccess.Inc()
		s.stats.lockUpdate.Inc()
	}
	return ok
}

func (s *Smith) Release(token string) bool {
	s.stats.release.Inc()
	ok := s.table.Remove(token)
	if ok {
		s.stats.releaseSuccess.Inc()
		s.stats.lockDelete.Inc()
	}
	return ok
}

func (s *Smith) Statistics() StatisticsSnapshot {
	return s.stats.snapshot(s.table)
}

// WritePrometheus writes all counters and gauges in Prometheus text
// format, for exposure on a metrics endpoint.
func (s *Smith) WritePrometheus(w io.Writer) {
	s.stats.writePrometheus(w)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// tryAcquire is the single attempt shared by Acquire and the AcquireWait
// poll loop. It touches the success counters but not the top-level
// acquire counter, which counts calls rather than attempts.
func (s *Smith) tryAcquire(name string, validity uint64) (lease.Lease, bool) {
	l, ok := s.table.PutIfAbsent(name, secs(validity))
	if ok {
		s.stats.acquireSuccess.Inc()
		s.stats.lockCreate.Inc()
	}
	return l, ok
}

func secs(n uint64) time.Duration {
	return time.Duration(n) * time.Second
}
