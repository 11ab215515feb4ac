package locksmith

import (
	"context"
	"time"

	"github.com/op/go-logging"
)

var logger = logging.MustGetLogger("locksmith")

// Run drives the watchdog: a periodic sweep that evicts expired leases
// from the table and counts every eviction. It blocks until the context
// is cancelled.
//
// Read paths already treat expired leases as absent, so the sweep only
// bounds memory growth from leases nobody queries again; correctness
// does not depend on its timing.
func (s *Smith) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	// Run once immediately
	s.sweepOnce()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

// sweepOnce evicts all currently expired leases and attributes them to
// the watchdog counter. Owner-initiated releases never pass through
// here, so watchdog_release and release_success stay disjoint.
func (s *Smith) sweepOnce() {
	start := time.Now()
	evicted := s.table.Sweep()
	if evicted > 0 {
		s.stats.watchdogRelease.Add(evicted)
		logger.Debugf("watchdog evicted %d expired leases in %s", evicted, time.Since(start))
	}
}
