package locksmith

import (
	"context"
	"testing"
	"time"
)

func TestWatchdogEvictsAndCounts(t *testing.T) {
	s, clk := newTestSmith()

	s.Acquire("a", 1)
	s.Acquire("b", 1)
	s.Acquire("c", 3600)

	clk.Advance(2 * time.Second)

	s.sweepOnce()

	snap := s.Statistics()
	if snap.Calls.WatchdogRelease != 2 {
		t.Errorf("expected 2 watchdog releases, got %d", snap.Calls.WatchdogRelease)
	}
	if snap.Locks.Count != 1 {
		t.Errorf("expected 1 live lease after the sweep, got %d", snap.Locks.Count)
	}

	// Watchdog reclamation must never be attributed to owner release.
	if snap.Calls.ReleaseSuccess != 0 {
		t.Errorf("expected no owner releases, got %d", snap.Calls.ReleaseSuccess)
	}
	if snap.Calls.LockDelete != 0 {
		t.Errorf("expected no owner deletes, got %d", snap.Calls.LockDelete)
	}
}

func TestWatchdogLeavesLiveLeasesAlone(t *testing.T) {
	s, clk := newTestSmith()

	l, _ := s.Acquire("a", 2)
	clk.Advance(time.Second)
	s.Update(l.Token, 3600)
	clk.Advance(2 * time.Second)

	s.sweepOnce()

	snap := s.Statistics()
	if snap.Calls.WatchdogRelease != 0 {
		t.Errorf("expected no evictions for a renewed lease, got %d", snap.Calls.WatchdogRelease)
	}
	if !s.Release(l.Token) {
		t.Errorf("expected the renewed lease to still be owned")
	}
}

func TestWatchdogRunStopsOnCancel(t *testing.T) {
	s := New(&Options{SweepInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected a clean shutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected Run to return after cancellation")
	}
}

func TestWatchdogReclaimsForWaitingAcquire(t *testing.T) {
	s := New(&Options{
		PollInterval:  10 * time.Millisecond,
		SweepInterval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	s.Acquire("bar", 1)

	// The holder never releases; expiry plus the poll loop must hand the
	// lock to the waiter.
	l, ok := s.AcquireWait(ctx, "bar", 60, 3)
	if !ok {
		t.Fatalf("expected the waiter to win after the lease expired")
	}
	if !s.Release(l.Token) {
		t.Errorf("expected the waiter to own the new lease")
	}
}
