package locksmith

import (
	"context"
	"testing"
	"time"

	"github.com/locksmith-go/locksmith/lib/clock"
)

func newTestSmith() (*Smith, *clock.Manual) {
	clk := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(&Options{Clock: clk}), clk
}

func TestAcquireReleaseCycle(t *testing.T) {
	s, _ := newTestSmith()

	h1, ok := s.Acquire("foo", 60)
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}

	if _, ok := s.Acquire("foo", 60); ok {
		t.Fatalf("expected second acquire to fail while the lease is live")
	}

	if !s.Release(h1.Token) {
		t.Fatalf("expected release with the owner token to succeed")
	}

	h2, ok := s.Acquire("foo", 60)
	if !ok {
		t.Fatalf("expected acquire after release to succeed")
	}
	if h2.Token == h1.Token {
		t.Errorf("expected a fresh owner token, got the old one")
	}
}

func TestExpiredLeaseIsReacquirable(t *testing.T) {
	s, clk := newTestSmith()

	old, _ := s.Acquire("bar", 1)
	clk.Advance(2 * time.Second)

	fresh, ok := s.Acquire("bar", 60)
	if !ok {
		t.Fatalf("expected acquire over an expired lease to succeed")
	}
	if fresh.Token == old.Token {
		t.Errorf("expected a new owner token after expiry")
	}
}

func TestUpdateAuthority(t *testing.T) {
	s, clk := newTestSmith()

	l, _ := s.Acquire("foo", 1)

	if !s.Update(l.Token, 60) {
		t.Fatalf("expected update with the owner token to succeed")
	}
	clk.Advance(30 * time.Second)
	if _, ok := s.Acquire("foo", 60); ok {
		t.Errorf("expected the renewed lease to still block acquire")
	}

	if s.Update("never-issued", 60) {
		t.Errorf("expected update with an unknown token to fail")
	}

	clk.Advance(time.Minute)
	if s.Update(l.Token, 60) {
		t.Errorf("expected update of an expired lease to fail")
	}
	if s.Release(l.Token) {
		t.Errorf("expected release of an expired lease to fail")
	}
}

func TestCounterContract(t *testing.T) {
	s, _ := newTestSmith()

	l, _ := s.Acquire("foo", 60) // acquire+1, success+1, create+1
	s.Acquire("foo", 60)         // acquire+1
	s.Update(l.Token, 30)        // update+1, success+1, lock_update+1
	s.Update("bogus", 30)        // update+1
	s.Release(l.Token)           // release+1, success+1, delete+1
	s.Release("bogus")           // release+1

	snap := s.Statistics()
	want := CallStats{
		Acquire: 2, AcquireSuccess: 1,
		Update: 2, UpdateSuccess: 1,
		Release: 2, ReleaseSuccess: 1,
		WatchdogRelease: 0,
		LockCreate:      1, LockUpdate: 1, LockDelete: 1,
	}
	if snap.Calls != want {
		t.Errorf("unexpected counters:\n got %+v\nwant %+v", snap.Calls, want)
	}
	if snap.Locks.Count != 0 {
		t.Errorf("expected no live leases, got %d", snap.Locks.Count)
	}
	if snap.Consumers.Waiting != 0 {
		t.Errorf("expected no waiting consumers, got %d", snap.Consumers.Waiting)
	}
}

func TestReleaseNeverIssuedTokenTouchesOnlyReleaseCounter(t *testing.T) {
	s, _ := newTestSmith()

	before := s.Statistics()
	if s.Release("never-issued") {
		t.Fatalf("expected release of a never-issued token to fail")
	}
	after := s.Statistics()

	before.Calls.Release++
	if after.Calls != before.Calls {
		t.Errorf("expected only the release counter to change:\n got %+v\nwant %+v", after.Calls, before.Calls)
	}
}

func TestAcquireWaitSucceedsWhenLockFrees(t *testing.T) {
	s := New(&Options{PollInterval: 10 * time.Millisecond})

	holder, _ := s.Acquire("foo", 60)

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.Release(holder.Token)
	}()

	start := time.Now()
	l, ok := s.AcquireWait(context.Background(), "foo", 60, 3)
	if !ok {
		t.Fatalf("expected the waiting acquire to win after release")
	}
	if l.Token == holder.Token {
		t.Errorf("expected a fresh owner token")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected the wait to end shortly after release, took %s", elapsed)
	}
}

func TestAcquireWaitTimeoutBound(t *testing.T) {
	s := New(&Options{PollInterval: 20 * time.Millisecond})

	s.Acquire("foo", 60)

	start := time.Now()
	_, ok := s.AcquireWait(context.Background(), "foo", 60, 1)
	elapsed := time.Since(start)

	if ok {
		t.Fatalf("expected the waiting acquire to give up")
	}
	if elapsed < time.Second {
		t.Errorf("expected the wait to last at least the timeout, took %s", elapsed)
	}
	// Allowed overshoot is one poll interval (plus scheduling slack).
	if elapsed > time.Second+200*time.Millisecond {
		t.Errorf("expected the wait to end within timeout + poll interval, took %s", elapsed)
	}
}

func TestAcquireWaitZeroTimeoutDoesNotWait(t *testing.T) {
	s := New(nil)

	s.Acquire("foo", 60)

	start := time.Now()
	if _, ok := s.AcquireWait(context.Background(), "foo", 60, 0); ok {
		t.Fatalf("expected the acquire to fail without waiting")
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected an immediate return, took %s", elapsed)
	}
}

func TestAcquireWaitHonorsContextCancel(t *testing.T) {
	s := New(&Options{PollInterval: 10 * time.Millisecond})

	s.Acquire("foo", 60)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if _, ok := s.AcquireWait(ctx, "foo", 60, 10); ok {
		t.Fatalf("expected the cancelled acquire to fail")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected cancellation to end the wait quickly, took %s", elapsed)
	}
}

func TestAcquireWaitReportsWaitingConsumer(t *testing.T) {
	s := New(&Options{PollInterval: 10 * time.Millisecond})

	s.Acquire("foo", 60)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.AcquireWait(context.Background(), "foo", 60, 1)
	}()

	// The gauge must show the blocked caller while it polls.
	deadline := time.Now().Add(500 * time.Millisecond)
	seen := false
	for time.Now().Before(deadline) {
		if s.Statistics().Consumers.Waiting == 1 {
			seen = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !seen {
		t.Errorf("expected the waiting gauge to report the blocked caller")
	}

	<-done
	if got := s.Statistics().Consumers.Waiting; got != 0 {
		t.Errorf("expected the waiting gauge to drop back to 0, got %d", got)
	}
}
