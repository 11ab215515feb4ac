package lease

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/locksmith-go/locksmith/lib/clock"
)

func newTestTable() (*Table, *clock.Manual) {
	clk := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewTable(clk), clk
}

func TestPutIfAbsent(t *testing.T) {
	table, _ := newTestTable()

	l1, ok := table.PutIfAbsent("foo", time.Minute)
	if !ok {
		t.Fatalf("expected first acquire on 'foo' to succeed")
	}
	if l1.Name != "foo" || l1.Token == "" {
		t.Errorf("unexpected lease %v", l1)
	}

	if _, ok := table.PutIfAbsent("foo", time.Minute); ok {
		t.Errorf("expected second acquire on 'foo' to fail while lease is live")
	}

	if _, ok := table.PutIfAbsent("bar", time.Minute); !ok {
		t.Errorf("expected acquire on unrelated name 'bar' to succeed")
	}
}

func TestGetTreatsExpiredAsAbsent(t *testing.T) {
	table, clk := newTestTable()

	l, _ := table.PutIfAbsent("foo", time.Second)

	if _, ok := table.Get("foo"); !ok {
		t.Fatalf("expected live lease to be present")
	}
	if got, ok := table.GetByToken(l.Token); !ok || got.Name != "foo" {
		t.Fatalf("expected token lookup to find the lease")
	}

	clk.Advance(time.Second) // expires exactly at the deadline

	if _, ok := table.Get("foo"); ok {
		t.Errorf("expected expired lease to be absent from Get")
	}
	if _, ok := table.GetByToken(l.Token); ok {
		t.Errorf("expected expired lease to be absent from GetByToken")
	}
	if table.Len() != 1 {
		t.Errorf("expected the physical entry to linger until swept, Len=%d", table.Len())
	}
	if table.CountLive() != 0 {
		t.Errorf("expected no live leases, CountLive=%d", table.CountLive())
	}
}

func TestPutIfAbsentOverwritesExpired(t *testing.T) {
	table, clk := newTestTable()

	old, _ := table.PutIfAbsent("foo", time.Second)
	clk.Advance(2 * time.Second)

	fresh, ok := table.PutIfAbsent("foo", time.Minute)
	if !ok {
		t.Fatalf("expected acquire over an expired lease to succeed")
	}
	if fresh.Token == old.Token {
		t.Errorf("expected a new owner token after reacquisition")
	}

	// The stale token must have lost all authority.
	if table.Extend(old.Token, time.Minute) {
		t.Errorf("expected extend with the stale token to fail")
	}
	if table.Remove(old.Token) {
		t.Errorf("expected remove with the stale token to fail")
	}
}

func TestExtend(t *testing.T) {
	table, clk := newTestTable()

	l, _ := table.PutIfAbsent("foo", time.Second)

	if !table.Extend(l.Token, time.Minute) {
		t.Fatalf("expected extend with the owner token to succeed")
	}
	clk.Advance(30 * time.Second)
	if _, ok := table.Get("foo"); !ok {
		t.Errorf("expected extended lease to still be live")
	}

	if table.Extend("no-such-token", time.Minute) {
		t.Errorf("expected extend with an unknown token to fail")
	}

	clk.Advance(time.Minute)
	if table.Extend(l.Token, time.Minute) {
		t.Errorf("expected extend of an expired lease to fail")
	}
}

func TestRemove(t *testing.T) {
	table, _ := newTestTable()

	l, _ := table.PutIfAbsent("foo", time.Minute)

	if !table.Remove(l.Token) {
		t.Fatalf("expected remove with the owner token to succeed")
	}
	if table.Remove(l.Token) {
		t.Errorf("expected a second remove to fail")
	}
	if table.Remove("never-issued") {
		t.Errorf("expected remove with a never-issued token to fail")
	}

	if _, ok := table.PutIfAbsent("foo", time.Minute); !ok {
		t.Errorf("expected acquire after release to succeed")
	}
}

func TestRemoveConcurrentWithReacquireKeepsSweepSchedule(t *testing.T) {
	table, clk := newTestTable()

	// Race a remove of the old lease against a fresh acquire on the same
	// name. Whoever wins, the surviving lease must stay scheduled so the
	// sweeper can evict it once it expires.
	const rounds = 500
	for i := 0; i < rounds; i++ {
		old, ok := table.PutIfAbsent("contended", time.Minute)
		if !ok {
			t.Fatalf("round %d: setup acquire failed", i)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			table.Remove(old.Token)
		}()
		go func() {
			defer wg.Done()
			table.PutIfAbsent("contended", time.Minute)
		}()
		wg.Wait()

		// Expire whatever survived and sweep until the table drains. A
		// lease left in the table but missing from the schedule would
		// never be evicted.
		clk.Advance(2 * time.Minute)
		table.Sweep()
		if table.Len() != 0 {
			t.Fatalf("round %d: %d leases survived the sweep", i, table.Len())
		}
	}
}

func TestRange(t *testing.T) {
	table, clk := newTestTable()

	table.PutIfAbsent("live-1", time.Minute)
	table.PutIfAbsent("live-2", time.Minute)
	table.PutIfAbsent("dying", time.Second)
	clk.Advance(time.Second)

	seen := make(map[string]bool)
	table.Range(func(l Lease) bool {
		seen[l.Name] = true
		return true
	})
	if len(seen) != 2 || !seen["live-1"] || !seen["live-2"] {
		t.Errorf("expected only the live leases, got %v", seen)
	}

	// Returning false stops the iteration.
	visits := 0
	table.Range(func(Lease) bool {
		visits++
		return false
	})
	if visits != 1 {
		t.Errorf("expected the iteration to stop after one lease, got %d", visits)
	}
}

func TestSweep(t *testing.T) {
	table, clk := newTestTable()

	for i := 0; i < 10; i++ {
		table.PutIfAbsent(fmt.Sprintf("lock-%d", i), time.Second)
	}
	keeper, _ := table.PutIfAbsent("keeper", time.Second)

	// Renew one lease before everything else expires.
	clk.Advance(500 * time.Millisecond)
	if !table.Extend(keeper.Token, time.Hour) {
		t.Fatalf("expected renewal to succeed")
	}

	clk.Advance(time.Second)

	if evicted := table.Sweep(); evicted != 10 {
		t.Errorf("expected 10 evictions, got %d", evicted)
	}
	if table.Len() != 1 {
		t.Errorf("expected only the renewed lease to survive, Len=%d", table.Len())
	}
	if _, ok := table.Get("keeper"); !ok {
		t.Errorf("expected the renewed lease to survive the sweep")
	}

	// Nothing left to evict.
	if evicted := table.Sweep(); evicted != 0 {
		t.Errorf("expected an empty sweep, got %d evictions", evicted)
	}
}

func TestMutualExclusionUnderConcurrency(t *testing.T) {
	table, _ := newTestTable()

	const goroutines = 64

	var wg sync.WaitGroup
	wg.Add(goroutines)
	successes := make(chan Lease, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if l, ok := table.PutIfAbsent("contended", time.Minute); ok {
				successes <- l
			}
		}()
	}

	wg.Wait()
	close(successes)

	var winners []Lease
	for l := range successes {
		winners = append(winners, l)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %d", len(winners))
	}

	if got, ok := table.Get("contended"); !ok || got.Token != winners[0].Token {
		t.Errorf("expected the table to hold the winner's lease")
	}
}
