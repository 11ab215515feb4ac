package lease

import (
	"sync"
	"time"

	"github.com/locksmith-go/locksmith/lib/clock"
	"github.com/puzpuzpuz/xsync/v3"
)

// Table is the authoritative map of lock name to lease.
//
// All read-then-write sequences for a given name run inside the map's
// per-key Compute section, so at most one live lease can ever exist per
// name. A secondary token index allows update/release to address leases
// by owner token; the index is advisory only - ownership is always
// re-validated against the authoritative entry inside the critical
// section.
//
// Expired leases are logically absent from every read path even before
// the watchdog physically evicts them.
type Table struct {
	clk clock.Clock

	data    *xsync.MapOf[string, Lease]  // name -> lease, the single source of truth
	byToken *xsync.MapOf[string, string] // token -> name

	// expiry schedule for the watchdog
	mu     sync.Mutex
	expiry *expiryIndex
}

// NewTable creates an empty lease table using the given clock.
func NewTable(clk clock.Clock) *Table {
	return &Table{
		clk:     clk,
		data:    xsync.NewMapOf[string, Lease](),
		byToken: xsync.NewMapOf[string, string](),
		expiry:  newExpiryIndex(),
	}
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Get returns the live lease for the name.
// An entry whose deadline has passed is reported as absent, whether or
// not the watchdog has evicted it yet.
func (t *Table) Get(name string) (Lease, bool) {
	l, ok := t.data.Load(name)
	if !ok || l.Expired(t.clk.Now()) {
		return Lease{}, false
	}
	return l, true
}

// GetByToken returns the live lease owned by the token.
func (t *Table) GetByToken(token string) (Lease, bool) {
	name, ok := t.byToken.Load(token)
	if !ok {
		return Lease{}, false
	}
	l, ok := t.Get(name)
	if !ok || l.Token != token {
		return Lease{}, false
	}
	return l, true
}

// Len returns the number of physical entries, including expired ones the
// watchdog has not evicted yet.
func (t *Table) Len() int {
	return t.data.Size()
}

// CountLive returns the number of live (unexpired) leases right now.
func (t *Table) CountLive() int {
	count := 0
	t.Range(func(Lease) bool {
		count++
		return true
	})
	return count
}

// Range calls fn for every live lease until fn returns false.
func (t *Table) Range(fn func(Lease) bool) {
	now := t.clk.Now()
	t.data.Range(func(_ string, l Lease) bool {
		if l.Expired(now) {
			return true
		}
		return fn(l)
	})
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// PutIfAbsent inserts a new lease for the name with the given validity
// unless a live lease already exists. An expired entry counts as absent
// and is overwritten in place. On success the created lease is returned.
func (t *Table) PutIfAbsent(name string, validity time.Duration) (Lease, bool) {
	now := t.clk.Now()
	created := Lease{
		Name:      name,
		Token:     NewToken(),
		ExpiresAt: now.Add(validity),
	}

	var staleToken string
	_, _ = t.data.Compute(name, func(old Lease, loaded bool) (Lease, bool) {
		if loaded && !old.Expired(now) {
			// Live lease, keep it. Signal failure by clearing the token.
			created = Lease{}
			return old, false
		}
		if loaded {
			staleToken = old.Token
		}
		return created, false
	})

	if created.Token == "" {
		return Lease{}, false
	}

	if staleToken != "" {
		t.byToken.Delete(staleToken)
	}
	t.byToken.Store(created.Token, name)

	t.mu.Lock()
	t.expiry.Schedule(name, created.ExpiresAt.UnixNano())
	t.mu.Unlock()

	return created, true
}

// Extend moves the deadline of the lease owned by the token to
// now + validity. It returns false if the lease is absent, expired, or
// owned by a different token.
func (t *Table) Extend(token string, validity time.Duration) bool {
	name, ok := t.byToken.Load(token)
	if !ok {
		return false
	}

	now := t.clk.Now()
	deadline := now.Add(validity)

	extended := false
	t.data.Compute(name, func(old Lease, loaded bool) (Lease, bool) {
		if !loaded {
			return old, true // don't create an entry
		}
		if old.Expired(now) || old.Token != token {
			return old, false
		}
		old.ExpiresAt = deadline
		extended = true
		return old, false
	})

	if !extended {
		return false
	}

	t.mu.Lock()
	t.expiry.Schedule(name, deadline.UnixNano())
	t.mu.Unlock()

	return true
}

// Remove deletes the lease owned by the token. It returns false if the
// lease is absent, expired, or owned by a different token, which is
// indistinguishable from the lease never having existed.
func (t *Table) Remove(token string) bool {
	name, ok := t.byToken.Load(token)
	if !ok {
		return false
	}

	now := t.clk.Now()

	// The delete and the unschedule run under the index lock, so the
	// unschedule can never hit a lease created for the same name in
	// between. Sweep follows the same discipline.
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := false
	t.data.Compute(name, func(old Lease, loaded bool) (Lease, bool) {
		if !loaded {
			return old, true
		}
		if old.Expired(now) || old.Token != token {
			return old, false
		}
		removed = true
		return old, true
	})

	if !removed {
		return false
	}

	t.byToken.Delete(token)
	t.expiry.Remove(name)

	return true
}

// --------------------------------------------------------------------------
// Watchdog Support
// --------------------------------------------------------------------------

// Sweep evicts every entry whose deadline has passed and returns the
// number of evictions. Entries that were renewed after being scheduled
// are put back with their current deadline instead of being evicted.
func (t *Table) Sweep() int {
	// Read the clock once so a sweep terminates even under constant churn.
	now := t.clk.Now()
	nowNano := now.UnixNano()

	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for {
		name, due := t.expiry.PopDue(nowNano)
		if !due {
			return evicted
		}

		var staleToken string
		var renewedUntil int64
		t.data.Compute(name, func(old Lease, loaded bool) (Lease, bool) {
			if !loaded {
				return old, true
			}
			// Re-check under the per-name critical section: the lease may
			// have been renewed or replaced since it was scheduled.
			if !old.Expired(now) {
				renewedUntil = old.ExpiresAt.UnixNano()
				return old, false
			}
			staleToken = old.Token
			return old, true
		})

		if staleToken != "" {
			t.byToken.Delete(staleToken)
			evicted++
		} else if renewedUntil != 0 {
			t.expiry.Schedule(name, renewedUntil)
		}
	}
}
