// Package locksmith implements the lease state machine of the lock
// service: acquire, update, release, watchdog reclamation, and the
// statistics that account for every outcome.
//
// Core Functionality:
//   - Acquire: grants a lease on a free (or expired) lock name and
//     returns the owner token that proves the grant
//   - AcquireWait: bounded poll-retry acquire for callers willing to
//     wait; the only operation that suspends a caller
//   - Update: extends a lease's deadline, addressed by owner token
//   - Release: deletes a lease, addressed by owner token
//   - Watchdog: periodic sweep evicting expired leases, counted
//     separately from owner-initiated releases
//
// State Machine:
//
//	Per lock name, a lease is created by a successful acquire on an
//	absent or expired slot, mutated by a successful update, and
//	destroyed by a successful release or by watchdog reclamation.
//	Contention and stale-token attempts are normal negative results;
//	nothing in this package returns an error.
//
// Accounting:
//
//	Every call increments its top-level counter exactly once, the
//	matching _success counter exactly once on a truthy result, and the
//	lock_create/lock_update/lock_delete counters on actual state
//	changes. watchdog_release increments only for time-triggered
//	reclamation. Counters are atomic; a concurrent snapshot never loses
//	or tears an increment.
//
// Lifecycle:
//
//	smith := locksmith.New(nil)
//	go smith.Run(ctx)            // watchdog
//
//	l, ok := smith.Acquire("foo", 60)
//	if ok {
//	    smith.Update(l.Token, 30)
//	    smith.Release(l.Token)
//	}
//
// Thread Safety:
//
//	All methods are safe for concurrent use from any number of
//	goroutines alongside the watchdog.
package locksmith
