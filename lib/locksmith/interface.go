package locksmith

import (
	"context"

	"github.com/locksmith-go/locksmith/lib/lease"
)

// ILocksmith defines the lock operations of the lease service.
//
// All durations are in seconds, matching the wire protocol. Negative
// outcomes (contention, unknown or expired token) are normal results,
// never errors.
type ILocksmith interface {
	// Acquire creates a lease on the named lock valid for the given
	// number of seconds. It returns the created lease, or ok=false if a
	// live lease already exists.
	Acquire(name string, validity uint64) (l lease.Lease, ok bool)

	// AcquireWait behaves like Acquire but keeps retrying until it
	// succeeds or timeout seconds have elapsed. The retry is a poll loop
	// against the lease table; no fairness exists between concurrent
	// waiters. Cancelling the context stops waiting early.
	AcquireWait(ctx context.Context, name string, validity, timeout uint64) (l lease.Lease, ok bool)

	// Update extends the lease owned by the token to now + validity
	// seconds. It returns false if the lease is absent, expired, or owned
	// by another token.
	Update(token string, validity uint64) (ok bool)

	// Release deletes the lease owned by the token. It returns false if
	// the lease is absent, expired, or owned by another token.
	Release(token string) (ok bool)

	// Statistics returns a point-in-time snapshot of all operation
	// counters and gauges.
	Statistics() StatisticsSnapshot
}
