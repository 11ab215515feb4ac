// Package lease implements the authoritative lease table of the lock
// service.
//
// A Lease is an exclusive, time-bounded grant on a named lock, owned by
// an opaque token. The Table guarantees that at most one live lease
// exists per name at any instant:
//
//   - All read-then-write sequences for a name run inside a per-key
//     atomic Compute section of the underlying concurrent map.
//
//   - Reads treat an entry whose deadline has passed as absent, so
//     mutual exclusion holds even before expired entries are physically
//     evicted.
//
//   - A secondary token index supports addressing leases by owner token.
//     The index is only a routing hint; ownership is re-validated against
//     the authoritative entry inside the critical section, so a stale
//     index entry can never grant authority.
//
// The Table also keeps an expiry schedule (a deadline-ordered heap with
// by-name access) so the watchdog can evict expired leases without
// scanning the whole table on every sweep.
//
// Thread Safety:
//
//	All Table methods are safe for concurrent use.
package lease
