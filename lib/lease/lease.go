package lease

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lease is a time-bounded exclusive grant on a named lock.
// The token is the only proof of ownership: update and release
// succeed exactly when the caller presents the token of a live lease.
type Lease struct {
	Name      string    // unique key in the lease table
	Token     string    // opaque owner token generated at creation
	ExpiresAt time.Time // absolute deadline, grant/renewal time + validity
}

// Expired reports whether the lease is logically absent at the given time.
// A lease expires exactly at its deadline (ExpiresAt <= now).
func (l Lease) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

func (l Lease) String() string {
	return fmt.Sprintf("Lease{Name: %q, Token: %s, ExpiresAt: %s}", l.Name, l.Token, l.ExpiresAt.Format(time.RFC3339))
}

// NewToken creates a new owner token.
// Tokens are UUIDv4 strings; uniqueness over the table's lifetime is the
// only property the rest of the system relies on.
func NewToken() string {
	return uuid.NewString()
}
