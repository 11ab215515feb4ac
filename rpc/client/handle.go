package client

import "fmt"

// Lock is a handle for an acquired lock. It bundles the lock name with
// the owner token that proves the grant, so a holder can renew or
// release its lease without tracking the token separately.
//
// A Lock stays usable only while its lease is live; once the lease
// expires or is released, Update and Release return false.
type Lock struct {
	client *Locksmith

	// Name is the name of the locked lock
	Name string

	// Token is the owner token issued by the server for this lease
	Token string
}

// Update extends the lease to now + validity seconds
func (l *Lock) Update(validity uint64) (bool, error) {
	return l.client.Update(l.Token, validity)
}

// Release releases the lease
func (l *Lock) Release() (bool, error) {
	return l.client.Release(l.Token)
}

// String returns a human-readable representation of the handle
func (l *Lock) String() string {
	return fmt.Sprintf("<Lock name=%s token=%s>", l.Name, l.Token)
}
