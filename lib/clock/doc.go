// Package clock abstracts the time source used for lease deadlines.
//
// The lease table and the watchdog never call time.Now directly; they take
// a clock.Clock so that expiry behavior can be tested deterministically
// with the Manual implementation while production code uses System.
package clock
