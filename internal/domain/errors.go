package domain

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrMultipleOpenCalls means the at-most-one-OPEN-call invariant is broken in storage.
	ErrMultipleOpenCalls = errors.New("more than one call is open")
	// ErrTransientPersistence marks failures the transaction layer may succeed on if retried
	// (serialization failures, deadlocks, rejected commits).
	ErrTransientPersistence = errors.New("transient persistence failure")
	ErrInvalidTransition    = errors.New("invalid status transition")

	// Raised by storage constraints when a concurrent call creation won the race.
	ErrCallMonthTaken = errors.New("a call already exists for this month")
	ErrCallOverlap    = errors.New("call dates overlap another call")
)
