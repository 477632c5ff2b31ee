package store

import "errors"

var (
	// ErrConflict is returned when an insert would overlap an active
	// appointment on the same groomer's calendar.
	ErrConflict = errors.New("conflict")

	// ErrPetConflict is returned when an insert or slot change would give
	// a pet a second active appointment on the same date.
	ErrPetConflict = errors.New("pet conflict")

	// ErrNotFound is returned when the referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStaleState is returned when a conditional state update finds the
	// row in a different state than expected; a concurrent mutation won.
	ErrStaleState = errors.New("stale state")
)
