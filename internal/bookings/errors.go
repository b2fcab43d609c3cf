package bookings

import "errors"

// Domain rule violations. All of them are detected before any field is
// written and are safe to surface to the end user.
var (
	// ErrInvalidRange means end_date <= start_date or the start date lies
	// in the past.
	ErrInvalidRange = errors.New("booking dates are invalid")

	// ErrOverlap means a live booking already occupies part of the
	// requested interval.
	ErrOverlap = errors.New("dates conflict with an existing booking")

	// ErrSelfBooking means the tenant tried to book their own property.
	ErrSelfBooking = errors.New("cannot book your own property")

	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrAlreadyCompleted = errors.New("booking is already completed")

	// ErrCheckoutConfirmed means checkout was confirmed earlier; the
	// confirmation timestamp is never overwritten.
	ErrCheckoutConfirmed = errors.New("checkout is already confirmed")

	// ErrNotAllowed means the actor lacks permission for the action,
	// e.g. a tenant cancelling after check-in.
	ErrNotAllowed = errors.New("action not allowed for this actor")

	ErrNotFound = errors.New("booking not found")
)
