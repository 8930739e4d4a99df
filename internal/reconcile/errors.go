package reconcile

import "github.com/pkg/errors"

var (
	// ErrUserNotFound indicates that the acting user isn't registered.
	ErrUserNotFound = errors.New("user not found")

	// ErrBookingNotFound indicates that no booking matches the given identifier.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotOwner indicates that the acting user doesn't own the booking.
	ErrNotOwner = errors.New("booking is owned by another user")

	// errConflict marks an attempted transition out of a terminal state. It
	// never escapes the gateway: terminal re-transitions are routine under
	// at-least-once webhook delivery, so they're logged and swallowed.
	errConflict = errors.New("booking already in a terminal state")
)
