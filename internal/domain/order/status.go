package order

import "github.com/go-faster/errors"

// Status is the lifecycle state of an order.
//
//	Created ──> Cancelled
//
// Cancelled is terminal.
type Status string

const (
	// StatusCreated is the initial status of every order.
	StatusCreated Status = "CREATED"
	// StatusCancelled is set by a successful cancellation.
	StatusCancelled Status = "CANCELLED"
)

var (
	// ErrInvalidStatus is returned for status values outside the known set.
	ErrInvalidStatus = errors.New("order status is invalid")
	// ErrInvalidTransition is returned when a status change is not allowed
	// from the current status.
	ErrInvalidTransition = errors.New("order status transition is not allowed")
)

// Validate reports whether s is a known status.
func (s Status) Validate() error {
	switch s {
	case StatusCreated, StatusCancelled:
		return nil
	default:
		return errors.Wrapf(ErrInvalidStatus, "%q", string(s))
	}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// Cancel returns the status that follows a cancellation of an order in s.
// Only Created orders can be cancelled.
func (s Status) Cancel() (Status, error) {
	if s != StatusCreated {
		return "", errors.Wrapf(ErrInvalidTransition, "%s -> %s", s, StatusCancelled)
	}
	return StatusCancelled, nil
}
