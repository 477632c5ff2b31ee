package scheduling

import (
	"errors"
	"fmt"

	"groomcal/backend/internal/domain"
)

var (
	// ErrInvalidInterval covers end <= start and durations under the
	// minimum booking length.
	ErrInvalidInterval = errors.New("end time must be at least 30 minutes after start time")

	// ErrPastDate rejects bookings dated before today.
	ErrPastDate = errors.New("cannot book an appointment on a past date")

	// ErrDuplicateBookingForPet rejects a second active appointment for the
	// same pet on the same date.
	ErrDuplicateBookingForPet = errors.New("pet already has an active appointment on that date")

	// ErrForbidden means the guard rejected the actor for the operation.
	ErrForbidden = errors.New("actor may not perform this operation on the appointment")
)

// InvalidStateError reports an operation attempted on an appointment that
// is not in the state the operation requires.
type InvalidStateError struct {
	Op       string
	State    domain.AppointmentState
	Required domain.AppointmentState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s requires state %s, appointment is %s", e.Op, e.Required, e.State)
}

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}
