package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"groomcal/backend/internal/domain"
)

// CalendarTx is the per-transaction view of the calendar. Everything a
// scheduling decision reads or writes for one groomer/day happens through
// one of these so the check-then-insert sequence is serialized by the
// transaction's advisory lock.
type CalendarTx interface {
	ListAppointments(ctx context.Context, groomerID string, date time.Time, states ...domain.AppointmentState) ([]domain.Appointment, error)
	ListPetAppointments(ctx context.Context, petID string, date time.Time, states ...domain.AppointmentState) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)

	// UpdateAppointmentState conditionally moves the row from one state to
	// another, failing with ErrStaleState if the persisted state differs.
	UpdateAppointmentState(ctx context.Context, id uuid.UUID, from, to domain.AppointmentState, at time.Time) error

	// UpdateAppointmentSlot rewrites date and times of a row that is still
	// in fromState, failing with ErrStaleState otherwise.
	UpdateAppointmentSlot(ctx context.Context, appt domain.Appointment, fromState domain.AppointmentState) error

	InsertNotification(ctx context.Context, ev domain.NotificationEvent) (domain.NotificationEvent, error)
	HasNotification(ctx context.Context, appointmentID uuid.UUID, kind domain.NotificationKind) (bool, error)
}

// CalendarRepository is the durable calendar the scheduler orchestrates.
type CalendarRepository interface {
	// InGroomerDayTx runs fn inside a transaction holding the advisory lock
	// for (groomerID, date). Concurrent callers for the same groomer and
	// date are serialized.
	InGroomerDayTx(ctx context.Context, groomerID string, date time.Time, fn func(ctx context.Context, tx CalendarTx) error) error

	// InTx runs fn inside a plain transaction, without the calendar lock.
	// Used for state transitions, which are guarded by conditional updates.
	InTx(ctx context.Context, fn func(ctx context.Context, tx CalendarTx) error) error

	GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	ListAppointments(ctx context.Context, groomerID string, date time.Time, states ...domain.AppointmentState) ([]domain.Appointment, error)

	// ListUpcoming returns active appointments whose start instant falls in
	// [from, to], ordered by start.
	ListUpcoming(ctx context.Context, groomerID string, from, to time.Time) ([]domain.Appointment, error)

	ListWindows(ctx context.Context, groomerID string, weekday int) ([]domain.WorkingHoursWindow, error)
	InsertWindow(ctx context.Context, w domain.WorkingHoursWindow) (domain.WorkingHoursWindow, error)

	// BulkExpire transitions every active appointment dated strictly before
	// the given date to FINISHED and reports how many rows changed.
	// groomerID narrows the sweep when non-empty.
	BulkExpire(ctx context.Context, groomerID string, beforeDate, at time.Time) (int64, error)
}
