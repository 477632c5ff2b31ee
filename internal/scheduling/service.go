// Package scheduling is the appointment scheduling core: it admits new
// bookings against groomer calendars, drives the appointment lifecycle and
// answers availability queries. Persistence and notification delivery stay
// behind the store interfaces.
package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"groomcal/backend/internal/availability"
	"groomcal/backend/internal/domain"
	"groomcal/backend/internal/store"
)

// MinAppointmentDuration is the shortest bookable slot.
const MinAppointmentDuration = 30 * time.Minute

type Service struct {
	repo  store.CalendarRepository
	guard Guard
	now   func() time.Time
}

type Option func(*Service)

// WithGuard replaces the stock authorization policy.
func WithGuard(g Guard) Option {
	return func(s *Service) { s.guard = g }
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo store.CalendarRepository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		guard: DefaultGuard,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	PetID     string
	GroomerID string
	ClientID  string
	Date      time.Time
	StartTime domain.TimeOfDay
	EndTime   domain.TimeOfDay
	Notes     string
}

// Create admits a new appointment request. The conflict check and the
// insert run inside one groomer-day transaction, so two concurrent requests
// for the same slot cannot both pass; the loser sees store.ErrConflict.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	if in.PetID == "" {
		return domain.Appointment{}, validationError("pet_id is required")
	}
	if in.GroomerID == "" {
		return domain.Appointment{}, validationError("groomer_id is required")
	}
	if in.ClientID == "" {
		return domain.Appointment{}, validationError("client_id is required")
	}
	if err := s.validateSlot(in.Date, in.StartTime, in.EndTime); err != nil {
		return domain.Appointment{}, err
	}

	date := domain.DateOnly(in.Date)
	candidate := domain.Interval{Start: in.StartTime, End: in.EndTime}

	var out domain.Appointment
	err := s.repo.InGroomerDayTx(ctx, in.GroomerID, date, func(ctx context.Context, tx store.CalendarTx) error {
		busy, err := tx.ListAppointments(ctx, in.GroomerID, date, domain.ActiveStates...)
		if err != nil {
			return err
		}
		if availability.OverlapsAny(candidate, intervalsOf(busy, uuid.Nil)) {
			return store.ErrConflict
		}

		petAppts, err := tx.ListPetAppointments(ctx, in.PetID, date, domain.ActiveStates...)
		if err != nil {
			return err
		}
		if len(petAppts) > 0 {
			return ErrDuplicateBookingForPet
		}

		appt, err := tx.InsertAppointment(ctx, domain.Appointment{
			PetID:     in.PetID,
			GroomerID: in.GroomerID,
			ClientID:  in.ClientID,
			Date:      date,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			State:     domain.StatePending,
			Notes:     in.Notes,
		})
		if err != nil {
			return err
		}

		if _, err := tx.InsertNotification(ctx, domain.NewNotification(&appt, domain.NotificationNewAppointment)); err != nil {
			return err
		}

		out = appt
		return nil
	})
	if err != nil {
		// The in-transaction pet check only sees this groomer's day; the
		// pet index catches a concurrent create under another groomer.
		if errors.Is(err, store.ErrPetConflict) {
			return domain.Appointment{}, ErrDuplicateBookingForPet
		}
		return domain.Appointment{}, err
	}
	return out, nil
}

// Reschedule moves a pending appointment to a new slot. The appointment's
// own interval is excluded from the conflict check so an overlap with its
// previous slot is fine.
func (s *Service) Reschedule(ctx context.Context, actor Actor, id uuid.UUID, newDate time.Time, newStart, newEnd domain.TimeOfDay) (domain.Appointment, error) {
	if err := s.validateSlot(newDate, newStart, newEnd); err != nil {
		return domain.Appointment{}, err
	}

	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !s.guard(actor, ActionReschedule, appt) {
		return domain.Appointment{}, ErrForbidden
	}
	if appt.State != domain.StatePending {
		return domain.Appointment{}, &InvalidStateError{Op: "reschedule", State: appt.State, Required: domain.StatePending}
	}

	date := domain.DateOnly(newDate)
	candidate := domain.Interval{Start: newStart, End: newEnd}

	err = s.repo.InGroomerDayTx(ctx, appt.GroomerID, date, func(ctx context.Context, tx store.CalendarTx) error {
		busy, err := tx.ListAppointments(ctx, appt.GroomerID, date, domain.ActiveStates...)
		if err != nil {
			return err
		}
		if availability.OverlapsAny(candidate, intervalsOf(busy, appt.ID)) {
			return store.ErrConflict
		}

		petAppts, err := tx.ListPetAppointments(ctx, appt.PetID, date, domain.ActiveStates...)
		if err != nil {
			return err
		}
		for _, p := range petAppts {
			if p.ID != appt.ID {
				return ErrDuplicateBookingForPet
			}
		}

		appt.Date = date
		appt.StartTime = newStart
		appt.EndTime = newEnd
		appt.UpdatedAt = s.now().UTC()

		if err := tx.UpdateAppointmentSlot(ctx, appt, domain.StatePending); err != nil {
			return err
		}

		_, err = tx.InsertNotification(ctx, domain.NewNotification(&appt, domain.NotificationRescheduled))
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrPetConflict) {
			return domain.Appointment{}, ErrDuplicateBookingForPet
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

// Confirm marks a pending appointment as confirmed by the groomer.
func (s *Service) Confirm(ctx context.Context, actor Actor, id uuid.UUID) (domain.Appointment, error) {
	return s.applyTransition(ctx, actor, id, ActionConfirm, domain.NotificationConfirmed,
		func(a *domain.Appointment, now time.Time) error { return a.Confirm(now) })
}

// Cancel cancels a pending or confirmed appointment.
func (s *Service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (domain.Appointment, error) {
	return s.applyTransition(ctx, actor, id, ActionCancel, domain.NotificationCancelled,
		func(a *domain.Appointment, now time.Time) error { return a.Cancel(now) })
}

// Finish closes an appointment whose end time has passed. No event fires.
func (s *Service) Finish(ctx context.Context, actor Actor, id uuid.UUID) (domain.Appointment, error) {
	return s.applyTransition(ctx, actor, id, ActionFinish, "",
		func(a *domain.Appointment, now time.Time) error { return a.Finish(now) })
}

// MarkNoShow records that the client did not attend. No event fires.
func (s *Service) MarkNoShow(ctx context.Context, actor Actor, id uuid.UUID) (domain.Appointment, error) {
	return s.applyTransition(ctx, actor, id, ActionMarkNoShow, "",
		func(a *domain.Appointment, now time.Time) error { return a.MarkNoShow(now) })
}

func (s *Service) applyTransition(ctx context.Context, actor Actor, id uuid.UUID, action Action, event domain.NotificationKind, apply func(*domain.Appointment, time.Time) error) (domain.Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !s.guard(actor, action, appt) {
		return domain.Appointment{}, ErrForbidden
	}

	from := appt.State
	now := s.now()
	if err := apply(&appt, now); err != nil {
		return domain.Appointment{}, err
	}

	err = s.repo.InTx(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		if err := tx.UpdateAppointmentState(ctx, id, from, appt.State, now); err != nil {
			return err
		}
		if event == "" {
			return nil
		}
		_, err := tx.InsertNotification(ctx, domain.NewNotification(&appt, event))
		return err
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return appt, nil
}

// HasConflict reports whether the candidate interval overlaps any active
// appointment for the groomer and date. excludeID skips the appointment's
// own slot during a reschedule; pass uuid.Nil otherwise. Read-only: write
// paths re-check inside the groomer-day transaction.
func (s *Service) HasConflict(ctx context.Context, groomerID string, date time.Time, start, end domain.TimeOfDay, excludeID uuid.UUID) (bool, error) {
	if end <= start {
		return false, ErrInvalidInterval
	}
	busy, err := s.repo.ListAppointments(ctx, groomerID, domain.DateOnly(date), domain.ActiveStates...)
	if err != nil {
		return false, err
	}
	candidate := domain.Interval{Start: start, End: end}
	return availability.OverlapsAny(candidate, intervalsOf(busy, excludeID)), nil
}

// GetAvailability returns the raw working windows and busy intervals for a
// groomer's date. Busy intervals outside every window are reported as-is.
func (s *Service) GetAvailability(ctx context.Context, groomerID string, date time.Time) (availability.Day, error) {
	if groomerID == "" {
		return availability.Day{}, validationError("groomer_id is required")
	}

	date = domain.DateOnly(date)
	weekday := domain.WeekdayIndex(date)

	windows, err := s.repo.ListWindows(ctx, groomerID, weekday)
	if err != nil {
		return availability.Day{}, err
	}
	busy, err := s.repo.ListAppointments(ctx, groomerID, date, domain.ActiveStates...)
	if err != nil {
		return availability.Day{}, err
	}

	day := availability.Day{
		Date:     date,
		Weekday:  weekday,
		Windows:  make([]domain.Interval, 0, len(windows)),
		Busy:     intervalsOf(busy, uuid.Nil),
		Workable: len(windows) > 0,
	}
	for _, w := range windows {
		day.Windows = append(day.Windows, w.Interval())
	}
	return day, nil
}

// FreeSlots is the convenience variant: working windows minus busy
// intervals, window order preserved.
func (s *Service) FreeSlots(ctx context.Context, groomerID string, date time.Time) ([]domain.Interval, error) {
	day, err := s.GetAvailability(ctx, groomerID, date)
	if err != nil {
		return nil, err
	}
	return availability.Subtract(day.Windows, day.Busy), nil
}

// ExpireStaleAppointments bulk-finishes every active appointment dated
// before asOf's date. Idempotent; meant to be invoked opportunistically on
// read paths. groomerID narrows the sweep when non-empty.
func (s *Service) ExpireStaleAppointments(ctx context.Context, groomerID string, asOf time.Time) (int64, error) {
	return s.repo.BulkExpire(ctx, groomerID, domain.DateOnly(asOf), asOf)
}

// GenerateUpcomingReminders emits one REMINDER per active appointment of
// the groomer starting within the horizon, skipping appointments that
// already have one.
func (s *Service) GenerateUpcomingReminders(ctx context.Context, groomerID string, asOf time.Time, horizon time.Duration) (int, error) {
	if groomerID == "" {
		return 0, validationError("groomer_id is required")
	}
	if horizon <= 0 {
		return 0, validationError("horizon must be positive")
	}

	appts, err := s.repo.ListUpcoming(ctx, groomerID, asOf, asOf.Add(horizon))
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range appts {
		appt := appts[i]
		err := s.repo.InTx(ctx, func(ctx context.Context, tx store.CalendarTx) error {
			exists, err := tx.HasNotification(ctx, appt.ID, domain.NotificationReminder)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			if _, err := tx.InsertNotification(ctx, domain.NewNotification(&appt, domain.NotificationReminder)); err != nil {
				return err
			}
			created++
			return nil
		})
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

// GetAppointment is a read-only passthrough.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

// ListGroomerDay lists every appointment of a groomer on a date, any state.
func (s *Service) ListGroomerDay(ctx context.Context, groomerID string, date time.Time) ([]domain.Appointment, error) {
	if groomerID == "" {
		return nil, validationError("groomer_id is required")
	}
	return s.repo.ListAppointments(ctx, groomerID, domain.DateOnly(date))
}

// ListUpcoming lists active appointments starting within [asOf, asOf+horizon].
func (s *Service) ListUpcoming(ctx context.Context, groomerID string, asOf time.Time, horizon time.Duration) ([]domain.Appointment, error) {
	if horizon <= 0 {
		return nil, validationError("horizon must be positive")
	}
	return s.repo.ListUpcoming(ctx, groomerID, asOf, asOf.Add(horizon))
}

// AddWindow registers a weekly working-hours window for a groomer.
func (s *Service) AddWindow(ctx context.Context, w domain.WorkingHoursWindow) (domain.WorkingHoursWindow, error) {
	if w.GroomerID == "" {
		return domain.WorkingHoursWindow{}, validationError("groomer_id is required")
	}
	if err := w.Validate(); err != nil {
		return domain.WorkingHoursWindow{}, validationError(err.Error())
	}
	return s.repo.InsertWindow(ctx, w)
}

// ListWindows lists a groomer's active windows for one weekday.
func (s *Service) ListWindows(ctx context.Context, groomerID string, weekday int) ([]domain.WorkingHoursWindow, error) {
	if groomerID == "" {
		return nil, validationError("groomer_id is required")
	}
	if weekday < 0 || weekday > 6 {
		return nil, validationError("weekday must be between 0 and 6")
	}
	return s.repo.ListWindows(ctx, groomerID, weekday)
}

func (s *Service) validateSlot(date time.Time, start, end domain.TimeOfDay) error {
	if !start.Valid() || !end.Valid() {
		return ErrInvalidInterval
	}
	if end <= start {
		return ErrInvalidInterval
	}
	if (domain.Interval{Start: start, End: end}).Duration() < MinAppointmentDuration {
		return ErrInvalidInterval
	}
	if domain.DateOnly(date).Before(domain.DateOnly(s.now())) {
		return ErrPastDate
	}
	return nil
}

func intervalsOf(appts []domain.Appointment, excludeID uuid.UUID) []domain.Interval {
	out := make([]domain.Interval, 0, len(appts))
	for _, a := range appts {
		if excludeID != uuid.Nil && a.ID == excludeID {
			continue
		}
		out = append(out, a.Interval())
	}
	return out
}
