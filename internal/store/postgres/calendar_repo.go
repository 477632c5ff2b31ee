package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"groomcal/backend/internal/domain"
	"groomcal/backend/internal/store"
)

type CalendarRepo struct {
	db *bun.DB
}

func NewCalendarRepo(db *bun.DB) *CalendarRepo {
	return &CalendarRepo{db: db}
}

type calendarTx struct {
	tx bun.Tx
}

func (r *CalendarRepo) InGroomerDayTx(ctx context.Context, groomerID string, date time.Time, fn func(ctx context.Context, tx store.CalendarTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockGroomerDay(ctx, tx, groomerID, date); err != nil {
			return err
		}
		return fn(ctx, calendarTx{tx: tx})
	})
}

func (r *CalendarRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx store.CalendarTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, calendarTx{tx: tx})
	})
}

// lockGroomerDay serializes every scheduling transaction for one groomer's
// calendar day. The lock is released when the transaction ends.
func lockGroomerDay(ctx context.Context, tx bun.Tx, groomerID string, date time.Time) error {
	key := groomerID + "|" + domain.DateOnly(date).Format("2006-01-02")
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx)
	return err
}

func (r *CalendarRepo) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	return getAppointment(ctx, r.db, id)
}

func (r *CalendarRepo) ListAppointments(ctx context.Context, groomerID string, date time.Time, states ...domain.AppointmentState) ([]domain.Appointment, error) {
	return listAppointments(ctx, r.db, groomerID, date, states)
}

func (r *CalendarRepo) ListUpcoming(ctx context.Context, groomerID string, from, to time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := r.db.NewSelect().
		Model(&rows).
		Where("state IN (?)", bun.In(domain.ActiveStates)).
		Where("date + make_interval(mins => start_time) >= ?", from.UTC()).
		Where("date + make_interval(mins => start_time) <= ?", to.UTC()).
		OrderExpr("date ASC, start_time ASC")
	if groomerID != "" {
		q = q.Where("groomer_id = ?", groomerID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CalendarRepo) ListWindows(ctx context.Context, groomerID string, weekday int) ([]domain.WorkingHoursWindow, error) {
	var rows []domain.WorkingHoursWindow
	err := r.db.NewSelect().
		Model(&rows).
		Where("groomer_id = ?", groomerID).
		Where("weekday = ?", weekday).
		Where("active").
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CalendarRepo) InsertWindow(ctx context.Context, w domain.WorkingHoursWindow) (domain.WorkingHoursWindow, error) {
	if err := w.Validate(); err != nil {
		return domain.WorkingHoursWindow{}, err
	}
	if _, err := r.db.NewInsert().Model(&w).Exec(ctx); err != nil {
		return domain.WorkingHoursWindow{}, err
	}
	return w, nil
}

func (r *CalendarRepo) BulkExpire(ctx context.Context, groomerID string, beforeDate, at time.Time) (int64, error) {
	q := r.db.NewUpdate().
		Model((*domain.Appointment)(nil)).
		Set("state = ?", domain.StateFinished).
		Set("updated_at = ?", at.UTC()).
		Where("state IN (?)", bun.In(domain.ActiveStates)).
		Where("date < ?", domain.DateOnly(beforeDate))
	if groomerID != "" {
		q = q.Where("groomer_id = ?", groomerID)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r calendarTx) ListAppointments(ctx context.Context, groomerID string, date time.Time, states ...domain.AppointmentState) ([]domain.Appointment, error) {
	return listAppointments(ctx, r.tx, groomerID, date, states)
}

func (r calendarTx) ListPetAppointments(ctx context.Context, petID string, date time.Time, states ...domain.AppointmentState) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := r.tx.NewSelect().
		Model(&rows).
		Where("pet_id = ?", petID).
		Where("date = ?", domain.DateOnly(date)).
		OrderExpr("start_time ASC")
	if len(states) > 0 {
		q = q.Where("state IN (?)", bun.In(states))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r calendarTx) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	return getAppointment(ctx, r.tx, id)
}

func (r calendarTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	m.Date = domain.DateOnly(appt.Date)

	_, err := r.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.Appointment{}, mapConstraintError(err)
	}
	return m, nil
}

// mapConstraintError turns the calendar's two storage-level booking
// guarantees into their sentinels: the groomer-day exclusion constraint and
// the one-active-appointment-per-pet-per-date partial unique index.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if pgErr.Code == "23P01" && pgErr.ConstraintName == "appointments_no_overlap" {
		return store.ErrConflict
	}
	if pgErr.Code == "23505" && pgErr.ConstraintName == "appointments_pet_daily" {
		return store.ErrPetConflict
	}
	return err
}

func (r calendarTx) UpdateAppointmentState(ctx context.Context, id uuid.UUID, from, to domain.AppointmentState, at time.Time) error {
	res, err := r.tx.NewUpdate().
		Model((*domain.Appointment)(nil)).
		Set("state = ?", to).
		Set("updated_at = ?", at.UTC()).
		Where("id = ?", id).
		Where("state = ?", from).
		Exec(ctx)
	if err != nil {
		return err
	}
	return staleOrMissing(ctx, r.tx, id, res)
}

func (r calendarTx) UpdateAppointmentSlot(ctx context.Context, appt domain.Appointment, fromState domain.AppointmentState) error {
	res, err := r.tx.NewUpdate().
		Model((*domain.Appointment)(nil)).
		Set("date = ?", domain.DateOnly(appt.Date)).
		Set("start_time = ?", appt.StartTime).
		Set("end_time = ?", appt.EndTime).
		Set("updated_at = ?", appt.UpdatedAt.UTC()).
		Where("id = ?", appt.ID).
		Where("state = ?", fromState).
		Exec(ctx)
	if err != nil {
		return mapConstraintError(err)
	}
	return staleOrMissing(ctx, r.tx, appt.ID, res)
}

func (r calendarTx) InsertNotification(ctx context.Context, ev domain.NotificationEvent) (domain.NotificationEvent, error) {
	m := ev
	if _, err := r.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.NotificationEvent{}, err
	}
	return m, nil
}

func (r calendarTx) HasNotification(ctx context.Context, appointmentID uuid.UUID, kind domain.NotificationKind) (bool, error) {
	return r.tx.NewSelect().
		Model((*domain.NotificationEvent)(nil)).
		Where("appointment_id = ?", appointmentID).
		Where("kind = ?", kind).
		Exists(ctx)
}

func getAppointment(ctx context.Context, db bun.IDB, id uuid.UUID) (domain.Appointment, error) {
	var appt domain.Appointment
	err := db.NewSelect().
		Model(&appt).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func listAppointments(ctx context.Context, db bun.IDB, groomerID string, date time.Time, states []domain.AppointmentState) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := db.NewSelect().
		Model(&rows).
		Where("groomer_id = ?", groomerID).
		Where("date = ?", domain.DateOnly(date)).
		OrderExpr("start_time ASC")
	if len(states) > 0 {
		q = q.Where("state IN (?)", bun.In(states))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

// staleOrMissing resolves a zero-row conditional update: the row either no
// longer exists or sits in a different state.
func staleOrMissing(ctx context.Context, db bun.IDB, id uuid.UUID, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	exists, err := db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrStaleState
}
