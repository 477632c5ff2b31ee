package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentState string

const (
	StatePending   AppointmentState = "PENDING"
	StateConfirmed AppointmentState = "CONFIRMED"
	StateCancelled AppointmentState = "CANCELLED"
	StateFinished  AppointmentState = "FINISHED"
	StateNoShow    AppointmentState = "NO_SHOW"
)

// ActiveStates are the states that occupy a slot on the groomer's calendar.
var ActiveStates = []AppointmentState{StatePending, StateConfirmed}

func (s AppointmentState) Active() bool {
	return s == StatePending || s == StateConfirmed
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID        uuid.UUID        `bun:"id,pk,type:uuid"`
	PetID     string           `bun:"pet_id,notnull"`
	GroomerID string           `bun:"groomer_id,notnull"`
	ClientID  string           `bun:"client_id,notnull"`
	Date      time.Time        `bun:"date,notnull"`
	StartTime TimeOfDay        `bun:"start_time,notnull"`
	EndTime   TimeOfDay        `bun:"end_time,notnull"`
	State     AppointmentState `bun:"state,notnull"`
	Notes     string           `bun:"notes"`
	CreatedAt time.Time        `bun:"created_at,notnull"`
	UpdatedAt time.Time        `bun:"updated_at,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.State == "" {
			a.State = StatePending
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

// EndsAt is the absolute instant the appointment is over.
func (a *Appointment) EndsAt() time.Time {
	return a.EndTime.At(a.Date)
}

// DateOnly truncates a timestamp to its calendar date at midnight UTC,
// the canonical form the date column stores.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
