package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WorkingHoursWindow is one block of a groomer's weekly schedule.
// Weekday follows the admin convention 0=Monday .. 6=Sunday. A groomer may
// have several windows on the same weekday (split shifts); they are not
// required to be disjoint.
type WorkingHoursWindow struct {
	bun.BaseModel `bun:"table:working_hours"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	GroomerID string    `bun:"groomer_id,notnull"`
	Weekday   int       `bun:"weekday,notnull"`
	StartTime TimeOfDay `bun:"start_time,notnull"`
	EndTime   TimeOfDay `bun:"end_time,notnull"`
	Active    bool      `bun:"active,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (w *WorkingHoursWindow) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if w.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			w.ID = id
		}
		if w.CreatedAt.IsZero() {
			w.CreatedAt = now
		}
		if w.UpdatedAt.IsZero() {
			w.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		w.UpdatedAt = now
	}
	return nil
}

func (w *WorkingHoursWindow) Validate() error {
	if w.GroomerID == "" {
		return errors.New("groomer_id is required")
	}
	if w.Weekday < 0 || w.Weekday > 6 {
		return errors.New("weekday must be between 0 (Monday) and 6 (Sunday)")
	}
	if !w.StartTime.Valid() || !w.EndTime.Valid() {
		return errors.New("start_time and end_time must be valid times of day")
	}
	if w.EndTime <= w.StartTime {
		return errors.New("end_time must be after start_time")
	}
	return nil
}

func (w *WorkingHoursWindow) Interval() Interval {
	return Interval{Start: w.StartTime, End: w.EndTime}
}

// WeekdayIndex maps a date to the 0=Monday .. 6=Sunday convention.
func WeekdayIndex(date time.Time) int {
	wd := date.Weekday()
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}
