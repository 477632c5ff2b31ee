package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type NotificationKind string

const (
	NotificationNewAppointment NotificationKind = "NEW_APPOINTMENT"
	NotificationConfirmed      NotificationKind = "CONFIRMED"
	NotificationCancelled      NotificationKind = "CANCELLED"
	NotificationRescheduled    NotificationKind = "RESCHEDULED"
	NotificationReminder       NotificationKind = "REMINDER"
)

// NotificationEvent is a calendar event addressed to a groomer. The
// scheduling core only ever creates these; the read flag belongs to the
// notification-consumption surface.
type NotificationEvent struct {
	bun.BaseModel `bun:"table:notifications"`

	ID            uuid.UUID        `bun:"id,pk,type:uuid"`
	AppointmentID uuid.UUID        `bun:"appointment_id,notnull,type:uuid"`
	GroomerID     string           `bun:"groomer_id,notnull"`
	Kind          NotificationKind `bun:"kind,notnull"`
	Message       string           `bun:"message,notnull"`
	Read          bool             `bun:"read,notnull"`
	CreatedAt     time.Time        `bun:"created_at,notnull"`
}

func (n *NotificationEvent) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if n.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		n.ID = id
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return nil
}

// NewNotification builds the event for an appointment with the stock
// message for the kind.
func NewNotification(a *Appointment, kind NotificationKind) NotificationEvent {
	return NotificationEvent{
		AppointmentID: a.ID,
		GroomerID:     a.GroomerID,
		Kind:          kind,
		Message:       notificationMessage(a, kind),
	}
}

func notificationMessage(a *Appointment, kind NotificationKind) string {
	date := a.Date.Format("2006-01-02")
	switch kind {
	case NotificationNewAppointment:
		return fmt.Sprintf("New appointment booked for %s at %s", date, a.StartTime)
	case NotificationConfirmed:
		return fmt.Sprintf("Appointment on %s confirmed", date)
	case NotificationCancelled:
		return fmt.Sprintf("Appointment on %s cancelled", date)
	case NotificationRescheduled:
		return fmt.Sprintf("Appointment rescheduled to %s at %s", date, a.StartTime)
	case NotificationReminder:
		return fmt.Sprintf("Reminder: appointment on %s at %s", date, a.StartTime)
	default:
		return fmt.Sprintf("Update on appointment %s", a.ID)
	}
}
