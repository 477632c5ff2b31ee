package scheduling

import "groomcal/backend/internal/domain"

type Role string

const (
	RoleClient  Role = "CLIENT"
	RoleGroomer Role = "GROOMER"
	RoleAdmin   Role = "ADMIN"
)

// Actor is the authenticated caller as resolved by the boundary. The core
// never looks identities up itself.
type Actor struct {
	ID    string
	Role  Role
	Email string
}

type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionCancel     Action = "cancel"
	ActionFinish     Action = "finish"
	ActionMarkNoShow Action = "mark_no_show"
	ActionReschedule Action = "reschedule"
)

// Guard decides whether an actor may perform an action on an appointment.
// The boundary injects its policy; DefaultGuard is the stock one.
type Guard func(actor Actor, action Action, appt domain.Appointment) bool

// DefaultGuard: the assigned groomer confirms, cancels, finishes and marks
// no-shows; the owning client reschedules while the appointment is still
// pending; admins may do anything.
func DefaultGuard(actor Actor, action Action, appt domain.Appointment) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	switch action {
	case ActionConfirm, ActionCancel, ActionFinish, ActionMarkNoShow:
		return actor.Role == RoleGroomer && actor.ID == appt.GroomerID
	case ActionReschedule:
		return actor.Role == RoleClient && actor.ID == appt.ClientID && appt.State == domain.StatePending
	default:
		return false
	}
}
