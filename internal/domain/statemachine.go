package domain

import (
	"fmt"
	"time"
)

// InvalidTransitionError reports a state change the lifecycle does not allow.
type InvalidTransitionError struct {
	From   AppointmentState
	To     AppointmentState
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

func invalidTransition(from, to AppointmentState, reason string) error {
	return &InvalidTransitionError{From: from, To: to, Reason: reason}
}

// legalTransitions is the full lifecycle: PENDING and CONFIRMED may still
// move, every other state is terminal.
var legalTransitions = map[AppointmentState][]AppointmentState{
	StatePending:   {StateConfirmed, StateCancelled, StateFinished, StateNoShow},
	StateConfirmed: {StateCancelled, StateFinished, StateNoShow},
}

func transitionAllowed(from, to AppointmentState) bool {
	for _, t := range legalTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func (a *Appointment) transition(to AppointmentState, at time.Time) error {
	if !transitionAllowed(a.State, to) {
		return invalidTransition(a.State, to, "")
	}
	a.State = to
	a.UpdatedAt = at.UTC()
	return nil
}

// Confirm moves a pending appointment to CONFIRMED.
func (a *Appointment) Confirm(now time.Time) error {
	if a.State == StateConfirmed {
		return invalidTransition(a.State, StateConfirmed, "already confirmed")
	}
	if a.State == StateCancelled {
		return invalidTransition(a.State, StateConfirmed, "appointment is cancelled")
	}
	return a.transition(StateConfirmed, now)
}

// Cancel moves a pending or confirmed appointment to CANCELLED.
func (a *Appointment) Cancel(now time.Time) error {
	if a.State == StateCancelled {
		return invalidTransition(a.State, StateCancelled, "already cancelled")
	}
	return a.transition(StateCancelled, now)
}

// Finish closes an appointment whose end time has passed.
func (a *Appointment) Finish(now time.Time) error {
	if a.State == StateCancelled {
		return invalidTransition(a.State, StateFinished, "appointment is cancelled")
	}
	if a.State == StateFinished {
		return invalidTransition(a.State, StateFinished, "already finished")
	}
	if !transitionAllowed(a.State, StateFinished) {
		return invalidTransition(a.State, StateFinished, "")
	}
	if a.EndsAt().After(now.UTC()) {
		return invalidTransition(a.State, StateFinished, "appointment has not ended yet")
	}
	return a.transition(StateFinished, now)
}

// MarkNoShow records that the client did not attend.
func (a *Appointment) MarkNoShow(now time.Time) error {
	if a.State == StateCancelled || a.State == StateNoShow {
		return invalidTransition(a.State, StateNoShow, "appointment is already "+string(a.State))
	}
	if a.State == StateFinished {
		return invalidTransition(a.State, StateNoShow, "appointment is finished")
	}
	return a.transition(StateNoShow, now)
}
