package domain

import (
	"errors"
	"testing"
	"time"
)

func testAppointment(state AppointmentState) *Appointment {
	return &Appointment{
		PetID:     "p1",
		GroomerID: "g1",
		ClientID:  "c1",
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime: 10 * 60,
		EndTime:   11 * 60,
		State:     state,
	}
}

func TestTransitionTable(t *testing.T) {
	after := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	allStates := []AppointmentState{StatePending, StateConfirmed, StateCancelled, StateFinished, StateNoShow}
	legal := map[AppointmentState]map[AppointmentState]bool{
		StatePending:   {StateConfirmed: true, StateCancelled: true, StateFinished: true, StateNoShow: true},
		StateConfirmed: {StateCancelled: true, StateFinished: true, StateNoShow: true},
	}

	apply := func(a *Appointment, to AppointmentState) error {
		switch to {
		case StateConfirmed:
			return a.Confirm(after)
		case StateCancelled:
			return a.Cancel(after)
		case StateFinished:
			return a.Finish(after)
		case StateNoShow:
			return a.MarkNoShow(after)
		default:
			t.Fatalf("unexpected target state %s", to)
			return nil
		}
	}

	for _, from := range allStates {
		for _, to := range allStates[1:] {
			a := testAppointment(from)
			err := apply(a, to)

			if legal[from][to] {
				if err != nil {
					t.Errorf("%s -> %s: unexpected error %v", from, to, err)
					continue
				}
				if a.State != to {
					t.Errorf("%s -> %s: state = %s", from, to, a.State)
				}
				continue
			}

			var invErr *InvalidTransitionError
			if !errors.As(err, &invErr) {
				t.Errorf("%s -> %s: error = %v, want InvalidTransitionError", from, to, err)
				continue
			}
			if a.State != from {
				t.Errorf("%s -> %s: state mutated to %s on rejected transition", from, to, a.State)
			}
		}
	}
}

func TestFinishBeforeEndTimeRejected(t *testing.T) {
	a := testAppointment(StateConfirmed)
	before := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

	err := a.Finish(before)
	var invErr *InvalidTransitionError
	if !errors.As(err, &invErr) {
		t.Fatalf("error = %v, want InvalidTransitionError", err)
	}
	if a.State != StateConfirmed {
		t.Fatalf("state = %s, want %s", a.State, StateConfirmed)
	}
}

func TestFinishAtExactEndTimeAllowed(t *testing.T) {
	a := testAppointment(StatePending)
	at := a.EndsAt()

	if err := a.Finish(at); err != nil {
		t.Fatalf("Finish error: %v", err)
	}
	if a.State != StateFinished {
		t.Fatalf("state = %s, want %s", a.State, StateFinished)
	}
}

func TestTransitionUpdatesTimestamp(t *testing.T) {
	a := testAppointment(StatePending)
	a.UpdatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	if err := a.Confirm(at); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if !a.UpdatedAt.Equal(at) {
		t.Fatalf("updated_at = %v, want %v", a.UpdatedAt, at)
	}
}
