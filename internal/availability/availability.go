// Package availability computes free and busy clock-time intervals for a
// groomer's day. All intervals are half-open [start, end).
package availability

import (
	"time"

	"groomcal/backend/internal/domain"
)

// Day is the raw availability picture for one groomer and date: the active
// working-hours windows for the weekday and the intervals occupied by
// pending or confirmed appointments. Callers subtract the two themselves or
// use FreeSlots. Busy intervals outside every window are reported as-is.
type Day struct {
	Date     time.Time         `json:"date"`
	Windows  []domain.Interval `json:"working_windows"`
	Busy     []domain.Interval `json:"busy_intervals"`
	Weekday  int               `json:"weekday"`
	Workable bool              `json:"workable"`
}

// OverlapsAny reports whether the candidate interval collides with any of
// the busy intervals.
func OverlapsAny(candidate domain.Interval, busy []domain.Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// Subtract removes the busy intervals from each window, preserving window
// order. A busy interval that straddles a window trims it; one properly
// contained splits it. Zero-length remainders are dropped.
func Subtract(windows, busy []domain.Interval) []domain.Interval {
	free := make([]domain.Interval, 0, len(windows))
	for _, w := range windows {
		if w.Empty() {
			continue
		}
		free = append(free, subtractFromWindow(w, busy)...)
	}
	return free
}

func subtractFromWindow(window domain.Interval, busy []domain.Interval) []domain.Interval {
	remaining := []domain.Interval{window}
	for _, b := range busy {
		if b.Empty() {
			continue
		}
		next := remaining[:0:0]
		for _, r := range remaining {
			if !r.Overlaps(b) {
				next = append(next, r)
				continue
			}
			if left := (domain.Interval{Start: r.Start, End: b.Start}); !left.Empty() {
				next = append(next, left)
			}
			if right := (domain.Interval{Start: b.End, End: r.End}); !right.Empty() {
				next = append(next, right)
			}
		}
		remaining = next
	}
	return remaining
}

// SlotStarts enumerates the start times within the free intervals where a
// booking of the given duration fits, stepping by step minutes. Durations
// and steps that make no sense within a day yield nothing.
func SlotStarts(free []domain.Interval, duration, step time.Duration) []domain.TimeOfDay {
	durMin := int(duration / time.Minute)
	stepMin := int(step / time.Minute)
	if durMin <= 0 || durMin > 24*60 || stepMin <= 0 || stepMin > 24*60 {
		return nil
	}

	var starts []domain.TimeOfDay
	for _, iv := range free {
		for t := int(iv.Start); t+durMin <= int(iv.End); t += stepMin {
			starts = append(starts, domain.TimeOfDay(t))
		}
	}
	return starts
}
