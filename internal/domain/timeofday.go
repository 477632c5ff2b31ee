package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a clock time expressed as minutes since midnight.
// Appointments and working-hours windows compare times within a single
// calendar day, so a flat minute count keeps every interval check integer
// arithmetic.
type TimeOfDay int16

const minutesPerDay = 24 * 60

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// At anchors the clock time onto a calendar date in the date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/60, int(t)%60, 0, 0, date.Location())
}

// Interval is a half-open clock-time range [Start, End).
type Interval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func (iv Interval) Duration() time.Duration {
	return time.Duration(iv.End-iv.Start) * time.Minute
}

// Overlaps reports whether two half-open intervals share any minute.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

func (iv Interval) Empty() bool {
	return iv.End <= iv.Start
}
