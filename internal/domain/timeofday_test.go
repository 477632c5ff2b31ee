package domain

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 9*60 + 30},
		{in: "23:59", want: 23*60 + 59},
		{in: " 10:00 ", want: 10 * 60},
		{in: "24:00", wantErr: true},
		{in: "10:60", wantErr: true},
		{in: "10", wantErr: true},
		{in: "", wantErr: true},
		{in: "ab:cd", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTimeOfDayRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "09:05", "17:45", "23:59"} {
		parsed, err := ParseTimeOfDay(s)
		if err != nil {
			t.Fatalf("ParseTimeOfDay(%q): %v", s, err)
		}
		if parsed.String() != s {
			t.Fatalf("String() = %q, want %q", parsed.String(), s)
		}
	}
}

func TestIntervalOverlaps(t *testing.T) {
	base := Interval{Start: 10 * 60, End: 11 * 60}

	cases := []struct {
		name  string
		other Interval
		want  bool
	}{
		{name: "identical", other: Interval{Start: 10 * 60, End: 11 * 60}, want: true},
		{name: "straddles start", other: Interval{Start: 9*60 + 30, End: 10*60 + 30}, want: true},
		{name: "straddles end", other: Interval{Start: 10*60 + 30, End: 11*60 + 30}, want: true},
		{name: "contained", other: Interval{Start: 10*60 + 15, End: 10*60 + 45}, want: true},
		{name: "touching before", other: Interval{Start: 9 * 60, End: 10 * 60}, want: false},
		{name: "touching after", other: Interval{Start: 11 * 60, End: 12 * 60}, want: false},
		{name: "disjoint", other: Interval{Start: 14 * 60, End: 15 * 60}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.other); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.other.Overlaps(base); got != tc.want {
				t.Fatalf("Overlaps (reversed) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWeekdayIndex(t *testing.T) {
	// 2026-03-02 is a Monday.
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := WeekdayIndex(monday.AddDate(0, 0, i)); got != i {
			t.Fatalf("WeekdayIndex(+%dd) = %d, want %d", i, got, i)
		}
	}
}

func TestTimeOfDayAt(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := TimeOfDay(9*60 + 30).At(date)
	want := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("At = %v, want %v", at, want)
	}
}
