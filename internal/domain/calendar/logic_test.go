package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCountBusinessDaysFullWeek(t *testing.T) {
	// Mon 2025-06-02 through Fri 2025-06-06, no holidays.
	got := CountBusinessDays(date(2025, time.June, 2), date(2025, time.June, 6), false, false, nil)
	if got != 5 {
		t.Fatalf("expected 5 days, got %v", got)
	}
}

func TestCountBusinessDaysSkipsWeekend(t *testing.T) {
	// Fri 2025-06-06 through Mon 2025-06-09 spans a weekend.
	got := CountBusinessDays(date(2025, time.June, 6), date(2025, time.June, 9), false, false, nil)
	if got != 2 {
		t.Fatalf("expected 2 days, got %v", got)
	}
}

func TestCountBusinessDaysSkipsHolidays(t *testing.T) {
	holidays := []Holiday{
		{Name: "Midweek Holiday", Date: date(2025, time.June, 4)},
	}
	got := CountBusinessDays(date(2025, time.June, 2), date(2025, time.June, 6), false, false, holidays)
	if got != 4 {
		t.Fatalf("expected 4 days, got %v", got)
	}
}

func TestCountBusinessDaysHolidayRange(t *testing.T) {
	end := date(2025, time.December, 26)
	holidays := []Holiday{
		{Name: "Christmas", Date: date(2025, time.December, 24), EndDate: &end},
	}
	// Mon 2025-12-22 through Wed 2025-12-31: 8 weekdays minus 3 holiday days.
	got := CountBusinessDays(date(2025, time.December, 22), date(2025, time.December, 31), false, false, holidays)
	if got != 5 {
		t.Fatalf("expected 5 days, got %v", got)
	}
}

func TestCountBusinessDaysHalfDays(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		halfStart bool
		halfEnd   bool
		want      float64
	}{
		{"half start", date(2025, time.June, 2), date(2025, time.June, 6), true, false, 4.5},
		{"half end", date(2025, time.June, 2), date(2025, time.June, 6), false, true, 4.5},
		{"both halves", date(2025, time.June, 2), date(2025, time.June, 6), true, true, 4},
		{"single day both halves", date(2025, time.June, 3), date(2025, time.June, 3), true, true, 0.5},
		{"single day half start", date(2025, time.June, 3), date(2025, time.June, 3), true, false, 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CountBusinessDays(tc.start, tc.end, tc.halfStart, tc.halfEnd, nil)
			if got != tc.want {
				t.Fatalf("expected %v days, got %v", tc.want, got)
			}
		})
	}
}

func TestCountBusinessDaysWeekendOnly(t *testing.T) {
	// Sat through Sun costs nothing.
	got := CountBusinessDays(date(2025, time.June, 7), date(2025, time.June, 8), false, false, nil)
	if got != 0 {
		t.Fatalf("expected 0 days, got %v", got)
	}
}

func TestCountBusinessDaysReversedRange(t *testing.T) {
	got := CountBusinessDays(date(2025, time.June, 6), date(2025, time.June, 2), false, false, nil)
	if got != 0 {
		t.Fatalf("expected 0 days for reversed range, got %v", got)
	}
}

func TestFindBlackoutConflict(t *testing.T) {
	freezeEnd := date(2025, time.December, 31)
	blackouts := []BlackoutDate{
		{Name: "Inventory", Date: date(2025, time.July, 10)},
		{Name: "Year-end freeze", Date: date(2025, time.December, 20), EndDate: &freezeEnd},
	}

	if conflict := FindBlackoutConflict(date(2025, time.July, 7), date(2025, time.July, 9), blackouts); conflict != nil {
		t.Fatalf("expected no conflict, got %q", conflict.Name)
	}

	conflict := FindBlackoutConflict(date(2025, time.July, 9), date(2025, time.July, 11), blackouts)
	if conflict == nil {
		t.Fatal("expected a conflict with the single-day blackout")
	}
	if conflict.Name != "Inventory" {
		t.Fatalf("expected Inventory, got %q", conflict.Name)
	}

	// Overlapping only the tail of a multi-day range still conflicts, even
	// when the overlapping days are a weekend.
	conflict = FindBlackoutConflict(date(2025, time.December, 15), date(2025, time.December, 20), blackouts)
	if conflict == nil || conflict.Name != "Year-end freeze" {
		t.Fatalf("expected Year-end freeze conflict, got %+v", conflict)
	}

	// A request entirely inside a blackout range conflicts.
	if FindBlackoutConflict(date(2025, time.December, 22), date(2025, time.December, 23), blackouts) == nil {
		t.Fatal("expected conflict for range inside blackout")
	}
}
