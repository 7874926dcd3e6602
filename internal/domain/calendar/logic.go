package calendar

import "time"

// CountBusinessDays returns the PTO day cost of an inclusive date range.
// Weekends and holidays are skipped; a half-day flag on the first or last
// counted day reduces it to 0.5. A single-day request flagged half on both
// ends still costs 0.5, not 0: the two flags collapse into one deduction.
func CountBusinessDays(start, end time.Time, halfStart, halfEnd bool, holidays []Holiday) float64 {
	start = dateOnly(start)
	end = dateOnly(end)
	if end.Before(start) {
		return 0
	}

	total := 0.0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		if onHoliday(day, holidays) {
			continue
		}
		weight := 1.0
		if halfStart && day.Equal(start) {
			weight = 0.5
		} else if halfEnd && day.Equal(end) {
			weight = 0.5
		}
		total += weight
	}
	return total
}

// Conflict describes the first blackout range overlapping a request.
type Conflict struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// FindBlackoutConflict checks raw calendar-day overlap between [start, end]
// and each blackout range, in storage order. Weekends and holidays inside
// the range still conflict; this check is not business-day aware.
func FindBlackoutConflict(start, end time.Time, blackouts []BlackoutDate) *Conflict {
	start = dateOnly(start)
	end = dateOnly(end)
	for _, blackout := range blackouts {
		from := dateOnly(blackout.Date)
		to := dateOnly(blackout.rangeEnd())
		if !start.After(to) && !end.Before(from) {
			return &Conflict{Name: blackout.Name, Date: blackout.Date}
		}
	}
	return nil
}

func onHoliday(day time.Time, holidays []Holiday) bool {
	for _, holiday := range holidays {
		from := dateOnly(holiday.Date)
		to := dateOnly(holiday.rangeEnd())
		if !day.Before(from) && !day.After(to) {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
