package calendar

import "time"

// Holiday is a company holiday covering a single day or an inclusive range.
type Holiday struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Date    time.Time  `json:"date"`
	EndDate *time.Time `json:"endDate,omitempty"`

	Version int64 `json:"-"`
}

// BlackoutDate is an admin-defined range during which PTO requests are
// restricted. Same shape as Holiday, different catalog and semantics.
type BlackoutDate struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Date    time.Time  `json:"date"`
	EndDate *time.Time `json:"endDate,omitempty"`

	Version int64 `json:"-"`
}

func (h Holiday) rangeEnd() time.Time {
	if h.EndDate != nil {
		return *h.EndDate
	}
	return h.Date
}

func (b BlackoutDate) rangeEnd() time.Time {
	if b.EndDate != nil {
		return *b.EndDate
	}
	return b.Date
}
