// Package notify delivers the human-facing side effects of workflow
// transitions: email to the counterpart and shared-calendar events on
// approval. Delivery runs after the transition is persisted and failures are
// logged, never returned — a dead mail server must not fail an approval.
package notify

import (
	"context"
	"log/slog"
	"time"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type CalendarClient interface {
	CreateEvent(ctx context.Context, calendarID, title string, start, end time.Time) error
}

type Service struct {
	mailer   Mailer
	calendar CalendarClient
	from     string
}

func New(mailer Mailer, calendar CalendarClient, from string) *Service {
	if calendar == nil {
		calendar = noopCalendar{}
	}
	return &Service{mailer: mailer, calendar: calendar, from: from}
}

// Email sends a notification mail, best effort.
func (s *Service) Email(ctx context.Context, to, subject, body string) {
	if s == nil || s.mailer == nil || to == "" {
		return
	}
	if err := s.mailer.Send(ctx, s.from, to, subject, body); err != nil {
		slog.Warn("notification email failed", "to", to, "subject", subject, "err", err)
	}
}

// AddCalendarEvent records an approved absence on the shared calendar, best
// effort.
func (s *Service) AddCalendarEvent(ctx context.Context, calendarID, title string, start, end time.Time) {
	if s == nil || calendarID == "" {
		return
	}
	if err := s.calendar.CreateEvent(ctx, calendarID, title, start, end); err != nil {
		slog.Warn("calendar event creation failed", "calendarId", calendarID, "title", title, "err", err)
	}
}

type noopCalendar struct{}

func (noopCalendar) CreateEvent(ctx context.Context, calendarID, title string, start, end time.Time) error {
	return nil
}
