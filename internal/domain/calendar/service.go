// Package calendar owns the holiday and blackout catalogs and the date
// arithmetic built on them: business-day counting for PTO cost and overlap
// checks against blackout ranges.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"ptohub/internal/store"
)

var ErrNotFound = errors.New("calendar entry not found")

type Service struct {
	store store.Tabular
}

func NewService(tabular store.Tabular) *Service {
	return &Service{store: tabular}
}

func (s *Service) ListHolidays(ctx context.Context) ([]Holiday, error) {
	rows, err := s.store.List(ctx, store.CollectionHolidays)
	if err != nil {
		return nil, err
	}
	holidays := make([]Holiday, 0, len(rows))
	for _, row := range rows {
		var holiday Holiday
		if err := json.Unmarshal(row.Doc, &holiday); err != nil {
			return nil, err
		}
		holiday.Version = row.Version
		holidays = append(holidays, holiday)
	}
	return holidays, nil
}

func (s *Service) CreateHoliday(ctx context.Context, name string, date time.Time, endDate *time.Time) (Holiday, error) {
	holiday := Holiday{ID: uuid.NewString(), Name: name, Date: date, EndDate: endDate}
	doc, err := json.Marshal(holiday)
	if err != nil {
		return Holiday{}, err
	}
	if _, err := s.store.Append(ctx, store.CollectionHolidays, store.Row{ID: holiday.ID, Doc: doc}); err != nil {
		return Holiday{}, err
	}
	return holiday, nil
}

func (s *Service) DeleteHoliday(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, store.CollectionHolidays, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) ListBlackouts(ctx context.Context) ([]BlackoutDate, error) {
	rows, err := s.store.List(ctx, store.CollectionBlackouts)
	if err != nil {
		return nil, err
	}
	blackouts := make([]BlackoutDate, 0, len(rows))
	for _, row := range rows {
		var blackout BlackoutDate
		if err := json.Unmarshal(row.Doc, &blackout); err != nil {
			return nil, err
		}
		blackout.Version = row.Version
		blackouts = append(blackouts, blackout)
	}
	return blackouts, nil
}

func (s *Service) CreateBlackout(ctx context.Context, name string, date time.Time, endDate *time.Time) (BlackoutDate, error) {
	blackout := BlackoutDate{ID: uuid.NewString(), Name: name, Date: date, EndDate: endDate}
	doc, err := json.Marshal(blackout)
	if err != nil {
		return BlackoutDate{}, err
	}
	if _, err := s.store.Append(ctx, store.CollectionBlackouts, store.Row{ID: blackout.ID, Doc: doc}); err != nil {
		return BlackoutDate{}, err
	}
	return blackout, nil
}

func (s *Service) DeleteBlackout(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, store.CollectionBlackouts, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
