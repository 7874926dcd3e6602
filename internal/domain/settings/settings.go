// Package settings holds the admin-mutable system configuration read by the
// balance engine and the request workflow. Reads always go to the store so a
// config change is visible to the next computation.
package settings

import (
	"context"
	"encoding/json"
	"errors"

	"ptohub/internal/store"
)

const recordID = "system"

type SystemConfig struct {
	DefaultFullTimeDays      float64 `json:"defaultFullTimeDays"`
	DefaultPartTimeDays      float64 `json:"defaultPartTimeDays"`
	ProrateByHireDate        bool    `json:"prorateByHireDate"`
	ShortNoticeThresholdDays int     `json:"shortNoticeThresholdDays"`
	SharedCalendarID         string  `json:"sharedCalendarId"`
}

func Defaults() SystemConfig {
	return SystemConfig{
		DefaultFullTimeDays:      15,
		DefaultPartTimeDays:      8,
		ProrateByHireDate:        true,
		ShortNoticeThresholdDays: 3,
	}
}

type Service struct {
	store store.Tabular
}

func NewService(tabular store.Tabular) *Service {
	return &Service{store: tabular}
}

// Get returns the persisted config, falling back to defaults when none has
// been saved yet.
func (s *Service) Get(ctx context.Context) (SystemConfig, error) {
	row, err := s.store.Get(ctx, store.CollectionSystemConfig, recordID)
	if errors.Is(err, store.ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return SystemConfig{}, err
	}
	var cfg SystemConfig
	if err := json.Unmarshal(row.Doc, &cfg); err != nil {
		return SystemConfig{}, err
	}
	return cfg, nil
}

func (s *Service) Update(ctx context.Context, cfg SystemConfig) (SystemConfig, error) {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return SystemConfig{}, err
	}
	row, err := s.store.Get(ctx, store.CollectionSystemConfig, recordID)
	if errors.Is(err, store.ErrNotFound) {
		if _, err := s.store.Append(ctx, store.CollectionSystemConfig, store.Row{ID: recordID, Doc: doc}); err != nil {
			return SystemConfig{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return SystemConfig{}, err
	}
	row.Doc = doc
	if _, err := s.store.Update(ctx, store.CollectionSystemConfig, row); err != nil {
		return SystemConfig{}, err
	}
	return cfg, nil
}
