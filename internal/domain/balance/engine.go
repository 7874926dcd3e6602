// Package balance computes yearly PTO balances. The request history is the
// source of truth: balances are recomputed on demand, and the snapshot
// persisted on approval/denial exists only for reporting.
package balance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"ptohub/internal/domain/directory"
	"ptohub/internal/domain/settings"
	"ptohub/internal/store"
)

type Balance struct {
	UserID      string  `json:"userId"`
	Year        int     `json:"year"`
	TotalDays   float64 `json:"totalDays"`
	UsedDays    float64 `json:"usedDays"`
	PendingDays float64 `json:"pendingDays"`
}

func (b Balance) AvailableDays() float64 {
	return b.TotalDays - b.UsedDays - b.PendingDays
}

// Entitlement returns the yearly PTO allowance for a user. In the hire year
// (when proration is on) the base is scaled to the months remaining from the
// hire month through December, rounded half-up.
func Entitlement(user directory.User, year int, cfg settings.SystemConfig) float64 {
	base := cfg.DefaultFullTimeDays
	if user.EmploymentType == directory.EmploymentPartTime {
		base = cfg.DefaultPartTimeDays
	}
	if !cfg.ProrateByHireDate || user.HireDate.IsZero() || user.HireDate.Year() != year {
		return base
	}
	monthsRemaining := 12 - (int(user.HireDate.Month()) - 1)
	return math.Floor(base/12*float64(monthsRemaining) + 0.5)
}

// requestDoc is the slice of a PTO request document the engine aggregates.
// Only Approved requests count as used and only Submitted as pending; a
// request belongs entirely to the year its start date falls in.
type requestDoc struct {
	UserID    string    `json:"userId"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
	TotalDays float64   `json:"totalDays"`
}

// Request statuses that contribute to a balance.
const (
	statusApproved  = "Approved"
	statusSubmitted = "Submitted"
)

type Engine struct {
	store    store.Tabular
	dir      *directory.Service
	settings *settings.Service
}

func NewEngine(tabular store.Tabular, dir *directory.Service, cfg *settings.Service) *Engine {
	return &Engine{store: tabular, dir: dir, settings: cfg}
}

// Compute scans the user's request history and derives the balance for a
// year. Config is re-read on every call so admin changes apply immediately.
func (e *Engine) Compute(ctx context.Context, user directory.User, year int) (Balance, error) {
	cfg, err := e.settings.Get(ctx)
	if err != nil {
		return Balance{}, err
	}

	result := Balance{
		UserID:    user.ID,
		Year:      year,
		TotalDays: Entitlement(user, year, cfg),
	}

	rows, err := e.store.List(ctx, store.CollectionPtoRequests)
	if err != nil {
		return Balance{}, err
	}
	for _, row := range rows {
		var doc requestDoc
		if err := json.Unmarshal(row.Doc, &doc); err != nil {
			return Balance{}, err
		}
		if doc.UserID != user.ID || doc.StartDate.Year() != year {
			continue
		}
		switch doc.Status {
		case statusApproved:
			result.UsedDays += doc.TotalDays
		case statusSubmitted:
			result.PendingDays += doc.TotalDays
		}
	}
	return result, nil
}

func (e *Engine) ComputeForUserID(ctx context.Context, userID string, year int) (Balance, error) {
	user, err := e.dir.FindByID(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return e.Compute(ctx, user, year)
}

// SaveSnapshot upserts the denormalized per-user-year balance row. Readers
// always prefer the computed value; the snapshot feeds reports only.
func (e *Engine) SaveSnapshot(ctx context.Context, b Balance) error {
	id := fmt.Sprintf("%s-%d", b.UserID, b.Year)
	doc, err := json.Marshal(b)
	if err != nil {
		return err
	}
	row, err := e.store.Get(ctx, store.CollectionBalances, id)
	if errors.Is(err, store.ErrNotFound) {
		_, err = e.store.Append(ctx, store.CollectionBalances, store.Row{ID: id, Doc: doc})
		return err
	}
	if err != nil {
		return err
	}
	row.Doc = doc
	_, err = e.store.Update(ctx, store.CollectionBalances, row)
	return err
}
