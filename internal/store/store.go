// Package store defines the tabular persistence boundary: named record
// collections keyed by id, each row carrying a JSON document and a version
// token. The workflow packages only ever see this interface, so they run
// unchanged against Postgres, an xlsx workbook, or the in-memory fake.
package store

import (
	"context"
	"errors"
	"time"
)

// Collection names used across the domain packages.
const (
	CollectionUsers        = "users"
	CollectionPtoRequests  = "pto_requests"
	CollectionHolidays     = "holidays"
	CollectionBlackouts    = "blackout_dates"
	CollectionBalances     = "pto_balances"
	CollectionSystemConfig = "system_config"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateID     = errors.New("duplicate record id")
	ErrVersionConflict = errors.New("record version conflict")
)

// Row is a single persisted record. Doc holds the JSON document; Version is
// the optimistic token the row carried when read. Update must be called with
// the version that was read and fails with ErrVersionConflict when another
// writer got there first.
type Row struct {
	ID        string
	Version   int64
	UpdatedAt time.Time
	Doc       []byte
}

// Tabular is the injected store boundary. List returns rows in storage
// (insertion) order. Append assigns version 1; Update bumps the version on
// success and returns the stored row.
type Tabular interface {
	List(ctx context.Context, collection string) ([]Row, error)
	Get(ctx context.Context, collection, id string) (Row, error)
	Append(ctx context.Context, collection string, row Row) (Row, error)
	Update(ctx context.Context, collection string, row Row) (Row, error)
	Delete(ctx context.Context, collection, id string) error
}
