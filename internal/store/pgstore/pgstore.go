// Package pgstore backs the Tabular interface with Postgres. All collections
// live in a single records table with a jsonb document column; version
// checking happens in the UPDATE predicate so a lost read surfaces as a
// conflict instead of a silent overwrite.
package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ptohub/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
  collection TEXT NOT NULL,
  id         TEXT NOT NULL,
  version    BIGINT NOT NULL DEFAULT 1,
  doc        JSONB NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (collection, id)
)`

type Store struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Row, error) {
	rows, err := s.pool.Query(ctx, `
    SELECT id, version, updated_at, doc
    FROM records
    WHERE collection = $1
    ORDER BY created_at, id
  `, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var row store.Row
		if err := rows.Scan(&row.ID, &row.Version, &row.UpdatedAt, &row.Doc); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Row, error) {
	var row store.Row
	err := s.pool.QueryRow(ctx, `
    SELECT id, version, updated_at, doc
    FROM records
    WHERE collection = $1 AND id = $2
  `, collection, id).Scan(&row.ID, &row.Version, &row.UpdatedAt, &row.Doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Row{}, store.ErrNotFound
	}
	if err != nil {
		return store.Row{}, err
	}
	return row, nil
}

func (s *Store) Append(ctx context.Context, collection string, row store.Row) (store.Row, error) {
	err := s.pool.QueryRow(ctx, `
    INSERT INTO records (collection, id, version, doc)
    VALUES ($1, $2, 1, $3)
    RETURNING version, updated_at
  `, collection, row.ID, row.Doc).Scan(&row.Version, &row.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return store.Row{}, store.ErrDuplicateID
	}
	if err != nil {
		return store.Row{}, err
	}
	return row, nil
}

func (s *Store) Update(ctx context.Context, collection string, row store.Row) (store.Row, error) {
	err := s.pool.QueryRow(ctx, `
    UPDATE records
    SET doc = $4, version = version + 1, updated_at = now()
    WHERE collection = $1 AND id = $2 AND version = $3
    RETURNING version, updated_at
  `, collection, row.ID, row.Version, row.Doc).Scan(&row.Version, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the row is gone or another writer bumped the version.
		var exists bool
		if chkErr := s.pool.QueryRow(ctx, `
      SELECT EXISTS (SELECT 1 FROM records WHERE collection = $1 AND id = $2)
    `, collection, row.ID).Scan(&exists); chkErr != nil {
			return store.Row{}, chkErr
		}
		if exists {
			return store.Row{}, store.ErrVersionConflict
		}
		return store.Row{}, store.ErrNotFound
	}
	if err != nil {
		return store.Row{}, err
	}
	return row, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM records WHERE collection = $1 AND id = $2", collection, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
