// Package memstore is the in-memory Tabular implementation used by the
// domain tests and by nothing else.
package memstore

import (
	"context"
	"sync"
	"time"

	"ptohub/internal/store"
)

type Store struct {
	mu          sync.Mutex
	collections map[string][]store.Row
}

func New() *Store {
	return &Store{collections: make(map[string][]store.Row)}
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.collections[collection]
	out := make([]store.Row, len(rows))
	for i, row := range rows {
		out[i] = copyRow(row)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Row, error) {
	if err := ctx.Err(); err != nil {
		return store.Row{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.collections[collection] {
		if row.ID == id {
			return copyRow(row), nil
		}
	}
	return store.Row{}, store.ErrNotFound
}

func (s *Store) Append(ctx context.Context, collection string, row store.Row) (store.Row, error) {
	if err := ctx.Err(); err != nil {
		return store.Row{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.collections[collection] {
		if existing.ID == row.ID {
			return store.Row{}, store.ErrDuplicateID
		}
	}
	row.Version = 1
	row.UpdatedAt = time.Now().UTC()
	s.collections[collection] = append(s.collections[collection], copyRow(row))
	return row, nil
}

func (s *Store) Update(ctx context.Context, collection string, row store.Row) (store.Row, error) {
	if err := ctx.Err(); err != nil {
		return store.Row{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.collections[collection]
	for i, existing := range rows {
		if existing.ID != row.ID {
			continue
		}
		if existing.Version != row.Version {
			return store.Row{}, store.ErrVersionConflict
		}
		row.Version = existing.Version + 1
		row.UpdatedAt = time.Now().UTC()
		rows[i] = copyRow(row)
		return row, nil
	}
	return store.Row{}, store.ErrNotFound
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.collections[collection]
	for i, existing := range rows {
		if existing.ID == id {
			s.collections[collection] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func copyRow(row store.Row) store.Row {
	doc := make([]byte, len(row.Doc))
	copy(doc, row.Doc)
	row.Doc = doc
	return row
}
