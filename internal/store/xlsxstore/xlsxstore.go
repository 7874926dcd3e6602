// Package xlsxstore backs the Tabular interface with an Excel workbook, one
// sheet per collection. It keeps the original spreadsheet deployment mode
// alive for installations without a database. The workbook is a single-writer
// store: a process-wide mutex serializes all access and every mutation is
// written through to disk.
package xlsxstore

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"ptohub/internal/store"
)

var header = []string{"id", "version", "updated_at", "doc"}

type Store struct {
	mu   sync.Mutex
	path string
	file *excelize.File
}

// Open loads the workbook at path, creating it if it does not exist.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		file := excelize.NewFile()
		if err := file.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
		return &Store{path: path, file: file}, nil
	}
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Store{path: path, file: file}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.sheetRows(collection)
	if err != nil {
		return nil, err
	}
	out := make([]store.Row, 0, len(rows))
	for _, cells := range rows {
		row, ok := decodeRow(cells)
		if !ok {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Row, error) {
	if err := ctx.Err(); err != nil {
		return store.Row{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, _, err := s.findRow(collection, id)
	return row, err
}

func (s *Store) Append(ctx context.Context, collection string, row store.Row) (store.Row, error) {
	if err := ctx.Err(); err != nil {
		return store.Row{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSheet(collection); err != nil {
		return store.Row{}, err
	}
	if _, _, err := s.findRow(collection, row.ID); err == nil {
		return store.Row{}, store.ErrDuplicateID
	}

	rows, err := s.sheetRows(collection)
	if err != nil {
		return store.Row{}, err
	}
	row.Version = 1
	row.UpdatedAt = time.Now().UTC()
	if err := s.writeRow(collection, len(rows)+2, row); err != nil {
		return store.Row{}, err
	}
	if err := s.file.Save(); err != nil {
		return store.Row{}, err
	}
	return row, nil
}

func (s *Store) Update(ctx context.Context, collection string, row store.Row) (store.Row, error) {
	if err := ctx.Err(); err != nil {
		return store.Row{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, line, err := s.findRow(collection, row.ID)
	if err != nil {
		return store.Row{}, err
	}
	if existing.Version != row.Version {
		return store.Row{}, store.ErrVersionConflict
	}
	row.Version = existing.Version + 1
	row.UpdatedAt = time.Now().UTC()
	if err := s.writeRow(collection, line, row); err != nil {
		return store.Row{}, err
	}
	if err := s.file.Save(); err != nil {
		return store.Row{}, err
	}
	return row, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, line, err := s.findRow(collection, id)
	if err != nil {
		return err
	}
	if err := s.file.RemoveRow(collection, line); err != nil {
		return err
	}
	return s.file.Save()
}

// sheetRows returns the data rows (below the header) of a collection sheet,
// or nil when the sheet does not exist yet.
func (s *Store) sheetRows(collection string) ([][]string, error) {
	index, err := s.file.GetSheetIndex(collection)
	if err != nil || index < 0 {
		return nil, nil
	}
	rows, err := s.file.GetRows(collection)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func (s *Store) ensureSheet(collection string) error {
	index, err := s.file.GetSheetIndex(collection)
	if err == nil && index >= 0 {
		return nil
	}
	if _, err := s.file.NewSheet(collection); err != nil {
		return err
	}
	for i, name := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := s.file.SetCellValue(collection, cell, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) findRow(collection, id string) (store.Row, int, error) {
	rows, err := s.sheetRows(collection)
	if err != nil {
		return store.Row{}, 0, err
	}
	for i, cells := range rows {
		row, ok := decodeRow(cells)
		if !ok || row.ID != id {
			continue
		}
		return row, i + 2, nil
	}
	return store.Row{}, 0, store.ErrNotFound
}

func (s *Store) writeRow(collection string, line int, row store.Row) error {
	values := []any{row.ID, row.Version, row.UpdatedAt.Format(time.RFC3339Nano), string(row.Doc)}
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, line)
		if err != nil {
			return err
		}
		if err := s.file.SetCellValue(collection, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func decodeRow(cells []string) (store.Row, bool) {
	if len(cells) < 4 || cells[0] == "" {
		return store.Row{}, false
	}
	version, err := strconv.ParseInt(cells[1], 10, 64)
	if err != nil {
		return store.Row{}, false
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, cells[2])
	if err != nil {
		updatedAt = time.Time{}
	}
	return store.Row{
		ID:        cells[0],
		Version:   version,
		UpdatedAt: updatedAt,
		Doc:       []byte(cells[3]),
	}, true
}
