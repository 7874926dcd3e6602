package memstore

import (
	"context"
	"errors"
	"testing"

	"ptohub/internal/store"
)

func TestAppendAssignsVersion(t *testing.T) {
	s := New()
	ctx := context.Background()

	row, err := s.Append(ctx, "things", store.Row{ID: "a", Doc: []byte(`{"n":1}`)})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if row.Version != 1 {
		t.Fatalf("expected version 1, got %d", row.Version)
	}
	if row.UpdatedAt.IsZero() {
		t.Fatal("expected updatedAt to be set")
	}

	if _, err := s.Append(ctx, "things", store.Row{ID: "a"}); !errors.Is(err, store.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestUpdateChecksVersion(t *testing.T) {
	s := New()
	ctx := context.Background()

	row, err := s.Append(ctx, "things", store.Row{ID: "a", Doc: []byte(`{"n":1}`)})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	updated, err := s.Update(ctx, "things", store.Row{ID: "a", Version: row.Version, Doc: []byte(`{"n":2}`)})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Version)
	}

	// A writer holding the stale token must be rejected.
	_, err = s.Update(ctx, "things", store.Row{ID: "a", Version: row.Version, Doc: []byte(`{"n":3}`)})
	if !errors.Is(err, store.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	_, err = s.Update(ctx, "things", store.Row{ID: "missing", Version: 1})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Append(ctx, "things", store.Row{ID: "a", Doc: []byte(`{"n":1}`)}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	row, err := s.Get(ctx, "things", "a")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	row.Doc[0] = 'X'

	again, err := s.Get(ctx, "things", "a")
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if string(again.Doc) != `{"n":1}` {
		t.Fatalf("stored doc mutated through returned copy: %s", again.Doc)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Append(ctx, "things", store.Row{ID: "a"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := s.Delete(ctx, "things", "a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "things", "a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "things", "a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListIsolatedPerCollection(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Append(ctx, "alpha", store.Row{ID: "a"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := s.Append(ctx, "beta", store.Row{ID: "b"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	rows, err := s.List(ctx, "alpha")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "a" {
		t.Fatalf("unexpected alpha rows: %+v", rows)
	}
}
