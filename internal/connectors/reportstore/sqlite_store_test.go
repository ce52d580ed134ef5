package reportstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, "2025-06", "Laporan SLA Bulanan 2025-06")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Month != "2025-06" || got.Body != "Laporan SLA Bulanan 2025-06" {
		t.Fatalf("stored report wrong: %+v", got)
	}
	if got.GeneratedAt == nil {
		t.Fatalf("generated_at must be set")
	}
}

func TestSaveUpsertsSameMonth(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Save(ctx, "2025-06", "v1"); err != nil {
		t.Fatalf("first save: %v", err)
	}
	id, err := s.Save(ctx, "2025-06", "v2")
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Body != "v2" {
		t.Fatalf("upsert must replace the body, got %q", got.Body)
	}

	items, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("same month must stay one row, got %d", len(items))
	}
}

func TestListNewestMonthFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, month := range []string{"2025-04", "2025-06", "2025-05"} {
		if _, err := s.Save(ctx, month, "body "+month); err != nil {
			t.Fatalf("Save %s: %v", month, err)
		}
	}

	items, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("limit not honored, got %d rows", len(items))
	}
	if items[0].Month != "2025-06" || items[1].Month != "2025-05" {
		t.Fatalf("order wrong: %+v", items)
	}
}

func TestGetMissingReport(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), 999); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestSaveRequiresMonth(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save(context.Background(), "  ", "body"); err == nil {
		t.Fatalf("empty month must error")
	}
}
