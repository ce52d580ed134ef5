// Package reportstore persists generated monthly report texts in an
// app-owned SQLite database so operators can pull up past reports without
// regenerating them.
package reportstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ArchivedReport is one stored monthly report.
type ArchivedReport struct {
	ID          int64      `json:"id"`
	Month       string     `json:"month"`
	Body        string     `json:"body"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// Store manages the report archive in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS report_archive (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  month TEXT NOT NULL UNIQUE,
  body TEXT NOT NULL,
  generated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_ra_month ON report_archive(month);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save upserts the report body for a month and returns its row id.
func (s *Store) Save(ctx context.Context, month, body string) (int64, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		return 0, errors.New("report month is required")
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO report_archive (month, body, generated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(month) DO UPDATE SET
  body = excluded.body,
  generated_at = CURRENT_TIMESTAMP;
`, month, body)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err == nil && id > 0 {
		return id, nil
	}

	var existingID int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM report_archive WHERE month = ?`, month).Scan(&existingID); err != nil {
		return 0, err
	}
	return existingID, nil
}

// List returns archived reports, newest month first.
func (s *Store) List(ctx context.Context, limit int) ([]ArchivedReport, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, month, body, generated_at
FROM report_archive
ORDER BY month DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ArchivedReport, 0, limit)
	for rows.Next() {
		var (
			item        ArchivedReport
			generatedAt sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.Month, &item.Body, &generatedAt); err != nil {
			return nil, err
		}
		if generatedAt.Valid {
			t := generatedAt.Time.UTC()
			item.GeneratedAt = &t
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one archived report by id.
func (s *Store) Get(ctx context.Context, id int64) (*ArchivedReport, error) {
	var (
		item        ArchivedReport
		generatedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, month, body, generated_at
FROM report_archive
WHERE id = ?;
`, id).Scan(&item.ID, &item.Month, &item.Body, &generatedAt)
	if err != nil {
		return nil, err
	}
	if generatedAt.Valid {
		t := generatedAt.Time.UTC()
		item.GeneratedAt = &t
	}
	return &item, nil
}

// Ping reports store health for the services-status view.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("report archive disabled")
	}
	return s.db.PingContext(ctx)
}
