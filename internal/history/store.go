// Package history keeps an append-only log of saved registry documents in
// SQLite, so earlier states can be listed and restored.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/scriptvars/internal/snapshot"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when a container has no recorded snapshot.
var ErrNotFound = errors.New("history: no snapshot recorded")

// Meta describes one recorded snapshot without its variables.
type Meta struct {
	ID         int64
	Container  string
	SaveTime   string
	RecordedAt time.Time
	Variables  int
}

// Store persists snapshot history in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record appends doc and returns its id.
func (s *Store) Record(ctx context.Context, doc snapshot.Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("history is not configured")
	}
	data, err := snapshot.Marshal(doc)
	if err != nil {
		return 0, err
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO snapshots (container, save_time, recorded_at, variable_count, document)
		 VALUES (?, ?, ?, ?, ?)`,
		doc.ContainerName,
		doc.SaveTime,
		toMillis(s.now()),
		len(doc.Variables),
		string(data),
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}
	return id, nil
}

// Latest returns the most recently recorded document for container.
func (s *Store) Latest(ctx context.Context, container string) (snapshot.Document, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Document{}, err
	}
	var data string
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT document FROM snapshots WHERE container = ? ORDER BY id DESC LIMIT 1`,
		container,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.Document{}, fmt.Errorf("%w for %q", ErrNotFound, container)
	}
	if err != nil {
		return snapshot.Document{}, fmt.Errorf("query latest snapshot: %w", err)
	}
	return snapshot.Unmarshal([]byte(data))
}

// Get returns the document recorded under id.
func (s *Store) Get(ctx context.Context, id int64) (snapshot.Document, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Document{}, err
	}
	var data string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT document FROM snapshots WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return snapshot.Document{}, fmt.Errorf("%w with id %d", ErrNotFound, id)
	}
	if err != nil {
		return snapshot.Document{}, fmt.Errorf("query snapshot: %w", err)
	}
	return snapshot.Unmarshal([]byte(data))
}

// List returns up to limit entries for container, newest first. A
// non-positive limit returns every entry.
func (s *Store) List(ctx context.Context, container string, limit int) ([]Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, container, save_time, recorded_at, variable_count
		 FROM snapshots WHERE container = ? ORDER BY id DESC LIMIT ?`,
		container,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var (
			m          Meta
			recordedAt int64
		)
		if err := rows.Scan(&m.ID, &m.Container, &m.SaveTime, &recordedAt, &m.Variables); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		m.RecordedAt = fromMillis(recordedAt)
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return metas, nil
}
