package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    due_date     TEXT,
    priority     TEXT NOT NULL DEFAULT 'Medium',
    is_completed INTEGER NOT NULL DEFAULT 0,
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_completed_created ON tasks (is_completed, created_at);
CREATE TABLE IF NOT EXISTS idempotency_keys (
    key         TEXT PRIMARY KEY,
    resource_id TEXT NOT NULL,
    created_at  TEXT NOT NULL
);
`

// SQLiteRepo is a single-file store for running the API without Postgres.
type SQLiteRepo struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE id = ?`, t.ID).Scan(&exists)
	if err != nil {
		return t, err
	}
	if exists > 0 {
		return t, ErrorConflict
	}

	now := formatTime(time.Now())
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, due_date, priority, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, nullTime(t.DueDate), string(t.Priority), t.IsCompleted, formatTime(t.CreatedAt), now)
	if err != nil {
		return t, err
	}
	return r.Get(ctx, t.ID)
}

func (r *SQLiteRepo) Get(ctx context.Context, id string) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *SQLiteRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	var (
		where []string
		args  []any
	)
	if c := completedFilter(filter.Status); c != nil {
		where = append(where, "is_completed = ?")
		args = append(args, *c)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, `(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		p := likePattern(q)
		args = append(args, p, p)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *SQLiteRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, priority = ?, is_completed = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.Description, nullTime(t.DueDate), string(t.Priority), t.IsCompleted, formatTime(time.Now()), t.ID)
	if err != nil {
		return t, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return t, ErrorNotFound
	}
	return r.Get(ctx, t.ID)
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrorNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM idempotency_keys WHERE resource_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepo) SaveIdempotencyKey(ctx context.Context, key string, resourceID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO idempotency_keys (key, resource_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO NOTHING
	`, key, resourceID, formatTime(time.Now()))
	return err
}

func (r *SQLiteRepo) GetIdempotencyKey(ctx context.Context, key string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT resource_id FROM idempotency_keys WHERE key = ?`, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrorNotFound
	}
	return id, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (model.Task, error) {
	var (
		t         model.Task
		due       sql.NullString
		priority  string
		createdAt string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &due, &priority, &t.IsCompleted, &createdAt); err != nil {
		return t, err
	}
	t.Priority = model.Priority(priority)

	if due.Valid && due.String != "" {
		d, err := time.Parse(time.RFC3339Nano, due.String)
		if err != nil {
			return t, fmt.Errorf("parse due_date of %s: %w", t.ID, err)
		}
		t.DueDate = &d
	}
	c, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return t, fmt.Errorf("parse created_at of %s: %w", t.ID, err)
	}
	t.CreatedAt = c
	return t, nil
}

// Fixed width keeps lexical order equal to chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
