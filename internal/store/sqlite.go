package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

// defaultList is the row holding the single task list.
const defaultList = "default"

// SQLiteStore keeps the task list as one JSON document in a SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the SQLite database at dbPath and initializes
// the schema. It does not create the task list row; see Init.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS task_lists (
  name TEXT PRIMARY KEY,
  body TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*models.LoadResult, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM task_lists WHERE name = ?`, defaultList,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NotFoundResult(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task list: %w", err)
	}
	return decodeTaskList([]byte(body)), nil
}

func (s *SQLiteStore) Save(ctx context.Context, tasks models.TaskList) error {
	data, err := encodeTaskList(tasks)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO task_lists (name, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		defaultList, string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save task list: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Init(ctx context.Context) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO task_lists (name, body, updated_at) VALUES (?, '[]', ?)`,
		defaultList, time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("init task list: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("init task list: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

