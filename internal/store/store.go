package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/iammorganparry/clive/apps/tasks/internal/config"
	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

// Store reads and writes the whole task list. Implementations perform no
// locking; callers that need load-modify-save atomicity must provide it.
type Store interface {
	// Load returns the stored list, or a placeholder result when the
	// storage is missing or unreadable as a JSON array. The error is
	// reserved for I/O failures.
	Load(ctx context.Context) (*models.LoadResult, error)
	// Save overwrites the storage with tasks.
	Save(ctx context.Context, tasks models.TaskList) error
	// Init creates empty storage if none exists and reports whether it did.
	Init(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Path, cfg.AtomicWrites), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// decodeTaskList parses data as a JSON array. Anything else, including
// valid JSON of another shape or trailing content, yields the corrupted
// placeholder.
func decodeTaskList(data []byte) *models.LoadResult {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tasks models.TaskList
	if err := dec.Decode(&tasks); err != nil || tasks == nil {
		return models.CorruptedResult()
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return models.CorruptedResult()
	}
	return &models.LoadResult{Tasks: tasks}
}

func encodeTaskList(tasks models.TaskList) ([]byte, error) {
	if tasks == nil {
		tasks = models.TaskList{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}
