package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

// FileStore keeps the task list as a JSON array in a single file.
type FileStore struct {
	path   string
	atomic bool
}

// NewFileStore returns a store backed by the file at path. With atomic set,
// saves go through a temp file and rename; otherwise the file is truncated
// and rewritten in place, so a crash mid-write can leave it corrupted.
func NewFileStore(path string, atomic bool) *FileStore {
	return &FileStore{path: path, atomic: atomic}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(_ context.Context) (*models.LoadResult, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.NotFoundResult(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	return decodeTaskList(data), nil
}

func (s *FileStore) Save(_ context.Context, tasks models.TaskList) error {
	data, err := encodeTaskList(tasks)
	if err != nil {
		return err
	}
	if s.atomic {
		return atomicWriteFile(s.path, data)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}
	return nil
}

func (s *FileStore) Init(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat tasks file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, fmt.Errorf("create tasks directory: %w", err)
	}
	if err := s.Save(ctx, models.TaskList{}); err != nil {
		return false, err
	}
	return true, nil
}

// Ping checks that the tasks file exists and is a regular file.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat tasks file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", s.path)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func atomicWriteFile(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
