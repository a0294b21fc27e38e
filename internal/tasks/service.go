package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
	"github.com/iammorganparry/clive/apps/tasks/internal/store"
)

var (
	ErrEmptyTask = errors.New("task cannot be empty")
	ErrInvalidID = errors.New("invalid task id")
)

// Service applies one operation per call to the stored task list: it loads
// the full list, validates, mutates a copy, and saves the full list back.
//
// Task ids are positions in the list at the time of the call. Deleting a
// task shifts every later task down by one. Unless serializeWrites is set,
// concurrent mutations race and the last save wins.
type Service struct {
	store           store.Store
	serializeWrites bool
	mu              sync.RWMutex
	logger          *slog.Logger
}

// NewService creates a task service over st.
func NewService(st store.Store, serializeWrites bool, logger *slog.Logger) *Service {
	return &Service{
		store:           st,
		serializeWrites: serializeWrites,
		logger:          logger,
	}
}

// List returns the current task list. Placeholder lists are returned as is.
func (s *Service) List(ctx context.Context) (models.TaskList, error) {
	defer s.rlock()()

	return s.load(ctx)
}

// Create appends the trimmed text and returns it.
func (s *Service) Create(ctx context.Context, text string) (string, error) {
	defer s.lock()()

	tasks, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTask
	}

	tasks = append(tasks, text)
	if err := s.save(ctx, tasks); err != nil {
		return "", err
	}

	s.logger.Debug("task created", "id", len(tasks)-1)
	return text, nil
}

// Replace overwrites the task at id with the trimmed text. The id is checked
// before the text.
func (s *Service) Replace(ctx context.Context, id int, text string) (string, error) {
	defer s.lock()()

	tasks, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if !inBounds(tasks, id) {
		return "", ErrInvalidID
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTask
	}

	tasks[id] = text
	if err := s.save(ctx, tasks); err != nil {
		return "", err
	}

	s.logger.Debug("task replaced", "id", id)
	return text, nil
}

// Delete removes the task at id and returns it as stored.
func (s *Service) Delete(ctx context.Context, id int) (any, error) {
	defer s.lock()()

	tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if !inBounds(tasks, id) {
		return nil, ErrInvalidID
	}

	removed := tasks[id]
	tasks = slices.Delete(tasks, id, id+1)
	if err := s.save(ctx, tasks); err != nil {
		return nil, err
	}

	s.logger.Debug("task deleted", "id", id, "remaining", len(tasks))
	return removed, nil
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) load(ctx context.Context) (models.TaskList, error) {
	res, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if res.IsPlaceholder() {
		s.logger.Warn("task storage unreadable, serving placeholder", "sentinel", res.Sentinel)
	}
	return res.Tasks, nil
}

func (s *Service) save(ctx context.Context, tasks models.TaskList) error {
	if err := s.store.Save(ctx, tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// lock holds the write mutex when writes are serialized and returns its
// release func.
func (s *Service) lock() func() {
	if !s.serializeWrites {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// rlock keeps reads out of an in-progress save when writes are serialized.
func (s *Service) rlock() func() {
	if !s.serializeWrites {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func inBounds(tasks models.TaskList, id int) bool {
	return id >= 0 && id < len(tasks)
}
