package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/tasks/internal/model"
)

// TaskService is what the shells talk to. Every mutating operation changes
// the user's collection first and then rewrites the whole repository. When
// the write fails the change stays in memory and the returned error wraps
// ErrSaveFailed.
type TaskService struct {
	user   *model.User
	repo   model.TaskRepository
	logger lgr.L
}

// New accepts a nil repo: tasks are then kept in memory only.
func New(user *model.User, repo model.TaskRepository, logger lgr.L) (*TaskService, error) {
	if user == nil {
		return nil, ErrUserNil
	}
	if logger == nil {
		logger = lgr.NoOp
	}
	return &TaskService{user: user, repo: repo, logger: logger}, nil
}

func (s *TaskService) Persistent() bool {
	return s.repo != nil
}

func (s *TaskService) Username() string {
	return s.user.Username()
}

// Load replaces the collection with the repository content. A missing file
// is the first run and leaves the collection empty without an error.
func (s *TaskService) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		s.user.SetTasks(nil)
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Logf("[INFO] no saved tasks yet, starting empty")
			return nil
		}
		return fmt.Errorf("could not load tasks: %w", err)
	}

	s.user.SetTasks(tasks)
	s.logger.Logf("[INFO] loaded %d tasks for %s", len(tasks), s.user.Username())
	return nil
}

func (s *TaskService) Save(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.SaveTasks(ctx, s.user.Tasks()); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

func (s *TaskService) AddTask(ctx context.Context, task model.Task) (model.TaskEntry, error) {
	pos := s.user.AddTask(task)
	entry := model.TaskEntry{Position: pos}
	entry.Task, _ = s.user.Task(pos)
	s.logger.Logf("[DEBUG] added %s task %s at %d", entry.Task.Kind, entry.Task.ID, pos)
	return entry, s.Save(ctx)
}

func (s *TaskService) RemoveTask(ctx context.Context, pos int) (model.Task, error) {
	removed, err := s.user.RemoveTask(pos)
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Logf("[DEBUG] removed task %s from %d", removed.ID, pos)
	return removed, s.Save(ctx)
}

func (s *TaskService) CompleteTask(ctx context.Context, pos int) (model.Task, error) {
	done, err := s.user.MarkTaskAsCompleted(pos)
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Logf("[DEBUG] completed task %s at %d", done.ID, pos)
	return done, s.Save(ctx)
}

func (s *TaskService) RemoveTaskByID(ctx context.Context, id string) (model.Task, error) {
	removed, err := s.user.RemoveTaskByID(id)
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Logf("[DEBUG] removed task %s", id)
	return removed, s.Save(ctx)
}

func (s *TaskService) CompleteTaskByID(ctx context.Context, id string) (model.Task, error) {
	done, err := s.user.MarkTaskAsCompletedByID(id)
	if err != nil {
		return model.Task{}, err
	}
	s.logger.Logf("[DEBUG] completed task %s", id)
	return done, s.Save(ctx)
}

func (s *TaskService) AllTasks() []model.TaskEntry {
	return s.user.AllTasks()
}

func (s *TaskService) TasksByStatus(completed bool) []model.TaskEntry {
	return s.user.TasksByStatus(completed)
}
