package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskService handles task business logic
type TaskService struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	access   projectAccess
	logger   *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(tasks repository.TaskRepository, projects repository.ProjectRepository, now func() time.Time, logger *zap.Logger) *TaskService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		access:   projectAccess{projects: projects, now: now},
		logger:   logger,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	Title       string
	Description string
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title       *string
	Description *string
}

// CreateTask adds a task to a project the actor can edit
func (s *TaskService) CreateTask(ctx context.Context, actor *models.User, input CreateTaskInput) (*models.Task, error) {
	project, err := s.findProject(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.access.authorize(ctx, actor, project, policy.ResourceTask, policy.ActionCreate); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		ProjectID:   project.ID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// GetTask returns a task the actor may read
func (s *TaskService) GetTask(ctx context.Context, actor *models.User, id uint64) (*models.Task, error) {
	return s.load(ctx, actor, id, policy.ActionRead)
}

// UpdateTask changes title and/or description
func (s *TaskService) UpdateTask(ctx context.Context, actor *models.User, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.load(ctx, actor, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// SetCompleted marks a task done or not done. Only the project owner may do this.
func (s *TaskService) SetCompleted(ctx context.Context, actor *models.User, id uint64, completed bool) (*models.Task, error) {
	task, err := s.load(ctx, actor, id, policy.ActionSetStatus)
	if err != nil {
		return nil, err
	}

	task.IsCompleted = completed
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// DeleteTask deletes a task. Only the project owner may do this.
func (s *TaskService) DeleteTask(ctx context.Context, actor *models.User, id uint64) error {
	task, err := s.load(ctx, actor, id, policy.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("task deleted", zap.Uint64("task_id", task.ID), zap.Uint64("actor_id", actor.ID))
	return nil
}

func (s *TaskService) load(ctx context.Context, actor *models.User, id uint64, action policy.Action) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.findProject(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.access.authorize(ctx, actor, project, policy.ResourceTask, action); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) findProject(ctx context.Context, id uint64) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
