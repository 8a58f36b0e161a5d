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
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrTitleRequired      = errors.New("title is required")
	ErrAlreadyParticipant = errors.New("user is already a member of this project")
)

// ProjectService provides business logic for projects and their participants.
type ProjectService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	tasks    repository.TaskRepository
	access   projectAccess
	logger   *zap.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projects repository.ProjectRepository,
	users repository.UserRepository,
	tasks repository.TaskRepository,
	now func() time.Time,
	logger *zap.Logger,
) *ProjectService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projects: projects,
		users:    users,
		tasks:    tasks,
		access:   projectAccess{projects: projects, now: now},
		logger:   logger,
	}
}

// CreateProjectInput represents parameters to create a project.
type CreateProjectInput struct {
	Title       string
	Description string
}

// UpdateProjectInput holds the fields to change; nil fields are left as is.
type UpdateProjectInput struct {
	Title       *string
	Description *string
}

// Progress summarises task completion within a project.
type Progress struct {
	ProjectID uint64
	Total     int64
	Completed int64
	Percent   float64
}

// CreateProject creates a project owned by actor.
func (s *ProjectService) CreateProject(ctx context.Context, actor *models.User, input CreateProjectInput) (*models.Project, error) {
	if err := policy.Authorize(policy.ResourceProject, policy.ActionCreate, policy.Facts{Actor: actor, Now: s.access.now()}); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	project := &models.Project{
		Title:       title,
		Description: input.Description,
		OwnerID:     actor.ID,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// ListProjects returns projects the actor owns or participates in.
func (s *ProjectService) ListProjects(ctx context.Context, actor *models.User, params utils.PaginationParams) ([]models.Project, int64, error) {
	if err := policy.Authorize(policy.ResourceProject, policy.ActionList, policy.Facts{Actor: actor, Now: s.access.now()}); err != nil {
		return nil, 0, err
	}

	projects, total, err := s.projects.ListForUser(ctx, actor.ID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns a project the actor may read.
func (s *ProjectService) GetProject(ctx context.Context, actor *models.User, id uint64) (*models.Project, error) {
	return s.load(ctx, actor, id, policy.ActionRead)
}

// UpdateProject changes title and/or description.
func (s *ProjectService) UpdateProject(ctx context.Context, actor *models.User, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.load(ctx, actor, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		project.Title = title
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// DeleteProject removes a project with its tasks.
func (s *ProjectService) DeleteProject(ctx context.Context, actor *models.User, id uint64) error {
	project, err := s.load(ctx, actor, id, policy.ActionDelete)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, project.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Info("project deleted", zap.Uint64("project_id", project.ID), zap.Uint64("actor_id", actor.ID))
	return nil
}

// AddParticipant grants userID access to the project and returns the
// updated participant list.
func (s *ProjectService) AddParticipant(ctx context.Context, actor *models.User, id, userID uint64) ([]models.User, error) {
	project, err := s.load(ctx, actor, id, policy.ActionAddParticipant)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if userID == project.OwnerID {
		return nil, ErrAlreadyParticipant
	}
	already, err := s.projects.IsParticipant(ctx, project.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if already {
		return nil, ErrAlreadyParticipant
	}

	if err := s.projects.AddParticipant(ctx, project.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyParticipant
		}
		return nil, fmt.Errorf("failed to add participant: %w", err)
	}

	s.logger.Info("participant added", zap.Uint64("project_id", project.ID), zap.Uint64("user_id", userID))

	users, err := s.projects.ListParticipants(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return users, nil
}

// ListParticipants returns the users added to the project.
func (s *ProjectService) ListParticipants(ctx context.Context, actor *models.User, id uint64) ([]models.User, error) {
	project, err := s.load(ctx, actor, id, policy.ActionListParticipants)
	if err != nil {
		return nil, err
	}

	users, err := s.projects.ListParticipants(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return users, nil
}

// SearchCandidates finds users matching query who could be added to the project.
func (s *ProjectService) SearchCandidates(ctx context.Context, actor *models.User, id uint64, query string, params utils.PaginationParams) ([]models.User, error) {
	project, err := s.load(ctx, actor, id, policy.ActionSearchCandidates)
	if err != nil {
		return nil, err
	}

	users, err := s.projects.SearchCandidates(ctx, project, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// GetProgress computes the share of completed tasks as a percentage. A
// project without tasks is at 0.
func (s *ProjectService) GetProgress(ctx context.Context, actor *models.User, id uint64) (*Progress, error) {
	project, err := s.load(ctx, actor, id, policy.ActionProgress)
	if err != nil {
		return nil, err
	}

	total, completed, err := s.projects.CountTasks(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	progress := &Progress{ProjectID: project.ID, Total: total, Completed: completed}
	if total > 0 {
		progress.Percent = float64(completed) / float64(total) * 100
	}
	return progress, nil
}

// ListTasks returns the project's tasks in creation order.
func (s *ProjectService) ListTasks(ctx context.Context, actor *models.User, id uint64, params utils.PaginationParams) ([]models.Task, int64, error) {
	project, err := s.load(ctx, actor, id, policy.ActionListTasks)
	if err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.tasks.ListByProject(ctx, project.ID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// load fetches project id and checks action against the policy table.
func (s *ProjectService) load(ctx context.Context, actor *models.User, id uint64, action policy.Action) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.access.authorize(ctx, actor, project, policy.ResourceProject, action); err != nil {
		return nil, err
	}
	return project, nil
}
