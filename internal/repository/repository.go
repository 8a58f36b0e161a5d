package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// ErrSuperuserExists is returned by CreateSuperuser when the role is already taken.
var ErrSuperuserExists = errors.New("superuser already exists")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username, ignoring case
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByEmail finds a user by email, ignoring case
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// SuperuserExists reports whether any user holds the superuser role
	SuperuserExists(ctx context.Context) (bool, error)

	// CreateSuperuser creates user unless a superuser already exists
	CreateSuperuser(ctx context.Context, user *models.User) error

	// List returns a page of users ordered by ID
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)

	// UpdateRole changes the role of a user
	UpdateRole(ctx context.Context, id uint64, role models.Role) error

	// UpdateSubscription persists the subscription flag and end date of user
	UpdateSubscription(ctx context.Context, user *models.User) error

	// Delete removes a user together with owned projects, their tasks and
	// participant rows, and the user's payment history
	Delete(ctx context.Context, id uint64) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// ListForUser returns projects the user owns or participates in
	ListForUser(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.Project, int64, error)

	// Update saves title and description of a project
	Update(ctx context.Context, project *models.Project) error

	// Delete removes a project with its tasks and participant rows
	Delete(ctx context.Context, id uint64) error

	// IsParticipant reports whether userID was added to the project
	IsParticipant(ctx context.Context, projectID, userID uint64) (bool, error)

	// AddParticipant grants userID access to the project
	AddParticipant(ctx context.Context, projectID, userID uint64) error

	// ListParticipants returns the project's participants ordered by username
	ListParticipants(ctx context.Context, projectID uint64) ([]models.User, error)

	// SearchCandidates returns users that could be added to the project
	SearchCandidates(ctx context.Context, project *models.Project, query string, params utils.PaginationParams) ([]models.User, error)

	// CountTasks returns total and completed task counts for the project
	CountTasks(ctx context.Context, projectID uint64) (total int64, completed int64, err error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// ListByProject returns a page of tasks in creation order
	ListByProject(ctx context.Context, projectID uint64, params utils.PaginationParams) ([]models.Task, int64, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// Delete deletes a task
	Delete(ctx context.Context, id uint64) error
}

// PaymentRepository defines the interface for subscription payment records
type PaymentRepository interface {
	// Create records a payment attempt
	Create(ctx context.Context, payment *models.SubscriptionPayment) error

	// ListByUser returns a page of a user's payments, newest first
	ListByUser(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.SubscriptionPayment, int64, error)
}
