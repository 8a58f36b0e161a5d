package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("role must be one of: user, admin")
	ErrSuperuserProtected = errors.New("the superuser account cannot be modified or deleted")
)

// UserService provides user administration.
type UserService struct {
	users  repository.UserRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, now func() time.Time, logger *zap.Logger) *UserService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, now: now, logger: logger}
}

// ListUsers returns a page of users.
func (s *UserService) ListUsers(ctx context.Context, actor *models.User, params utils.PaginationParams) ([]models.User, int64, error) {
	if err := policy.Authorize(policy.ResourceUser, policy.ActionList, policy.Facts{Actor: actor, Now: s.now()}); err != nil {
		return nil, 0, err
	}

	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// GetUser returns a single user.
func (s *UserService) GetUser(ctx context.Context, actor *models.User, id uint64) (*models.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(policy.ResourceUser, policy.ActionRead, s.facts(actor, user)); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole changes the role of user id. Only user and admin may be
// assigned, and the superuser's role is fixed.
func (s *UserService) UpdateRole(ctx context.Context, actor *models.User, id uint64, role models.Role) (*models.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(policy.ResourceUser, policy.ActionUpdateRole, s.facts(actor, user)); err != nil {
		return nil, err
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, ErrInvalidRole
	}
	if user.Role == models.RoleSuperuser {
		return nil, ErrSuperuserProtected
	}

	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("user role changed",
		zap.Uint64("actor_id", actor.ID),
		zap.Uint64("user_id", user.ID),
		zap.String("from", string(user.Role)),
		zap.String("to", string(role)),
	)
	user.Role = role
	return user, nil
}

// DeleteUser removes user id with everything they own. Admins may delete
// anyone but the superuser; other users may delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor *models.User, id uint64) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(policy.ResourceUser, policy.ActionDelete, s.facts(actor, user)); err != nil {
		return err
	}
	if user.Role == models.RoleSuperuser {
		return ErrSuperuserProtected
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("user deleted", zap.Uint64("actor_id", actor.ID), zap.Uint64("user_id", user.ID))
	return nil
}

func (s *UserService) find(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *UserService) facts(actor, subject *models.User) policy.Facts {
	return policy.Facts{Actor: actor, Now: s.now(), SubjectUserID: subject.ID}
}
