package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/project-tracker-api/internal/auth"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken          = errors.New("username already exists")
	ErrEmailTaken             = errors.New("email already registered")
	ErrUserConflict           = errors.New("user already exists")
	ErrInvalidUsername        = fmt.Errorf("username must be between %d and %d characters", constants.MinUsernameLength, constants.MaxUsernameLength)
	ErrEmailRequired          = errors.New("email is required")
	ErrPasswordTooShort       = fmt.Errorf("password must be at least %d characters", constants.MinPasswordLength)
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrInvalidSuperuserSecret = errors.New("invalid superuser token")
	ErrSuperuserExists        = errors.New("superuser already exists")
	ErrFailedToHashPassword   = errors.New("failed to hash password")
	ErrRevocationUnavailable  = errors.New("token revocation store unavailable")
)

// AuthService handles registration, login and token resolution.
type AuthService struct {
	users           repository.UserRepository
	hasher          auth.PasswordHasher
	tokens          *auth.TokenService
	revocations     auth.RevocationStore
	superuserSecret string
	logger          *zap.Logger
}

// NewAuthService creates a new AuthService. An empty superuserSecret
// disables superuser bootstrap.
func NewAuthService(
	users repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenService,
	revocations auth.RevocationStore,
	superuserSecret string,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:           users,
		hasher:          hasher,
		tokens:          tokens,
		revocations:     revocations,
		superuserSecret: superuserSecret,
		logger:          logger,
	}
}

// RegisterInput represents the information required to create a user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// TokenResult is an issued access token.
type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Register creates a regular, unsubscribed user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	user, err := s.newUser(ctx, input)
	if err != nil {
		return nil, err
	}
	user.Role = models.RoleUser

	if err := s.create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// CreateSuperuser bootstraps the single superuser account. The presented
// secret must match the configured one and no superuser may exist yet.
func (s *AuthService) CreateSuperuser(ctx context.Context, presentedSecret string, input RegisterInput) (*models.User, error) {
	if s.superuserSecret == "" ||
		subtle.ConstantTimeCompare([]byte(presentedSecret), []byte(s.superuserSecret)) != 1 {
		s.logger.Warn("superuser bootstrap rejected: bad secret")
		return nil, ErrInvalidSuperuserSecret
	}

	exists, err := s.users.SuperuserExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for superuser: %w", err)
	}
	if exists {
		return nil, ErrSuperuserExists
	}

	user, err := s.newUser(ctx, input)
	if err != nil {
		return nil, err
	}
	user.Role = models.RoleSuperuser
	user.IsSubscribed = true
	user.SubscriptionEndsAt = nil

	if err := s.users.CreateSuperuser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrSuperuserExists):
			return nil, ErrSuperuserExists
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// Lost a race on the single-superuser index or a username/email.
			if exists, checkErr := s.users.SuperuserExists(ctx); checkErr == nil && exists {
				return nil, ErrSuperuserExists
			}
			return nil, ErrUserConflict
		}
		return nil, fmt.Errorf("failed to create superuser: %w", err)
	}

	s.logger.Info("superuser created", zap.Uint64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: wrong password", zap.Uint64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Info("login failed: inactive account", zap.Uint64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &TokenResult{
		AccessToken: token,
		TokenType:   constants.TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate resolves a bearer token to the stored user. Any failure
// reads as ErrInvalidToken so callers cannot tell why a token was refused.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *auth.Identity, error) {
	identity, err := s.tokens.Validate(token)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	revoked, err := s.revocations.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.users.FindByUsername(ctx, identity.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, ErrInvalidToken
	}

	return user, identity, nil
}

// Logout revokes the token identified by tokenID until it would have expired.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, tokenID, ttl); err != nil {
		s.logger.Error("token revocation failed", zap.String("token_id", tokenID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return nil
}

func (s *AuthService) newUser(ctx context.Context, input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if n := utf8.RuneCountInString(username); n < constants.MinUsernameLength || n > constants.MaxUsernameLength {
		return nil, ErrInvalidUsername
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	return &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}, nil
}

func (s *AuthService) create(ctx context.Context, user *models.User) error {
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
