// Package testutil provides an in-memory store and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens a migrated in-memory SQLite database that is closed when
// the test ends.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to ":memory:" is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// UserOption customises a fixture user.
type UserOption func(*models.User)

// WithRole sets the user's role.
func WithRole(role models.Role) UserOption {
	return func(u *models.User) { u.Role = role }
}

// SubscribedUntil gives the user a subscription ending at end.
func SubscribedUntil(end time.Time) UserOption {
	return func(u *models.User) {
		u.IsSubscribed = true
		u.SubscriptionEndsAt = &end
	}
}

// Subscribed gives the user a subscription ending a day from now.
func Subscribed() UserOption {
	return SubscribedUntil(time.Now().Add(24 * time.Hour))
}

// WithPasswordHash stores hash as the user's password hash.
func WithPasswordHash(hash string) UserOption {
	return func(u *models.User) { u.PasswordHash = hash }
}

// CreateUser inserts a user named username with email username@example.com.
func CreateUser(t *testing.T, db *gorm.DB, username string, opts ...UserOption) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", strings.ToLower(username)),
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProject inserts a project owned by ownerID.
func CreateProject(t *testing.T, db *gorm.DB, ownerID uint64, title string) *models.Project {
	t.Helper()

	project := &models.Project{
		Title:       title,
		Description: title + " description",
		OwnerID:     ownerID,
	}
	require.NoError(t, db.Omit("Owner", "Participants", "Tasks").Create(project).Error)
	return project
}

// AddParticipant adds userID to the project's participants.
func AddParticipant(t *testing.T, db *gorm.DB, projectID, userID uint64) {
	t.Helper()
	require.NoError(t, db.Create(&models.ProjectParticipant{ProjectID: projectID, UserID: userID}).Error)
}

// CreateTask inserts a task into the project.
func CreateTask(t *testing.T, db *gorm.DB, projectID uint64, title string, completed bool) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:       title,
		Description: title + " description",
		ProjectID:   projectID,
	}
	require.NoError(t, db.Create(task).Error)
	if completed {
		require.NoError(t, db.Model(task).Update("is_completed", true).Error)
		task.IsCompleted = true
	}
	return task
}
