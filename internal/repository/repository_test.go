package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/testutil"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

func TestUserRepository_Lookups(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice")

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	found, err = repo.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.SuperuserExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	testutil.CreateUser(t, db, "root", testutil.WithRole(models.RoleSuperuser))
	exists, err = repo.SuperuserExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_SingleSuperuser(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	root := &models.User{Username: "root", Email: "root@example.com", PasswordHash: "x", Role: models.RoleSuperuser, IsActive: true}
	require.NoError(t, repo.CreateSuperuser(ctx, root))
	assert.NotZero(t, root.ID)

	second := &models.User{Username: "root2", Email: "root2@example.com", PasswordHash: "x", Role: models.RoleSuperuser, IsActive: true}
	assert.ErrorIs(t, repo.CreateSuperuser(ctx, second), ErrSuperuserExists)

	// The partial unique index rejects a second superuser written around the check.
	err := db.Create(&models.User{Username: "root3", Email: "root3@example.com", PasswordHash: "x", Role: models.RoleSuperuser, IsActive: true}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Ordinary roles are unaffected by the index.
	testutil.CreateUser(t, db, "admin1", testutil.WithRole(models.RoleAdmin))
	testutil.CreateUser(t, db, "admin2", testutil.WithRole(models.RoleAdmin))
}

func TestUserRepository_ListAndUpdate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, name := range []string{"u1", "u2", "u3"} {
		testutil.CreateUser(t, db, name)
	}

	users, total, err := repo.List(ctx, utils.NewPaginationParams(2, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 1)
	assert.Equal(t, "u3", users[0].Username)

	require.NoError(t, repo.UpdateRole(ctx, users[0].ID, models.RoleAdmin))
	updated, err := repo.FindByID(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	assert.ErrorIs(t, repo.UpdateRole(ctx, 999, models.RoleAdmin), gorm.ErrRecordNotFound)

	end := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	updated.IsSubscribed = true
	updated.SubscriptionEndsAt = &end
	require.NoError(t, repo.UpdateSubscription(ctx, updated))

	updated.IsSubscribed = false
	updated.SubscriptionEndsAt = nil
	require.NoError(t, repo.UpdateSubscription(ctx, updated))

	reloaded, err := repo.FindByID(ctx, updated.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsSubscribed)
	assert.Nil(t, reloaded.SubscriptionEndsAt)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	other := testutil.CreateUser(t, db, "other")
	owned := testutil.CreateProject(t, db, owner.ID, "owned")
	foreign := testutil.CreateProject(t, db, other.ID, "foreign")
	testutil.CreateTask(t, db, owned.ID, "t1", false)
	keep := testutil.CreateTask(t, db, foreign.ID, "t2", false)
	testutil.AddParticipant(t, db, owned.ID, other.ID)
	testutil.AddParticipant(t, db, foreign.ID, owner.ID)
	require.NoError(t, db.Create(&models.SubscriptionPayment{
		UserID: owner.ID, Plan: "monthly", Amount: decimal.RequireFromString("9.99"), Status: models.PaymentStatusAccepted,
	}).Error)

	require.NoError(t, repo.Delete(ctx, owner.ID))

	var count int64
	db.Model(&models.Project{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&models.Task{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&models.ProjectParticipant{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.SubscriptionPayment{}).Count(&count)
	assert.Equal(t, int64(0), count)

	_, err := NewTaskRepository(db).FindByID(ctx, keep.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, owner.ID), gorm.ErrRecordNotFound)
}

func TestProjectRepository_Membership(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	testutil.CreateUser(t, db, "bobby_tables")

	project := &models.Project{Title: "Roadmap", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, project))
	other := testutil.CreateProject(t, db, carol.ID, "elsewhere")

	ok, err := repo.IsParticipant(ctx, project.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.AddParticipant(ctx, project.ID, bob.ID))
	ok, err = repo.IsParticipant(ctx, project.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	participants, err := repo.ListParticipants(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "bob", participants[0].Username)

	candidates, err := repo.SearchCandidates(ctx, project, "", utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Username
	}
	assert.Equal(t, []string{"bobby_tables", "carol"}, names)

	candidates, err = repo.SearchCandidates(ctx, project, "BOB", utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "bobby_tables", candidates[0].Username)

	candidates, err = repo.SearchCandidates(ctx, project, "y_t", utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Len(t, candidates, 1)

	listed, total, err := repo.ListForUser(ctx, bob.ID, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, project.ID, listed[0].ID)

	testutil.AddParticipant(t, db, other.ID, owner.ID)
	_, total, err = repo.ListForUser(ctx, owner.ID, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestProjectRepository_UpdateDeleteAndCounts(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	bob := testutil.CreateUser(t, db, "bob")
	project := testutil.CreateProject(t, db, owner.ID, "p")

	total, completed, err := repo.CountTasks(ctx, project.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, completed)

	testutil.CreateTask(t, db, project.ID, "a", true)
	testutil.CreateTask(t, db, project.ID, "b", false)
	testutil.CreateTask(t, db, project.ID, "c", false)
	testutil.AddParticipant(t, db, project.ID, bob.ID)

	total, completed, err = repo.CountTasks(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), completed)

	project.Title = "renamed"
	project.Description = ""
	require.NoError(t, repo.Update(ctx, project))
	reloaded, err := repo.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", reloaded.Title)
	assert.Empty(t, reloaded.Description)

	require.NoError(t, repo.Delete(ctx, project.ID))
	_, err = repo.FindByID(ctx, project.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	db.Model(&models.Task{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.ProjectParticipant{}).Count(&count)
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.Delete(ctx, project.ID), gorm.ErrRecordNotFound)
}

func TestTaskRepository_CRUD(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner")
	project := testutil.CreateProject(t, db, owner.ID, "p")

	task := &models.Task{Title: "first", ProjectID: project.ID}
	require.NoError(t, repo.Create(ctx, task))
	require.NoError(t, repo.Create(ctx, &models.Task{Title: "second", ProjectID: project.ID}))

	tasks, total, err := repo.ListByProject(ctx, project.ID, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "first", tasks[0].Title)

	task.IsCompleted = true
	require.NoError(t, repo.Update(ctx, task))
	got, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)

	require.NoError(t, repo.Delete(ctx, task.ID))
	assert.ErrorIs(t, repo.Delete(ctx, task.ID), gorm.ErrRecordNotFound)
}

func TestPaymentRepository_ListByUser(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "payer")
	other := testutil.CreateUser(t, db, "other")

	for i, status := range []models.PaymentStatus{models.PaymentStatusDeclined, models.PaymentStatusAccepted} {
		require.NoError(t, repo.Create(ctx, &models.SubscriptionPayment{
			UserID:    user.ID,
			Plan:      "monthly",
			Amount:    decimal.RequireFromString("9.99"),
			Status:    status,
			Reference: string(rune('a' + i)),
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.SubscriptionPayment{
		UserID: other.ID, Plan: "yearly", Amount: decimal.RequireFromString("99.99"), Status: models.PaymentStatusAccepted,
	}))

	payments, total, err := repo.ListByUser(ctx, user.ID, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, payments, 2)
	assert.Equal(t, models.PaymentStatusAccepted, payments[0].Status)
	assert.True(t, payments[1].Amount.Equal(decimal.RequireFromString("9.99")))
}
