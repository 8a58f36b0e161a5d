package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/testutil"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

func strPtr(s string) *string { return &s }

func TestProjectService_CreateRequiresActiveSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	free := testutil.CreateUser(t, env.db, "free")
	lapsed := testutil.CreateUser(t, env.db, "lapsed", testutil.SubscribedUntil(env.now.Add(-time.Minute)))
	paid := testutil.CreateUser(t, env.db, "paid", testutil.SubscribedUntil(env.now.Add(time.Hour)))

	_, err := env.projectSvc.CreateProject(ctx, free, CreateProjectInput{Title: "x"})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = env.projectSvc.CreateProject(ctx, lapsed, CreateProjectInput{Title: "x"})
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = env.projectSvc.CreateProject(ctx, paid, CreateProjectInput{Title: "   "})
	assert.ErrorIs(t, err, ErrTitleRequired)

	project, err := env.projectSvc.CreateProject(ctx, paid, CreateProjectInput{Title: " Launch ", Description: "go live"})
	require.NoError(t, err)
	assert.Equal(t, "Launch", project.Title)
	assert.Equal(t, paid.ID, project.OwnerID)
}

func TestProjectService_OwnerOnlyMutations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, env.db, "owner", testutil.SubscribedUntil(env.now.Add(time.Hour)))
	member := testutil.CreateUser(t, env.db, "member", testutil.SubscribedUntil(env.now.Add(time.Hour)))
	stranger := testutil.CreateUser(t, env.db, "stranger", testutil.SubscribedUntil(env.now.Add(time.Hour)))
	project := testutil.CreateProject(t, env.db, owner.ID, "p")
	testutil.AddParticipant(t, env.db, project.ID, member.ID)

	for _, actor := range []*models.User{member, stranger} {
		_, err := env.projectSvc.UpdateProject(ctx, actor, project.ID, UpdateProjectInput{Title: strPtr("hijack")})
		assert.ErrorIs(t, err, policy.ErrForbidden)
		_, err = env.projectSvc.AddParticipant(ctx, actor, project.ID, stranger.ID)
		assert.ErrorIs(t, err, policy.ErrForbidden)
		assert.ErrorIs(t, env.projectSvc.DeleteProject(ctx, actor, project.ID), policy.ErrForbidden)
	}

	_, err := env.projectSvc.UpdateProject(ctx, owner, 999, UpdateProjectInput{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = env.projectSvc.UpdateProject(ctx, owner, project.ID, UpdateProjectInput{Title: strPtr("")})
	assert.ErrorIs(t, err, ErrTitleRequired)

	updated, err := env.projectSvc.UpdateProject(ctx, owner, project.ID, UpdateProjectInput{Description: strPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "p", updated.Title)
	assert.Equal(t, "new", updated.Description)

	require.NoError(t, env.projectSvc.DeleteProject(ctx, owner, project.ID))
	_, err = env.projectSvc.GetProject(ctx, owner, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_ReadAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, env.db, "owner")
	member := testutil.CreateUser(t, env.db, "member")
	subscriber := testutil.CreateUser(t, env.db, "subscriber", testutil.SubscribedUntil(env.now.Add(time.Hour)))
	stranger := testutil.CreateUser(t, env.db, "stranger")
	project := testutil.CreateProject(t, env.db, owner.ID, "p")
	testutil.AddParticipant(t, env.db, project.ID, member.ID)

	for _, actor := range []*models.User{owner, member, subscriber} {
		_, err := env.projectSvc.GetProject(ctx, actor, project.ID)
		assert.NoError(t, err, actor.Username)
		_, err = env.projectSvc.ListParticipants(ctx, actor, project.ID)
		assert.NoError(t, err, actor.Username)
	}

	_, err := env.projectSvc.GetProject(ctx, stranger, project.ID)
	assert.ErrorIs(t, err, policy.ErrForbidden)
	_, _, err = env.projectSvc.ListTasks(ctx, stranger, project.ID, utils.NewPaginationParams(1, 20))
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = env.projectSvc.SearchCandidates(ctx, subscriber, project.ID, "", utils.NewPaginationParams(1, 20))
	assert.ErrorIs(t, err, policy.ErrForbidden)
	candidates, err := env.projectSvc.SearchCandidates(ctx, owner, project.ID, "s", utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Len(t, candidates, 2)

	listed, total, err := env.projectSvc.ListProjects(ctx, member, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, project.ID, listed[0].ID)

	_, total, err = env.projectSvc.ListProjects(ctx, subscriber, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestProjectService_AddParticipant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, env.db, "owner", testutil.SubscribedUntil(env.now.Add(time.Hour)))
	bob := testutil.CreateUser(t, env.db, "bob")
	project := testutil.CreateProject(t, env.db, owner.ID, "p")

	_, err := env.projectSvc.AddParticipant(ctx, owner, project.ID, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.projectSvc.AddParticipant(ctx, owner, project.ID, owner.ID)
	assert.ErrorIs(t, err, ErrAlreadyParticipant)

	participants, err := env.projectSvc.AddParticipant(ctx, owner, project.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, bob.ID, participants[0].ID)

	_, err = env.projectSvc.AddParticipant(ctx, owner, project.ID, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyParticipant)

	_, err = env.projectSvc.AddParticipant(ctx, owner, 999, bob.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_ProgressPercent(t *testing.T) {
	tests := []struct {
		name      string
		completed []bool
		want      float64
	}{
		{"no tasks", nil, 0},
		{"one of three done", []bool{true, false, false}, 100.0 / 3},
		{"none done", []bool{false, false}, 0},
		{"all done", []bool{true, true, true}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			owner := testutil.CreateUser(t, env.db, "owner")
			project := testutil.CreateProject(t, env.db, owner.ID, "p")
			for i, done := range tt.completed {
				testutil.CreateTask(t, env.db, project.ID, fmt.Sprintf("t%d", i), done)
			}

			progress, err := env.projectSvc.GetProgress(context.Background(), owner, project.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.completed)), progress.Total)
			assert.InDelta(t, tt.want, progress.Percent, 1e-9)
		})
	}
}

func TestProjectService_Progress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := testutil.CreateUser(t, env.db, "owner")
	project := testutil.CreateProject(t, env.db, owner.ID, "p")

	progress, err := env.projectSvc.GetProgress(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, progress.Percent)

	testutil.CreateTask(t, env.db, project.ID, "a", true)
	testutil.CreateTask(t, env.db, project.ID, "b", false)
	testutil.CreateTask(t, env.db, project.ID, "c", false)
	testutil.CreateTask(t, env.db, project.ID, "d", true)

	progress, err = env.projectSvc.GetProgress(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), progress.Total)
	assert.Equal(t, int64(2), progress.Completed)
	assert.InDelta(t, 50.0, progress.Percent, 0.0001)

	tasks, total, err := env.projectSvc.ListTasks(ctx, owner, project.ID, utils.NewPaginationParams(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, "a", tasks[0].Title)
}
