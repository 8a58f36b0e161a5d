package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/auth"
	"github.com/yukikurage/project-tracker-api/internal/payments"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/subscription"
	"github.com/yukikurage/project-tracker-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSuperuserSecret = "let-me-in"

type testEnv struct {
	db            *gorm.DB
	users         repository.UserRepository
	projects      repository.ProjectRepository
	tasks         repository.TaskRepository
	paymentRepo   repository.PaymentRepository
	provider      *payments.ScriptedProvider
	now           time.Time
	auth          *AuthService
	userSvc       *UserService
	projectSvc    *ProjectService
	taskSvc       *TaskService
	subscriptions *SubscriptionService
}

func newTestEnv(t *testing.T, outcomes ...bool) *testEnv {
	t.Helper()

	db := testutil.OpenTestDB(t)
	env := &testEnv{
		db:          db,
		users:       repository.NewUserRepository(db),
		projects:    repository.NewProjectRepository(db),
		tasks:       repository.NewTaskRepository(db),
		paymentRepo: repository.NewPaymentRepository(db),
		provider:    payments.NewScriptedProvider(outcomes...),
		now:         time.Now().UTC(),
	}
	clock := func() time.Time { return env.now }

	tokens, err := auth.NewTokenService("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	env.auth = NewAuthService(env.users, auth.NewBcryptHasher(bcrypt.MinCost), tokens, auth.NewMemoryRevocationStore(), testSuperuserSecret, nil)
	env.userSvc = NewUserService(env.users, clock, nil)
	env.projectSvc = NewProjectService(env.projects, env.users, env.tasks, clock, nil)
	env.taskSvc = NewTaskService(env.tasks, env.projects, clock, nil)
	env.subscriptions = NewSubscriptionService(env.users, env.paymentRepo, subscription.NewMachine(subscription.DefaultCatalog(), clock), env.provider, nil)
	return env
}
