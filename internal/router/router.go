package router

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/project-tracker-api/internal/cache"
	"github.com/yukikurage/project-tracker-api/internal/handlers"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/subscription"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps carries everything the route table needs.
type Deps struct {
	DB      *gorm.DB
	Cache   *cache.Client
	Logger  *zap.Logger
	Catalog subscription.Catalog

	Auth          *services.AuthService
	Users         *services.UserService
	Projects      *services.ProjectService
	Tasks         *services.TaskService
	Subscriptions *services.SubscriptionService
}

// New builds the gin engine with middleware and all API routes.
func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	registerValidators(d.Catalog)

	r := gin.New()
	r.Use(
		middleware.Recovery(d.Logger),
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		middleware.SecurityHeaders(),
	)

	authHandler := handlers.NewAuthHandler(d.Auth, d.Logger)
	userHandler := handlers.NewUserHandler(d.Users, d.Logger)
	projectHandler := handlers.NewProjectHandler(d.Projects, d.Logger)
	taskHandler := handlers.NewTaskHandler(d.Tasks, d.Logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(d.Subscriptions, d.Logger)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Cache)

	requireAuth := middleware.RequireAuth(d.Auth, d.Logger)

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	{
		// Auth routes
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", requireAuth, authHandler.Logout)
			authGroup.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		api.POST("/superuser", authHandler.CreateSuperuser)

		// User routes (protected)
		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", middleware.RequireIDParam("user"), userHandler.GetUser)
			users.PUT("/:id/role", middleware.RequireIDParam("user"), userHandler.UpdateRole)
			users.DELETE("/:id", middleware.RequireIDParam("user"), userHandler.DeleteUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)

			project := projects.Group("/:id", middleware.RequireIDParam("project"))
			{
				project.GET("", projectHandler.GetProject)
				project.PUT("", projectHandler.UpdateProject)
				project.DELETE("", projectHandler.DeleteProject)
				project.POST("/participants", projectHandler.AddParticipant)
				project.GET("/participants", projectHandler.ListParticipants)
				project.GET("/candidates", projectHandler.SearchCandidates)
				project.GET("/progress", projectHandler.GetProgress)
				project.GET("/tasks", projectHandler.ListTasks)
			}
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("", taskHandler.CreateTask)

			task := tasks.Group("/:id", middleware.RequireIDParam("task"))
			{
				task.GET("", taskHandler.GetTask)
				task.PUT("", taskHandler.UpdateTask)
				task.PATCH("/status", taskHandler.UpdateTaskStatus)
				task.DELETE("", taskHandler.DeleteTask)
			}
		}

		// Subscription routes
		subs := api.Group("/subscription")
		{
			subs.GET("/plans", subscriptionHandler.ListPlans)
			subs.POST("/subscribe", requireAuth, subscriptionHandler.Subscribe)
			subs.POST("/unsubscribe", requireAuth, subscriptionHandler.Unsubscribe)
			subs.GET("/status", requireAuth, subscriptionHandler.GetStatus)
			subs.GET("/payments", requireAuth, subscriptionHandler.ListPayments)
		}
	}

	return r
}

// registerValidators adds the "role" and "plan" binding tags.
func registerValidators(catalog subscription.Catalog) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Assignability is checked by the user service after authorization.
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})

	_ = v.RegisterValidation("plan", func(fl validator.FieldLevel) bool {
		_, ok := catalog.Lookup(fl.Field().String())
		return ok
	})
}
