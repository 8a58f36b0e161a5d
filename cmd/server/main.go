package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/auth"
	"github.com/yukikurage/project-tracker-api/internal/cache"
	"github.com/yukikurage/project-tracker-api/internal/config"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/logger"
	"github.com/yukikurage/project-tracker-api/internal/payments"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/router"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/subscription"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Share of simulated charges that are approved.
const paymentApprovalRate = 0.5

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.New(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	lg.Info("starting project tracker API", zap.Stringer("config", cfg))

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, lg)
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		lg.Fatal("failed to run migrations", zap.Error(err))
	}

	// Token revocation lives in Redis when it is reachable
	var revocations auth.RevocationStore
	var redisClient *cache.Client
	if cfg.RedisAddr != "" {
		redisClient = cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisClient.Ping(pingCtx)
		cancel()
		if err != nil {
			lg.Warn("redis unavailable, revoked tokens are kept in memory", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			revocations = auth.NewRedisRevocationStore(redisClient)
		}
	}
	if revocations == nil {
		revocations = auth.NewMemoryRevocationStore()
	}
	defer func() { _ = redisClient.Close() }()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL())
	if err != nil {
		lg.Fatal("failed to initialize token service", zap.Error(err))
	}

	catalog := subscription.DefaultCatalog()
	machine := subscription.NewMachine(catalog, time.Now)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Initialize services
	deps := router.Deps{
		DB:            db,
		Cache:         redisClient,
		Logger:        lg,
		Catalog:       catalog,
		Auth:          services.NewAuthService(userRepo, auth.NewBcryptHasher(bcrypt.DefaultCost), tokens, revocations, cfg.SuperuserSecret, lg),
		Users:         services.NewUserService(userRepo, time.Now, lg),
		Projects:      services.NewProjectService(projectRepo, userRepo, taskRepo, time.Now, lg),
		Tasks:         services.NewTaskService(taskRepo, projectRepo, time.Now, lg),
		Subscriptions: services.NewSubscriptionService(userRepo, paymentRepo, machine, payments.NewSimulatedProvider(paymentApprovalRate), lg),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		lg.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
