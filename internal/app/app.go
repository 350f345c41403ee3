package app

import (
	"context"
	"errors"
	"fmt"

	"taskhub_backend/database"
	"taskhub_backend/internal/auth"
	"taskhub_backend/internal/config"
	"taskhub_backend/internal/email"
	"taskhub_backend/internal/handlers"
	"taskhub_backend/internal/logger"
	"taskhub_backend/internal/middleware"
	"taskhub_backend/internal/models"
	"taskhub_backend/internal/otp"
	"taskhub_backend/internal/repositories"
	"taskhub_backend/internal/routes"
	"taskhub_backend/internal/services"
	"taskhub_backend/internal/validator"
	"taskhub_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}
	logger.Info("Database connected and migrated")

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router, tokenWorker := SetupRouter(cfg, gormDB)
	tokenWorker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter builds the full HTTP stack plus the background worker.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *workers.TokenWorker) {
	tokens, err := auth.NewTokenService(auth.Config{
		UserSecrets: auth.SecretPair{
			Access:  cfg.JWT.UserAccessSecret,
			Refresh: cfg.JWT.UserRefreshSecret,
		},
		AdminSecrets: auth.SecretPair{
			Access:  cfg.JWT.AdminAccessSecret,
			Refresh: cfg.JWT.AdminRefreshSecret,
		},
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	})
	if err != nil {
		logger.Fatal("Failed to initialize token service", "error", err)
	}

	repos := services.Repositories{
		Users:         repositories.NewUserRepository(gormDB),
		RefreshTokens: repositories.NewRefreshTokenRepository(gormDB),
		Projects:      repositories.NewProjectRepository(gormDB),
		Tasks:         repositories.NewTaskRepository(gormDB),
		Comments:      repositories.NewCommentRepository(gormDB),
	}

	serviceContainer := services.NewServiceContainer(
		repos,
		newOTPStore(cfg),
		tokens,
		newMailer(cfg),
		cfg.OTPTTL(),
	)

	v := validator.New()
	appHandlers := handlers.NewAppHandlers(cfg, v, serviceContainer)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.DBMiddleware(gormDB),
		gin.Recovery(),
	)

	routes.RegisterRoutes(router, appHandlers, tokens)

	worker := workers.NewTokenWorker(repos.RefreshTokens, 0)
	return router, worker
}

// newOTPStore prefers Redis; without an address it falls back to the
// in-process store, which is fine for a single instance.
func newOTPStore(cfg *config.Config) otp.Store {
	if cfg.Redis.Addr == "" {
		logger.Warn("Redis address not configured, using in-memory OTP store")
		return otp.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	logger.Info("OTP store backed by Redis", "addr", cfg.Redis.Addr)
	return otp.NewRedisStore(client)
}

func newMailer(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP host not configured, outgoing mail is mocked")
		return email.NewMockProvider()
	}
	return email.NewSMTPProvider(cfg)
}

// seedFirstAdmin creates the configured admin account when no admin
// exists yet, so a fresh deployment is not locked out.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	ctx := context.Background()
	userRepo := repositories.NewUserRepository(db)

	admins, err := userRepo.CountByRole(ctx, models.UserRoleAdmin)
	if err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:         "Administrator",
		Email:        cfg.Admin.Email,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
		IsVerified:   true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil
		}
		return err
	}
	logger.Info("Seeded first admin user", "email", cfg.Admin.Email)
	return nil
}
