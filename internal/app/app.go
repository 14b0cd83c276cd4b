package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"servicesbladi_backend/database"
	"servicesbladi_backend/internal/auth"
	"servicesbladi_backend/internal/config"
	"servicesbladi_backend/internal/email"
	"servicesbladi_backend/internal/handlers"
	"servicesbladi_backend/internal/logger"
	"servicesbladi_backend/internal/models"
	"servicesbladi_backend/internal/repositories"
	"servicesbladi_backend/internal/routes"
	"servicesbladi_backend/internal/services"
	"servicesbladi_backend/internal/storage"
	"servicesbladi_backend/ws"
)

// App owns the wired application and its lifecycle.
type App struct {
	cfg    *config.Config
	db     *gorm.DB
	server *http.Server
	email  email.Provider
}

func New() (*App, error) {
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	store, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return nil, err
	}

	emailProvider := email.NewProviderFromConfig(cfg)

	manager := ws.NewManager()
	go manager.Run()

	container := services.NewServiceContainer(db, store, emailProvider, manager)
	appHandlers := handlers.NewAppHandlers(container)
	wsHandler := ws.NewHandler(manager, container.Message, repositories.NewRequestRepository(db))

	if err := seedFirstAdmin(db, cfg); err != nil {
		return nil, err
	}

	router := routes.Setup(db, appHandlers, wsHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &App{cfg: cfg, db: db, server: server, email: emailProvider}, nil
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", a.server.Addr, "env", a.cfg.Server.Env)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := a.email.Close(); err != nil {
		logger.Warn("email provider close failed", "error", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}

// seedFirstAdmin creates the bootstrap administrator account when no
// admin exists yet. Admin accounts cannot be self-registered.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
		return nil
	}

	userRepo := repositories.NewUserRepository(db)
	count, err := userRepo.CountByRole(models.UserRoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.FirstAdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        cfg.FirstAdminEmail,
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
		Name:         "Admin",
		FirstName:    "ServicesBLADI",
		Language:     "fr",
		IsActive:     true,
	}
	if err := userRepo.Create(admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	logger.Info("first admin account created", "email", cfg.FirstAdminEmail)
	return nil
}
