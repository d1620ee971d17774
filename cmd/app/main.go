package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bukohub/gym-fusion-training-sub001/internal/class"
	"github.com/bukohub/gym-fusion-training-sub001/internal/config"
	"github.com/bukohub/gym-fusion-training-sub001/internal/db"
	"github.com/bukohub/gym-fusion-training-sub001/internal/email"
	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
	"github.com/bukohub/gym-fusion-training-sub001/internal/membership"
	"github.com/bukohub/gym-fusion-training-sub001/internal/payment"
	"github.com/bukohub/gym-fusion-training-sub001/internal/plan"
	"github.com/bukohub/gym-fusion-training-sub001/internal/product"
	"github.com/bukohub/gym-fusion-training-sub001/internal/scheduler"
	"github.com/bukohub/gym-fusion-training-sub001/internal/server"
	"github.com/bukohub/gym-fusion-training-sub001/internal/user"
)

// @title Gym Fusion API
// @version 1.0
// @description Back office API for gym memberships, classes, retail sales and payments.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting gym back office")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	emailService := email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer emailService.Close()
	logger.Info("Email service initialized")

	userRepo := user.NewRepository(database)
	plans := plan.NewCachedRepository(plan.NewRepository(database), cfg.PlanCacheTTL)
	defer plans.Stop()
	membershipRepo := membership.NewRepository(database)

	userService := user.NewService(userRepo, cfg.JWTSecret, cfg.JWTRefreshSecret)
	planService := plan.NewService(plans)
	membershipService := membership.NewService(membershipRepo, plans, userRepo, emailService)
	classService := class.NewService(class.NewRepository(database), userRepo, emailService)
	productService := product.NewService(product.NewRepository(database))
	paymentService := payment.NewService(payment.NewRepository(database), userRepo, membershipRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatalf("Failed to bootstrap admin: %v", err)
	}

	go emailService.Start(ctx)

	reminders, err := scheduler.New(membershipService, cfg.ReminderCron, cfg.ReminderDays)
	if err != nil {
		logger.Fatalf("Failed to schedule reminders: %v", err)
	}
	reminders.Start()

	srv := server.New(cfg, server.Handlers{
		User:       user.NewHandler(userService),
		Plan:       plan.NewHandler(planService),
		Membership: membership.NewHandler(membershipService),
		Class:      class.NewHandler(classService),
		Product:    product.NewHandler(productService),
		Payment:    payment.NewHandler(paymentService),
	}, map[string]server.Check{
		"database": database.PingContext,
		"email":    emailService.Ping,
	}, emailService)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	select {
	case <-reminders.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("Reminder job still running at shutdown")
	}

	cancel()

	logger.Info("Server stopped")
}
