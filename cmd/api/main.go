package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/auth"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/background"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/config"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/database"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/handlers"
	middlewareCustom "github.com/MarchChawut/ems-trd-dtc-sub000/internal/middleware"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/models"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/repositories"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/routes"
	"github.com/MarchChawut/ems-trd-dtc-sub000/internal/services"
	pkgauth "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/auth"
	pkghttp "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/http"
	pkglogger "github.com/MarchChawut/ems-trd-dtc-sub000/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	migrateCancel()

	// Repositories
	employeeRepo := repositories.NewEmployeeRepository(db)
	orgRepo := repositories.NewOrgRepository(db)
	revokeRepo := repositories.NewTokenRevocationRepository(db)
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	leaveRepo := repositories.NewLeaveRepository(db)
	holidayRepo := repositories.NewHolidayRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	cleanupManager := background.NewCleanupManager(revokeRepo, loginAttemptRepo, logger, cfg.Auth.CleanupInterval)

	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	totpManager := auth.NewTOTPManager(cfg.Auth.TOTPIssuer)

	auditLogger := pkglogger.NewAuditLogger(logger)
	loginGuard := services.NewLoginGuard(loginAttemptRepo, logger)

	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   100,
		RandomDelayMs: 100,
	})

	// Outbound email is optional: without a from-address, decisions are
	// still recorded, just not mailed out
	var emailService services.EmailService
	if cfg.Email.FromAddress != "" {
		sesService, err := services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		emailService = sesService
	}

	// Services
	authService := services.NewAuthService(employeeRepo, revokeRepo, loginGuard, tokenManager, totpManager, timingDelay, logger, auditLogger)
	employeeService := services.NewEmployeeService(employeeRepo, orgRepo, logger)
	leaveService := services.NewLeaveService(leaveRepo, holidayRepo, employeeRepo, emailService, logger, auditLogger)
	taskService := services.NewTaskService(taskRepo, logger)

	// Handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	leaveHandler := handlers.NewLeaveHandler(leaveService, employeeRepo)
	holidayHandler := handlers.NewHolidayHandler(leaveService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Bootstrap the first admin account if configured
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminEmployee(bootstrapCtx, employeeRepo, logger); err != nil {
		logger.Error("failed to ensure admin employee", slog.Any("error", err))
	}
	bootstrapCancel()

	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.Env)
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Route("/api/v1", func(r chi.Router) {
		routes.RegisterRoutes(r, authHandler, employeeHandler, leaveHandler, holidayHandler, taskHandler, tokenManager, employeeRepo, revokeRepo)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		stats := db.Stats()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","database":"up","pool":{"total_conns":%d,"idle_conns":%d}}`,
			stats.TotalConns(), stats.IdleConns())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminEmployee creates the first admin account if ADMIN_EMAIL and
// ADMIN_PASSWORD are set
func ensureAdminEmployee(ctx context.Context, employeeRepo *repositories.EmployeeRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin bootstrap")
		return nil
	}

	_, err := employeeRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin employee already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.Employee{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
	}

	if _, err := employeeRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin employee: %w", err)
	}

	logger.Info("admin employee created")
	return nil
}
