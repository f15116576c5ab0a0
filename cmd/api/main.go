package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-whisperer/internal/adapter/handler"
	"github.com/johnquangdev/meeting-whisperer/internal/bootstrap"
	"github.com/johnquangdev/meeting-whisperer/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/meeting-whisperer/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-whisperer/pkg/config"
	pkgvalidator "github.com/johnquangdev/meeting-whisperer/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	logger.Info("🔧 Initializing dependencies...")
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer app.Close()

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should run `whisperctl migrate up`.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			logger.Fatal("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or run whisperctl migrate.")
		}
		logger.Info("🔄 Applying migrations (development only) ...")
		if err := database.AutoMigrate(app.DB, cfg.Database.MigrationsDir, logger); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Background workers
	app.RecoverInflight(ctx)
	// Jobs are detached from the signal context; StopWorkerPool drains them
	if err := app.Pool.StartWorkerPool(context.WithoutCancel(ctx), cfg.Queue.Workers); err != nil {
		logger.Fatal("Failed to start worker pool", zap.Error(err))
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	meetingHandler := handler.NewMeetingHandler(app.Meetings, app.Tasks, cfg.Upload.MaxBytes, logger)
	taskHandler := handler.NewTaskHandler(app.Tasks, logger)
	authEchoMW := httpmw.EchoAuth(app.JWT, app.UserRepo, logger)

	logger.Info("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, meetingHandler, taskHandler, authEchoMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
	}

	// Waits for running jobs, each bounded by QUEUE_JOB_TIMEOUT
	if err := app.Pool.StopWorkerPool(); err != nil {
		logger.Error("❌ Worker pool stop failed", zap.Error(err))
	}

	logger.Info("✅ Server stopped gracefully")
}
