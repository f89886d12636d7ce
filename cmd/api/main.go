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

	"scholarship-backend/config"
	_ "scholarship-backend/docs" // Important for Swagger
	"scholarship-backend/internal/app"
	"scholarship-backend/pkg/logger"
)

// @title           Scholarship Calls API
// @version         1.0
// @description     Scholarship calls, applications and applicant ranking.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting scholarship backend", "port", cfg.Port, "timezone", cfg.Timezone.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Database, Redis, UseCases
	container, err := app.New(ctx, cfg, logger.Log)
	if err != nil {
		logger.Log.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// 4. Setup Scheduler
	if cfg.SchedulerEnabled {
		trigger, err := container.Scheduler()
		if err != nil {
			logger.Log.Error("Failed to configure scheduler", "error", err)
			os.Exit(1)
		}
		trigger.Start(ctx)
		defer trigger.Stop()
	} else {
		logger.Log.Warn("Call transition scheduler disabled")
	}

	// 5. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           container.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
