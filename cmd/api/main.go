package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/foodmap-client/internal/app"
	"github.com/foodmap-client/internal/config"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/logger"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		boot := logger.Stderr()
		if errors.IsKind(err, errors.KindConfig) {
			boot.Fatal("Runtime configuration is unavailable, fix it and restart",
				zap.String("hint", "check FOODMAP_RUNTIME_CONFIG points to a readable JSON file"),
				zap.Error(err))
		}
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.NewWithRotate(cfg.Log.Level, logger.FileRotate{
		Filename:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   true,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Food Map client")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Stringer("runtime", cfg.Runtime),
	)
	if cfg.Runtime.BackendURLDefaulted {
		log.Warn("APP_BACKEND_URL is not set, using default",
			zap.String("backend_url", cfg.Runtime.BackendURL))
	}

	// 3. Build application
	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	application, err := app.New(initCtx, cfg, log)
	if err != nil {
		cancel()
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	application.Restore(initCtx)
	cancel()

	// 4. Watch runtime document
	if err := config.WatchRuntime(cfg.Runtime.Path, log, application.ApplyRuntime); err != nil {
		log.Warn("Runtime config watch disabled", zap.Error(err))
	}

	// 5. Start workers and server
	runCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	application.Start(runCtx)

	go func() {
		if err := application.Server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}

	log.Info("Client stopped successfully")
}
