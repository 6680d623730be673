package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/config"
	"github.com/foodmap-client/internal/pkg/logger"
	"github.com/foodmap-client/internal/repository/cache"
	redisRepo "github.com/foodmap-client/internal/repository/redis"
	"github.com/foodmap-client/internal/worker"
	"github.com/foodmap-client/internal/worker/events"
)

func main() {
	after := pflag.String("after", "0", "stream id to start after (0 - from the beginning)")
	profile := pflag.String("profile", "", "only show events of this session profile")
	pflag.Parse()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Event stream exists only with Redis
	if !cfg.Redis.Enabled {
		fmt.Println("Redis is disabled in configuration. Set REDIS_ENABLED=true to tail events.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting event tail",
		zap.String("after", *after),
		zap.String("profile", *profile))

	// 3. Connect to Redis
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err := cache.NewRedis(connectCtx, cfg.Redis, log)
	cancelConnect()
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Initialize repositories
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 5. Initialize workers
	tail := events.NewTailWorker(streamRepo, *profile, *after, func(ev events.TailedEvent) {
		log.Info("Event",
			zap.String("id", ev.ID),
			zap.String("kind", ev.Kind),
			zap.String("profile", ev.Profile),
			zap.Time("occurred_at", ev.OccurredAt),
			zap.ByteString("payload", ev.Payload))
	}, log)

	workerManager := worker.NewManager(log)
	workerManager.Register(tail)

	// 6. Start workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	workerManager.Start(ctx)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := workerManager.Stop(stopCtx); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}
	cancel()

	log.Info("Event tail stopped", zap.String("last_id", tail.LastID()))
}
