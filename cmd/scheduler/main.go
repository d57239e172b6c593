package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enova_backend/internal/energydata"
	"enova_backend/internal/scheduler"
	"enova_backend/platform/cache"
	"enova_backend/platform/config"
	"enova_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "cron", cfg.GetWarmupCron())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to configure redis client", "error", err)
		panic("failed to configure redis client: " + err.Error())
	}
	defer func() { _ = redisClient.Close() }()

	store := cache.NewRedisStore(redisClient)
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return store.Ping(ctx)
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}

	energyDataModule := energydata.NewModule(cfg, store, log)
	if !energyDataModule.IsEnabled() {
		panic("scheduler requires ENOVA_URL and ENOVA_API_KEY")
	}

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize warm-up schedule", "error", err)
		panic("failed to initialize warm-up schedule: " + err.Error())
	}
	go periodic.Run(ctx)

	if cfg.GetWarmupOnStartup() {
		enqueueStartupWarmup(ctx, cfg, log)
	}

	worker, err := scheduler.NewWorker(cfg, energyDataModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

// enqueueStartupWarmup queues one warm-up run so an empty cache is filled
// without waiting for the next cron tick.
func enqueueStartupWarmup(ctx context.Context, cfg config.SchedulerConfig, log *logger.Logger) {
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return
	}
	defer func() { _ = client.Close() }()

	if err := client.EnqueueWarmup(ctx, scheduler.WarmupPayload{}); err != nil {
		log.Error("failed to enqueue startup warm-up", "error", err)
		return
	}
	log.Info("startup warm-up enqueued")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
