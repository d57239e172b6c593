package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enova_backend/internal/energydata"
	"enova_backend/internal/entityregistry"
	"enova_backend/internal/evidence"
	apphttp "enova_backend/internal/http"
	"enova_backend/internal/http/router"
	"enova_backend/platform/cache"
	"enova_backend/platform/config"
	"enova_backend/platform/logger"
	"enova_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	store, closeStore := initCacheStore(ctx, cfg, log)
	defer closeStore()

	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	energyDataModule := energydata.NewModule(cfg, store, log)

	var modules []apphttp.Module
	if energyDataModule.IsEnabled() {
		entityRegistry := entityregistry.New(cfg, log)
		evidenceModule, err := evidence.NewModule(energyDataModule.Service(), entityRegistry, val, cfg, log)
		if err != nil {
			log.Error("failed to initialize evidence module", "error", err)
			panic("failed to initialize evidence module: " + err.Error())
		}
		modules = append(modules, evidenceModule)
	} else {
		log.Warn("evidence routes disabled: energy data module is not configured")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  apphttp.HealthCheckers{store, energyDataModule},
		Modules: modules,
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initCacheStore connects to Redis when REDIS_URL is set and falls back to
// an in-process store otherwise.
func initCacheStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.Store, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; using in-memory cache")
		mem := cache.NewMemoryStore()
		return mem, mem.Close
	}

	client, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to configure redis client", "error", err)
		panic("failed to configure redis client: " + err.Error())
	}

	store := cache.NewRedisStore(client)
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return store.Ping(ctx)
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis cache connection established")

	return store, func() { _ = client.Close() }
}
