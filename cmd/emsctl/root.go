package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"enova_backend/internal/energydata"
	"enova_backend/platform/cache"
	"enova_backend/platform/config"
	"enova_backend/platform/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "emsctl",
	Short: "Operate the Enova energy certificate cache",
	Long: `emsctl fetches yearly EMS energy certificate data through the same
cache the API uses, and can refresh or warm that cache by hand.`,
	SilenceUsage: true,
}

// Execute runs the root command. It is called once by main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session holds what every subcommand needs.
type session struct {
	cfg    *config.Config
	log    *logger.Logger
	module *energydata.Module
	close  func()
}

// newSession loads configuration and builds the energy data module on the
// configured cache. Logs go to stderr so stdout stays machine-readable.
func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewWithWriter(cfg.Env, os.Stderr)

	var (
		store   cache.Store
		closeFn func()
	)
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; using in-memory cache")
		mem := cache.NewMemoryStore()
		store, closeFn = mem, mem.Close
	} else {
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("configure redis: %w", err)
		}
		redisStore := cache.NewRedisStore(client)
		if err := redisStore.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		store, closeFn = redisStore, func() { _ = client.Close() }
	}

	module := energydata.NewModule(cfg, store, log)
	if !module.IsEnabled() {
		closeFn()
		return nil, fmt.Errorf("ENOVA_URL and ENOVA_API_KEY must be set")
	}

	return &session{cfg: cfg, log: log, module: module, close: closeFn}, nil
}
