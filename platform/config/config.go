// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// EnergyDataConfig provides settings for the Enova open-data API.
type EnergyDataConfig interface {
	GetEnovaURL() string
	GetEnovaAPIKey() string
	GetSafeHTTPClientTimeout() time.Duration
	IsEnergyDataEnabled() bool
}

// CacheConfig provides settings for the distributed cache.
type CacheConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq warm-up scheduler.
type SchedulerConfig interface {
	CacheConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetWarmupCron() string
	GetWarmupOnStartup() bool
}

// CircuitBreakerConfig provides settings for the upstream circuit breaker.
type CircuitBreakerConfig interface {
	GetCircuitBreakerOpenTimeout() time.Duration
	GetCircuitBreakerFailuresBeforeTripping() uint32
}

// EntityRegistryConfig provides settings for the legal entity register lookup.
type EntityRegistryConfig interface {
	GetEntityRegistryURL() string
	GetSafeHTTPClientTimeout() time.Duration
}

// EvidenceConfig provides settings for the evidence endpoint.
type EvidenceConfig interface {
	GetFunctionKey() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                                  string
	HTTPAddr                             string
	CORSAllowAll                         bool
	CORSOrigins                          []string
	EnovaURL                             string
	EnovaAPIKey                          string
	SafeHTTPClientTimeout                time.Duration
	RedisURL                             string
	RedisTLSInsecure                     bool
	AsynqQueueName                       string
	AsynqConcurrency                     int
	WarmupCron                           string
	WarmupOnStartup                      bool
	CircuitBreakerOpenTimeout            time.Duration
	CircuitBreakerFailuresBeforeTripping uint32
	EntityRegistryURL                    string
	FunctionKey                          string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// EnergyDataConfig implementation
func (c *Config) GetEnovaURL() string                     { return c.EnovaURL }
func (c *Config) GetEnovaAPIKey() string                  { return c.EnovaAPIKey }
func (c *Config) GetSafeHTTPClientTimeout() time.Duration { return c.SafeHTTPClientTimeout }
func (c *Config) IsEnergyDataEnabled() bool {
	return c.EnovaURL != "" && c.EnovaAPIKey != ""
}

// CacheConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) GetWarmupCron() string     { return c.WarmupCron }
func (c *Config) GetWarmupOnStartup() bool  { return c.WarmupOnStartup }

// CircuitBreakerConfig implementation
func (c *Config) GetCircuitBreakerOpenTimeout() time.Duration { return c.CircuitBreakerOpenTimeout }
func (c *Config) GetCircuitBreakerFailuresBeforeTripping() uint32 {
	return c.CircuitBreakerFailuresBeforeTripping
}

// EntityRegistryConfig implementation
func (c *Config) GetEntityRegistryURL() string { return c.EntityRegistryURL }

// EvidenceConfig implementation
func (c *Config) GetFunctionKey() string { return c.FunctionKey }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "*"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if slices.Contains(corsOrigins, "*") {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                                  getEnv("APP_ENV", "development"),
		HTTPAddr:                             getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:                         corsAllowAll,
		CORSOrigins:                          corsOrigins,
		EnovaURL:                             strings.TrimRight(getEnv("ENOVA_URL", ""), "/"),
		EnovaAPIKey:                          getEnv("ENOVA_API_KEY", ""),
		SafeHTTPClientTimeout:                time.Duration(mustInt64(getEnv("SAFE_HTTP_CLIENT_TIMEOUT", "120"))) * time.Second,
		RedisURL:                             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:                     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:                       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:                     int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "2"))),
		WarmupCron:                           getEnv("WARMUP_CRON", "30 3 * * *"),
		WarmupOnStartup:                      strings.EqualFold(getEnv("WARMUP_ON_STARTUP", "true"), "true"),
		CircuitBreakerOpenTimeout:            time.Duration(mustInt64(getEnv("DEFAULT_CIRCUIT_BREAKER_OPEN_CIRCUIT_TIME_SECONDS", "10"))) * time.Second,
		CircuitBreakerFailuresBeforeTripping: uint32(mustInt64(getEnv("DEFAULT_CIRCUIT_BREAKER_FAILURE_BEFORE_TRIPPING", "3"))),
		EntityRegistryURL:                    strings.TrimRight(getEnv("ENTITY_REGISTRY_URL", "https://data.brreg.no/enhetsregisteret/api"), "/"),
		FunctionKey:                          getEnv("FUNCTION_KEY", ""),
	}

	if cfg.SafeHTTPClientTimeout <= 0 {
		return nil, fmt.Errorf("SAFE_HTTP_CLIENT_TIMEOUT must be a positive number of seconds")
	}
	if cfg.EnovaURL != "" && cfg.EnovaAPIKey == "" {
		return nil, fmt.Errorf("ENOVA_API_KEY is required when ENOVA_URL is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || result < 0 {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
