// Package http wires domain modules into the gin engine.
package http

import (
	"context"

	"enova_backend/platform/config"
	"enova_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig is the configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.EvidenceConfig
}

// HealthChecker backs the readiness check.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckers is ready only when every checker is.
type HealthCheckers []HealthChecker

// Ping returns the first failing dependency.
func (hs HealthCheckers) Ping(ctx context.Context) error {
	for _, h := range hs {
		if err := h.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// App is built by main and handed to router.New.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is what a module gets to register routes on.
type RouterContext struct {
	Engine *gin.Engine
	// API is the public /api group.
	API *gin.RouterGroup
	// Protected is /api behind the function key.
	Protected *gin.RouterGroup
	Logger    *logger.Logger
}
