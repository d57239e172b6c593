// Package energydata provides the energy data bounded context module.
// This file defines the module that encapsulates all energy data setup.
package energydata

import (
	"context"

	"enova_backend/internal/energydata/client"
	"enova_backend/internal/energydata/decoder"
	"enova_backend/internal/energydata/service"
	"enova_backend/platform/cache"
	"enova_backend/platform/config"
	"enova_backend/platform/logger"
)

// Module is the energy data bounded context module.
type Module struct {
	service *service.Service
	client  *client.Client
	enabled bool
}

// NewModule creates and initializes the energy data module.
// Returns a disabled module if the Enova API is not configured (graceful degradation).
func NewModule(cfg config.EnergyDataConfig, store cache.Store, log *logger.Logger) *Module {
	if !cfg.IsEnergyDataEnabled() {
		log.Info("energy data module disabled: ENOVA_URL or ENOVA_API_KEY not configured")
		return &Module{enabled: false}
	}

	apiClient := client.New(cfg.GetEnovaURL(), cfg.GetEnovaAPIKey(), cfg.GetSafeHTTPClientTimeout(), log)
	svc := service.New(store, apiClient, decoder.New(log), log)

	log.Info("energy data module initialized", "url", cfg.GetEnovaURL())

	return &Module{
		service: svc,
		client:  apiClient,
		enabled: true,
	}
}

// Service returns the energy data service for external use.
// Returns nil if the module is disabled.
func (m *Module) Service() *service.Service {
	if m == nil || !m.enabled {
		return nil
	}
	return m.service
}

// IsEnabled returns true if the energy data module is configured and enabled.
func (m *Module) IsEnabled() bool {
	return m != nil && m.enabled
}

// Ping checks that the Enova API answers.
func (m *Module) Ping(ctx context.Context) error {
	if !m.IsEnabled() {
		return nil
	}
	return m.client.Ping(ctx)
}

var _ EnergyDataService = (*service.Service)(nil)
