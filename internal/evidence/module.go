// Package evidence provides the evidence bounded context module.
// This file defines the module that encapsulates all evidence setup.
package evidence

import (
	"fmt"

	"enova_backend/internal/evidence/handler"
	"enova_backend/internal/evidence/metadata"
	"enova_backend/internal/evidence/service"
	"enova_backend/internal/evidence/transport"
	apphttp "enova_backend/internal/http"
	"enova_backend/platform/config"
	"enova_backend/platform/logger"
	"enova_backend/platform/validator"
)

// Module wires the evidence HTTP routes.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the evidence module on top of the energy data reader
// and the entity register.
func NewModule(energy service.EnergyDataReader, entities service.EntityLookup, val *validator.Validator, cfg config.CircuitBreakerConfig, log *logger.Logger) (*Module, error) {
	codes, err := metadata.Load()
	if err != nil {
		return nil, fmt.Errorf("load evidence codes: %w", err)
	}

	svc := service.New(energy, entities, cfg, log)
	return &Module{
		handler: handler.New(svc, codes, val, log),
		service: svc,
	}, nil
}

func (m *Module) Name() string {
	return "evidence"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/"+transport.EvidenceCodePublicEnergyData, m.handler.PublicEnergyData)
	ctx.API.GET("/evidencecodes", m.handler.EvidenceCodes)
}

// Service returns the evidence service.
func (m *Module) Service() *service.Service {
	return m.service
}

var _ apphttp.Module = (*Module)(nil)
