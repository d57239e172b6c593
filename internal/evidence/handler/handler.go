package handler

import (
	"context"

	"enova_backend/internal/evidence/transport"
	"enova_backend/platform/apperr"
	"enova_backend/platform/httpkit"
	"enova_backend/platform/logger"
	"enova_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "unable to parse request"
	msgValidationFailed = "request is missing a valid organization number"
)

// EvidenceHarvester produces the evidence values for one organization.
type EvidenceHarvester interface {
	PublicEnergyData(ctx context.Context, organizationNumber string) ([]transport.EvidenceValue, error)
}

// Handler serves the evidence endpoints.
type Handler struct {
	svc   EvidenceHarvester
	codes []transport.EvidenceCode
	val   *validator.Validator
	log   *logger.Logger
}

func New(svc EvidenceHarvester, codes []transport.EvidenceCode, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, codes: codes, val: val, log: log}
}

// PublicEnergyData handles POST /api/OffentligEnergiData.
func (h *Handler) PublicEnergyData(c *gin.Context) {
	var req transport.EvidenceHarvesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.WithContext(c.Request.Context()).ParseFailure("unable to parse evidence request", err)
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	values, err := h.svc.PublicEnergyData(c.Request.Context(), req.OrganizationNumber)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, values)
}

// EvidenceCodes handles GET /api/evidencecodes.
func (h *Handler) EvidenceCodes(c *gin.Context) {
	httpkit.OK(c, h.codes)
}
