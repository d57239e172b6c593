// Package transport provides DTOs for the evidence domain.
package transport

import (
	"time"

	energytransport "enova_backend/internal/energydata/transport"
)

// Evidence code and source names.
const (
	EvidenceCodePublicEnergyData = "OffentligEnergiData"
	SourceName                   = "Enova"
	DefaultValueName             = "default"
)

// ValueTypeJSONSchema marks a value whose payload is structured JSON.
const ValueTypeJSONSchema = "jsonSchema"

// EvidenceHarvesterRequest is the body of an evidence request.
type EvidenceHarvesterRequest struct {
	OrganizationNumber string `json:"organizationNumber" validate:"required,orgnr"`
	EvidenceCodeName   string `json:"evidenceCodeName,omitempty"`
	RequestID          string `json:"requestId,omitempty"`
}

// EvidenceValue is one named value of an evidence response.
type EvidenceValue struct {
	EvidenceValueName string    `json:"evidenceValueName"`
	ValueType         string    `json:"valueType"`
	Value             any       `json:"value"`
	Source            string    `json:"source"`
	Timestamp         time.Time `json:"timestamp"`
}

// YearlyEnergyData groups one organization's certificates for a year.
type YearlyEnergyData struct {
	Year    int                                `json:"year"`
	Records []energytransport.EmsResponseModel `json:"records"`
}

// EvidenceCode describes an evidence code this service answers.
type EvidenceCode struct {
	EvidenceCodeName string              `json:"evidenceCodeName" yaml:"evidenceCodeName"`
	EvidenceSource   string              `json:"evidenceSource" yaml:"evidenceSource"`
	Description      string              `json:"description,omitempty" yaml:"description"`
	Values           []EvidenceValueSpec `json:"values" yaml:"values"`
}

// EvidenceValueSpec describes one value of an evidence code.
type EvidenceValueSpec struct {
	EvidenceValueName string `json:"evidenceValueName" yaml:"evidenceValueName"`
	ValueType         string `json:"valueType" yaml:"valueType"`
}
