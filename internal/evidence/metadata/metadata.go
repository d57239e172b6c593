// Package metadata describes the evidence codes this service answers.
package metadata

import (
	_ "embed"
	"fmt"

	"enova_backend/internal/evidence/transport"

	"gopkg.in/yaml.v3"
)

//go:embed evidencecodes.yaml
var evidenceCodesYAML []byte

type document struct {
	EvidenceCodes []transport.EvidenceCode `yaml:"evidenceCodes"`
}

// Load parses the embedded evidence code list.
func Load() ([]transport.EvidenceCode, error) {
	return Parse(evidenceCodesYAML)
}

// Parse parses an evidence code document.
func Parse(data []byte) ([]transport.EvidenceCode, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse evidence codes: %w", err)
	}
	for i, code := range doc.EvidenceCodes {
		if code.EvidenceCodeName == "" {
			return nil, fmt.Errorf("evidence code %d has no name", i)
		}
		if len(code.Values) == 0 {
			return nil, fmt.Errorf("evidence code %s has no values", code.EvidenceCodeName)
		}
	}
	return doc.EvidenceCodes, nil
}
