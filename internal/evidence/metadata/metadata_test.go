package metadata

import (
	"testing"

	"enova_backend/internal/evidence/transport"
)

func TestLoadEmbedded(t *testing.T) {
	codes, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(codes) != 1 {
		t.Fatalf("expected one evidence code, got %d", len(codes))
	}

	code := codes[0]
	if code.EvidenceCodeName != transport.EvidenceCodePublicEnergyData {
		t.Fatalf("unexpected code name %q", code.EvidenceCodeName)
	}
	if code.EvidenceSource != transport.SourceName {
		t.Fatalf("unexpected source %q", code.EvidenceSource)
	}
	if code.Values[0].EvidenceValueName != transport.DefaultValueName || code.Values[0].ValueType != transport.ValueTypeJSONSchema {
		t.Fatalf("unexpected value spec %+v", code.Values[0])
	}
}

func TestParseRejectsCodeWithoutValues(t *testing.T) {
	_, err := Parse([]byte("evidenceCodes:\n  - evidenceCodeName: X\n    evidenceSource: Y\n"))
	if err == nil {
		t.Fatalf("expected error for code without values")
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("evidenceCodes: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}
