package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"enova_backend/internal/evidence/transport"
	"enova_backend/platform/apperr"
	"enova_backend/platform/httpkit"
	"enova_backend/platform/logger"
	"enova_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeHarvester struct {
	values []transport.EvidenceValue
	err    error
	gotOrg string
}

func (f *fakeHarvester) PublicEnergyData(_ context.Context, org string) ([]transport.EvidenceValue, error) {
	f.gotOrg = org
	return f.values, f.err
}

func newTestEngine(svc EvidenceHarvester) *gin.Engine {
	h := New(svc, []transport.EvidenceCode{{
		EvidenceCodeName: transport.EvidenceCodePublicEnergyData,
		EvidenceSource:   transport.SourceName,
		Values:           []transport.EvidenceValueSpec{{EvidenceValueName: "default", ValueType: transport.ValueTypeJSONSchema}},
	}}, validator.New(), logger.NewWithWriter("production", io.Discard))

	engine := gin.New()
	engine.POST("/api/OffentligEnergiData", h.PublicEnergyData)
	engine.GET("/api/evidencecodes", h.EvidenceCodes)
	return engine
}

func post(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/OffentligEnergiData", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpkit.ErrorResponse {
	t.Helper()
	var resp httpkit.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPublicEnergyDataReturnsValues(t *testing.T) {
	svc := &fakeHarvester{values: []transport.EvidenceValue{{
		EvidenceValueName: "default",
		ValueType:         transport.ValueTypeJSONSchema,
		Value:             []transport.YearlyEnergyData{{Year: 2024}},
		Source:            "Enova",
		Timestamp:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}}

	rec := post(newTestEngine(svc), `{"organizationNumber":"987654321"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "987654321", svc.gotOrg)
	assert.Contains(t, rec.Body.String(), `"evidenceValueName":"default"`)
	assert.Contains(t, rec.Body.String(), `"year":2024`)
}

func TestPublicEnergyDataRejectsMalformedBody(t *testing.T) {
	rec := post(newTestEngine(&fakeHarvester{}), `{"organizationNumber":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.CodeInvalidInput, decodeError(t, rec).Code)
}

func TestPublicEnergyDataRejectsMissingOrganization(t *testing.T) {
	svc := &fakeHarvester{}

	for _, body := range []string{`{}`, `{"organizationNumber":"12345"}`} {
		rec := post(newTestEngine(svc), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, apperr.CodeInvalidInput, decodeError(t, rec).Code, body)
	}
	assert.Empty(t, svc.gotOrg)
}

func TestPublicEnergyDataMapsServiceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   int
	}{
		{err: apperr.NotFound("legal entity (987654321) not found"), status: http.StatusNotFound, code: apperr.CodeNotFound},
		{err: apperr.UpstreamUnavailable("down", nil), status: http.StatusServiceUnavailable, code: apperr.CodeUpstreamUnavailable},
		{err: apperr.UnableToParseResponse("bad", nil), status: http.StatusBadGateway, code: apperr.CodeUnableToParseResponse},
	}

	for _, tt := range tests {
		rec := post(newTestEngine(&fakeHarvester{err: tt.err}), `{"organizationNumber":"987654321"}`)
		assert.Equal(t, tt.status, rec.Code)
		assert.Equal(t, tt.code, decodeError(t, rec).Code)
	}
}

func TestEvidenceCodes(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestEngine(&fakeHarvester{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/evidencecodes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var codes []transport.EvidenceCode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &codes))
	require.Len(t, codes, 1)
	assert.Equal(t, "OffentligEnergiData", codes[0].EvidenceCodeName)
}
