package entityregistry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enova_backend/platform/apperr"
	"enova_backend/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBaseURL(srv.URL, 5*time.Second, logger.NewWithWriter("production", io.Discard))
}

func TestGetMainUnit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/enheter/987654321" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"organisasjonsnummer":"987654321","navn":"TEST AS","organisasjonsform":{"kode":"AS","beskrivelse":"Aksjeselskap"}}`)
	})

	entity, err := c.Get(context.Background(), "987654321")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, "987654321", entity.Organisasjonsnummer)
	assert.Equal(t, "TEST AS", entity.Navn)
	require.NotNil(t, entity.Organisasjonsform)
	assert.Equal(t, "AS", entity.Organisasjonsform.Kode)
}

func TestGetFallsBackToSubUnit(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/underenheter/912345678" {
			_, _ = io.WriteString(w, `{"organisasjonsnummer":"912345678","navn":"AVD OSLO","overordnetEnhet":"987654321"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	entity, err := c.Get(context.Background(), "912345678")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, "987654321", entity.OverordnetEnhet)
	assert.Equal(t, []string{"/enheter/912345678", "/underenheter/912345678"}, paths)
}

func TestGetUnknownReturnsNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})

	entity, err := c.Get(context.Background(), "999999999")
	require.NoError(t, err)
	assert.Nil(t, entity)
}

func TestGetUpstreamFailureIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Get(context.Background(), "987654321")
	assert.True(t, apperr.IsTransient(err))
}

func TestGetUnparseableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{")
	})

	_, err := c.Get(context.Background(), "987654321")
	assert.Equal(t, apperr.KindUnableToParseResponse, apperr.GetKind(err))
}

func TestGetCancelledByCallerIsNotTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "987654321")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, apperr.IsTransient(err))
}
