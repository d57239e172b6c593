// Package entityregistry looks up legal entities in the Brønnøysund register.
package entityregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"enova_backend/platform/apperr"
	"enova_backend/platform/config"
	"enova_backend/platform/logger"

	"github.com/go-resty/resty/v2"
)

// Entity is the subset of a register entry the evidence service needs.
type Entity struct {
	Organisasjonsnummer string             `json:"organisasjonsnummer"`
	Navn                string             `json:"navn"`
	Organisasjonsform   *Organisasjonsform `json:"organisasjonsform,omitempty"`
	OverordnetEnhet     string             `json:"overordnetEnhet,omitempty"`
	Slettedato          string             `json:"slettedato,omitempty"`
}

// Organisasjonsform is the legal form of an entity.
type Organisasjonsform struct {
	Kode        string `json:"kode"`
	Beskrivelse string `json:"beskrivelse"`
}

// Client queries the register for main units and sub units.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// New creates a register client from configuration.
func New(cfg config.EntityRegistryConfig, log *logger.Logger) *Client {
	return NewWithBaseURL(cfg.GetEntityRegistryURL(), cfg.GetSafeHTTPClientTimeout(), log)
}

// NewWithBaseURL creates a register client against baseURL.
func NewWithBaseURL(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0).
			SetHeader("Accept", "application/json"),
		log: log,
	}
}

// Get returns the entity with organizationNumber, looking at main units first
// and sub units second. A nil entity and nil error mean the number is unknown.
func (c *Client) Get(ctx context.Context, organizationNumber string) (*Entity, error) {
	for _, path := range []string{"/enheter/", "/underenheter/"} {
		entity, err := c.lookup(ctx, path+url.PathEscape(organizationNumber))
		if err != nil {
			return nil, err
		}
		if entity != nil {
			return entity, nil
		}
	}
	return nil, nil
}

func (c *Client) lookup(ctx context.Context, path string) (*Entity, error) {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("entityregistry.Get: %w", ctxErr)
		}
		c.log.Error("entity registry request failed", "error", err, "path", path)
		return nil, apperr.UpstreamUnavailable("entity registry is unreachable", err).WithOp("entityregistry.Get")
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return nil, nil
	case http.StatusBadRequest:
		return nil, apperr.BadRequest("invalid organization number")
	default:
		c.log.Error("entity registry upstream error", "status", resp.StatusCode(), "path", path)
		return nil, apperr.UpstreamUnavailable("entity registry returned an error", nil).
			WithDetails(map[string]int{"status": resp.StatusCode()})
	}

	var entity Entity
	if err := json.Unmarshal(resp.Body(), &entity); err != nil {
		c.log.ParseFailure("unable to parse entity registry response", err)
		return nil, apperr.UnableToParseResponse("could not parse the entity registry response", err)
	}
	return &entity, nil
}
