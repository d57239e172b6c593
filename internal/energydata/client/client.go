// Package client provides the HTTP client for the Enova open-data API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"enova_backend/internal/energydata/transport"
	"enova_backend/platform/apperr"
	"enova_backend/platform/logger"

	"github.com/go-resty/resty/v2"
)

const (
	apiKeyHeader = "x-api-key"
	filePath     = "/ems/offentlige-data/v1/Fil/%d"
)

// Client is the HTTP client for the Enova EMS endpoints.
type Client struct {
	http    *resty.Client
	baseURL string
	log     *logger.Logger
	now     func() time.Time
}

// New creates a new Enova API client. Retries are disabled; callers decide
// whether a failure is worth repeating.
func New(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader(apiKeyHeader, apiKey)

	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		log:     log,
		now:     time.Now,
	}
}

// FetchFileLocation resolves where the file for year can be downloaded.
func (c *Client) FetchFileLocation(ctx context.Context, year int) (string, error) {
	reqURL := c.baseURL + fmt.Sprintf(filePath, year)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(reqURL)
	if err != nil {
		return "", c.requestError(ctx, "client.FetchFileLocation", "enova is unreachable", reqURL, err)
	}
	if err := c.checkStatus(resp.StatusCode(), reqURL); err != nil {
		return "", err
	}

	var file transport.FileResponse
	if err := json.Unmarshal(resp.Body(), &file); err != nil {
		c.log.ParseFailure("unable to parse file location response", err, "year", year)
		return "", apperr.UnableToParseResponse("could not parse the file location response", err).WithOp("client.FetchFileLocation")
	}

	return file.BankFileURL, nil
}

// FetchFile opens the CSV body at fileURL. The caller must close it.
// Failures while reading the body are reported as transport errors, so a
// dropped connection is never mistaken for a malformed file.
func (c *Client) FetchFile(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(fileURL)
	if err != nil {
		return nil, c.requestError(ctx, "client.FetchFile", "enova file download failed", fileURL, err)
	}

	body := resp.RawBody()
	if err := c.checkStatus(resp.StatusCode(), fileURL); err != nil {
		if body != nil {
			_ = body.Close()
		}
		return nil, err
	}

	return &downloadBody{ctx: ctx, body: body, url: fileURL, log: c.log}, nil
}

// Ping checks that the metadata endpoint answers for the current year.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.FetchFileLocation(ctx, c.now().UTC().Year())
	return err
}

// requestError classifies a failed request. A request abandoned by the
// caller is not the upstream's fault and stays a plain context error.
func (c *Client) requestError(ctx context.Context, op, message, reqURL string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	c.log.Error("enova request failed", "error", err, "url", reqURL)
	return apperr.UpstreamUnavailable(message, err).WithOp(op)
}

// downloadBody tags read failures on the file body with their cause.
type downloadBody struct {
	ctx  context.Context
	body io.ReadCloser
	url  string
	log  *logger.Logger
}

func (b *downloadBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	if ctxErr := b.ctx.Err(); ctxErr != nil {
		return n, fmt.Errorf("client.FetchFile: read body: %w", ctxErr)
	}
	b.log.Error("enova file download interrupted", "error", err, "url", b.url)
	return n, apperr.UpstreamUnavailable("enova file download was interrupted", err).WithOp("client.FetchFile")
}

func (b *downloadBody) Close() error {
	return b.body.Close()
}

func (c *Client) checkStatus(status int, reqURL string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		c.log.Warn("enova resource not found", "url", reqURL)
		return apperr.NotFound("no energy data published for the requested year")
	case status == http.StatusBadRequest:
		c.log.Error("enova bad request", "status", status, "url", reqURL)
		return apperr.BadRequest("enova rejected the request")
	default:
		c.log.Error("enova upstream error", "status", status, "url", reqURL)
		return apperr.UpstreamUnavailable(fmt.Sprintf("enova returned status %d", status), nil).
			WithDetails(map[string]int{"status": status})
	}
}
