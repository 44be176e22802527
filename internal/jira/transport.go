package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"golang.org/x/time/rate"

	"github.com/danielolaszy/jiradesk/internal/config"
	"github.com/danielolaszy/jiradesk/internal/logging"
)

// API roots, relative to the instance URL.
const (
	platformAPI = "rest/api/3"
	agileAPI    = "rest/agile/1.0"
)

// Gateway builds authenticated requests, executes them and classifies the
// outcome as success, *AuthError or *OperationError. It never retries.
type Gateway struct {
	client  *jira.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewGateway creates a gateway for the configured instance. Requests carry
// Basic credentials built from the username and API token.
func NewGateway(cfg config.JiraConfig) (*Gateway, error) {
	baseURL := cfg.BaseURL()
	if baseURL == "" {
		return nil, fmt.Errorf("jira instance url is required")
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Username,
		Password: cfg.Token,
	}
	httpClient := tp.Client()
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	client, err := jira.NewClient(httpClient, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	limit := rate.Inf
	burst := cfg.RateBurst
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		if burst <= 0 {
			burst = 1
		}
	}

	logging.Debug("jira gateway configured",
		"base_url", baseURL,
		"username", cfg.Username,
		"token", logging.MaskSensitive(cfg.Token),
		"rate_limit", cfg.RateLimit)

	return &Gateway{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logging.GetLogger().With("component", "jira"),
	}, nil
}

// Send executes one request and returns the raw body of a 2xx response.
// body, when non-nil, is sent as JSON.
func (g *Gateway) Send(ctx context.Context, op Operation, method, path string, query url.Values, body any) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, &OperationError{Operation: op, Err: err}
	}

	urlStr := path
	if len(query) > 0 {
		urlStr += "?" + query.Encode()
	}

	req, err := g.client.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, &OperationError{Operation: op, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req, nil)
	if resp == nil {
		g.logger.Debug("jira request failed",
			"operation", op.Name,
			"method", method,
			"path", path,
			"duration", time.Since(start),
			"error", err)
		if err == nil {
			err = fmt.Errorf("no response returned")
		}
		return nil, &OperationError{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	g.logger.Debug("jira request",
		"operation", op.Name,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if err != nil {
		return nil, classify(op, resp.StatusCode, jira.NewJiraError(resp, err))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &OperationError{Operation: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return raw, nil
}

// Do is Send followed by decoding the body into out. A nil out discards
// the body.
func (g *Gateway) Do(ctx context.Context, op Operation, method, path string, query url.Values, body, out any) error {
	raw, err := g.Send(ctx, op, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return unexpectedShape(op, err)
	}
	return nil
}

func classify(op Operation, status int, err error) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Operation: op, StatusCode: status, Err: err}
	default:
		return &OperationError{Operation: op, StatusCode: status, Err: err}
	}
}

func platformPath(format string, args ...any) string {
	return platformAPI + fmt.Sprintf(format, args...)
}

func agilePath(format string, args ...any) string {
	return agileAPI + fmt.Sprintf(format, args...)
}

// segment percent-encodes a value used as a single path segment.
func segment(s string) string {
	return url.PathEscape(s)
}
