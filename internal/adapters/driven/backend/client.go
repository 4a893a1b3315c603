// Package backend provides the HTTP client for the external document
// processing service. It implements the driven.Backend port: all PDF
// parsing, chunking, embedding, indexing, search and generation happen
// server-side; this adapter only speaks the REST contract and maps
// failures onto the domain error taxonomy.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/logger"
)

// Ensure Client implements the full backend contract.
var _ driven.Backend = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "http://localhost:8001"
	DefaultTimeout     = 120 * time.Second
	DefaultListTimeout = 5 * time.Second
	DefaultRate        = 10
)

// Config holds configuration for the processing-service client.
type Config struct {
	// BaseURL is the processing service endpoint
	// (default: http://localhost:8001).
	BaseURL string

	// Timeout is the request timeout for stage operations (default:
	// 120s). Embedding and indexing large documents is slow.
	Timeout time.Duration

	// ListTimeout is the bounded wait for listing calls (default: 5s).
	// A listing that exceeds it fails with domain.ErrTimeout instead of
	// hanging the control panel.
	ListTimeout time.Duration

	// RequestsPerSecond throttles outgoing calls (default: 10).
	RequestsPerSecond float64

	// Bands classify evaluation rows when the server omits a
	// compliance status (default: domain.DefaultComplianceBands).
	Bands domain.ComplianceBands
}

// Client is an HTTP client for the processing service.
type Client struct {
	client      *http.Client
	baseURL     string
	listTimeout time.Duration
	limiter     *rate.Limiter
	bands       domain.ComplianceBands
}

// NewClient creates a processing-service client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("backend: invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ListTimeout == 0 {
		cfg.ListTimeout = DefaultListTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRate
	}
	if cfg.Bands == (domain.ComplianceBands{}) {
		cfg.Bands = domain.DefaultComplianceBands()
	}

	return &Client{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		listTimeout: cfg.ListTimeout,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		bands:       cfg.Bands,
	}, nil
}

// listContext bounds a listing call. Callers must defer the cancel.
func (c *Client) listContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.listTimeout)
}

// do sends a request and decodes the JSON response into out (when out
// is non-nil). Transport and HTTP-level failures are mapped onto the
// domain taxonomy here, so callers only ever see classified errors.
func (c *Client) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return classifyTransport(err)
	}

	logger.Debug("backend: %s %s", req.Method, req.URL.Path)
	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, apiDetail(body))
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d: %s",
			domain.ErrTransport, resp.StatusCode, apiDetail(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrTransport, err)
	}
	return nil
}

// classifyTransport maps low-level call errors onto the taxonomy.
// Deadline expiry is a timeout; everything else is transport failure.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrTransport, err)
}

// apiDetail extracts FastAPI's {"detail": ...} message, falling back to
// the raw body.
func apiDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	jsonBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, nil)
}
