// Package http provides the HTTP client for the pricing analysis backend.
// Every request carries the visitor's device id in the X-Device-Id header;
// identity resolution happens here so callers never see it.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricing-detective/core/types"
	"pricing-detective/internal/errors"
	"pricing-detective/internal/logging"
)

const (
	// HeaderDeviceID carries the metering identity
	HeaderDeviceID = "X-Device-Id"

	analyzePath     = "/api/v1/analyze"
	trialStatusPath = "/api/v1/trial-status"

	// maxBodyBytes caps how much of any response is read
	maxBodyBytes = 4 << 20

	// TrialStatusUnavailable is the message for a failed quota query
	TrialStatusUnavailable = "Failed to get trial status"
)

// IdentitySource resolves the device id attached to every request
type IdentitySource interface {
	DeviceID(ctx context.Context) (types.DeviceID, error)
}

// Config holds client configuration
type Config struct {
	// BaseURL is the backend origin, e.g. https://pricing.example.com
	BaseURL string `json:"base_url"`

	// Timeout is the transport's overall request timeout
	Timeout time.Duration `json:"timeout"`

	// UserAgent is sent on every request
	UserAgent string `json:"user_agent"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "http://localhost:8000",
		Timeout:   90 * time.Second,
		UserAgent: "pricing-detective/0.1.0",
	}
}

// Client talks to the analysis backend
type Client struct {
	config   *Config
	http     *http.Client
	identity IdentitySource
	logger   *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a new backend client
func New(config *Config, identity IdentitySource, opts ...Option) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	c := &Client{
		config:   config,
		identity: identity,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = newHTTPClient(config.Timeout)
	}
	c.logger = logging.Or(c.logger)
	return c
}

// analyzeBody is the wire form of an analysis request
type analyzeBody struct {
	Content  string  `json:"content"`
	ToolName *string `json:"tool_name"`
	Language string  `json:"language"`
}

// Analyze submits pricing content and returns the backend's result unmodified.
// Minimum length is the caller's rule; only blank content is rejected here.
func (c *Client) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, errors.Validation("content is empty")
	}

	body := analyzeBody{
		Content:  req.Content,
		Language: types.NormalizeLanguage(req.Language),
	}
	if name := strings.TrimSpace(req.ToolName); name != "" {
		body.ToolName = &name
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Internal("encode analysis request", err)
	}

	resp, err := c.do(ctx, http.MethodPost, analyzePath, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Transport("read analysis response", err)
	}

	if !isSuccess(resp.StatusCode) {
		detail := ParseErrorDetail(data)
		c.logger.Debug("analysis rejected",
			zap.Int("status", resp.StatusCode),
			zap.Stringer("detail_kind", detail.Kind))
		return nil, errors.Remote(resp.StatusCode, detail.Message(errors.GenericMessage))
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Transport("decode analysis response", err)
	}
	return &result, nil
}

// TrialStatus queries the remaining free quota for this device
func (c *Client) TrialStatus(ctx context.Context) (*types.TrialStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, trialStatusPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, errors.Remote(resp.StatusCode, TrialStatusUnavailable)
	}

	var status types.TrialStatus
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&status); err != nil {
		return nil, errors.Transport("decode trial status", err)
	}
	return &status, nil
}

// do resolves the device id and sends one request
func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	if c.identity == nil {
		return nil, errors.Identity("no identity source configured", nil)
	}
	id, err := c.identity.DeviceID(ctx)
	if err != nil {
		if !errors.IsType(err, errors.TypeIdentity) {
			err = errors.Identity("resolve device id", err)
		}
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	url := strings.TrimRight(c.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Transport(fmt.Sprintf("invalid URL %q", url), err)
	}

	req.Header.Set(HeaderDeviceID, id.String())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed", zap.String("path", path), zap.Error(err))
		return nil, errors.Transport(method+" "+path, err)
	}
	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
