// Package apiclient is the single dispatch point for calls to the upstream REST API.
// Every call carries the bearer token of the session it was made for, and reads go
// through the tag-indexed response cache.
package apiclient

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

	"go.uber.org/zap"

	"github.com/spec-kit/retailer-dashboard/internal/cache"
	"github.com/spec-kit/retailer-dashboard/internal/observability"
)

const defaultMaxResponseBytes = 2 * 1024 * 1024

// TokenSource resolves the bearer token for outgoing calls.
type TokenSource interface {
	AccessToken() string
}

// Config configures the upstream connection.
type Config struct {
	BaseURL          string
	MediaBaseURL     string
	Timeout          time.Duration
	MaxResponseBytes int64
}

// Client holds the process-wide upstream connection and cache.
type Client struct {
	baseURL    string
	mediaBase  string
	maxBytes   int64
	httpClient *http.Client
	cache      *cache.Cache
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// New validates cfg and builds a Client.
func New(cfg Config, responses *cache.Cache, logger *zap.Logger, metrics *observability.Metrics) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", base)
	}

	media := strings.TrimSpace(cfg.MediaBaseURL)
	if media == "" {
		media = base
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = defaultMaxResponseBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if responses == nil {
		responses = cache.New(cache.NewMemoryStore(), cache.DefaultTTL)
	}

	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		mediaBase:  strings.TrimRight(media, "/"),
		maxBytes:   cfg.MaxResponseBytes,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      responses,
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Ping checks that the upstream API answers at all. Any HTTP status counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream unreachable: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// WithTokens returns a view of the client that authenticates as tokens.
func (c *Client) WithTokens(tokens TokenSource) *Session {
	return &Session{client: c, tokens: tokens}
}

// Session issues calls on behalf of one token source.
type Session struct {
	client *Client
	tokens TokenSource
}

func (s *Session) token() string {
	if s.tokens == nil {
		return ""
	}
	return s.tokens.AccessToken()
}

func (s *Session) scope() string {
	return cache.Scope(s.token())
}

// envelope is the wrapper every upstream response uses.
type envelope struct {
	Success    *bool           `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func (e envelope) hasData() bool {
	return len(e.Data) > 0 && !bytes.Equal(bytes.TrimSpace(e.Data), []byte("null"))
}

type request struct {
	op      string
	method  string
	path    string
	query   url.Values
	payload any
	form    *form
}

// do performs req and returns the decoded envelope. A non-2xx status, or an
// envelope reporting success=false, is returned as *Error.
func (s *Session) do(ctx context.Context, req request) (envelope, error) {
	c := s.client
	start := time.Now()

	body, contentType, err := req.encode()
	if err != nil {
		return envelope{}, &Error{Op: req.op, Message: err.Error(), Err: err}
	}

	fullURL := c.baseURL + ensureLeadingSlash(req.path)
	if len(req.query) > 0 {
		fullURL += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, body)
	if err != nil {
		return envelope{}, &Error{Op: req.op, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token := s.token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordUpstream(req.op, 0)
		c.logger.Warn("upstream call failed",
			zap.String("op", req.op),
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return envelope{}, &Error{Op: req.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	c.metrics.RecordUpstream(req.op, resp.StatusCode)
	c.logger.Debug("upstream call",
		zap.String("op", req.op),
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		return envelope{}, &Error{Op: req.op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Op: req.op, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
		c.logger.Warn("upstream rejected call",
			zap.String("op", req.op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return envelope{}, apiErr
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, malformed(req.op, resp.StatusCode, err)
	}
	if env.Success != nil && !*env.Success {
		status := env.StatusCode
		if status == 0 {
			status = http.StatusBadRequest
		}
		return envelope{}, &Error{Op: req.op, StatusCode: status, Message: env.Message}
	}
	if !env.hasData() && env.Success == nil {
		// Unwrapped bodies are treated as the data itself.
		env.Data = raw
	}
	return env, nil
}

// decode runs req and unmarshals the envelope data into out. requireData turns a
// missing data block into a malformed-response error.
func (s *Session) decode(ctx context.Context, req request, out any, requireData bool) (envelope, error) {
	env, err := s.do(ctx, req)
	if err != nil {
		return env, err
	}
	if !env.hasData() {
		if requireData {
			return env, malformed(req.op, env.StatusCode, errors.New("response has no data"))
		}
		return env, nil
	}
	if out == nil {
		return env, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return env, malformed(req.op, env.StatusCode, err)
	}
	return env, nil
}

func (r request) encode() (io.Reader, string, error) {
	switch {
	case r.form != nil:
		return r.form.encode()
	case r.payload != nil:
		raw, err := json.Marshal(r.payload)
		if err != nil {
			return nil, "", fmt.Errorf("marshal request body: %w", err)
		}
		return bytes.NewReader(raw), "application/json", nil
	default:
		return nil, "", nil
	}
}

func ensureLeadingSlash(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "/"
	}
	if strings.HasPrefix(trimmed, "/") {
		return trimmed
	}
	return "/" + trimmed
}
