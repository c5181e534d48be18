package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studiowebux/inplace/internal/types"
)

// Journal records every update attempt
type Journal interface {
	Record(req *types.UpdateRequest, res *types.UpdateResult) error
}

// Client sends update requests
type Client struct {
	http          *http.Client
	emulateMethod bool
	journal       Journal
	logger        *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout bounds each request. Zero means no limit.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.http.Timeout = d
	}
}

// WithEmulatedMethod sends every update as POST and relies on _method
func WithEmulatedMethod(on bool) ClientOption {
	return func(cl *Client) {
		cl.emulateMethod = on
	}
}

// WithJournal records each attempt
func WithJournal(j Journal) ClientOption {
	return func(cl *Client) {
		cl.journal = j
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// NewClient returns a client without a request timeout
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:   &http.Client{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("transport")
	return c
}

// Send performs the update and returns its result. A non-2xx reply yields
// both the result and a *StatusError.
func (c *Client) Send(ctx context.Context, req *types.UpdateRequest) (*types.UpdateResult, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	result, err := c.send(ctx, req)
	if result.Error == "" && err != nil {
		result.Error = err.Error()
	}

	c.logger.Info("update",
		zap.String("id", req.ID),
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.String("field", req.Field()),
		zap.Int("status", result.Status),
		zap.Int64("duration_ms", result.Duration),
		zap.Error(err))

	if c.journal != nil {
		if jerr := c.journal.Record(req, result); jerr != nil {
			c.logger.Warn("failed to record update", zap.String("id", req.ID), zap.Error(jerr))
		}
	}
	return result, err
}

func (c *Client) send(ctx context.Context, req *types.UpdateRequest) (*types.UpdateResult, error) {
	startTime := time.Now()
	body := EncodeBody(req)
	result := &types.UpdateResult{
		RequestID:   req.ID,
		RequestSize: len(body),
	}

	method := strings.ToUpper(req.Method)
	if method == "" || c.emulateMethod {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bytes.NewBufferString(body))
	if err != nil {
		return result, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	httpReq.Header.Set("X-Requested-With", "XMLHttpRequest")
	httpReq.Header.Set("X-Request-Id", req.ID)

	resp, err := c.http.Do(httpReq)
	result.Duration = time.Since(startTime).Milliseconds()
	if err != nil {
		return result, fmt.Errorf("failed to send update: %w", err)
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	result.StatusText = resp.Status

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("failed to read response body: %w", err)
	}
	result.Body = string(bodyBytes)
	result.ResponseSize = len(bodyBytes)

	if !IsSuccessStatus(resp.StatusCode) {
		return result, &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: result.Body}
	}
	return result, nil
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
