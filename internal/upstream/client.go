// Package upstream holds the HTTP clients for the breed-data API, the
// encyclopedia summary and image-metadata APIs, and the chat completion API.
//
// No client retries. Every failure is returned as a *types.Error so callers can
// tell a missing article (NotFound) from a broken upstream (Upstream), a slow one
// (Timeout) or an unreadable reply (Parse).
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/LavishGent/breedbase/internal/metrics"
	"github.com/LavishGent/breedbase/internal/types"
)

// Upstream source names used in logs and metrics.
const (
	SourceDogAPI    = "dogapi"
	SourceWikipedia = "wikipedia"
	SourceOpenAI    = "openai"
)

// maxErrorBody caps how much of a non-2xx body is kept for the error message.
const maxErrorBody = 512

// Client wraps an http.Client with the user agent, metrics and error
// classification shared by every upstream.
type Client struct {
	http      *http.Client
	userAgent string
	metrics   types.MetricsRecorder
	logger    *slog.Logger
}

// NewClient creates a Client. A nil httpClient uses a client with a 10 second timeout.
func NewClient(httpClient *http.Client, userAgent string, recorder types.MetricsRecorder, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if recorder == nil {
		recorder = metrics.NewNoOpTracker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:      httpClient,
		userAgent: userAgent,
		metrics:   recorder,
		logger:    logger.With("component", "upstream"),
	}
}

// WithHTTPClient returns a copy of c that sends through httpClient.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	cp := *c
	cp.http = httpClient
	return &cp
}

// doJSON sends req and decodes a 2xx JSON body into out. op names the call in errors.
func (c *Client) doJSON(req *http.Request, source, op string, out any) error {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		classified := classifyTransportError(req.Context(), op, err)
		c.metrics.RecordUpstream(source, 0, time.Since(start), classified)
		c.logger.Debug("Upstream request failed", "source", source, "op", op, "error", err)
		return classified
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := statusError(op, resp.StatusCode, body)
		c.metrics.RecordUpstream(source, resp.StatusCode, time.Since(start), statusErr)
		c.logger.Debug("Upstream returned non-success status", "source", source, "op", op, "status", resp.StatusCode)
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		parseErr := types.NewParseError(op, err)
		c.metrics.RecordUpstream(source, resp.StatusCode, time.Since(start), parseErr)
		return parseErr
	}

	c.metrics.RecordUpstream(source, resp.StatusCode, time.Since(start), nil)
	return nil
}

func statusError(op string, status int, body []byte) error {
	cause := fmt.Errorf("HTTP %d: %s", status, truncate(string(body), maxErrorBody))
	if status == http.StatusNotFound {
		return &types.Error{Kind: types.ErrNotFound, Op: op, Status: status, Err: cause}
	}
	return types.NewUpstreamError(op, status, cause)
}

// classifyTransportError maps deadline expiry to Timeout, caller cancellation to
// itself, and anything else to Upstream.
func classifyTransportError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return types.NewTimeoutError(op, err)
	}
	return types.NewUpstreamError(op, 0, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
