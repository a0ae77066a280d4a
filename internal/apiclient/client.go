// Package apiclient talks to the portal REST API. It never retries; every
// retry is a fresh call from the user.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskportal/pkg/logger"
	"taskportal/pkg/metrics"
	"taskportal/pkg/trace"
)

const maxErrorBody = 1 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// do sends one request. body, when non-nil, is JSON encoded; out, when
// non-nil, receives the decoded 2xx body. fallback is the message used when a
// failed response carries no usable error field.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any, fallback string) error {
	ctx, traceID := trace.Ensure(ctx)
	log := logger.WithTrace(ctx, c.logger)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Message: fallback, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Message: fallback, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(trace.HeaderName, traceID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := &Error{Op: op, Message: NetworkErrorMessage, Err: err}
		metrics.RecordAPICallLatency(op, apiErr.Kind(), time.Since(start))
		log.Warn("API request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("kind", apiErr.Kind()),
			zap.Error(err),
		)
		return apiErr
	}
	defer resp.Body.Close()
	metrics.RecordAPICallLatency(op, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body, fallback),
		}
		log.Info("API request rejected",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("error", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Warn("API response decode failed", zap.String("op", op), zap.Error(err))
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: fallback, Err: err}
	}

	log.Debug("API request ok",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// errorMessage extracts the "error" field of a failure body.
func errorMessage(r io.Reader, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return fallback
	}
	if err := json.Unmarshal(data, &payload); err != nil || strings.TrimSpace(payload.Error) == "" {
		return fallback
	}
	return payload.Error
}
