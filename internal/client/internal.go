package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ev-service-center/pkg/apperr"

	"go.uber.org/zap"
)

// Internal is the base JSON-over-HTTP caller for service-to-service
// traffic. Every request carries the shared X-Internal-Token and runs
// under a bounded timeout; a stalled peer can never block a request
// thread indefinitely. Failures of any kind surface as ErrUpstream.
type Internal struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

func NewInternal(baseURL, token string, timeout time.Duration, log *zap.Logger) *Internal {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Internal{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log.With(zap.String("client", "internal"), zap.String("base_url", baseURL)),
	}
}

// do performs one call. out, when non-nil, receives the decoded 2xx body.
func (c *Internal) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request for %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("X-Internal-Token", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Internal call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("call %s %s: %v: %w", method, path, err, apperr.ErrUpstream)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response of %s %s: %v: %w", method, path, err, apperr.ErrUpstream)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		c.log.Warn("Internal call returned error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", msg),
		)
		return fmt.Errorf("%s %s: %s: %w", method, path, msg, apperr.ErrUpstream)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response of %s %s: %v: %w", method, path, err, apperr.ErrUpstream)
		}
	}

	return nil
}
