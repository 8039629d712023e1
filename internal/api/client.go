package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/taskboard/internal/logger"
	"go.uber.org/zap"
)

// fallbackMessage is used when an error response carries no readable detail
const fallbackMessage = "request failed"

// Client is the only component that talks to the backend. It injects the
// bearer token and turns 401 responses into session expiry.
type Client struct {
	baseURL        string
	http           *http.Client
	token          func() string
	onUnauthorized func()
}

// NewClient creates a client for the API rooted at baseURL (e.g.
// "http://localhost:8000/api"). A zero timeout keeps the transport default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   func() string { return "" },
	}
}

// SetTokenSource sets where the bearer token is read from on every request
func (c *Client) SetTokenSource(token func() string) {
	c.token = token
}

// OnUnauthorized sets the hook run when an authenticated request gets a 401
func (c *Client) OnUnauthorized(hook func()) {
	c.onUnauthorized = hook
}

// Do sends one request. body, when non-nil, is encoded as JSON; out, when
// non-nil, receives the decoded response. A 204 leaves out untouched.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("api request failed", err,
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID))
		return &RequestError{Method: method, Path: path, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	logger.Request(method, path, requestID, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized && token != "":
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrSessionExpired

	case resp.StatusCode == http.StatusNoContent:
		return nil

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &RequestError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &RequestError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: "invalid response from server",
			Err:     err,
		}
	}
	return nil
}

// errorMessage extracts {"detail": ...} from an error body. FastAPI sends
// either a string or a list of validation errors with "msg" fields.
func errorMessage(r io.Reader) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil || len(payload.Detail) == 0 {
		return fallbackMessage
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		if text == "" {
			return fallbackMessage
		}
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		var msgs []string
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return fallbackMessage
}
