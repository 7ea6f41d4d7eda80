// Package upstream talks to the AI/auth backend. Every response is decoded
// into a typed payload and validated before it reaches a handler.
package upstream

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

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// Upstream errors.
var (
	// ErrUnavailable indicates a transport failure or a non-2xx response.
	ErrUnavailable = errors.New("upstream: unavailable")
	// ErrContractViolation indicates a response that does not match its schema.
	ErrContractViolation = errors.New("upstream: contract violation")
)

const maxResponseBytes = 4 << 20

// StatusError carries the upstream status code of a failed call.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

// Unwrap makes errors.Is(err, ErrUnavailable) hold.
func (e *StatusError) Unwrap() error { return ErrUnavailable }

// Client calls the AI/auth backend.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
}

// NewClient builds a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:     &http.Client{Timeout: timeout},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// do sends body as JSON and decodes a 2xx response into out. A nil out
// discards the response body.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			return fmt.Errorf("upstream: encode %s: %w", path, errMarshal)
		}
		reader = bytes.NewReader(payload)
	}

	req, errReq := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if errReq != nil {
		return fmt.Errorf("upstream: build %s: %w", path, errReq)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, errDo := c.http.Do(req)
	if errDo != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, errDo)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("upstream: close response body error: %v", errClose)
		}
	}()

	payload, errRead := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if errRead != nil {
		return fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, errRead)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warnf("upstream: %s %s status=%d body=%s", method, path, resp.StatusCode, summarize(payload))
		return &StatusError{StatusCode: resp.StatusCode, Body: summarize(payload)}
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return fmt.Errorf("%w: %s: empty body", ErrContractViolation, path)
	}
	if errUnmarshal := json.Unmarshal(payload, out); errUnmarshal != nil {
		return fmt.Errorf("%w: %s: %v", ErrContractViolation, path, errUnmarshal)
	}
	if errValidate := c.check(out); errValidate != nil {
		return fmt.Errorf("%w: %s: %v", ErrContractViolation, path, errValidate)
	}
	return nil
}

// check validates a struct or a pointer to a slice of structs.
func (c *Client) check(out any) error {
	switch v := out.(type) {
	case *[]SelfIntroFeedback:
		return c.validate.Var(*v, "dive")
	case *[]ProfileMatch:
		return c.validate.Var(*v, "dive")
	case *json.RawMessage:
		return nil
	default:
		return c.validate.Struct(out)
	}
}

func summarize(payload []byte) string {
	trimmed := strings.TrimSpace(string(payload))
	if len(trimmed) > 256 {
		return trimmed[:256] + "..."
	}
	return trimmed
}
