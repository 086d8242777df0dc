// Package client implements recovery.Endpoints over HTTP/JSON.
package client

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

	"password-recovery/internal/recovery"
)

const (
	defaultTimeout = 15 * time.Second
	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 64 << 10
	userAgent    = "password-recovery-client/1"
)

// ErrBadResponse is returned when the endpoint answered with a body that is not the
// expected {success, error} JSON object.
var ErrBadResponse = errors.New("client: malformed response body")

// Client calls the recovery endpoints of the server at BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a Client for baseURL (e.g. http://localhost:8080). timeout <= 0 uses 15s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// RequestCode posts {phone} to the code request endpoint.
func (c *Client) RequestCode(ctx context.Context, req recovery.CodeRequest) (*recovery.Response, error) {
	return c.post(ctx, recovery.CodeRequestPath, req)
}

// ResetPassword posts {phone, code, newPassword} to the reset endpoint.
func (c *Client) ResetPassword(ctx context.Context, req recovery.ResetRequest) (*recovery.Response, error) {
	return c.post(ctx, recovery.PasswordResetPath, req)
}

// post sends body as JSON and decodes the {success, error} reply regardless of status code.
// Any failure to complete the exchange is returned as an error.
func (c *Client) post(ctx context.Context, path string, body interface{}) (*recovery.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	var out recovery.Response
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: status=%d: %v", ErrBadResponse, resp.StatusCode, err)
	}
	return &out, nil
}
