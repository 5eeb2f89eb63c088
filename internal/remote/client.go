// Package remote implements the authoritative record store over the
// bt-sync HTTP API. Transport-level failures are folded into
// store.ErrNetworkUnavailable so callers can tell "offline" apart from a
// server rejection.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/jstrand/bt/internal/store"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Client is an HTTP client for the bt-sync server, scoped to one user.
type Client struct {
	BaseURL  string
	APIKey   string
	DeviceID string
	HTTP     *http.Client
}

var _ store.RemoteStore = (*Client)(nil)

// New creates a record-store client.
func New(baseURL, apiKey, deviceID string) *Client {
	return &Client{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		DeviceID: deviceID,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

// HealthResponse is the response from GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthCheck hits the /healthz endpoint to verify server reachability.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, "GET", "/healthz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignupRequest is the body for POST /v1/auth/signup.
type SignupRequest struct {
	Email      string `json:"email"`
	DeviceName string `json:"device_name,omitempty"`
}

// SignupResponse carries the issued credentials. The API key is only ever
// returned here.
type SignupResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	APIKey string `json:"api_key"`
}

// Signup registers (or re-registers) an email and returns a fresh API key.
// Works on an unauthenticated client.
func (c *Client) Signup(ctx context.Context, email, deviceName string) (*SignupResponse, error) {
	body, err := json.Marshal(SignupRequest{Email: email, DeviceName: deviceName})
	if err != nil {
		return nil, fmt.Errorf("encode signup request: %w", err)
	}
	var resp SignupResponse
	if err := c.do(ctx, "POST", "/v1/auth/signup", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MeResponse describes the account behind the configured API key.
type MeResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Premium bool   `json:"premium"`
}

// Me fetches the authenticated account, including its premium tier.
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.do(ctx, "GET", "/v1/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches a record document. An absent record is (nil, nil).
func (c *Client) Get(ctx context.Context, userID string, kind store.RecordKind) (json.RawMessage, error) {
	var doc json.RawMessage
	err := c.do(ctx, "GET", recordPath(userID, kind), nil, &doc)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Set writes a record document. With merge, fields present in the document
// are folded into the stored record instead of replacing it wholesale.
func (c *Client) Set(ctx context.Context, userID string, kind store.RecordKind, record json.RawMessage, merge bool) error {
	path := recordPath(userID, kind)
	if merge {
		path += "?merge=1"
	}
	return c.do(ctx, "PUT", path, record, nil)
}

// Delete removes a record document. Deleting an absent record is a no-op.
func (c *Client) Delete(ctx context.Context, userID string, kind store.RecordKind) error {
	err := c.do(ctx, "DELETE", recordPath(userID, kind), nil, nil)
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

func recordPath(userID string, kind store.RecordKind) string {
	return fmt.Sprintf("/v1/users/%s/records/%s", userID, kind)
}

// errNotFound is internal: Get and Delete translate it to "absent".
var errNotFound = errors.New("not found")

// apiError is the standard error body from the server.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// do executes one authenticated request. Dial/timeout failures come back
// wrapped in store.ErrNetworkUnavailable; HTTP-level rejections carry the
// server's error body.
func (c *Client) do(ctx context.Context, method, path string, body json.RawMessage, result any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	if c.DeviceID != "" {
		req.Header.Set("X-Device-ID", c.DeviceID)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if isNetworkErr(err) {
			return fmt.Errorf("%w: %v", store.ErrNetworkUnavailable, err)
		}
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", store.ErrNetworkUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error apiError `json:"error"`
		}
		haveBody := json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Code != ""
		apiErr := errResp.Error
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrForbidden, apiErr.Message)
		case http.StatusNotFound:
			return errNotFound
		}
		if resp.StatusCode >= 500 {
			// Server-side failure is as unusable as no network for our
			// purposes: degrade and retry later.
			return fmt.Errorf("%w: HTTP %d", store.ErrNetworkUnavailable, resp.StatusCode)
		}
		if haveBody {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// isNetworkErr classifies a transport error as connectivity-related.
func isNetworkErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
