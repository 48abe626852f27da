// Package authapi is the HTTP client for the booking platform's REST auth
// endpoints. It validates response shapes at the boundary and never persists
// anything: committing a login result to storage is the caller's explicit
// step, so the caller can inspect or transform the payload first.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	routeLogin    = "/auth/login"
	routeRegister = "/auth/register"

	defaultTimeout = 30 * time.Second
)

// Client talks to the auth API. No retries and no internal timeout policy
// beyond the HTTP client's: cancellation belongs to the caller's context.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for the API at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[authapi.New] baseURL is required")
	}
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// Login exchanges credentials for a token bundle. The result is returned
// as-is and not persisted.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	resp, err := c.post(ctx, routeLogin, loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login]")
	}
	return resp, nil
}

// Register creates an account and returns the same token bundle shape as
// Login. Nothing is persisted.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	resp, err := c.post(ctx, routeRegister, req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Register]")
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, route string, payload any) (*AuthResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.log.Debug().Str("route", route).Str("request_id", requestID).Msg("auth api request")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "POST %s", route)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrapf(err, "read response of %s", route)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Code: resp.StatusCode, Message: serverMessage(raw)}
		c.log.Warn().Str("route", route).Int("status", resp.StatusCode).Msg("auth api error response")
		return nil, statusErr
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrInvalidResponse
	}

	var auth AuthResponse
	if err := json.Unmarshal(raw, &auth); err != nil {
		return nil, errors.Wrapf(err, "decode response of %s", route)
	}
	if auth.Token == "" {
		return nil, ErrMissingToken
	}
	return &auth, nil
}

// serverMessage pulls a human-readable message out of an error body, which
// the API sends as either {"message": ...} or {"error": ...}.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
