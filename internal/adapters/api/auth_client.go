package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/config"
	"github.com/iristrack/core/internal/infrastructure/logger"
	"github.com/iristrack/core/internal/ports"
)

// Route names under the auth base path.
const (
	routeSignup       = "signup"
	routeSignin       = "signin"
	routeAuthenticate = "authenticate"
	routeSecret       = "secret"
	routeUsers        = "users"
)

// AuthHTTPClient talks to the remote /v1/auth API. It reports raw status
// codes; the session service owns the mapping onto results and errors.
type AuthHTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

// NewAuthClient creates an auth transport for the configured base URL.
func NewAuthClient(cfg config.APIConfig, logger *logger.Logger) *AuthHTTPClient {
	return &AuthHTTPClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		logger:  logger,
	}
}

// SignUp submits credentials to the account creation endpoint.
func (c *AuthHTTPClient) SignUp(ctx context.Context, creds entities.Credentials) (int, error) {
	resp, err := c.postJSON(ctx, routeSignup, creds)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// SignIn submits credentials to the authentication endpoint and decodes the
// bearer token from a 200 response.
func (c *AuthHTTPClient) SignIn(ctx context.Context, creds entities.Credentials) (int, string, error) {
	resp, err := c.postJSON(ctx, routeSignin, creds)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, "", nil
	}

	var tr ports.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to decode token response: %w", err)
	}

	return resp.StatusCode, tr.Token, nil
}

// Authenticate verifies the stored token against the remote session check.
func (c *AuthHTTPClient) Authenticate(ctx context.Context, token string) (int, error) {
	resp, err := c.get(ctx, routeAuthenticate, token)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// WhoAmI resolves the remote user id for the given token. The 200 body is the
// raw user id string.
func (c *AuthHTTPClient) WhoAmI(ctx context.Context, token string) (int, string, error) {
	resp, err := c.get(ctx, routeSecret, token)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read user id: %w", err)
	}

	return resp.StatusCode, string(body), nil
}

// DeleteUser issues the remote account deletion for the given user id.
func (c *AuthHTTPClient) DeleteUser(ctx context.Context, userID string) (int, error) {
	endpoint, err := url.JoinPath(c.baseURL, routeUsers, userID)
	if err != nil {
		return 0, entities.ErrBadURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("delete user request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

func (c *AuthHTTPClient) postJSON(ctx context.Context, route string, body any) (*http.Response, error) {
	endpoint, err := url.JoinPath(c.baseURL, route)
	if err != nil {
		return nil, entities.ErrBadURL
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", route, err)
	}

	return resp, nil
}

func (c *AuthHTTPClient) get(ctx context.Context, route, token string) (*http.Response, error) {
	endpoint, err := url.JoinPath(c.baseURL, route)
	if err != nil {
		return nil, entities.ErrBadURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", route, err)
	}

	return resp, nil
}
