package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrAnonymous is returned when the token does not resolve to an
// authenticated user. Callers treat it as the anonymous arm of the session
// result rather than a transport failure.
var ErrAnonymous = errors.New("sessions: anonymous")

// Session identifies an authenticated user as reported by the session provider.
type Session struct {
	UserID  string
	Name    string
	Email   string
	IsAdmin bool
}

// Client defines the contract for resolving a session token against the
// external session provider.
type Client interface {
	Resolve(ctx context.Context, token string) (Session, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	client  *http.Client
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed session client.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse sessions url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Resolve exchanges a bearer token for the session identity. An empty token
// short-circuits to ErrAnonymous without a network round trip.
func (c *HTTPClient) Resolve(ctx context.Context, token string) (Session, error) {
	if strings.TrimSpace(token) == "" {
		return Session{}, ErrAnonymous
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: "/sessions/verify"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Session{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload sessionPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return Session{}, fmt.Errorf("decode session response: %w", err)
		}
		if payload.UserID == "" {
			return Session{}, ErrAnonymous
		}
		return Session{
			UserID:  payload.UserID,
			Name:    payload.Name,
			Email:   payload.Email,
			IsAdmin: payload.IsAdmin,
		}, nil
	case http.StatusUnauthorized, http.StatusNotFound:
		return Session{}, ErrAnonymous
	default:
		c.logger.Printf("sessions: unexpected status %d from provider", resp.StatusCode)
		return Session{}, fmt.Errorf("sessions: provider returned %d", resp.StatusCode)
	}
}

type sessionPayload struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}
