package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Client talks to the peer-management service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Session is the authenticated state returned by Login. Every call that
// needs authorization goes through it.
type Session struct {
	client *Client
	Result LoginResult
}

// NewClient creates a client for the service at baseURL. A zero timeout
// leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// Login posts the credentials once and returns the session carrying
// whatever cookies the service set. A rejected login is not an error;
// inspect Session.Result.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	slog.Info("Logging in to peer-management service", "url", c.baseURL, "username", creds.Username)

	resp, err := c.postJSON(ctx, c.baseURL+"/login", creds)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	result := LoginResult{StatusCode: resp.StatusCode}

	var msg StatusMessage
	if err := json.Unmarshal(resp.Body, &msg); err != nil {
		slog.Debug("Login response is not JSON", "error", err)
	} else {
		result.Status = msg.Status
		result.Message = msg.Message
	}

	if result.OK() {
		slog.Info("Login successful")
	} else {
		slog.Warn("Login rejected", "status", resp.StatusCode, "message", result.Message)
	}

	return &Session{client: c, Result: result}, nil
}

// ListClients returns the clients already registered on the service
func (s *Session) ListClients(ctx context.Context) ([]ExistingClient, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.baseURL+"/api/clients", nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("failed to list clients: unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(resp.Body))
	}

	var data []clientData
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse client list: %w", err)
	}

	clients := make([]ExistingClient, 0, len(data))
	for _, d := range data {
		if d.Client != nil {
			clients = append(clients, *d.Client)
		}
	}

	slog.Debug("Fetched existing clients", "count", len(clients))
	return clients, nil
}

// CreateClient submits one client to url. The status code is not checked.
func (s *Session) CreateClient(ctx context.Context, url string, payload ClientPayload) (*Response, error) {
	resp, err := s.client.postJSON(ctx, url, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create client %q: %w", payload.Name, err)
	}
	return resp, nil
}

// postJSON sends v as a JSON body. The service only accepts the exact
// content type "application/json".
func (c *Client) postJSON(ctx context.Context, url string, v any) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	slog.Debug("HTTP request completed", "method", req.Method, "url", req.URL.String(), "status", resp.StatusCode)
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
