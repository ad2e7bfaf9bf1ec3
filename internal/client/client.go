// Package client talks to an ironmeet server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/existflow/ironmeet/internal/api"
	"github.com/existflow/ironmeet/internal/billing"
	"github.com/existflow/ironmeet/internal/db"
	"github.com/existflow/ironmeet/internal/model"
)

var ErrNotLoggedIn = errors.New("not logged in, run 'ironmeet auth login' first")

// Session is the persisted login state
type Session struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
}

// Client is the API client
type Client struct {
	session    *Session
	path       string
	httpClient *http.Client
}

// DefaultSessionPath returns ~/.ironmeet/session.json
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".ironmeet", "session.json")
	}
	return filepath.Join(home, ".ironmeet", "session.json")
}

// New loads the session stored at path. serverURL is used when no session
// exists yet or when it is set explicitly.
func New(path, serverURL string) (*Client, error) {
	c := &Client{
		path:       path,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if err := c.loadSession(); err != nil {
		return nil, err
	}
	if serverURL != "" && c.session.ServerURL == "" {
		c.session.ServerURL = serverURL
	}
	return c, nil
}

// NewWithSession returns a client that never touches disk
func NewWithSession(s Session, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{session: &s, httpClient: hc}
}

func (c *Client) loadSession() error {
	c.session = &Session{}
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if err := json.Unmarshal(data, c.session); err != nil {
		return fmt.Errorf("failed to parse session: %w", err)
	}
	return nil
}

func (c *Client) saveSession() error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c.session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

// SetServer changes the server URL and persists it
func (c *Client) SetServer(url string) error {
	c.session.ServerURL = strings.TrimRight(url, "/")
	return c.saveSession()
}

// IsLoggedIn returns true if a session token is stored
func (c *Client) IsLoggedIn() bool {
	return c.session.Token != ""
}

// Status returns the server URL and the logged-in user
func (c *Client) Status() (serverURL, userID string) {
	return c.session.ServerURL, c.session.UserID
}

// APIError is a non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap lets callers match API errors with the store's sentinel errors
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return db.ErrNotFound
	case http.StatusBadRequest:
		return model.ErrValidation
	}
	return nil
}

// do sends a JSON request and decodes the response into out when non-nil
func (c *Client) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	if auth && !c.IsLoggedIn() {
		return ErrNotLoggedIn
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.session.ServerURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e api.ErrorResponse
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Register creates a new account and stores the session
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	var res api.AuthResponse
	req := api.RegisterRequest{Username: username, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/register", req, &res, false); err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	return c.storeAuth(res)
}

// Login authenticates with username and password
func (c *Client) Login(ctx context.Context, username, password string) error {
	var res api.AuthResponse
	req := api.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/login", req, &res, false); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return c.storeAuth(res)
}

func (c *Client) storeAuth(res api.AuthResponse) error {
	c.session.Token = res.Token
	c.session.UserID = res.UserID
	return c.saveSession()
}

// Logout ends the server session and clears the local one. The local
// session is cleared even if the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if c.IsLoggedIn() {
		err = c.do(ctx, http.MethodPost, "/api/v1/logout", nil, nil, true)
	}
	c.session.Token = ""
	c.session.UserID = ""
	if serr := c.saveSession(); serr != nil {
		return serr
	}
	return err
}

// Me returns the logged-in user
func (c *Client) Me(ctx context.Context) (api.UserResponse, error) {
	var u api.UserResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &u, true)
	return u, err
}

// Billing returns the user's plan summary
func (c *Client) Billing(ctx context.Context) (billing.Summary, error) {
	var s billing.Summary
	err := c.do(ctx, http.MethodGet, "/api/v1/billing", nil, &s, true)
	return s, err
}
