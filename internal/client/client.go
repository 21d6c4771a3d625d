// Package client is the HTTP API client used by the terminal frontend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"notas/internal/core"
)

// ErrUnauthorized covers 401 and 403 answers. The frontend treats it as a
// signal to drop the session and go back to the login prompt.
var ErrUnauthorized = errors.New("not authorized")

type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		baseURL: baseURL,
	}
}

// SetToken installs the bearer token used on subsequent calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// ClearToken drops the session token.
func (c *Client) ClearToken() {
	c.token = ""
}

// LoggedIn reports whether a token is installed.
func (c *Client) LoggedIn() bool {
	return c.token != ""
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

func (c *Client) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error: %s", errResp.Error)
		}
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates the account and installs the returned token.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, "/api/register", username, password)
}

// Login exchanges credentials for a token and installs it.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, "/api/login", username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, path, credentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	var authResp struct {
		Token string `json:"token"`
	}
	if err := c.parseResponse(resp, &authResp); err != nil {
		return err
	}

	c.token = authResp.Token
	return nil
}

// List fetches every record of the logged-in user, newest date first.
func (c *Client) List(ctx context.Context) ([]core.Record, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/notas", nil)
	if err != nil {
		return nil, err
	}

	var records []core.Record
	if err := c.parseResponse(resp, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Create stores a new record and returns its id.
func (c *Client) Create(ctx context.Context, rec core.Record) (int64, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/notas", rec)
	if err != nil {
		return 0, err
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := c.parseResponse(resp, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// Update replaces all fields of the record identified by rec.ID.
func (c *Client) Update(ctx context.Context, rec core.Record) error {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/api/notas/%d", rec.ID), rec)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, nil)
}

// Delete removes the record. The server answers 200 even when the record
// is already gone.
func (c *Client) Delete(ctx context.Context, id int64) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/notas/%d", id), nil)
	if err != nil {
		return err
	}
	return c.parseResponse(resp, nil)
}
