// Package client provides an HTTP client for the bloggu REST API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/bloggu/internal/comment"
	"github.com/evcraddock/bloggu/internal/user"
)

// Client is an HTTP client for the bloggu API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. An empty token sends no Authorization header.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a failed API call as reported by the server.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %s", http.StatusText(e.Status))
	}
	return e.Message
}

// Health checks that the server is up.
func (c *Client) Health() error {
	return c.do("GET", "/health", nil, nil)
}

// Signup creates an account.
func (c *Client) Signup(username, password, group string) (*user.User, error) {
	body := user.SignupRequest{Username: username, Password: password, Group: group}
	var u user.User
	if err := c.do("POST", "/signup", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do("POST", "/login", body, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Me returns the user the token belongs to.
func (c *Client) Me() (*user.User, error) {
	var u user.User
	if err := c.do("GET", "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every user.
func (c *Client) ListUsers() ([]*user.User, error) {
	var users []*user.User
	if err := c.do("GET", "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateMe changes the caller's username and/or group.
func (c *Client) UpdateMe(req user.UpdateRequest) (*user.User, error) {
	var u user.User
	if err := c.do("PATCH", "/users/me", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteMe removes the caller's account.
func (c *Client) DeleteMe() (bool, error) {
	return c.doDelete("/users/me")
}

// ListComments returns the comments visible to the caller.
func (c *Client) ListComments() ([]*comment.Comment, error) {
	var comments []*comment.Comment
	if err := c.do("GET", "/comments", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// GetComment returns one visible comment.
func (c *Client) GetComment(id int64) (*comment.Comment, error) {
	var comm comment.Comment
	if err := c.do("GET", fmt.Sprintf("/comments/%d", id), nil, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// AddComment creates a comment owned by the caller.
func (c *Client) AddComment(content string) (*comment.Comment, error) {
	body := map[string]string{"content": content}
	var comm comment.Comment
	if err := c.do("POST", "/comments", body, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// EditComment replaces the content of one of the caller's comments.
func (c *Client) EditComment(id int64, content string) (*comment.Comment, error) {
	body := map[string]string{"content": content}
	var comm comment.Comment
	if err := c.do("PUT", fmt.Sprintf("/comments/%d", id), body, &comm); err != nil {
		return nil, err
	}
	return &comm, nil
}

// DeleteComment removes one of the caller's comments and reports whether it existed.
func (c *Client) DeleteComment(id int64) (bool, error) {
	return c.doDelete(fmt.Sprintf("/comments/%d", id))
}

// CommentHistory returns the edit history of one visible comment.
func (c *Client) CommentHistory(id int64) ([]*comment.History, error) {
	var entries []*comment.History
	if err := c.do("GET", fmt.Sprintf("/comments/%d/histories", id), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListHistory returns every history entry visible to the caller.
func (c *Client) ListHistory() ([]*comment.History, error) {
	var entries []*comment.History
	if err := c.do("GET", "/comment_histories", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetHistory returns one visible history entry.
func (c *Client) GetHistory(id int64) (*comment.History, error) {
	var h comment.History
	if err := c.do("GET", fmt.Sprintf("/comment_histories/%d", id), nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// doDelete performs a DELETE request and returns the deleted flag.
func (c *Client) doDelete(path string) (bool, error) {
	var resp struct {
		Deleted bool `json:"deleted"`
	}
	if err := c.do("DELETE", path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Deleted, nil
}

// do executes an HTTP request with a JSON body and auth header and decodes the response.
func (c *Client) do(method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.Message = errResp.Error
			apiErr.Kind = errResp.Kind
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
