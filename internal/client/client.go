// Package client provides an HTTP client for the FlowMind server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Client talks to the FlowMind server's JSON API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client.
// If baseURL is empty, uses FLOWMIND_SERVER_URL env var or defaults to localhost:8686.
// Timeout can be configured via FLOWMIND_CLIENT_TIMEOUT env var (default 30s).
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("FLOWMIND_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8686"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := 30 * time.Second
	if t := os.Getenv("FLOWMIND_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetToken sets the bearer token sent with authenticated requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiError is the error body returned by the server.
type apiError struct {
	Error string `json:"error"`
}

// do sends one JSON request and decodes the response into result.
func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error: %s", apiErr.Error)
		}
		return fmt.Errorf("server error: %s - %s", resp.Status, string(raw))
	}

	if result != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// =============================================================================
// TYPES (matching server JSON)
// =============================================================================

// User is the public account view.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Plan          string    `json:"plan"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Session is the reply to login and refresh.
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Detail is a note attached to an entry.
type Detail struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	AddedAt time.Time `json:"added_at"`
}

// Entry is an analyzed input item.
type Entry struct {
	ID           string              `json:"id"`
	OriginalText string              `json:"original_text"`
	CleanText    string              `json:"clean_text"`
	DueDate      *time.Time          `json:"due_date,omitempty"`
	Category     string              `json:"category"`
	Priority     string              `json:"priority"`
	Keywords     []string            `json:"keywords"`
	Entities     map[string][]string `json:"entities"`
	Details      []Detail            `json:"details"`
	Completed    bool                `json:"completed"`
	CreatedAt    time.Time           `json:"created_at"`
	LastUpdated  time.Time           `json:"last_updated"`
}

// Task is an actionable item derived from an entry.
type Task struct {
	ID        string     `json:"id"`
	EntryID   string     `json:"entry_id,omitempty"`
	Text      string     `json:"text"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Category  string     `json:"category"`
	Priority  string     `json:"priority"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
}

// Connection links two related entries.
type Connection struct {
	ID       string   `json:"id"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Strength int      `json:"strength"`
	Reasons  []string `json:"reasons"`
	Type     string   `json:"type"`
}

// AddResult summarizes what one entry submission produced.
type AddResult struct {
	Entry       *Entry       `json:"entry"`
	Task        *Task        `json:"task,omitempty"`
	Draft       bool         `json:"draft"`
	Connections []Connection `json:"connections,omitempty"`
}

// SessionStats holds per-session counters.
type SessionStats struct {
	Entries        int            `json:"entries"`
	Tasks          int            `json:"tasks"`
	CompletedTasks int            `json:"completed_tasks"`
	Drafts         int            `json:"drafts"`
	Connections    int            `json:"connections"`
	ByCategory     map[string]int `json:"by_category"`
}

// OperationStats holds metrics for a single operation type.
type OperationStats struct {
	Count       int64   `json:"count"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// ServerStats holds in-memory runtime statistics (resets on server restart).
type ServerStats struct {
	UptimeSeconds float64         `json:"uptime_seconds"`
	Analyze       *OperationStats `json:"analyze,omitempty"`
	Connect       *OperationStats `json:"connect,omitempty"`
	DBQuery       *OperationStats `json:"db_query,omitempty"`
	HTTPRequest   *OperationStats `json:"http_request,omitempty"`
}

// Event is one entry from the live session feed.
type Event struct {
	Kind        string       `json:"kind"`
	Entry       *Entry       `json:"entry,omitempty"`
	Task        *Task        `json:"task,omitempty"`
	Connections []Connection `json:"connections,omitempty"`
	At          time.Time    `json:"at"`
}

// =============================================================================
// ACCOUNT OPERATIONS
// =============================================================================

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var user User
	if err := c.do(ctx, "POST", "/api/auth/register", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates with a username or email and returns a session.
func (c *Client) Login(ctx context.Context, login, password string) (*Session, error) {
	body := map[string]string{"login": login, "password": password}
	var session Session
	if err := c.do(ctx, "POST", "/api/auth/login", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Refresh exchanges a refresh token for a fresh session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var session Session
	if err := c.do(ctx, "POST", "/api/auth/refresh", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout revokes a refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	return c.do(ctx, "POST", "/api/auth/logout", body, nil)
}

// VerifyEmail redeems an email verification token.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*User, error) {
	body := map[string]string{"token": token}
	var user User
	if err := c.do(ctx, "POST", "/api/auth/verify-email", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ForgotPassword requests a password reset mail.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, "POST", "/api/auth/forgot-password", body, nil)
}

// ResetPassword redeems a reset token and sets a new password.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.do(ctx, "POST", "/api/auth/reset-password", body, nil)
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, "GET", "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// =============================================================================
// FLOW OPERATIONS
// =============================================================================

// AddEntry submits one line of input for analysis.
func (c *Client) AddEntry(ctx context.Context, text string) (*AddResult, error) {
	var res AddResult
	if err := c.do(ctx, "POST", "/api/flow/entries", map[string]string{"text": text}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListEntries returns all entries in the session.
func (c *Client) ListEntries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := c.do(ctx, "GET", "/api/flow/entries", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetEntry retrieves an entry by ID.
func (c *Client) GetEntry(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	if err := c.do(ctx, "GET", "/api/flow/entries/"+url.PathEscape(id), nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ToggleEntry flips an entry's completion state.
func (c *Client) ToggleEntry(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	if err := c.do(ctx, "POST", "/api/flow/entries/"+url.PathEscape(id)+"/toggle", nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry removes an entry.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/api/flow/entries/"+url.PathEscape(id), nil, nil)
}

// AddDetail attaches a note to an entry.
func (c *Client) AddDetail(ctx context.Context, entryID, text string) (*Detail, error) {
	var detail Detail
	if err := c.do(ctx, "POST", "/api/flow/entries/"+url.PathEscape(entryID)+"/details", map[string]string{"text": text}, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListDrafts returns undated entries awaiting promotion, newest first.
func (c *Client) ListDrafts(ctx context.Context) ([]Entry, error) {
	var drafts []Entry
	if err := c.do(ctx, "GET", "/api/flow/drafts", nil, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

// PromoteDraft turns a draft into a task.
func (c *Client) PromoteDraft(ctx context.Context, id string) (*AddResult, error) {
	var res AddResult
	if err := c.do(ctx, "POST", "/api/flow/drafts/"+url.PathEscape(id)+"/promote", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DiscardDraft removes a draft.
func (c *Client) DiscardDraft(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/api/flow/drafts/"+url.PathEscape(id), nil, nil)
}

// AddTasks submits multi-line input and creates one plain task per line.
func (c *Client) AddTasks(ctx context.Context, text string) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, "POST", "/api/flow/tasks", map[string]string{"text": text}, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListTasks returns all tasks in the session.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, "GET", "/api/flow/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ToggleTask flips a task's completion state.
func (c *Client) ToggleTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, "POST", "/api/flow/tasks/"+url.PathEscape(id)+"/toggle", nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "DELETE", "/api/flow/tasks/"+url.PathEscape(id), nil, nil)
}

// Connections returns all discovered connections.
func (c *Client) Connections(ctx context.Context) ([]Connection, error) {
	var conns []Connection
	if err := c.do(ctx, "GET", "/api/flow/connections", nil, &conns); err != nil {
		return nil, err
	}
	return conns, nil
}

// Suggestions returns the next tasks to tackle. limit 0 uses the server default.
func (c *Client) Suggestions(ctx context.Context, limit int) ([]Task, error) {
	path := "/api/flow/suggestions"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var tasks []Task
	if err := c.do(ctx, "GET", path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetSessionStats returns the session counters.
func (c *Client) GetSessionStats(ctx context.Context) (*SessionStats, error) {
	var stats SessionStats
	if err := c.do(ctx, "GET", "/api/flow/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetServerStats returns in-memory runtime statistics.
func (c *Client) GetServerStats(ctx context.Context) (*ServerStats, error) {
	var stats ServerStats
	if err := c.do(ctx, "GET", "/api/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
