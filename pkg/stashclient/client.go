package stashclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the server address, e.g. "http://localhost:8080".
	BaseURL string
	// APIKey is the bearer token for authenticated routes.
	APIKey string
	// UserID selects whose store the client talks to.
	UserID string
	// ClientGroupID identifies this client group. Must be a UUID; a fresh
	// one is generated when empty.
	ClientGroupID string
	// ClientID identifies this logical client within the group. A fresh
	// UUID is generated when empty.
	ClientID string
	// HTTPClient is optional; a 30 second timeout client is the default.
	HTTPClient *http.Client
}

// Client talks to one user's store on a stash server. Safe for concurrent
// use; mutation sequence numbers are issued atomically.
type Client struct {
	baseURL       string
	apiKey        string
	userID        string
	clientGroupID string
	clientID      string
	http          *http.Client

	seq atomic.Int64
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stash: %d: %s", e.Status, e.Detail)
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("BaseURL is required")
	}
	if cfg.UserID == "" {
		return nil, errors.New("UserID is required")
	}
	if cfg.ClientGroupID == "" {
		cfg.ClientGroupID = uuid.NewString()
	}
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		userID:        cfg.UserID,
		clientGroupID: cfg.ClientGroupID,
		clientID:      cfg.ClientID,
		http:          cfg.HTTPClient,
	}, nil
}

// ClientGroupID returns the group identifier this client syncs under.
func (c *Client) ClientGroupID() string { return c.clientGroupID }

// ClientID returns this client's identifier within its group.
func (c *Client) ClientID() string { return c.clientID }

// NewMutation builds the next mutation in this client's sequence.
func (c *Client) NewMutation(name string, args any) (Mutation, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return Mutation{}, fmt.Errorf("encode args: %w", err)
	}
	return Mutation{
		ID:        c.seq.Add(1),
		ClientID:  c.clientID,
		Name:      name,
		Args:      raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Health checks connectivity. No auth required.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Init initializes the user's store and optionally stores profile fields.
func (c *Client) Init(ctx context.Context, profile *ProfileParams) (*InitResult, error) {
	var body any
	if profile != nil {
		body = profile
	}
	var out InitResult
	if err := c.do(ctx, http.MethodPost, c.userPath("init"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Push sends a mutation batch. Resending a batch is safe; the server skips
// already-applied sequence numbers.
func (c *Client) Push(ctx context.Context, mutations []Mutation) error {
	body := map[string]any{
		"clientGroupId": c.clientGroupID,
		"mutations":     mutations,
	}
	return c.do(ctx, http.MethodPost, c.userPath("push"), body, nil)
}

// Pull fetches the full current state. The cookie argument may be nil for a
// first sync; pass the cookie from the previous PullResult afterwards.
func (c *Client) Pull(ctx context.Context, cookie *Cookie) (*PullResult, error) {
	body := map[string]any{
		"clientGroupId": c.clientGroupID,
		"cookie":        cookie,
	}
	var out PullResult
	if err := c.do(ctx, http.MethodPost, c.userPath("pull"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ingest offers externally fetched candidates for a subscribed source.
func (c *Client) Ingest(ctx context.Context, sourceID string, items []IngestItem) (*IngestStats, error) {
	body := map[string]any{
		"sourceId": sourceID,
		"items":    items,
	}
	var out IngestStats
	if err := c.do(ctx, http.MethodPost, c.userPath("ingest"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cleanup erases all of the user's data server-side.
func (c *Client) Cleanup(ctx context.Context) (*CleanupResult, error) {
	var out CleanupResult
	if err := c.do(ctx, http.MethodPost, c.userPath("cleanup"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile reads the stored account profile; nil when never set.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out struct {
		Profile *Profile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, c.userPath("profile"), nil, &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

func (c *Client) userPath(op string) string {
	return "/api/v1/users/" + c.userID + "/" + op
}

// do sends an authenticated JSON request and decodes the response into out.
// Non-2xx responses become *APIError carrying the server's detail message,
// whether it arrived as a problem document or an {"error": ...} body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Detail: errorDetail(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorDetail(data []byte) string {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return string(data)
}
