// Package client is a Go consumer of the subscribers API: a thin HTTP
// client plus a sync controller that keeps a rendered view in step with
// server state by reloading the full list after every successful mutation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Subscriber mirrors the API's wire shape.
type Subscriber struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

type mutationResponse struct {
	Message    string     `json:"message"`
	Subscriber Subscriber `json:"subscriber"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// APIError is any non-2xx response, carrying the server's user-facing message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to the subscribers API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the given base URL (e.g.
// http://localhost:3000). A nil http.Client gets a 10s-timeout default.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpc: httpc}
}

// List fetches all subscribers, newest first.
func (c *Client) List(ctx context.Context) ([]Subscriber, error) {
	var subs []Subscriber
	if err := c.do(ctx, http.MethodGet, "/api/subscribers", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Get fetches a single subscriber by id.
func (c *Client) Get(ctx context.Context, id string) (*Subscriber, error) {
	var sub Subscriber
	if err := c.do(ctx, http.MethodGet, "/api/subscribers/"+id, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create registers a new subscriber.
func (c *Client) Create(ctx context.Context, name, email string) (*Subscriber, error) {
	var resp mutationResponse
	body := map[string]string{"name": name, "email": email}
	if err := c.do(ctx, http.MethodPost, "/api/subscribers", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Subscriber, nil
}

// Update replaces name/email of an existing subscriber.
func (c *Client) Update(ctx context.Context, id, name, email string) (*Subscriber, error) {
	var resp mutationResponse
	body := map[string]string{"name": name, "email": email}
	if err := c.do(ctx, http.MethodPut, "/api/subscribers/"+id, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Subscriber, nil
}

// Delete removes a subscriber permanently and returns its prior state.
func (c *Client) Delete(ctx context.Context, id string) (*Subscriber, error) {
	var resp mutationResponse
	if err := c.do(ctx, http.MethodDelete, "/api/subscribers/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Subscriber, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e errorResponse
		_ = json.NewDecoder(res.Body).Decode(&e)
		if e.Message == "" {
			e.Message = "request failed"
		}
		return &APIError{StatusCode: res.StatusCode, Message: e.Message}
	}

	if out != nil {
		return json.NewDecoder(res.Body).Decode(out)
	}
	return nil
}
