// Package client talks to the contact HTTP API and keeps the CLI's local state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/and161185/contact-keeper/internal/convert"
)

// APIError is a non-2xx answer carrying the server's {msg}.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Msg)
}

// Client is a thin JSON client. The zero token means anonymous requests.
type Client struct {
	base  string
	http  *http.Client
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithToken attaches a session token to every request.
func WithToken(tok string) Option { return func(c *Client) { c.token = tok } }

// New returns a client for the API rooted at base (e.g. http://localhost:5000).
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Register creates an account and returns its public view.
func (c *Client) Register(ctx context.Context, name, email, password string) (convert.PublicUser, error) {
	var out convert.RegisterResponse
	err := c.do(ctx, http.MethodPost, "/register",
		convert.RegisterRequest{Name: name, Email: email, Password: password}, &out)
	return out.User, err
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out convert.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login",
		convert.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// List returns the caller's contacts.
func (c *Client) List(ctx context.Context) ([]convert.Contact, error) {
	var out []convert.Contact
	if err := c.do(ctx, http.MethodGet, "/contacts", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []convert.Contact{}
	}
	return out, nil
}

// Create adds a contact.
func (c *Client) Create(ctx context.Context, in convert.ContactInput) (convert.Contact, error) {
	var out convert.Contact
	err := c.do(ctx, http.MethodPost, "/contacts", in, &out)
	return out, err
}

// Update sends only the non-nil fields of in.
func (c *Client) Update(ctx context.Context, id string, in convert.ContactInput) (convert.Contact, error) {
	var out convert.Contact
	err := c.do(ctx, http.MethodPut, "/contacts/"+url.PathEscape(id), in, &out)
	return out, err
}

// Delete removes a contact. Deleting an unknown id succeeds.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/contacts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var m convert.Message
		_ = json.Unmarshal(raw, &m)
		return &APIError{Status: resp.StatusCode, Msg: m.Msg}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
