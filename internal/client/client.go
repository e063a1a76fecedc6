// Package client talks to the todo service over HTTP and coordinates the
// read-then-write mutations the command-line client performs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Tomlord1122/tick/internal/domain"
)

// APIError is an error envelope returned by the service.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string { return e.Message }

// NotFound reports whether the service said the todo does not exist.
func (e *APIError) NotFound() bool { return e.Code == string(domain.KindNotFound) }

type apiResponse[T any] struct {
	Status  string `json:"status"`
	Items   *T     `json:"items"`
	Item    *T     `json:"item"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListParams are the optional list parameters; zero values are omitted.
type ListParams struct {
	Count  int
	Offset int
	SortBy string
	Order  string
	Done   *bool
	Search string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Count != 0 {
		v.Set("count", strconv.Itoa(p.Count))
	}
	if p.Offset != 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.SortBy != "" {
		v.Set("sort_by", p.SortBy)
	}
	if p.Order != "" {
		v.Set("order", p.Order)
	}
	if p.Done != nil {
		v.Set("done", strconv.FormatBool(*p.Done))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

// Client is a thin typed wrapper over the todo HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the service at baseURL. A nil httpClient gets a
// client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// List fetches one page of todos.
func (c *Client) List(ctx context.Context, p ListParams) ([]domain.Todo, error) {
	u := c.baseURL + "/todos"
	if q := p.values().Encode(); q != "" {
		u += "?" + q
	}
	resp, err := do[[]domain.Todo](ctx, c, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []domain.Todo{}, nil
	}
	return *resp.Items, nil
}

// Autocomplete calls the legacy substring search.
func (c *Client) Autocomplete(ctx context.Context, term string) ([]domain.Todo, error) {
	u := c.baseURL + "/todos/autocomplete?" + url.Values{"q": {term}}.Encode()
	resp, err := do[[]domain.Todo](ctx, c, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []domain.Todo{}, nil
	}
	return *resp.Items, nil
}

// Get fetches a todo by id.
func (c *Client) Get(ctx context.Context, id int64) (domain.Todo, error) {
	resp, err := do[domain.Todo](ctx, c, http.MethodGet, c.todoURL(id), nil)
	if err != nil {
		return domain.Todo{}, err
	}
	if resp.Item == nil {
		return domain.Todo{}, errors.New("item not valid")
	}
	return *resp.Item, nil
}

// Create posts a new todo and returns the stored record.
func (c *Client) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	resp, err := do[domain.Todo](ctx, c, http.MethodPost, c.baseURL+"/todos", todo)
	if err != nil {
		return domain.Todo{}, err
	}
	if resp.Item == nil {
		return todo, nil
	}
	return *resp.Item, nil
}

// Put writes the full record to todo.ID.
func (c *Client) Put(ctx context.Context, todo domain.Todo) error {
	_, err := do[domain.Todo](ctx, c, http.MethodPut, c.todoURL(todo.ID), todo)
	return err
}

// Delete removes a todo by id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := do[domain.Todo](ctx, c, http.MethodDelete, c.todoURL(id), nil)
	return err
}

// Toggle asks the service to toggle done with its conditional write.
func (c *Client) Toggle(ctx context.Context, id int64) (domain.Todo, error) {
	resp, err := do[domain.Todo](ctx, c, http.MethodPost, c.todoURL(id)+"/toggle", nil)
	if err != nil {
		return domain.Todo{}, err
	}
	if resp.Item == nil {
		return domain.Todo{}, errors.New("item not valid")
	}
	return *resp.Item, nil
}

func (c *Client) todoURL(id int64) string {
	return c.baseURL + "/todos/" + strconv.FormatInt(id, 10)
}

// do sends one request and decodes the envelope. The envelope decides the
// outcome; the HTTP status code is not consulted.
func do[T any](ctx context.Context, c *Client, method, u string, body any) (apiResponse[T], error) {
	var out apiResponse[T]

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return out, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return out, fmt.Errorf("request error: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("json parse error: %w", err)
	}

	switch out.Status {
	case "ok":
		return out, nil
	case "error":
		msg := out.Message
		if msg == "" {
			msg = "unknown error"
		}
		return out, &APIError{Code: out.Code, Message: msg}
	default:
		return out, fmt.Errorf("unexpected status: %q", out.Status)
	}
}
