// Package client is a Go client for the Metaseek REST API: source
// registry CRUD plus fan-out search. Preconditions the backend would
// reject anyway (blank query, empty selection, malformed config JSON)
// are checked locally so no round-trip is wasted.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Validation errors raised before any request is sent.
var (
	ErrEmptyQuery    = errors.New("query must not be blank")
	ErrNoSources     = errors.New("at least one source must be selected")
	ErrInvalidConfig = errors.New("config must be a valid JSON object")
)

// APIError is the backend's error envelope, returned for non-2xx responses.
type APIError struct {
	Status int    `json:"status"`
	Err    string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Err, e.Detail)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Err)
}

// Client talks to a Metaseek backend. Calls are independent request/response
// pairs: no retries, no client-side caching, last write wins.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: 30 * time.Second})
}

// NewWithHTTPClient creates a Client using the caller's http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
	}
}

// --- source registry ---

// ListSources returns every source configuration, enabled and disabled.
func (c *Client) ListSources(ctx context.Context) ([]Source, error) {
	var out []Source
	if err := c.do(ctx, http.MethodGet, "/api/sources", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSourcesByType returns the sources for one content type.
func (c *Client) ListSourcesByType(ctx context.Context, t ContentType) ([]Source, error) {
	var out []Source
	if err := c.do(ctx, http.MethodGet, "/api/sources/by-type/"+string(t), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSource fetches a single source by id.
func (c *Client) GetSource(ctx context.Context, id string) (*Source, error) {
	var out Source
	if err := c.do(ctx, http.MethodGet, "/api/sources/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSource submits a draft and returns the stored source with its
// backend-assigned id. A config that does not parse as a JSON object is
// rejected locally.
func (c *Client) CreateSource(ctx context.Context, draft SourceDraft) (*Source, error) {
	if len(draft.Config) > 0 {
		if err := ValidateConfig(draft.Config); err != nil {
			return nil, err
		}
	}
	var out Source
	if err := c.do(ctx, http.MethodPost, "/api/sources", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSource applies a full or partial update (nil fields untouched)
// and returns the updated source. Use it for whole-record edits and for
// single-field toggles alike.
func (c *Client) UpdateSource(ctx context.Context, id string, fields SourceUpdate) (*Source, error) {
	if fields.Config != nil {
		if err := ValidateConfig(*fields.Config); err != nil {
			return nil, err
		}
	}
	var out Source
	if err := c.do(ctx, http.MethodPut, "/api/sources/"+id, fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetEnabled flips only the enabled flag of a source.
func (c *Client) SetEnabled(ctx context.Context, id string, enabled bool) (*Source, error) {
	return c.UpdateSource(ctx, id, SourceUpdate{Enabled: &enabled})
}

// DeleteSource deletes a source. A 404 is treated as success so the call
// is idempotent from the caller's perspective.
func (c *Client) DeleteSource(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/api/sources/"+id, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil
	}
	return err
}

// Seed asks the backend to install its default sources. Idempotent;
// callers typically log and ignore the error.
func (c *Client) Seed(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/seed", nil, nil)
}

// --- fan-out search ---

// Search queries the selected sources and returns one result group per
// source. A blank query or an empty selection fails locally without a
// request being made.
func (c *Client) Search(ctx context.Context, query string, t ContentType, sourceIDs []string) ([]ResultGroup, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if len(sourceIDs) == 0 {
		return nil, ErrNoSources
	}
	req := SearchRequest{Query: query, Type: t, SourceIDs: sourceIDs}
	var out []ResultGroup
	if err := c.do(ctx, http.MethodPost, "/api/search", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- helpers ---

// DefaultSelection returns the ids of the enabled sources in a listing.
// Disabled sources stay listed but are excluded from default selection.
func DefaultSelection(sources []Source) []string {
	var ids []string
	for _, s := range sources {
		if s.Enabled {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// ValidateConfig rejects config payloads that are not a JSON object.
func ValidateConfig(raw json.RawMessage) error {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if obj == nil {
		return fmt.Errorf("%w: null is not an object", ErrInvalidConfig)
	}
	return nil
}

// FormatConfig pretty-prints a config object with two-space indentation
// for edit forms. The round trip loses no data.
func FormatConfig(raw json.RawMessage) (string, error) {
	if err := ValidateConfig(raw); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return buf.String(), nil
}

// do performs one JSON request/response exchange. Non-2xx responses are
// decoded into *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Err: http.StatusText(resp.StatusCode)}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
