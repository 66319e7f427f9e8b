package search

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/voyagen/metaseek/internal/models"
)

// maxItems caps how many results a single source contributes.
const maxItems = 10

// Strategy turns a source configuration plus a query into result items.
// Implementations must not retry or cache; the engine owns timeouts and
// the per-source error envelope.
type Strategy interface {
	Search(ctx context.Context, src models.Source, query string) ([]models.ResultItem, error)
}

// fetch performs a GET with optional extra headers and returns the body.
// Non-2xx responses are errors so they surface in the result group.
func fetch(ctx context.Context, client *http.Client, url, userAgent string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("NewRequest: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ReadAll: %w", err)
	}
	return body, nil
}
