package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/voyagen/metaseek/internal/config"
	"github.com/voyagen/metaseek/internal/models"
	"github.com/voyagen/metaseek/internal/search"
	"github.com/voyagen/metaseek/internal/server"
	"github.com/voyagen/metaseek/internal/store"
)

// stubSearcher lets tests exercise the search client without real sources.
type stubSearcher struct {
	groups []models.ResultGroup
}

func (s *stubSearcher) Search(context.Context, models.SearchRequest) ([]models.ResultGroup, error) {
	return s.groups, nil
}

// newBackend runs a real API server over an in-memory store.
func newBackend(t *testing.T, searcher server.Searcher) *Client {
	t.Helper()
	m := store.NewMemory()
	if searcher == nil {
		searcher = search.NewEngine(m, search.Options{})
	}
	srv := server.New(m, &config.Config{ServerPort: "0"}, searcher, nil)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func TestRegistryRoundTrip(t *testing.T) {
	c := newBackend(t, nil)
	ctx := context.Background()

	created, err := c.CreateSource(ctx, SourceDraft{
		Name:         "Steam",
		Type:         TypeGame,
		URLBase:      "https://store.steampowered.com/search/?term={query}",
		SearchMethod: MethodScraping,
		Config:       json.RawMessage(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	if created.ID == "" {
		t.Fatal("no id assigned")
	}

	// Loading the record back for edit pretty-prints the config with no
	// data loss.
	got, err := c.GetSource(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSource: %v", err)
	}
	pretty, err := FormatConfig(got.Config)
	if err != nil {
		t.Fatalf("FormatConfig: %v", err)
	}
	if pretty != "{\n  \"a\": 1\n}" {
		t.Fatalf("pretty config = %q", pretty)
	}

	// Toggle updates only the enabled flag.
	toggled, err := c.SetEnabled(ctx, created.ID, false)
	if err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if toggled.Enabled {
		t.Fatal("enabled not toggled")
	}
	if toggled.Name != "Steam" || toggled.URLBase != created.URLBase {
		t.Fatalf("toggle changed other fields: %+v", toggled)
	}

	// Reload reflects the new state.
	listed, err := c.ListSources(ctx)
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(listed) != 1 || listed[0].Enabled {
		t.Fatalf("list after toggle: %+v", listed)
	}
}

func TestListSourcesByTypeAndDefaultSelection(t *testing.T) {
	c := newBackend(t, nil)
	ctx := context.Background()

	off := false
	for _, d := range []SourceDraft{
		{Name: "G1", Type: TypeGame, URLBase: "http://g1", SearchMethod: MethodAPI},
		{Name: "G2", Type: TypeGame, URLBase: "http://g2", SearchMethod: MethodAPI, Enabled: &off},
		{Name: "M1", Type: TypeMovie, URLBase: "http://m1", SearchMethod: MethodAPI},
	} {
		if _, err := c.CreateSource(ctx, d); err != nil {
			t.Fatalf("CreateSource %s: %v", d.Name, err)
		}
	}

	games, err := c.ListSourcesByType(ctx, TypeGame)
	if err != nil {
		t.Fatalf("ListSourcesByType: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d game sources, want 2 (disabled stays listed)", len(games))
	}

	sel := DefaultSelection(games)
	if len(sel) != 1 {
		t.Fatalf("default selection = %v, want only the enabled id", sel)
	}
	if sel[0] != games[0].ID {
		t.Fatalf("default selection picked %q", sel[0])
	}
}

func TestDeleteSourceIdempotent(t *testing.T) {
	c := newBackend(t, nil)
	ctx := context.Background()

	src, err := c.CreateSource(ctx, SourceDraft{
		Name: "X", Type: TypeGame, URLBase: "http://x", SearchMethod: MethodAPI,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.DeleteSource(ctx, src.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	// The backend answers 404 now; the client hides it.
	if err := c.DeleteSource(ctx, src.ID); err != nil {
		t.Fatalf("second delete should be nil, got %v", err)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	c := newBackend(t, nil)

	_, err := c.GetSource(context.Background(), "no-such-id")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", apiErr.Status)
	}
}

func TestSearchPartialFailure(t *testing.T) {
	groups := []models.ResultGroup{
		{SourceName: "Steam", Items: []models.ResultItem{
			{Name: "Zelda"}, {Name: "Zelda II"}, {Name: "Zelda III"},
		}},
		{SourceName: "GOG", Items: []models.ResultItem{}, Error: "timeout"},
	}
	c := newBackend(t, &stubSearcher{groups: groups})

	got, err := c.Search(context.Background(), "zelda", TypeGame, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if got[0].SourceName != "Steam" || len(got[0].Items) != 3 || got[0].Error != "" {
		t.Fatalf("first group: %+v", got[0])
	}
	if got[1].Error != "timeout" || len(got[1].Items) != 0 {
		t.Fatalf("second group: %+v", got[1])
	}
}

func TestLocalValidationSendsNoRequest(t *testing.T) {
	var requests atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()
	c := New(ts.URL)
	ctx := context.Background()

	if _, err := c.Search(ctx, "   ", TypeGame, []string{"a"}); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("blank query: err = %v", err)
	}
	if _, err := c.Search(ctx, "zelda", TypeGame, nil); !errors.Is(err, ErrNoSources) {
		t.Fatalf("empty selection: err = %v", err)
	}
	if _, err := c.CreateSource(ctx, SourceDraft{
		Name: "X", Type: TypeGame, URLBase: "http://x", SearchMethod: MethodAPI,
		Config: json.RawMessage(`{"a":`),
	}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("bad config create: err = %v", err)
	}
	bad := json.RawMessage(`[1,2]`)
	if _, err := c.UpdateSource(ctx, "id", SourceUpdate{Config: &bad}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("bad config update: err = %v", err)
	}

	if n := requests.Load(); n != 0 {
		t.Fatalf("validation failures reached the backend %d times", n)
	}
}

func TestFormatConfig(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"simple", `{"a":1}`, "{\n  \"a\": 1\n}", false},
		{"already pretty", "{\n  \"a\": 1\n}", "{\n  \"a\": 1\n}", false},
		{"nested", `{"b":{"c":true}}`, "{\n  \"b\": {\n    \"c\": true\n  }\n}", false},
		{"array rejected", `[1]`, "", true},
		{"null rejected", `null`, "", true},
		{"malformed", `{"a"`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatConfig(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	c := newBackend(t, nil)
	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	sources, err := c.ListSources(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) == 0 {
		t.Fatal("seed installed no sources")
	}
}
