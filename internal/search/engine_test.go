package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voyagen/metaseek/internal/models"
	"github.com/voyagen/metaseek/internal/store"
)

func mustCreate(t *testing.T, m *store.Memory, draft models.SourceDraft) *models.Source {
	t.Helper()
	src, err := m.CreateSource(context.Background(), draft)
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	return src
}

func TestEngineSearchValidation(t *testing.T) {
	e := NewEngine(store.NewMemory(), Options{})

	_, err := e.Search(context.Background(), models.SearchRequest{Query: "   ", Type: models.TypeGame})
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("blank query: err = %v, want ErrEmptyQuery", err)
	}

	_, err = e.Search(context.Background(), models.SearchRequest{Query: "zelda", Type: "music"})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("bad type: err = %v, want ErrInvalidType", err)
	}
}

func TestEngineSearchNoSources(t *testing.T) {
	e := NewEngine(store.NewMemory(), Options{})

	groups, err := e.Search(context.Background(), models.SearchRequest{Query: "zelda", Type: models.TypeGame})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("got %d groups, want 0", len(groups))
	}
}

func TestEnginePartialFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results": [{"name": "Zelda"}, {"name": "Zelda II"}, {"name": "Zelda III"}]}`)
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer bad.Close()

	m := store.NewMemory()
	s1 := mustCreate(t, m, models.SourceDraft{
		Name: "GoodAPI", Type: models.TypeGame, URLBase: good.URL,
		SearchMethod: models.MethodAPI, Config: json.RawMessage(`{}`),
	})
	s2 := mustCreate(t, m, models.SourceDraft{
		Name: "BadAPI", Type: models.TypeGame, URLBase: bad.URL,
		SearchMethod: models.MethodAPI, Config: json.RawMessage(`{}`),
	})

	e := NewEngine(m, Options{})
	groups, err := e.Search(context.Background(), models.SearchRequest{
		Query:     "zelda",
		Type:      models.TypeGame,
		SourceIDs: []string{s1.ID, s2.ID},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	if groups[0].SourceName != "GoodAPI" || groups[1].SourceName != "BadAPI" {
		t.Fatalf("group order: %q, %q", groups[0].SourceName, groups[1].SourceName)
	}
	if groups[0].Error != "" {
		t.Fatalf("good source reported error: %q", groups[0].Error)
	}
	if len(groups[0].Items) != 3 {
		t.Fatalf("good source returned %d items, want 3", len(groups[0].Items))
	}
	if groups[1].Error == "" {
		t.Fatal("failed source should carry an error")
	}
	if len(groups[1].Items) != 0 {
		t.Fatalf("failed source should have no items, got %d", len(groups[1].Items))
	}
}

func TestEngineResolvesByTypeWhenNoIDs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results": [{"name": "hit"}]}`)
	}))
	defer ts.Close()

	m := store.NewMemory()
	disabled := false
	mustCreate(t, m, models.SourceDraft{
		Name: "EnabledGame", Type: models.TypeGame, URLBase: ts.URL,
		SearchMethod: models.MethodAPI,
	})
	mustCreate(t, m, models.SourceDraft{
		Name: "DisabledGame", Type: models.TypeGame, URLBase: ts.URL,
		SearchMethod: models.MethodAPI, Enabled: &disabled,
	})
	mustCreate(t, m, models.SourceDraft{
		Name: "SomeMovie", Type: models.TypeMovie, URLBase: ts.URL,
		SearchMethod: models.MethodAPI,
	})

	e := NewEngine(m, Options{})
	groups, err := e.Search(context.Background(), models.SearchRequest{Query: "zelda", Type: models.TypeGame})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1 (only the enabled game source)", len(groups))
	}
	if groups[0].SourceName != "EnabledGame" {
		t.Fatalf("unexpected source: %q", groups[0].SourceName)
	}
}

func TestEngineSkipsDisabledExplicitIDs(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer ts.Close()

	m := store.NewMemory()
	disabled := false
	src := mustCreate(t, m, models.SourceDraft{
		Name: "Off", Type: models.TypeGame, URLBase: ts.URL,
		SearchMethod: models.MethodAPI, Enabled: &disabled,
	})

	e := NewEngine(m, Options{})
	groups, err := e.Search(context.Background(), models.SearchRequest{
		Query: "zelda", Type: models.TypeGame, SourceIDs: []string{src.ID, "no-such-id"},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("disabled/unknown ids should resolve to nothing, got %d groups", len(groups))
	}
}

func TestEngineUnknownSearchMethod(t *testing.T) {
	m := store.NewMemory()
	src := mustCreate(t, m, models.SourceDraft{
		Name: "Odd", Type: models.TypeGame, URLBase: "http://example.invalid",
		SearchMethod: models.MethodAPI,
	})
	// Corrupt the method behind the store's back to simulate stale data.
	bad := models.SearchMethod("rss")
	src.SearchMethod = bad

	e := NewEngine(m, Options{})
	group := e.searchOne(context.Background(), *src, "zelda")
	if group.Error == "" {
		t.Fatal("unknown search_method should surface as a group error")
	}
	if group.SourceName != "Odd" {
		t.Fatalf("source name = %q", group.SourceName)
	}
}

func TestCacheSkipsErroredBatches(t *testing.T) {
	tests := []struct {
		name   string
		groups []models.ResultGroup
		want   bool
	}{
		{"empty", []models.ResultGroup{}, true},
		{"all clean", []models.ResultGroup{{SourceName: "A"}, {SourceName: "B"}}, true},
		{"one errored", []models.ResultGroup{{SourceName: "A"}, {SourceName: "B", Error: "HTTP 504"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := allClean(tt.groups); got != tt.want {
				t.Fatalf("allClean = %v, want %v", got, tt.want)
			}
		})
	}
}
