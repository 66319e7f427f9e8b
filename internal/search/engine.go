package search

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voyagen/metaseek/internal/cache"
	"github.com/voyagen/metaseek/internal/models"
	"github.com/voyagen/metaseek/internal/store"
)

// Validation errors for search requests.
var (
	ErrEmptyQuery  = errors.New("query must not be blank")
	ErrInvalidType = errors.New("invalid content type")
)

const (
	defaultTimeout     = 10 * time.Second
	defaultConcurrency = 8
	ttlSearch          = 2 * time.Minute
)

// Options tunes the engine. Zero values fall back to defaults.
type Options struct {
	// Timeout bounds each individual source request.
	Timeout time.Duration
	// Concurrency caps how many sources are queried at once.
	Concurrency int
	// UserAgent is sent on outbound requests.
	UserAgent string
	// Cache, when non-nil, enables short-lived response caching.
	Cache *cache.Redis
}

// Engine fans a query out to the selected sources and collects one
// result group per source. Per-source failures are recorded in the
// group's error field; the batch itself only fails on store errors.
type Engine struct {
	store       store.Store
	cache       *cache.Redis
	timeout     time.Duration
	concurrency int
	strategies  map[models.SearchMethod]Strategy
}

// NewEngine creates an Engine backed by the given store.
func NewEngine(s store.Store, opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	client := &http.Client{Timeout: opts.Timeout}
	return &Engine{
		store:       s,
		cache:       opts.Cache,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		strategies: map[models.SearchMethod]Strategy{
			models.MethodAPI:      &apiStrategy{client: client, userAgent: opts.UserAgent},
			models.MethodScraping: &scrapeStrategy{client: client, userAgent: opts.UserAgent},
		},
	}
}

// Search resolves the requested sources and queries them concurrently.
// The returned slice has one group per resolved source, in a stable
// order matching the source list.
func (e *Engine) Search(ctx context.Context, req models.SearchRequest) ([]models.ResultGroup, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, req.Type)
	}

	sources, err := e.resolveSources(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return []models.ResultGroup{}, nil
	}

	key := searchKey(req.Query, req.Type, sources)
	if e.cache != nil {
		if v, err := cache.Get[[]models.ResultGroup](ctx, e.cache, key); err == nil {
			return v, nil
		}
	}

	groups := make([]models.ResultGroup, len(sources))
	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for i := range sources {
		g.Go(func() error {
			groups[i] = e.searchOne(ctx, sources[i], req.Query)
			return nil
		})
	}
	_ = g.Wait()

	// Only clean batches are cached; a transient upstream failure must
	// not be replayed for the full TTL.
	if e.cache != nil && allClean(groups) {
		if err := cache.Set(ctx, e.cache, key, groups, ttlSearch); err != nil {
			log.Printf("cache: set %s: %v", key, err)
		}
	}
	return groups, nil
}

func allClean(groups []models.ResultGroup) bool {
	for _, g := range groups {
		if g.Error != "" {
			return false
		}
	}
	return true
}

// resolveSources picks the sources to query: the enabled subset of the
// explicit ids when given, else every enabled source of the type.
func (e *Engine) resolveSources(ctx context.Context, req models.SearchRequest) ([]models.Source, error) {
	if len(req.SourceIDs) > 0 {
		sources, err := e.store.GetSourcesByIDs(ctx, req.SourceIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve sources: %w", err)
		}
		return sources, nil
	}
	all, err := e.store.ListSourcesByType(ctx, req.Type)
	if err != nil {
		return nil, fmt.Errorf("resolve sources: %w", err)
	}
	var enabled []models.Source
	for _, s := range all {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return enabled, nil
}

// searchOne queries a single source under the per-source timeout and
// wraps the outcome in a ResultGroup.
func (e *Engine) searchOne(ctx context.Context, src models.Source, query string) models.ResultGroup {
	group := models.ResultGroup{SourceName: src.Name, Items: []models.ResultItem{}}

	strat, ok := e.strategies[src.SearchMethod]
	if !ok {
		group.Error = fmt.Sprintf("unknown search_method %q", src.SearchMethod)
		return group
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	items, err := strat.Search(ctx, src, query)
	if err != nil {
		log.Printf("search[%s]: %v", src.Name, err)
		group.Error = err.Error()
		return group
	}
	if items != nil {
		group.Items = items
	}
	return group
}

// searchKey derives a deterministic cache key from the query plus the
// resolved source ids, so different selections never collide.
func searchKey(query string, t models.ContentType, sources []models.Source) string {
	ids := make([]string, len(sources))
	for i, s := range sources {
		ids[i] = s.ID
	}
	sort.Strings(ids)
	raw := fmt.Sprintf("%s|%s|%s", query, t, strings.Join(ids, ","))
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("search:%x", h[:8])
}
