package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/voyagen/metaseek/internal/cache"
	"github.com/voyagen/metaseek/internal/models"
)

// Cache TTLs for different entity types.
const (
	ttlSources = 2 * time.Minute
	ttlSource  = 5 * time.Minute
	ttlByType  = 2 * time.Minute
)

// CachedStore wraps a Store with a Redis caching layer.
// Read-heavy operations are served from cache when possible;
// write operations invalidate the relevant cache keys.
type CachedStore struct {
	inner Store
	cache *cache.Redis
}

// NewCachedStore creates a CachedStore that wraps inner with Redis caching.
func NewCachedStore(inner Store, c *cache.Redis) *CachedStore {
	return &CachedStore{inner: inner, cache: c}
}

// --- cached read operations ---

func (c *CachedStore) ListSources(ctx context.Context) ([]models.Source, error) {
	const key = "sources:all"
	if v, err := cache.Get[[]models.Source](ctx, c.cache, key); err == nil {
		return v, nil
	}
	sources, err := c.inner.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, sources, ttlSources); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
	return sources, nil
}

func (c *CachedStore) ListSourcesByType(ctx context.Context, t models.ContentType) ([]models.Source, error) {
	key := fmt.Sprintf("sources:type:%s", t)
	if v, err := cache.Get[[]models.Source](ctx, c.cache, key); err == nil {
		return v, nil
	}
	sources, err := c.inner.ListSourcesByType(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, sources, ttlByType); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
	return sources, nil
}

func (c *CachedStore) GetSource(ctx context.Context, id string) (*models.Source, error) {
	key := fmt.Sprintf("source:%s", id)
	if v, err := cache.Get[models.Source](ctx, c.cache, key); err == nil {
		return &v, nil
	}
	src, err := c.inner.GetSource(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, c.cache, key, src, ttlSource); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
	return src, nil
}

// --- write operations with cache invalidation ---

func (c *CachedStore) CreateSource(ctx context.Context, draft models.SourceDraft) (*models.Source, error) {
	src, err := c.inner.CreateSource(ctx, draft)
	if err != nil {
		return nil, err
	}
	c.invalidateLists(ctx)
	return src, nil
}

func (c *CachedStore) UpdateSource(ctx context.Context, id string, fields models.SourceUpdate) (*models.Source, error) {
	src, err := c.inner.UpdateSource(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, fmt.Sprintf("source:%s", id))
	c.invalidateLists(ctx)
	return src, nil
}

func (c *CachedStore) DeleteSource(ctx context.Context, id string) error {
	if err := c.inner.DeleteSource(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, fmt.Sprintf("source:%s", id))
	c.invalidateLists(ctx)
	return nil
}

func (c *CachedStore) CreateSources(ctx context.Context, drafts []models.SourceDraft) (int, error) {
	n, err := c.inner.CreateSources(ctx, drafts)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.invalidateLists(ctx)
	}
	return n, nil
}

// --- passthrough (no caching) ---

// GetSourcesByIDs is read on every search; the search layer caches whole
// responses, so caching the source lookup as well would double the staleness.
func (c *CachedStore) GetSourcesByIDs(ctx context.Context, ids []string) ([]models.Source, error) {
	return c.inner.GetSourcesByIDs(ctx, ids)
}

func (c *CachedStore) CountSources(ctx context.Context) (int64, error) {
	return c.inner.CountSources(ctx)
}

// --- helpers ---

// invalidate deletes exact cache keys, logging any errors.
func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := cache.Del(ctx, c.cache, keys...); err != nil && err != redis.Nil {
		log.Printf("cache: del %v: %v", keys, err)
	}
}

// invalidateLists drops every list-shaped key plus cached search responses,
// which may reference a source that just changed.
func (c *CachedStore) invalidateLists(ctx context.Context) {
	c.invalidate(ctx, "sources:all")
	for _, p := range []string{"sources:type:*", "search:*"} {
		if err := cache.DelPattern(ctx, c.cache, p); err != nil {
			log.Printf("cache: del pattern %s: %v", p, err)
		}
	}
}
