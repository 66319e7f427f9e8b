// Package seed installs the default source catalogue on first boot.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/voyagen/metaseek/internal/cache"
	"github.com/voyagen/metaseek/internal/models"
	"github.com/voyagen/metaseek/internal/store"
)

// Defaults returns the built-in sources installed on an empty database.
// Selector configs are starting points; admins tune them per site.
func Defaults() []models.SourceDraft {
	mk := func(name string, t models.ContentType, urlBase string, config map[string]any) models.SourceDraft {
		raw, err := json.Marshal(config)
		if err != nil {
			panic(fmt.Sprintf("seed config %s: %v", name, err))
		}
		return models.SourceDraft{
			Name:         name,
			Type:         t,
			URLBase:      urlBase,
			SearchMethod: models.MethodScraping,
			Config:       raw,
		}
	}
	return []models.SourceDraft{
		mk("Steam", models.TypeGame, "https://store.steampowered.com/search/?term={query}", map[string]any{
			"item_selector": "a",
			"item_class":    "search_result_row",
			"default_image": "https://placehold.co/300x400/6366f1/ffffff?text=Steam",
		}),
		mk("Epic Games", models.TypeGame, "https://www.epicgames.com/store/browse?q={query}", map[string]any{
			"default_image": "https://placehold.co/300x400/8b5cf6/ffffff?text=Epic+Games",
		}),
		mk("GOG", models.TypeGame, "https://www.gog.com/games?query={query}", map[string]any{
			"default_image": "https://placehold.co/300x400/ec4899/ffffff?text=GOG",
		}),
		mk("IMDb", models.TypeMovie, "https://www.imdb.com/find?q={query}&s=tt&ttype=ft", map[string]any{
			"default_image": "https://placehold.co/300x400/f59e0b/ffffff?text=IMDb",
		}),
		mk("Netflix", models.TypeMovie, "https://www.netflix.com/search?q={query}", map[string]any{
			"default_image": "https://placehold.co/300x400/dc2626/ffffff?text=Netflix",
		}),
		mk("Prime Video", models.TypeMovie, "https://www.primevideo.com/search?phrase={query}", map[string]any{
			"default_image": "https://placehold.co/300x400/06b6d4/ffffff?text=Prime+Video",
		}),
		mk("MyAnimeList", models.TypeAnime, "https://myanimelist.net/anime.php?q={query}", map[string]any{
			"default_image": "https://placehold.co/300x400/2563eb/ffffff?text=MyAnimeList",
		}),
		mk("Crunchyroll", models.TypeAnime, "https://www.crunchyroll.com/search?q={query}", map[string]any{
			"default_image": "https://placehold.co/300x400/f97316/ffffff?text=Crunchyroll",
		}),
		mk("AniList", models.TypeAnime, "https://anilist.co/search/anime?search={query}", map[string]any{
			"default_image": "https://placehold.co/300x400/8b5cf6/ffffff?text=AniList",
		}),
	}
}

// Run seeds the store with Defaults when it holds no sources yet.
// It reports the number of sources inserted (0 when already seeded).
// When rds is non-nil, a distributed lock keeps replicas sharing a
// database from racing each other; losing the race counts as seeded.
func Run(ctx context.Context, s store.Store, rds *cache.Redis) (int, error) {
	if rds != nil {
		unlock, err := cache.TryLock(ctx, rds, cache.SeedLockKey, 30*time.Second)
		if err != nil {
			if errors.Is(err, cache.ErrLocked) {
				log.Println("seed: another replica is seeding, skipping")
				return 0, nil
			}
			return 0, err
		}
		defer unlock()
	}

	count, err := s.CountSources(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: count: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	n, err := s.CreateSources(ctx, Defaults())
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	log.Printf("seed: installed %d default sources", n)
	return n, nil
}
