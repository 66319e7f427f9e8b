package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/voyagen/metaseek/internal/cache"
	"github.com/voyagen/metaseek/internal/config"
	"github.com/voyagen/metaseek/internal/search"
	"github.com/voyagen/metaseek/internal/seed"
	"github.com/voyagen/metaseek/internal/server"
	"github.com/voyagen/metaseek/internal/store"
)

func main() {
	configPath := flag.String("config", "", "Optional config file path (YAML); else use env DATABASE_URL")
	noSeed := flag.Bool("no-seed", false, "Skip installing default sources on an empty database")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Run migrations.
	absMigrations, err := filepath.Abs("migrations")
	if err != nil {
		absMigrations = "migrations"
	}
	if _, err := os.Stat(absMigrations); err != nil {
		if exe, e := os.Executable(); e == nil {
			absMigrations = filepath.Join(filepath.Dir(exe), "migrations")
		}
	}
	migrationsPath := "file://" + absMigrations
	if err := store.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	// Connect to Redis if REDIS_URL is configured.
	var rds *cache.Redis
	var appStore store.Store = pg
	if cfg.RedisURL != "" {
		rds, err = cache.New(cfg.RedisURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "redis: %v\n", err)
			os.Exit(1)
		}
		defer rds.Close()

		if err := rds.Ping(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "redis ping: %v\n", err)
			os.Exit(1)
		}

		appStore = store.NewCachedStore(pg, rds)
		fmt.Fprintln(os.Stderr, "redis connected (caching enabled)")
	} else {
		fmt.Fprintln(os.Stderr, "redis disabled (REDIS_URL not set)")
	}

	// Install the default source catalogue on first boot.
	if !*noSeed {
		if _, err := seed.Run(ctx, appStore, rds); err != nil {
			log.Printf("seed: %v", err)
		}
	}

	engine := search.NewEngine(appStore, search.Options{
		Timeout:     cfg.SearchTimeout,
		Concurrency: cfg.SearchConcurrency,
		UserAgent:   cfg.UserAgent,
		Cache:       rds,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(appStore, cfg, engine, rds)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}
