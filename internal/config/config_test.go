package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "SERVER_PORT", "REDIS_URL",
		"SEARCH_USER_AGENT", "SEARCH_TIMEOUT", "SEARCH_CONCURRENCY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/metaseek")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.UserAgent != "Metaseek/1.0" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.SearchTimeout != 10*time.Second {
		t.Errorf("SearchTimeout = %v", cfg.SearchTimeout)
	}
	if cfg.SearchConcurrency != 8 {
		t.Errorf("SearchConcurrency = %d", cfg.SearchConcurrency)
	}
	if cfg.RedisURL != "" {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/metaseek")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SEARCH_TIMEOUT", "3s")
	t.Setenv("SEARCH_CONCURRENCY", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "9090" || cfg.SearchTimeout != 3*time.Second || cfg.SearchConcurrency != 2 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvFile(t *testing.T) {
	clearEnv(t)
	applyEnvFile([]byte("# comment\n\nDATABASE_URL=postgres://fromfile\nSERVER_PORT=\"7070\"\nBADLINE\n"))
	if os.Getenv("DATABASE_URL") != "postgres://fromfile" {
		t.Fatalf("DATABASE_URL = %q", os.Getenv("DATABASE_URL"))
	}
	if os.Getenv("SERVER_PORT") != "7070" {
		t.Fatalf("quotes not stripped: %q", os.Getenv("SERVER_PORT"))
	}
	// Already-set variables are not overwritten.
	applyEnvFile([]byte("DATABASE_URL=postgres://second\n"))
	if os.Getenv("DATABASE_URL") != "postgres://fromfile" {
		t.Fatal("applyEnvFile overwrote an existing variable")
	}
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("SERVER_PORT")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `database_url: postgres://localhost/metaseek
server_port: "9191"
redis_url: redis://localhost:6379/0
search_timeout: 5s
search_concurrency: 4
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.ServerPort != "9191" || cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SearchTimeout != 5*time.Second || cfg.SearchConcurrency != 4 {
		t.Fatalf("search settings: %+v", cfg)
	}
}

func TestLoadFromFileMissingDatabaseURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server_port: \"9191\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFromFile(path)
	if !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("err = %v, want ErrMissingDatabaseURL", err)
	}
}
