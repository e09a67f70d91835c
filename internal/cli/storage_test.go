package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"local-quiz/internal/config"
	"local-quiz/internal/infra/memory"
)

func TestOpenStoreBackends(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Storage.Backend = config.BackendMemory
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	closeStore()
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected a memory store, got %T", store)
	}

	cfg.Storage.Backend = "etcd"
	if _, _, err := openStore(ctx, cfg); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}

	cfg.Storage.Backend = config.BackendRedis
	cfg.Redis.Addr = ""
	if _, _, err := openStore(ctx, cfg); err == nil {
		t.Fatalf("expected redis without an address to fail")
	}

	cfg.Storage.Backend = config.BackendPostgres
	if _, _, err := openStore(ctx, cfg); err == nil {
		t.Fatalf("expected postgres without a url to fail")
	}
}

func TestOpenRepositorySeedsSQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	dbPath := filepath.Join(dir, "quiz.db")
	yaml := "storage:\n  backend: sqlite\n  sqlite_path: " + dbPath + "\n"
	if err := os.WriteFile(configFile, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	repo, cfg, closeStore, err := openRepository(ctx, configFile)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	if cfg.Quiz.LeaderboardSize != 5 {
		t.Fatalf("expected default leaderboard size, got %d", cfg.Quiz.LeaderboardSize)
	}
	if got := len(repo.ListQuestions(ctx)); got != 3 {
		t.Fatalf("expected 3 seeded questions, got %d", got)
	}
	repo.RemoveQuestion(ctx, "2")
	closeStore()

	// Seeding only happens on an empty bank.
	repo, _, closeStore, err = openRepository(ctx, configFile)
	if err != nil {
		t.Fatalf("reopen repository: %v", err)
	}
	defer closeStore()
	if got := len(repo.ListQuestions(ctx)); got != 2 {
		t.Fatalf("expected 2 questions after reopen, got %d", got)
	}
}

func TestWithCacheWrapsOnlyWithPositiveTTL(t *testing.T) {
	backend := memory.NewStore()
	if withCache(backend, 0) != backend {
		t.Fatalf("expected no cache for zero ttl")
	}
	if _, ok := withCache(backend, 1e9).(*memory.CachedStore); !ok {
		t.Fatalf("expected a cached store for positive ttl")
	}
}
