package seed

import (
	"context"
	"testing"

	"github.com/voyagen/metaseek/internal/models"
	"github.com/voyagen/metaseek/internal/store"
)

func TestDefaultsAreValidDrafts(t *testing.T) {
	defaults := Defaults()
	if len(defaults) == 0 {
		t.Fatal("no default sources")
	}
	seen := map[string]bool{}
	for _, d := range defaults {
		if err := d.Validate(); err != nil {
			t.Errorf("default %q invalid: %v", d.Name, err)
		}
		if seen[d.Name] {
			t.Errorf("duplicate default name %q", d.Name)
		}
		seen[d.Name] = true
	}
}

func TestRunSeedsOnce(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	n, err := Run(ctx, m, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != len(Defaults()) {
		t.Fatalf("seeded %d, want %d", n, len(Defaults()))
	}

	n, err = Run(ctx, m, nil)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if n != 0 {
		t.Fatalf("second Run seeded %d, want 0", n)
	}
}

func TestRunSkipsNonEmptyStore(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	if _, err := m.CreateSource(ctx, models.SourceDraft{
		Name: "Custom", Type: models.TypeGame, URLBase: "http://x", SearchMethod: models.MethodAPI,
	}); err != nil {
		t.Fatal(err)
	}

	n, err := Run(ctx, m, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 0 {
		t.Fatalf("Run seeded %d on a non-empty store, want 0", n)
	}
	total, _ := m.CountSources(ctx)
	if total != 1 {
		t.Fatalf("store has %d sources, want 1", total)
	}
}
