package store

import (
	"context"
	"errors"

	"github.com/voyagen/metaseek/internal/models"
)

// ErrNotFound is returned when a source id does not exist.
var ErrNotFound = errors.New("not found")

// Store defines persistence for source configurations.
type Store interface {
	// ListSources returns all sources, enabled and disabled.
	ListSources(ctx context.Context) ([]models.Source, error)
	// ListSourcesByType returns all sources of one content type,
	// enabled and disabled.
	ListSourcesByType(ctx context.Context, t models.ContentType) ([]models.Source, error)
	// GetSource returns a single source by id.
	GetSource(ctx context.Context, id string) (*models.Source, error)
	// GetSourcesByIDs returns the enabled sources among the given ids.
	// Unknown and disabled ids are silently skipped.
	GetSourcesByIDs(ctx context.Context, ids []string) ([]models.Source, error)

	// CreateSource inserts a new source. ID and CreatedAt are assigned here.
	CreateSource(ctx context.Context, draft models.SourceDraft) (*models.Source, error)
	// UpdateSource applies the non-nil fields and returns the updated source.
	UpdateSource(ctx context.Context, id string, fields models.SourceUpdate) (*models.Source, error)
	// DeleteSource deletes a source by id.
	DeleteSource(ctx context.Context, id string) error

	// CountSources returns the total number of sources.
	CountSources(ctx context.Context) (int64, error)
	// CreateSources bulk-inserts drafts (used by seeding).
	CreateSources(ctx context.Context, drafts []models.SourceDraft) (int, error)
}
