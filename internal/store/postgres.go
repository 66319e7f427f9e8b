package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voyagen/metaseek/internal/models"
)

// Postgres implements Store using PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store from a DSN. Caller must call Close when done.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const sourceColumns = `id, name, type, url_base, search_method, config, enabled, created_at`

func scanSource(row pgx.Row) (*models.Source, error) {
	var s models.Source
	var config []byte
	var createdAt time.Time
	if err := row.Scan(&s.ID, &s.Name, &s.Type, &s.URLBase, &s.SearchMethod, &config, &s.Enabled, &createdAt); err != nil {
		return nil, err
	}
	s.Config = config
	s.CreatedAt = &createdAt
	return &s, nil
}

func (p *Postgres) querySources(ctx context.Context, query string, args ...any) ([]models.Source, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []models.Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *s)
	}
	return sources, rows.Err()
}

// ListSources returns all sources, enabled and disabled.
func (p *Postgres) ListSources(ctx context.Context) ([]models.Source, error) {
	sources, err := p.querySources(ctx,
		`SELECT `+sourceColumns+` FROM sources ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("ListSources: %w", err)
	}
	return sources, nil
}

// ListSourcesByType returns all sources of one content type.
func (p *Postgres) ListSourcesByType(ctx context.Context, t models.ContentType) ([]models.Source, error) {
	sources, err := p.querySources(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE type = $1 ORDER BY created_at, id`, t)
	if err != nil {
		return nil, fmt.Errorf("ListSourcesByType: %w", err)
	}
	return sources, nil
}

// GetSource returns a single source by id.
func (p *Postgres) GetSource(ctx context.Context, id string) (*models.Source, error) {
	s, err := scanSource(p.pool.QueryRow(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetSource: %w", err)
	}
	return s, nil
}

// GetSourcesByIDs returns the enabled sources among the given ids.
func (p *Postgres) GetSourcesByIDs(ctx context.Context, ids []string) ([]models.Source, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sources, err := p.querySources(ctx,
		`SELECT `+sourceColumns+` FROM sources WHERE id = ANY($1) AND enabled ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("GetSourcesByIDs: %w", err)
	}
	return sources, nil
}

// CreateSource inserts a new source, assigning id and created_at.
func (p *Postgres) CreateSource(ctx context.Context, draft models.SourceDraft) (*models.Source, error) {
	src := draftToSource(draft)
	_, err := p.pool.Exec(ctx,
		`INSERT INTO sources (id, name, type, url_base, search_method, config, enabled, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		src.ID, src.Name, src.Type, src.URLBase, src.SearchMethod, string(src.Config), src.Enabled, *src.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("CreateSource: %w", err)
	}
	return src, nil
}

// UpdateSource applies the non-nil fields and returns the updated source.
func (p *Postgres) UpdateSource(ctx context.Context, id string, fields models.SourceUpdate) (*models.Source, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.Type != nil {
		add("type", *fields.Type)
	}
	if fields.URLBase != nil {
		add("url_base", *fields.URLBase)
	}
	if fields.SearchMethod != nil {
		add("search_method", *fields.SearchMethod)
	}
	if fields.Config != nil {
		add("config", string(*fields.Config))
	}
	if fields.Enabled != nil {
		add("enabled", *fields.Enabled)
	}

	if len(sets) > 0 {
		args = append(args, id)
		query := fmt.Sprintf(`UPDATE sources SET %s WHERE id = $%d`,
			strings.Join(sets, ", "), len(args))
		tag, err := p.pool.Exec(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("UpdateSource: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, ErrNotFound
		}
	}
	return p.GetSource(ctx, id)
}

// DeleteSource deletes a source by id.
func (p *Postgres) DeleteSource(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteSource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSources returns the total number of sources.
func (p *Postgres) CountSources(ctx context.Context) (int64, error) {
	var n int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sources`).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountSources: %w", err)
	}
	return n, nil
}

// CreateSources bulk-inserts drafts in one transaction.
func (p *Postgres) CreateSources(ctx context.Context, drafts []models.SourceDraft) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("CreateSources: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, draft := range drafts {
		src := draftToSource(draft)
		_, err := tx.Exec(ctx,
			`INSERT INTO sources (id, name, type, url_base, search_method, config, enabled, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			src.ID, src.Name, src.Type, src.URLBase, src.SearchMethod, string(src.Config), src.Enabled, *src.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("CreateSources: insert %q: %w", src.Name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("CreateSources: commit: %w", err)
	}
	return len(drafts), nil
}

// draftToSource materialises a draft: id and created_at assigned,
// enabled defaults to true, config defaults to an empty object.
func draftToSource(draft models.SourceDraft) *models.Source {
	now := time.Now().UTC()
	src := &models.Source{
		ID:           uuid.NewString(),
		Name:         draft.Name,
		Type:         draft.Type,
		URLBase:      draft.URLBase,
		SearchMethod: draft.SearchMethod,
		Config:       draft.Config,
		Enabled:      true,
		CreatedAt:    &now,
	}
	if draft.Enabled != nil {
		src.Enabled = *draft.Enabled
	}
	if len(src.Config) == 0 {
		src.Config = []byte(`{}`)
	}
	return src
}
