package store

import (
	"context"
	"sync"

	"github.com/voyagen/metaseek/internal/models"
)

// Memory is an in-memory Store for tests and local experiments.
// It applies the same id/created_at assignment rules as Postgres.
type Memory struct {
	mu      sync.Mutex
	sources map[string]*models.Source
	order   []string // insertion order, mirrors the created_at sort
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{sources: make(map[string]*models.Source)}
}

func (m *Memory) list(filter func(*models.Source) bool) []models.Source {
	var out []models.Source
	for _, id := range m.order {
		s := m.sources[id]
		if filter == nil || filter(s) {
			out = append(out, *s)
		}
	}
	return out
}

func (m *Memory) ListSources(_ context.Context) ([]models.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(nil), nil
}

func (m *Memory) ListSourcesByType(_ context.Context, t models.ContentType) ([]models.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(s *models.Source) bool { return s.Type == t }), nil
}

func (m *Memory) GetSource(_ context.Context, id string) (*models.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) GetSourcesByIDs(_ context.Context, ids []string) ([]models.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.list(func(s *models.Source) bool { return want[s.ID] && s.Enabled }), nil
}

func (m *Memory) CreateSource(_ context.Context, draft models.SourceDraft) (*models.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := draftToSource(draft)
	m.sources[src.ID] = src
	m.order = append(m.order, src.ID)
	cp := *src
	return &cp, nil
}

func (m *Memory) UpdateSource(_ context.Context, id string, fields models.SourceUpdate) (*models.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[id]
	if !ok {
		return nil, ErrNotFound
	}
	if fields.Name != nil {
		s.Name = *fields.Name
	}
	if fields.Type != nil {
		s.Type = *fields.Type
	}
	if fields.URLBase != nil {
		s.URLBase = *fields.URLBase
	}
	if fields.SearchMethod != nil {
		s.SearchMethod = *fields.SearchMethod
	}
	if fields.Config != nil {
		s.Config = append([]byte(nil), *fields.Config...)
	}
	if fields.Enabled != nil {
		s.Enabled = *fields.Enabled
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) DeleteSource(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return ErrNotFound
	}
	delete(m.sources, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) CountSources(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.sources)), nil
}

func (m *Memory) CreateSources(ctx context.Context, drafts []models.SourceDraft) (int, error) {
	for _, d := range drafts {
		if _, err := m.CreateSource(ctx, d); err != nil {
			return 0, err
		}
	}
	return len(drafts), nil
}
