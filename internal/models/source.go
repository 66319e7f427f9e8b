package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ContentType partitions sources and searches (game, movie, series, ...).
type ContentType string

const (
	TypeGame     ContentType = "game"
	TypeMovie    ContentType = "movie"
	TypeSeries   ContentType = "series"
	TypeAnime    ContentType = "anime"
	TypeSoftware ContentType = "software"
	TypeBook     ContentType = "book"
)

// ContentTypes lists every valid content type.
var ContentTypes = []ContentType{TypeGame, TypeMovie, TypeSeries, TypeAnime, TypeSoftware, TypeBook}

// Valid reports whether t is a member of the enumeration.
func (t ContentType) Valid() bool {
	switch t {
	case TypeGame, TypeMovie, TypeSeries, TypeAnime, TypeSoftware, TypeBook:
		return true
	}
	return false
}

// SearchMethod tells the backend which fetch strategy to use for a source.
type SearchMethod string

const (
	MethodAPI      SearchMethod = "api"
	MethodScraping SearchMethod = "scraping"
)

// Valid reports whether m is a member of the enumeration.
func (m SearchMethod) Valid() bool {
	return m == MethodAPI || m == MethodScraping
}

// Source represents one external content provider the backend can query.
// Config is an opaque JSON object with source-specific parameters
// (selectors, field mappings, headers); its shape is strategy-defined.
type Source struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	Type         ContentType     `json:"type"`
	URLBase      string          `json:"url_base"`
	SearchMethod SearchMethod    `json:"search_method"`
	Config       json.RawMessage `json:"config"`
	Enabled      bool            `json:"enabled"`
	CreatedAt    *time.Time      `json:"created_at,omitempty"`
}

// SourceDraft is the create payload: a Source without an id (the backend
// assigns one).
type SourceDraft struct {
	Name         string          `json:"name"`
	Type         ContentType     `json:"type"`
	URLBase      string          `json:"url_base"`
	SearchMethod SearchMethod    `json:"search_method"`
	Config       json.RawMessage `json:"config,omitempty"`
	Enabled      *bool           `json:"enabled,omitempty"`
}

// SourceUpdate holds mutable fields for PUT/PATCH /sources/{id}.
// Pointer fields: nil = don't change, non-nil = set. A single-field toggle
// (e.g. flipping Enabled) and a full edit go through the same shape.
type SourceUpdate struct {
	Name         *string          `json:"name,omitempty"`
	Type         *ContentType     `json:"type,omitempty"`
	URLBase      *string          `json:"url_base,omitempty"`
	SearchMethod *SearchMethod    `json:"search_method,omitempty"`
	Config       *json.RawMessage `json:"config,omitempty"`
	Enabled      *bool            `json:"enabled,omitempty"`
}

// Validate checks the draft's enum fields and config payload.
func (d SourceDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(d.URLBase) == "" {
		return fmt.Errorf("url_base is required")
	}
	if !d.Type.Valid() {
		return fmt.Errorf("invalid type: %q", d.Type)
	}
	if !d.SearchMethod.Valid() {
		return fmt.Errorf("invalid search_method: %q", d.SearchMethod)
	}
	if len(d.Config) > 0 {
		if err := ValidateConfig(d.Config); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the enum fields and config payload of an update.
// Fields left nil are not validated (they stay untouched).
func (u SourceUpdate) Validate() error {
	if u.Type != nil && !u.Type.Valid() {
		return fmt.Errorf("invalid type: %q", *u.Type)
	}
	if u.SearchMethod != nil && !u.SearchMethod.Valid() {
		return fmt.Errorf("invalid search_method: %q", *u.SearchMethod)
	}
	if u.Config != nil {
		if err := ValidateConfig(*u.Config); err != nil {
			return err
		}
	}
	return nil
}

// Empty reports whether the update changes nothing.
func (u SourceUpdate) Empty() bool {
	return u.Name == nil && u.Type == nil && u.URLBase == nil &&
		u.SearchMethod == nil && u.Config == nil && u.Enabled == nil
}

// ValidateConfig rejects config payloads that are not a JSON object.
// Arrays, scalars, and malformed input are all errors; writes must not
// reach the store with an unparseable config.
func ValidateConfig(raw json.RawMessage) error {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("config must be a valid JSON object: %w", err)
	}
	if obj == nil {
		return fmt.Errorf("config must be a JSON object, got null")
	}
	return nil
}
