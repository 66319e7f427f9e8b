package client

import (
	"encoding/json"
	"time"
)

// ContentType partitions sources and searches.
type ContentType string

// Content types understood by the backend.
const (
	TypeGame     ContentType = "game"
	TypeMovie    ContentType = "movie"
	TypeSeries   ContentType = "series"
	TypeAnime    ContentType = "anime"
	TypeSoftware ContentType = "software"
	TypeBook     ContentType = "book"
)

// SearchMethod selects the backend's fetch strategy for a source.
// The client passes it through without interpreting it.
type SearchMethod string

const (
	MethodAPI      SearchMethod = "api"
	MethodScraping SearchMethod = "scraping"
)

// Source is one configured external content provider.
type Source struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         ContentType     `json:"type"`
	URLBase      string          `json:"url_base"`
	SearchMethod SearchMethod    `json:"search_method"`
	Config       json.RawMessage `json:"config"`
	Enabled      bool            `json:"enabled"`
	CreatedAt    *time.Time      `json:"created_at,omitempty"`
}

// SourceDraft is a source without an id; the backend assigns one.
type SourceDraft struct {
	Name         string          `json:"name"`
	Type         ContentType     `json:"type"`
	URLBase      string          `json:"url_base"`
	SearchMethod SearchMethod    `json:"search_method"`
	Config       json.RawMessage `json:"config,omitempty"`
	Enabled      *bool           `json:"enabled,omitempty"`
}

// SourceUpdate carries a full or partial edit; nil fields are unchanged.
type SourceUpdate struct {
	Name         *string          `json:"name,omitempty"`
	Type         *ContentType     `json:"type,omitempty"`
	URLBase      *string          `json:"url_base,omitempty"`
	SearchMethod *SearchMethod    `json:"search_method,omitempty"`
	Config       *json.RawMessage `json:"config,omitempty"`
	Enabled      *bool            `json:"enabled,omitempty"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query     string      `json:"query"`
	Type      ContentType `json:"type"`
	SourceIDs []string    `json:"source_ids"`
}

// ResultItem is one hit; fields a source cannot fill carry "N/A".
type ResultItem struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	Producer    string `json:"producer"`
	ReleaseDate string `json:"release_date"`
	Link        string `json:"link"`
}

// ResultGroup is one source's share of a fan-out search. Error is set
// when that source failed; sibling groups are unaffected.
type ResultGroup struct {
	SourceName string       `json:"source_name"`
	Items      []ResultItem `json:"items"`
	Error      string       `json:"error,omitempty"`
}
