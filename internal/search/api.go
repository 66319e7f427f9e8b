package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/voyagen/metaseek/internal/models"
)

// apiConfig is the source config shape understood by the api strategy.
// Every key is optional; unknown keys are ignored so sources can carry
// extra parameters for other consumers.
type apiConfig struct {
	Headers     map[string]string `json:"headers"`
	Params      map[string]string `json:"params"`
	ResultsPath string            `json:"results_path"`

	NameField     string `json:"name_field"`
	PriceField    string `json:"price_field"`
	SizeField     string `json:"size_field"`
	ProducerField string `json:"producer_field"`
	DateField     string `json:"date_field"`
	ImageField    string `json:"image_field"`
	LinkField     string `json:"link_field"`

	DefaultImage string `json:"default_image"`
}

func (c *apiConfig) applyDefaults() {
	if c.ResultsPath == "" {
		c.ResultsPath = "results"
	}
	if c.NameField == "" {
		c.NameField = "name"
	}
	if c.PriceField == "" {
		c.PriceField = "price"
	}
	if c.SizeField == "" {
		c.SizeField = "size"
	}
	if c.ProducerField == "" {
		c.ProducerField = "producer"
	}
	if c.DateField == "" {
		c.DateField = "release_date"
	}
	if c.ImageField == "" {
		c.ImageField = "image"
	}
	if c.LinkField == "" {
		c.LinkField = "url"
	}
}

// apiStrategy queries a JSON search API and maps response fields onto
// result items using the source's config.
type apiStrategy struct {
	client    *http.Client
	userAgent string
}

func (s *apiStrategy) Search(ctx context.Context, src models.Source, query string) ([]models.ResultItem, error) {
	var cfg apiConfig
	if len(src.Config) > 0 {
		if err := json.Unmarshal(src.Config, &cfg); err != nil {
			return nil, fmt.Errorf("source config: %w", err)
		}
	}
	cfg.applyDefaults()

	reqURL, err := buildAPIURL(src.URLBase, query, cfg.Params)
	if err != nil {
		return nil, err
	}

	body, err := fetch(ctx, s.client, reqURL, s.userAgent, cfg.Headers)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	hits := gjson.GetBytes(body, cfg.ResultsPath).Array()
	items := make([]models.ResultItem, 0, len(hits))
	for _, hit := range hits {
		if len(items) >= maxItems {
			break
		}
		item := models.NewResultItem()
		item.Name = fieldOr(hit, cfg.NameField, models.NotAvailable)
		item.Price = fieldOr(hit, cfg.PriceField, models.NotAvailable)
		item.Size = fieldOr(hit, cfg.SizeField, models.NotAvailable)
		item.Producer = fieldOr(hit, cfg.ProducerField, models.NotAvailable)
		item.ReleaseDate = fieldOr(hit, cfg.DateField, models.NotAvailable)
		item.Image = fieldOr(hit, cfg.ImageField, cfg.DefaultImage)
		item.Link = fieldOr(hit, cfg.LinkField, src.URLBase)
		items = append(items, item)
	}
	return items, nil
}

// buildAPIURL substitutes the {query} placeholder when present, applies
// configured query parameters, and always sets q to the search query.
func buildAPIURL(base, query string, params map[string]string) (string, error) {
	raw := strings.ReplaceAll(base, "{query}", url.QueryEscape(query))
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("url_base: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("q", query)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fieldOr extracts a (possibly dotted) path from a JSON hit, falling back
// when the field is missing or empty.
func fieldOr(hit gjson.Result, path, fallback string) string {
	v := hit.Get(path)
	if !v.Exists() || v.String() == "" {
		return fallback
	}
	return v.String()
}
