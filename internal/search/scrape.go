package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/voyagen/metaseek/internal/models"
)

// scrapeConfig is the source config shape understood by the scraping
// strategy. Selectors are site-specific and live entirely in the source
// record; the strategy itself knows nothing about individual sites.
type scrapeConfig struct {
	ItemSelector string `json:"item_selector"`
	ItemClass    string `json:"item_class"`
	DefaultImage string `json:"default_image"`
}

// scrapeStrategy fetches a search results page and extracts items with
// the selectors configured on the source.
type scrapeStrategy struct {
	client    *http.Client
	userAgent string
}

func (s *scrapeStrategy) Search(ctx context.Context, src models.Source, query string) ([]models.ResultItem, error) {
	var cfg scrapeConfig
	if len(src.Config) > 0 {
		if err := json.Unmarshal(src.Config, &cfg); err != nil {
			return nil, fmt.Errorf("source config: %w", err)
		}
	}
	if cfg.ItemSelector == "" {
		cfg.ItemSelector = "div"
	}

	searchURL := strings.ReplaceAll(src.URLBase, "{query}", url.QueryEscape(query))
	body, err := fetch(ctx, s.client, searchURL, s.userAgent, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, _ := url.Parse(searchURL)

	selector := cfg.ItemSelector
	if cfg.ItemClass != "" {
		selector += "." + cfg.ItemClass
	}

	var items []models.ResultItem
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name := normSpace(sel.Text())
		if name == "" {
			return true
		}
		item := models.NewResultItem()
		item.Name = name
		item.Image = cfg.DefaultImage
		item.Link = itemLink(sel, base, searchURL)
		items = append(items, item)
		return len(items) < maxItems
	})
	return items, nil
}

// itemLink resolves the item's own href when one exists, else falls back
// to the search page URL.
func itemLink(sel *goquery.Selection, base *url.URL, fallback string) string {
	href, ok := sel.Attr("href")
	if !ok {
		href, ok = sel.Find("a[href]").First().Attr("href")
	}
	if !ok || strings.TrimSpace(href) == "" {
		return fallback
	}
	if base != nil {
		if ref, err := url.Parse(href); err == nil {
			return base.ResolveReference(ref).String()
		}
	}
	return href
}

// normSpace collapses runs of whitespace into single spaces.
func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
