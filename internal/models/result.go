package models

// NotAvailable is the sentinel for item fields a source does not provide.
const NotAvailable = "N/A"

// ResultItem is one hit returned by a source. Fields a source or content
// type cannot fill carry the "N/A" sentinel instead of being omitted.
type ResultItem struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	Producer    string `json:"producer"`
	ReleaseDate string `json:"release_date"`
	Link        string `json:"link"`
}

// NewResultItem returns an item with every field set to the sentinel.
func NewResultItem() ResultItem {
	return ResultItem{
		Name:        NotAvailable,
		Price:       NotAvailable,
		Size:        NotAvailable,
		Producer:    NotAvailable,
		ReleaseDate: NotAvailable,
	}
}

// ResultGroup collects one source's results in a fan-out search.
// Error carries a source-level failure without affecting sibling groups.
type ResultGroup struct {
	SourceName string       `json:"source_name"`
	Items      []ResultItem `json:"items"`
	Error      string       `json:"error,omitempty"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query     string      `json:"query"`
	Type      ContentType `json:"type"`
	SourceIDs []string    `json:"source_ids"`
}
