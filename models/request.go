package models

// ExtractRequest is the payload for POST /api/v1/extract.
type ExtractRequest struct {
	// URL is the target page. Required.
	URL string `json:"url" binding:"required,url"`

	// Type selects the extraction routine.
	// Allowed: "detail" (default), "search", "searchSpecific".
	Type ExtractionType `json:"type,omitempty" binding:"omitempty,oneof=detail search searchSpecific"`

	// ReceiptLine is the raw source line for searchSpecific extractions.
	// When set, it is sanitized into the expected attributes used for
	// candidate scoring.
	ReceiptLine string `json:"receipt_line,omitempty"`

	// NoCache bypasses the outcome cache for this request.
	NoCache bool `json:"no_cache,omitempty"`
}

// Defaults applies default values to unset fields. An omitted type maps
// to the per-site default alias, not to any concrete type, so each site
// decides what an untyped request means.
func (r *ExtractRequest) Defaults() {
	if r.Type == "" {
		r.Type = TypeDefault
	}
}

// BatchExtractRequest is the payload for POST /api/v1/extract/batch.
type BatchExtractRequest struct {
	URLs []string       `json:"urls" binding:"required,min=1,max=50,dive,url"`
	Type ExtractionType `json:"type,omitempty" binding:"omitempty,oneof=detail search searchSpecific"`
}

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	Outcome

	SiteID     string `json:"site_id"`
	Provider   string `json:"provider"`
	Type       string `json:"type"`
	DurationMs int64  `json:"duration_ms"`

	// CacheStatus is "hit" or "miss"; empty when caching is disabled.
	CacheStatus string `json:"cache_status,omitempty"`
}

// BatchExtractResponse is the response for POST /api/v1/extract/batch.
type BatchExtractResponse struct {
	Results []*ExtractResponse `json:"results"`
	Summary BatchSummary       `json:"summary"`
}

// BatchSummary counts per-item outcomes of a batch run.
type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
