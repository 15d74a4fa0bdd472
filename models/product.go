package models

// ExtractionType selects which extraction routine a strategy runs.
type ExtractionType string

const (
	// TypeDetail extracts one product from a single product page.
	TypeDetail ExtractionType = "detail"

	// TypeSearch extracts the ordered candidate list from a search-results page.
	TypeSearch ExtractionType = "search"

	// TypeSearchSpecific runs the search chain and then picks the best
	// candidate by match score instead of taking the first result.
	TypeSearchSpecific ExtractionType = "searchSpecific"

	// TypeDefault is the per-site alias used only when the caller did not
	// name a type at all. It never satisfies an explicitly requested type.
	TypeDefault ExtractionType = "default"
)

// ValidTypes lists the extraction types a caller may request.
var ValidTypes = []ExtractionType{TypeDetail, TypeSearch, TypeSearchSpecific}

// IsValidType reports whether t is a requestable extraction type.
func IsValidType(t ExtractionType) bool {
	for _, v := range ValidTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ProductRecord is the normalized result of a detail extraction.
//
// CurrentPrice == 0 is the sentinel for "no price found" and never appears
// in a successful outcome. OriginalPrice >= CurrentPrice is NOT an
// invariant: sites occasionally report a lower original price and callers
// must not assume the ordering.
type ProductRecord struct {
	Title string `json:"title"`

	// CurrentPrice and OriginalPrice are whole currency units with every
	// separator stripped. OriginalPrice falls back to CurrentPrice when the
	// site reports no strike-through price.
	CurrentPrice  int    `json:"current_price"`
	OriginalPrice int    `json:"original_price"`
	Currency      string `json:"currency"`

	// Availability is tri-state: nil means the page did not say.
	Availability *bool `json:"availability,omitempty"`

	Image     string `json:"image,omitempty"`
	SourceURL string `json:"source_url"`
}

// DiscountPercentage returns the rounded discount implied by the two
// prices, or 0 when there is no discount to report.
func (p *ProductRecord) DiscountPercentage() int {
	if p.OriginalPrice <= p.CurrentPrice || p.OriginalPrice == 0 {
		return 0
	}
	return int((1-float64(p.CurrentPrice)/float64(p.OriginalPrice))*100 + 0.5)
}

// SearchCandidate is one lightweight entry from a search-results page,
// produced by a search-type strategy and consumed immediately by the
// match scorer. Position is the 1-based rank in the site's own ordering.
type SearchCandidate struct {
	Title         string `json:"title"`
	CurrentPrice  int    `json:"current_price"`
	OriginalPrice int    `json:"original_price"`
	URL           string `json:"url"`
	Image         string `json:"image,omitempty"`

	// WeightText is the raw package-size text shown on the card, e.g.
	// "bandeja 400 g". Parsed later by the scorer; empty when absent.
	WeightText string `json:"weight_text,omitempty"`

	Availability bool `json:"availability"`
	Position     int  `json:"position"`
}

// Outcome is the uniform result of one extraction call. Failures are
// values, not panics or returned errors, so a batch loop can treat every
// item the same way. Method is always set, on failure too, naming the
// last fallback stage reached.
type Outcome struct {
	Success bool `json:"success"`

	// Product is set for detail and searchSpecific successes.
	Product *ProductRecord `json:"product,omitempty"`

	// Candidates is set for search successes, preserving site order.
	Candidates []SearchCandidate `json:"candidates,omitempty"`

	// Match carries the scoring detail for searchSpecific outcomes. It is
	// present even when the best score fell below the acceptance
	// threshold, so a human can review near-misses.
	Match *MatchReport `json:"match,omitempty"`

	// Method is the diagnostic label of the fallback stage that produced
	// the result (or the last one attempted before failing).
	Method string `json:"method"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// MatchReport summarizes candidate scoring for a searchSpecific extraction.
type MatchReport struct {
	// Best is the score of the selected candidate.
	Best MatchScore `json:"best"`

	// Position is the selected candidate's original 1-based rank.
	Position int `json:"position"`

	// Confident is false when the best total fell below the acceptance
	// threshold; the result is still returned for review.
	Confident bool `json:"confident"`

	// Scored is the number of candidates that were scored.
	Scored int `json:"scored"`
}

// Confidence is the tier bucket derived from a total match score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// MatchScore is the per-candidate scoring breakdown. Immutable once
// computed; a fresh value is produced for every candidate.
type MatchScore struct {
	TextScore   int        `json:"text_score"`   // 0-35
	WeightScore int        `json:"weight_score"` // 0-35
	WeightMatch bool       `json:"weight_match"`
	PriceScore  int        `json:"price_score"` // 0-30
	PriceMatch  bool       `json:"price_match"`
	Total       int        `json:"total"` // 0-100
	Confidence  Confidence `json:"confidence"`
}
