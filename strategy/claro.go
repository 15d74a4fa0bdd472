package strategy

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/price"
)

// Claro serves a skeleton page when the render pool is cold, so a fetch
// that comes back suspiciously small gets one bounded retry. The wait
// selector is a hard requirement here, not a default: without it the
// provider returns before the price nodes exist.
type claro struct {
	site
}

// NewClaro builds the Claro detail strategy.
func NewClaro(deps Deps) Strategy {
	return &claro{site{name: "Claro", currency: "COP", deps: deps}}
}

const (
	claroMaxAttempts = 2

	// Under this many bytes the page is the unhydrated skeleton.
	claroMinHTMLSize = 100000
)

var claroSelectors = siteSelectors{
	title:    []string{"h1"},
	current:  []string{".priceNowFP"},
	original: []string{".priceBeforeCrossed", ".priceBeforeFP"},
}

func (s *claro) Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome {
	stages := []stage{
		{methodSelectors, func(pg *page) *stageResult {
			return extractSelectors(pg, claroSelectors.overridden(cfg))
		}},
		{methodNextData, extractClaroNextData},
	}

	var stored *models.ProviderOptions
	if cfg != nil && cfg.ProviderOptions != nil {
		stored = cfg.ProviderOptions
	}
	hints := mergeHints(stored, &models.ProviderOptions{
		WaitForSelector: stringHint(".priceNowFP"),
	})

	var last *models.Outcome
	for attempt := 1; attempt <= claroMaxAttempts; attempt++ {
		html, err := s.deps.Provider.Fetch(ctx, url, hints)
		if err != nil {
			last = s.fetchFailure(err, stages[0].method)
			continue
		}
		if len(html) < claroMinHTMLSize && attempt < claroMaxAttempts {
			slog.Warn("skeleton page, retrying", "marketplace", s.name, "bytes", len(html), "attempt", attempt)
			continue
		}
		pg, err := newPage(url, html)
		if err != nil {
			last = failure(models.ErrCodeInternal, "parse html: "+err.Error(), stages[0].method)
			continue
		}
		r, method := runChain(pg, stages)
		if r == nil {
			last = s.noPriceFailure(pg, method)
			continue
		}
		fillFallbacks(pg, r)
		return s.detailSuccess(r, url, method)
	}
	return last
}

// extractClaroNextData walks the bootstrap JSON for the first node
// carrying the storefront's priceNowFP/priceNow keys.
func extractClaroNextData(pg *page) *stageResult {
	text := pg.doc.Find("script#__NEXT_DATA__").First().Text()
	if text == "" {
		return nil
	}
	var node any
	if err := json.Unmarshal([]byte(text), &node); err != nil {
		return nil
	}
	return claroPriceNode(node, 0)
}

func claroPriceNode(node any, depth int) *stageResult {
	if depth > maxNextDepth {
		return nil
	}
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if r := claroPriceNode(item, depth+1); r != nil {
				return r
			}
		}
	case map[string]any:
		current := price.FromAny(v["priceNowFP"])
		if current == 0 {
			current = price.FromAny(v["priceNow"])
		}
		if current > 0 {
			original := price.FromAny(v["priceBeforeFP"])
			if original == 0 {
				original = price.FromAny(v["priceBefore"])
			}
			return &stageResult{current: current, original: original}
		}
		for _, child := range v {
			switch child.(type) {
			case map[string]any, []any:
				if r := claroPriceNode(child, depth+1); r != nil {
					return r
				}
			}
		}
	}
	return nil
}
