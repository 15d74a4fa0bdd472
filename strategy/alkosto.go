package strategy

import (
	"context"

	"github.com/scraperlab/scraperlab/models"
)

// Alkosto, Ktronix and Alkomprar share one storefront platform whose
// analytics DataLayer (GAProductData) is the most reliable price source.
// Each brand keeps its own fallback tail.

type alkosto struct {
	site
}

// NewAlkosto builds the Alkosto detail strategy.
func NewAlkosto(deps Deps) Strategy {
	return &alkosto{site{name: "Alkosto", currency: "COP", deps: deps}}
}

var alkostoSelectors = siteSelectors{
	title:   []string{"h1"},
	current: []string{".price", ".alk-main-price"},
}

func (s *alkosto) Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome {
	extra := &models.ProviderOptions{Render: boolHint(true)}
	return s.detailExtract(ctx, url, cfg, extra, []stage{
		{methodGAProduct, extractGAProductData},
		{methodJSONLD, extractJSONLD},
		{methodSelectors, func(pg *page) *stageResult {
			return extractSelectors(pg, alkostoSelectors.overridden(cfg))
		}},
	})
}
