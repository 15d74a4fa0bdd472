package strategy

import (
	"context"

	"github.com/scraperlab/scraperlab/models"
)

// iShop and Mac Center run the same Shopify theme with an Adobe
// Analytics product block as the primary price source. Both stay
// unrendered on purpose; the rendered variant trips bot detection more
// often and the analytics block is server-side anyway.

type iShop struct {
	site
}

// NewIShop builds the iShop detail strategy.
func NewIShop(deps Deps) Strategy {
	return &iShop{site{name: "iShop", currency: "COP", deps: deps}}
}

var shopifySelectors = siteSelectors{
	title:    []string{".product__title", "h1"},
	current:  []string{".price-item--sale", ".price-item"},
	original: []string{".price-item--regular"},
	image:    []string{".product__media img"},
}

func (s *iShop) Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome {
	return s.detailExtract(ctx, url, cfg, nil, []stage{
		{methodAdobe, extractAdobeAnalytics},
		{methodJSONLD, extractJSONLD},
		{methodSelectors, func(pg *page) *stageResult {
			return extractSelectors(pg, shopifySelectors.overridden(cfg))
		}},
	})
}
