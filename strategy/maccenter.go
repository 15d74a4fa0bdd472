package strategy

import (
	"context"

	"github.com/scraperlab/scraperlab/models"
)

type macCenter struct {
	site
}

// NewMacCenter builds the Mac Center detail strategy.
func NewMacCenter(deps Deps) Strategy {
	return &macCenter{site{name: "Mac Center", currency: "COP", deps: deps}}
}

var macCenterSelectors = siteSelectors{
	title:    []string{".product__title", "h1"},
	current:  []string{".price-item--sale", ".price__regular .price-item"},
	original: []string{".price-item--regular"},
	image:    []string{".product__media img"},
}

func (s *macCenter) Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome {
	// Unrendered plain fetch from a Colombian exit; the analytics block
	// is in the initial HTML and rendering only raises the block rate.
	extra := &models.ProviderOptions{
		Render:           boolHint(false),
		ResidentialProxy: boolHint(false),
		CountryCode:      stringHint("co"),
	}
	return s.detailExtract(ctx, url, cfg, extra, []stage{
		{methodAdobe, extractAdobeAnalytics},
		{methodJSONLD, extractJSONLD},
		{methodSelectors, func(pg *page) *stageResult {
			return extractSelectors(pg, macCenterSelectors.overridden(cfg))
		}},
	})
}
