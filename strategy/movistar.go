package strategy

import (
	"context"

	"github.com/scraperlab/scraperlab/models"
)

// Movistar is Magento under the hood. The sticky purchase bar carries
// the freshest price, the detail card is second, and the itemprop meta
// tags are the reliable last word.
type movistar struct {
	site
}

// NewMovistar builds the Movistar detail strategy.
func NewMovistar(deps Deps) Strategy {
	return &movistar{site{name: "Movistar", currency: "COP", deps: deps}}
}

var (
	movistarSticky = siteSelectors{
		title:    []string{"h1"},
		current:  []string{".regularPrice-sticky"},
		original: []string{".previusPrice-sticky"},
	}
	movistarDetail = siteSelectors{
		title:    []string{"h1"},
		current:  []string{".c-card-detail__number"},
		original: []string{".c-card__price-previous"},
	}
)

func (s *movistar) Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome {
	return s.detailExtract(ctx, url, cfg, nil, []stage{
		{methodStickyBar, func(pg *page) *stageResult {
			return extractSelectors(pg, movistarSticky.overridden(cfg))
		}},
		{methodDetailCard, func(pg *page) *stageResult {
			return extractSelectors(pg, movistarDetail)
		}},
		{methodItemprop, extractItemprop},
	})
}
