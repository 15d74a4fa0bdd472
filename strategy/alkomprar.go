package strategy

import (
	"context"

	"github.com/scraperlab/scraperlab/models"
)

type alkomprar struct {
	site
}

// NewAlkomprar builds the Alkomprar detail strategy. The DataLayer only
// appears after client-side rendering on this brand.
func NewAlkomprar(deps Deps) Strategy {
	return &alkomprar{site{name: "Alkomprar", currency: "COP", deps: deps}}
}

func (s *alkomprar) Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome {
	extra := &models.ProviderOptions{Render: boolHint(true)}
	return s.detailExtract(ctx, url, cfg, extra, []stage{
		{methodGAProduct, extractGAProductData},
		{methodItemprop, extractItemprop},
	})
}
