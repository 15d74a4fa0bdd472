package strategy

import (
	"context"

	"github.com/scraperlab/scraperlab/models"
)

type ktronix struct {
	site
}

// NewKtronix builds the Ktronix detail strategy. Same platform as
// Alkosto; the DataLayer works without a render hint here.
func NewKtronix(deps Deps) Strategy {
	return &ktronix{site{name: "Ktronix", currency: "COP", deps: deps}}
}

func (s *ktronix) Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome {
	return s.detailExtract(ctx, url, cfg, nil, []stage{
		{methodGAProduct, extractGAProductData},
		{methodItemprop, extractItemprop},
	})
}
