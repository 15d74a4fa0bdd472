package strategy

import (
	"context"

	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/price"
)

// Exito runs on VTEX and needs a rendered page before the product schema
// shows up. The JSON-LD walker covers the deeply nested @graph shape the
// storefront emits; the VTEX listPrice meta fills in the strike-through
// price when the schema omits it.
type exito struct {
	site
}

// NewExito builds the Exito detail strategy.
func NewExito(deps Deps) Strategy {
	return &exito{site{name: "Exito", currency: "COP", deps: deps}}
}

func (s *exito) Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome {
	extra := &models.ProviderOptions{Render: boolHint(true)}
	return s.detailExtract(ctx, url, cfg, extra, []stage{
		{methodJSONLD, extractExitoJSONLD},
		{methodOpenGraph, extractOpenGraph},
	})
}

func extractExitoJSONLD(pg *page) *stageResult {
	r := extractJSONLD(pg)
	if r == nil {
		return nil
	}
	if r.original == 0 {
		r.original = price.Normalize(metaContent(pg.doc, `meta[property="product:price:listPrice"]`))
	}
	return r
}
