package strategy

import (
	"context"
	"encoding/json"

	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/price"
)

// Falabella exposes prices three ways depending on the rollout: data-*
// event attributes on the price list items, plain CSS nodes, and the
// __NEXT_DATA__ bootstrap blob.
type falabella struct {
	site
}

// NewFalabella builds the Falabella detail strategy.
func NewFalabella(deps Deps) Strategy {
	return &falabella{site{name: "Falabella", currency: "COP", deps: deps}}
}

var falabellaSelectors = siteSelectors{
	title: []string{".product-name", "h1"},
	current: []string{
		".prices-0 .primary",
		"#testId-pod-prices-current",
		".copy12.primary.high",
	},
	original: []string{
		".prices-1 .primary",
		".copy10.primary.normal",
	},
	image: []string{".product-image img"},
}

func (s *falabella) Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome {
	return s.detailExtract(ctx, url, cfg, nil, []stage{
		{methodSelectors, func(pg *page) *stageResult {
			return extractFalabellaDOM(pg, falabellaSelectors.overridden(cfg))
		}},
		{methodNextData, extractFalabellaNextData},
		// The productData path moves between releases; the generic walk
		// catches renamed intermediate keys.
		{methodNextData, extractNextData},
	})
}

// extractFalabellaDOM reads the data-event-price attributes first, then
// falls through to the visible price nodes.
func extractFalabellaDOM(pg *page, sels siteSelectors) *stageResult {
	r := &stageResult{
		title: firstText(pg.doc, sels.title),
		image: firstImage(pg.doc, sels.image),
	}
	r.current = price.Normalize(firstAttrText(pg.doc, []string{"li[data-event-price]"}, "data-event-price"))
	r.original = price.Normalize(firstAttrText(pg.doc, []string{"li[data-normal-price]"}, "data-normal-price"))
	if r.current == 0 {
		r.current = price.Normalize(firstText(pg.doc, sels.current))
	}
	if r.original == 0 {
		r.original = price.Normalize(firstText(pg.doc, sels.original))
	}
	if r.current == 0 {
		return nil
	}
	return r
}

// extractFalabellaNextData reads props.pageProps.productData out of the
// bootstrap JSON. The prices array leads with the event (sale) price;
// normalPrice is the strike-through.
func extractFalabellaNextData(pg *page) *stageResult {
	text := pg.doc.Find("script#__NEXT_DATA__").First().Text()
	if text == "" {
		return nil
	}
	var payload struct {
		Props struct {
			PageProps struct {
				ProductData struct {
					Name   string `json:"name"`
					Prices []struct {
						EventPrice  any   `json:"eventPrice"`
						Price       []any `json:"price"`
						NormalPrice any   `json:"normalPrice"`
					} `json:"prices"`
				} `json:"productData"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil
	}
	product := payload.Props.PageProps.ProductData
	if len(product.Prices) == 0 {
		return nil
	}
	first := product.Prices[0]
	r := &stageResult{title: product.Name}
	r.current = price.FromAny(first.EventPrice)
	if r.current == 0 && len(first.Price) > 0 {
		r.current = price.FromAny(first.Price[0])
	}
	r.original = price.FromAny(first.NormalPrice)
	if r.current == 0 {
		return nil
	}
	return r
}
