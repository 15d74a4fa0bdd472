package strategy

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/price"
)

// MercadoLibre is server-rendered, so no render hint is forced here; the
// stored config decides. Prices live in the melidata/preloaded-state
// scripts first, JSON-LD second, the price DOM last.
type mercadoLibre struct {
	site
}

// NewMercadoLibre builds the MercadoLibre detail strategy.
func NewMercadoLibre(deps Deps) Strategy {
	return &mercadoLibre{site{name: "MercadoLibre", currency: "COP", deps: deps}}
}

// meliKeyPattern captures price-bearing keys in one pass; RE2 has no
// lookbehind, so original_* and plain keys are told apart by the
// captured key name.
var meliKeyPattern = regexp.MustCompile(`"(original_price|original_value|price|value)"\s*:\s*(\d+(?:\.\d+)?)`)

var meliSelectors = siteSelectors{
	title: []string{".ui-pdp-title", "h1"},
	current: []string{
		".ui-pdp-price__second-line .andes-money-amount__fraction",
		".price-tag-fraction",
	},
	original: []string{
		".ui-pdp-price__original-value .andes-money-amount__fraction",
		".price-tag-line-through .andes-money-amount__fraction",
	},
	image: []string{".ui-pdp-gallery__figure img"},
}

func (s *mercadoLibre) Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome {
	return s.detailExtract(ctx, url, cfg, nil, []stage{
		{methodScriptData, extractMeliScripts},
		{methodJSONLD, extractJSONLD},
		{methodSelectors, func(pg *page) *stageResult {
			return extractSelectors(pg, meliSelectors.overridden(cfg))
		}},
	})
}

// extractMeliScripts scans inline scripts carrying melidata or preloaded
// state for the price keys. The first plain price wins; original_* keys
// only ever fill the strike-through price.
func extractMeliScripts(pg *page) *stageResult {
	r := &stageResult{}
	pg.doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		content := sel.Text()
		if content == "" {
			return true
		}
		if !strings.Contains(content, "melidata") &&
			!strings.Contains(content, "__PRELOADED_STATE__") &&
			!strings.Contains(content, "original_value") &&
			!strings.Contains(content, "price") {
			return true
		}
		for _, m := range meliKeyPattern.FindAllStringSubmatch(content, -1) {
			switch m[1] {
			case "original_price", "original_value":
				if r.original == 0 {
					r.original = price.Normalize(m[2])
				}
			default:
				if r.current == 0 {
					r.current = price.Normalize(m[2])
				}
			}
			if r.current > 0 && r.original > 0 {
				return false
			}
		}
		return true
	})
	if r.current == 0 {
		return nil
	}
	return r
}
