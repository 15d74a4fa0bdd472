package strategy

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/price"
)

// Pequeño Mundo runs a generic storefront theme, so the detail chain
// leans on standard metadata first and broad store selectors after. All
// three extraction types are served from this file: detail, the raw
// search listing, and first-result search.

func pequenoMundoDefaults() *models.ProviderOptions {
	return &models.ProviderOptions{
		Render:           boolHint(true),
		ResidentialProxy: boolHint(false),
		DeviceType:       stringHint("desktop"),
		WaitMs:           intHint(1000),
	}
}

// ── detail ──

type pequenoMundo struct {
	site
}

// NewPequenoMundo builds the Pequeño Mundo detail strategy.
func NewPequenoMundo(deps Deps) Strategy {
	return &pequenoMundo{site{name: "PequenoMundo", currency: "CRC", deps: deps}}
}

var pequenoMundoSelectors = siteSelectors{
	title: []string{"h1"},
	current: []string{
		".product-price .price",
		".product__price",
		".price--main",
		".current-price",
		".money",
		"[data-price]",
	},
	original: []string{
		".product-price .compare-at-price",
		".was-price",
		".old-price",
		"s.price",
		"del.price",
	},
	image: []string{".product__media img", ".product-image img"},
}

var pmScriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"price":\s*"?(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`"currentPrice":\s*"?(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`"salePrice":\s*"?(\d+(?:\.\d+)?)`),
}

func (s *pequenoMundo) Extract(ctx context.Context, rawURL string, cfg *models.DomainConfig) *models.Outcome {
	return s.detailExtract(ctx, rawURL, cfg, pequenoMundoDefaults(), []stage{
		{methodJSONLD, extractJSONLD},
		{methodOpenGraph, extractOpenGraph},
		{methodTwitter, extractTwitterMeta},
		{methodSelectors, func(pg *page) *stageResult {
			return extractSelectors(pg, pequenoMundoSelectors.overridden(cfg))
		}},
		{methodScriptData, extractPMScripts},
		{methodRegexScan, scanPriceRegex},
	})
}

func extractTwitterMeta(pg *page) *stageResult {
	r := &stageResult{
		title: metaContent(pg.doc, `meta[name="twitter:title"]`),
		image: metaContent(pg.doc, `meta[name="twitter:image"]`),
	}
	r.current = price.Normalize(metaContent(pg.doc, `meta[name="twitter:data1"]`))
	if r.current == 0 {
		return nil
	}
	return r
}

func extractPMScripts(pg *page) *stageResult {
	for _, pattern := range pmScriptPatterns {
		if m := pattern.FindStringSubmatch(pg.raw); m != nil {
			if current := price.Normalize(m[1]); current > 0 {
				return &stageResult{current: current}
			}
		}
	}
	return nil
}

// ── search ──

var (
	pmContainerSelectors = []string{
		".search-results",
		".product-grid",
		".products-grid",
		".collection-grid",
		".grid--uniform",
		"#product-grid",
	}
	pmItemSelectors = []string{
		".product-item",
		".product-card",
		".grid-item",
		".collection-item",
		"[data-product-id]",
		`article[itemtype*="Product"]`,
	}
	pmCardTitleSelectors = []string{"h2", "h3", "h4", ".product-title"}
	pmCardPriceSelectors = []string{
		".price", ".current-price", ".money", "[data-price]",
	}
	pmCardOriginalSelectors = []string{
		".compare-at-price", ".was-price", ".old-price", "s.price", "del.price",
	}
	pmSoldOutClasses = []string{"sold-out", "out-of-stock", "unavailable"}
)

type pequenoMundoSearch struct {
	site
}

// NewPequenoMundoSearch builds the search-listing strategy, returning
// the candidate list in the site's own order.
func NewPequenoMundoSearch(deps Deps) Strategy {
	return &pequenoMundoSearch{site{name: "PequenoMundo", currency: "CRC", deps: deps}}
}

func (s *pequenoMundoSearch) Extract(ctx context.Context, rawURL string, cfg *models.DomainConfig) *models.Outcome {
	defaults := pequenoMundoDefaults()
	defaults.WaitMs = intHint(1500)
	html, err := s.fetch(ctx, rawURL, cfg, defaults)
	if err != nil {
		return s.fetchFailure(err, methodSearch)
	}
	pg, err := newPage(rawURL, html)
	if err != nil {
		return failure(models.ErrCodeInternal, "parse html: "+err.Error(), methodSearch)
	}
	candidates := collectPMCandidates(pg)
	if len(candidates) == 0 {
		if pg.hasChallenge() {
			return failure(models.ErrCodeChallenge, s.name+" served an anti-automation challenge", methodSearch)
		}
		return failure(models.ErrCodeNoResults, "no products extracted from search page", methodSearch)
	}
	return &models.Outcome{
		Success:    true,
		Candidates: candidates,
		Method:     methodSearch,
	}
}

// collectPMCandidates walks the result grid. A card needs a title plus
// either a price or a product URL to count; everything else is noise
// (banners, filter chips, recommendation rails).
func collectPMCandidates(pg *page) []models.SearchCandidate {
	container := pg.doc.Selection
	for _, sel := range pmContainerSelectors {
		if found := pg.doc.Find(sel).First(); found.Length() > 0 {
			container = found
			break
		}
	}

	var items *goquery.Selection
	for _, sel := range pmItemSelectors {
		if found := container.Find(sel); found.Length() > 0 {
			items = found
			break
		}
	}
	if items == nil {
		items = container.Find(`a[href*="/product"], a[href*="/productos/"], a[href*="/p/"]`).Parent()
	}

	base, _ := url.Parse(pg.url)
	var out []models.SearchCandidate
	items.Each(func(_ int, card *goquery.Selection) {
		title := cardText(card, pmCardTitleSelectors)
		if title == "" {
			title = strings.TrimSpace(card.Find("a").First().AttrOr("title", ""))
		}
		if title == "" {
			title = strings.TrimSpace(card.Find("img").First().AttrOr("alt", ""))
		}

		href := card.Find("a").First().AttrOr("href", "")
		productURL := absoluteURL(base, href)

		current := price.Normalize(cardPriceText(card, pmCardPriceSelectors))
		original := price.Normalize(cardText(card, pmCardOriginalSelectors))
		if original == 0 {
			original = current
		}

		image := card.Find("img").First().AttrOr("src", "")
		if image == "" {
			image = card.Find("img").First().AttrOr("data-src", "")
		}
		image = absoluteURL(base, image)

		available := true
		for _, cls := range pmSoldOutClasses {
			if card.HasClass(cls) || card.Find(`[class*="`+cls+`"]`).Length() > 0 {
				available = false
				break
			}
		}

		if title == "" || (current == 0 && productURL == "") {
			return
		}
		out = append(out, models.SearchCandidate{
			Title:         title,
			CurrentPrice:  current,
			OriginalPrice: original,
			URL:           productURL,
			Image:         image,
			Availability:  available,
			Position:      len(out) + 1,
		})
	})
	return out
}

func cardText(card *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(card.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func cardPriceText(card *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		node := card.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(node.Text()); text != "" {
			return text
		}
		if v := strings.TrimSpace(node.AttrOr("data-price", "")); v != "" {
			return v
		}
	}
	return ""
}

func absoluteURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

// ── searchSpecific ──

type pequenoMundoSearchSpecific struct {
	search *pequenoMundoSearch
}

// NewPequenoMundoSearchSpecific builds the first-result strategy: run
// the search listing and promote the top card to a product record.
func NewPequenoMundoSearchSpecific(deps Deps) Strategy {
	return &pequenoMundoSearchSpecific{
		search: &pequenoMundoSearch{site{name: "PequenoMundo", currency: "CRC", deps: deps}},
	}
}

func (s *pequenoMundoSearchSpecific) Extract(ctx context.Context, rawURL string, cfg *models.DomainConfig) *models.Outcome {
	listing := s.search.Extract(ctx, rawURL, cfg)
	if !listing.Success {
		listing.Method = methodFirstHit
		return listing
	}
	first := listing.Candidates[0]
	return &models.Outcome{
		Success: true,
		Product: &models.ProductRecord{
			Title:         first.Title,
			CurrentPrice:  first.CurrentPrice,
			OriginalPrice: first.OriginalPrice,
			Currency:      s.search.currency,
			Image:         first.Image,
			SourceURL:     first.URL,
		},
		Method: methodFirstHit,
	}
}
