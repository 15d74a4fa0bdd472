package strategy

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/price"
)

// Stage method labels. These end up in outcomes and run records, so they
// stay stable even when the underlying selectors move.
const (
	methodJSONLD     = "JSON-LD"
	methodScriptData = "Script-Data"
	methodOpenGraph  = "OpenGraph-Meta"
	methodItemprop   = "Itemprop-Meta"
	methodSelectors  = "CSS-Selectors"
	methodStickyBar  = "CSS-StickyBar"
	methodDetailCard = "CSS-DetailCard"
	methodTwitter    = "Twitter-Meta"
	methodGAProduct  = "GAProductData-Extract"
	methodAdobe      = "AdobeAnalytics-Extract"
	methodNextData   = "NextData-Recursive"
	methodRegexScan  = "Regex-Scan"
	methodSearch     = "Search-Results"
	methodFirstHit   = "Search-First-Result"
)

// challengeMarks are substrings that identify anti-bot interstitials.
// Matched against the lowercased document.
var challengeMarks = []string{
	"nav-header-captcha",
	"captcha",
	"challenge",
	"robot_check",
	"blocked",
}

// page is one fetched document plus its parsed form. The lowercase copy
// is built lazily since only some stages scan raw markup.
type page struct {
	url     string
	raw     string
	doc     *goquery.Document
	lowered string
}

func newPage(url, html string) (*page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &page{url: url, raw: html, doc: doc}, nil
}

func (p *page) lower() string {
	if p.lowered == "" {
		p.lowered = strings.ToLower(p.raw)
	}
	return p.lowered
}

func (p *page) hasChallenge() bool {
	low := p.lower()
	for _, mark := range challengeMarks {
		if strings.Contains(low, mark) {
			return true
		}
	}
	return false
}

// stageResult is what one extraction stage yields. Prices are already
// normalized; zero current price means the stage found nothing usable.
type stageResult struct {
	title        string
	current      int
	original     int
	image        string
	availability *bool
}

func (r *stageResult) currentPrice() int  { return r.current }
func (r *stageResult) originalPrice() int { return r.original }

// stage pairs a method label with its extraction function.
type stage struct {
	method string
	run    func(pg *page) *stageResult
}

// runChain tries stages in order and stops at the first one that yields
// a positive current price. The returned method names the winning stage,
// or the last attempted stage when everything came up empty.
func runChain(pg *page, stages []stage) (*stageResult, string) {
	method := ""
	for _, st := range stages {
		method = st.method
		if r := st.run(pg); r != nil && r.current > 0 {
			return r, st.method
		}
	}
	return nil, method
}

// fillFallbacks supplies title and image from page-level metadata when
// the winning stage only found prices.
func fillFallbacks(pg *page, r *stageResult) {
	if r.title == "" {
		r.title = metaContent(pg.doc, `meta[property="og:title"]`)
	}
	if r.title == "" {
		r.title = metaContent(pg.doc, `meta[name="twitter:title"]`)
	}
	if r.title == "" {
		r.title = strings.TrimSpace(pg.doc.Find("h1").First().Text())
	}
	if r.image == "" {
		r.image = metaContent(pg.doc, `meta[property="og:image"]`)
	}
	if r.image == "" {
		r.image = metaContent(pg.doc, `meta[name="twitter:image"]`)
	}
}

// ── JSON-LD ──

// extractJSONLD walks every ld+json block looking for a Product node at
// any nesting depth (some sites bury it inside @graph or a list).
func extractJSONLD(pg *page) *stageResult {
	var found *stageResult
	pg.doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var node any
		if err := json.Unmarshal([]byte(sel.Text()), &node); err != nil {
			return true
		}
		if r := productFromNode(node); r != nil {
			found = r
			return false
		}
		return true
	})
	return found
}

func productFromNode(node any) *stageResult {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if r := productFromNode(item); r != nil {
				return r
			}
		}
	case map[string]any:
		if isProductType(v["@type"]) {
			if r := productFromMap(v); r != nil {
				return r
			}
		}
		for _, child := range v {
			switch child.(type) {
			case map[string]any, []any:
				if r := productFromNode(child); r != nil {
					return r
				}
			}
		}
	}
	return nil
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "Product")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Product") {
				return true
			}
		}
	}
	return false
}

func productFromMap(m map[string]any) *stageResult {
	r := &stageResult{
		title: stringField(m, "name"),
		image: imageField(m["image"]),
	}
	offer := firstOffer(m["offers"])
	if offer == nil {
		return nil
	}
	r.current = price.FromAny(offer["price"])
	if r.current == 0 {
		r.current = price.FromAny(offer["lowPrice"])
	}
	r.original = price.FromAny(offer["highPrice"])
	if avail := stringField(offer, "availability"); avail != "" {
		inStock := strings.Contains(strings.ToLower(avail), "instock")
		r.availability = &inStock
	}
	if r.current == 0 {
		return nil
	}
	return r
}

func firstOffer(offers any) map[string]any {
	switch v := offers.(type) {
	case map[string]any:
		return v
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func imageField(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case []any:
		if len(img) > 0 {
			if s, ok := img[0].(string); ok {
				return s
			}
		}
	case map[string]any:
		return stringField(img, "url")
	}
	return ""
}

// ── meta tags ──

// extractOpenGraph reads the og/product meta family. Several of the
// VTEX-based stores expose price only here after a layout change.
func extractOpenGraph(pg *page) *stageResult {
	r := &stageResult{
		title: metaContent(pg.doc, `meta[property="og:title"]`),
		image: metaContent(pg.doc, `meta[property="og:image"]`),
	}
	r.current = price.Normalize(metaContent(pg.doc, `meta[property="product:price:amount"]`))
	if r.current == 0 {
		r.current = price.Normalize(metaContent(pg.doc, `meta[property="og:price:amount"]`))
	}
	if r.current == 0 {
		return nil
	}
	return r
}

// extractItemprop reads schema.org microdata meta tags.
func extractItemprop(pg *page) *stageResult {
	r := &stageResult{
		title: metaContent(pg.doc, `meta[itemprop="name"]`),
		image: metaContent(pg.doc, `meta[itemprop="image"]`),
	}
	if r.title == "" {
		r.title = strings.TrimSpace(pg.doc.Find(`[itemprop="name"]`).First().Text())
	}
	r.current = price.Normalize(metaContent(pg.doc, `meta[itemprop="price"]`))
	if r.current == 0 {
		r.current = price.Normalize(pg.doc.Find(`[itemprop="price"]`).First().AttrOr("content", ""))
	}
	if r.current == 0 {
		return nil
	}
	return r
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

// ── CSS selector chains ──

// siteSelectors is a site's DOM fallback chain. Each slice is tried in
// order; the first element that yields text wins.
type siteSelectors struct {
	title    []string
	current  []string
	original []string
	image    []string
}

// overridden prepends stored per-site selector overrides. Overrides that
// fail to parse are skipped so a bad stored value can never take a whole
// site down.
func (s siteSelectors) overridden(cfg *models.DomainConfig) siteSelectors {
	if cfg == nil || len(cfg.SelectorOverrides) == 0 {
		return s
	}
	out := s
	out.title = prependValid(cfg.SelectorOverrides["title"], s.title)
	out.current = prependValid(cfg.SelectorOverrides["price"], s.current)
	out.original = prependValid(cfg.SelectorOverrides["originalPrice"], s.original)
	out.image = prependValid(cfg.SelectorOverrides["image"], s.image)
	return out
}

func prependValid(override string, base []string) []string {
	if override == "" {
		return base
	}
	if _, err := cascadia.Parse(override); err != nil {
		return base
	}
	return append([]string{override}, base...)
}

// extractSelectors runs the site's DOM chain against the document.
func extractSelectors(pg *page, sels siteSelectors) *stageResult {
	r := &stageResult{
		title:    firstText(pg.doc, sels.title),
		image:    firstImage(pg.doc, sels.image),
		current:  price.Normalize(firstText(pg.doc, sels.current)),
		original: price.Normalize(firstText(pg.doc, sels.original)),
	}
	if r.current == 0 {
		return nil
	}
	return r
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func firstImage(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		for _, attr := range []string{"src", "data-src", "content"} {
			if v := strings.TrimSpace(node.AttrOr(attr, "")); v != "" {
				return v
			}
		}
	}
	return ""
}

// firstAttrText pulls a value out of an element attribute rather than
// its text. Falabella carries prices in data-* event attributes.
func firstAttrText(doc *goquery.Document, selectors []string, attr string) string {
	for _, sel := range selectors {
		if v := strings.TrimSpace(doc.Find(sel).First().AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

// ── embedded script state ──

var (
	gaPricePattern     = regexp.MustCompile(`price:"(\d+)"`)
	gaPrevPricePattern = regexp.MustCompile(`previousPrice:"(\d+)"`)
)

// extractGAProductData scans inline scripts for the analytics product
// literal some Cencosud-family stores embed.
func extractGAProductData(pg *page) *stageResult {
	raw := pg.raw
	m := gaPricePattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	current, err := strconv.Atoi(m[1])
	if err != nil || current == 0 {
		return nil
	}
	r := &stageResult{current: current}
	if prev := gaPrevPricePattern.FindStringSubmatch(raw); prev != nil {
		r.original, _ = strconv.Atoi(prev[1])
	}
	return r
}

// extractAdobeAnalytics reads the #adobeAnalyticsProductData JSON blob.
func extractAdobeAnalytics(pg *page) *stageResult {
	text := pg.doc.Find("#adobeAnalyticsProductData").First().Text()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var payload struct {
		ProductPrice struct {
			SellingPrice json.Number `json:"sellingPrice"`
			BasePrice    json.Number `json:"basePrice"`
		} `json:"product_price"`
		ProductName string `json:"product_name"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil
	}
	r := &stageResult{
		title:    strings.TrimSpace(payload.ProductName),
		current:  price.FromNumber(payload.ProductPrice.SellingPrice),
		original: price.FromNumber(payload.ProductPrice.BasePrice),
	}
	if r.current == 0 {
		return nil
	}
	return r
}

// extractNextData walks the __NEXT_DATA__ bootstrap JSON for the first
// object carrying both a name and a price, whatever the page shape.
func extractNextData(pg *page) *stageResult {
	text := pg.doc.Find("script#__NEXT_DATA__").First().Text()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var node any
	if err := json.Unmarshal([]byte(text), &node); err != nil {
		return nil
	}
	return priceBearingNode(node, 0)
}

// maxNextDepth bounds the bootstrap walk; real product nodes live well
// above this depth and unbounded recursion invites pathological payloads.
const maxNextDepth = 24

func priceBearingNode(node any, depth int) *stageResult {
	if depth > maxNextDepth {
		return nil
	}
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if r := priceBearingNode(item, depth+1); r != nil {
				return r
			}
		}
	case map[string]any:
		name := stringField(v, "name")
		if name == "" {
			name = stringField(v, "displayName")
		}
		if name != "" {
			current := price.FromAny(v["price"])
			if current == 0 {
				current = price.FromAny(v["sellingPrice"])
			}
			if current > 0 {
				return &stageResult{
					title:    name,
					current:  current,
					original: price.FromAny(v["listPrice"]),
					image:    imageField(v["image"]),
				}
			}
		}
		for _, child := range v {
			switch child.(type) {
			case map[string]any, []any:
				if r := priceBearingNode(child, depth+1); r != nil {
					return r
				}
			}
		}
	}
	return nil
}

// ── last resort ──

var rawPricePattern = regexp.MustCompile(`"price"\s*:\s*"?(\d[\d.,]*)`)

// scanPriceRegex is the final fallback: a raw scan for a price-looking
// JSON key anywhere in the markup. The title comes from the first h1 or
// the document title so the record stays attributable.
func scanPriceRegex(pg *page) *stageResult {
	m := rawPricePattern.FindStringSubmatch(pg.raw)
	if m == nil {
		return nil
	}
	current := price.Normalize(m[1])
	if current == 0 {
		return nil
	}
	title := strings.TrimSpace(pg.doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(pg.doc.Find("title").First().Text())
	}
	return &stageResult{title: title, current: current}
}
