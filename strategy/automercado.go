package strategy

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/scraperlab/scraperlab/match"
	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/price"
)

// AutoMercado serves Costa Rican grocery searches. The incoming URL
// carries the expected attributes as query parameters (q, weight,
// price); only q is forwarded to the site, the rest drive the match
// scorer over the leading result cards.
type autoMercado struct {
	site
}

// NewAutoMercado builds the AutoMercado search-and-match strategy.
func NewAutoMercado(deps Deps) Strategy {
	s := &autoMercado{site{name: "AutoMercado", currency: "CRC", deps: deps}}
	if s.deps.Scorer == nil {
		s.deps.Scorer = match.NewScorer(nil)
	}
	return s
}

func (s *autoMercado) Extract(ctx context.Context, rawURL string, cfg *models.DomainConfig) *models.Outcome {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return failure(models.ErrCodeInvalidInput, "invalid search url: "+err.Error(), methodSearch)
	}
	query := parsed.Query()
	expected := &models.ExpectedAttributes{
		SearchTerm:    strings.TrimSpace(query.Get("q")),
		ExpectedPrice: price.Normalize(query.Get("price")),
	}
	if value, unit, ok := match.ParseWeight(query.Get("weight")); ok {
		expected.WeightValue = value
		expected.WeightUnit = unit
	}
	if expected.SearchTerm == "" {
		return failure(models.ErrCodeInvalidInput, "search url is missing the q parameter", methodSearch)
	}

	// The site only understands q; weight and price stay client-side.
	searchURL := parsed.Scheme + "://" + parsed.Host + parsed.Path + "?q=" + url.QueryEscape(expected.SearchTerm)

	html, err := s.fetch(ctx, searchURL, cfg, nil)
	if err != nil {
		return s.fetchFailure(err, methodSearch)
	}
	pg, err := newPage(searchURL, html)
	if err != nil {
		return failure(models.ErrCodeInternal, "parse html: "+err.Error(), methodSearch)
	}

	candidates := collectAutoMercadoCandidates(pg)
	if len(candidates) == 0 {
		if pg.hasChallenge() {
			return failure(models.ErrCodeChallenge, s.name+" served an anti-automation challenge", methodSearch)
		}
		return failure(models.ErrCodeNoResults, "no search results for "+expected.SearchTerm, methodSearch)
	}

	best, _ := s.deps.Scorer.SelectBest(candidates, expected)
	confident := best.Score.Total >= match.AcceptanceThreshold
	if !confident {
		slog.Warn("best match below acceptance threshold",
			"marketplace", s.name,
			"search_term", expected.SearchTerm,
			"total", best.Score.Total,
			"position", best.Candidate.Position)
	}

	scored := len(candidates)
	if scored > match.TopK {
		scored = match.TopK
	}
	available := best.Candidate.Availability
	return &models.Outcome{
		Success: true,
		Product: &models.ProductRecord{
			Title:         best.Candidate.Title,
			CurrentPrice:  best.Candidate.CurrentPrice,
			OriginalPrice: best.Candidate.OriginalPrice,
			Currency:      s.currency,
			Availability:  &available,
			Image:         best.Candidate.Image,
			SourceURL:     best.Candidate.URL,
		},
		Match: &models.MatchReport{
			Best:      best.Score,
			Position:  best.Candidate.Position,
			Confident: confident,
			Scored:    scored,
		},
		Method: methodSearch,
	}
}

// collectAutoMercadoCandidates reads the result cards. Prices render as
// "₡10,950"; relative product links resolve against the site origin.
func collectAutoMercadoCandidates(pg *page) []models.SearchCandidate {
	base, _ := url.Parse(pg.url)
	var out []models.SearchCandidate
	pg.doc.Find(".card-product").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(".title-product").First().Text())
		current := price.Normalize(strings.TrimSpace(card.Find(".text-currency.h5-am").First().Text()))
		weightText := strings.TrimSpace(card.Find(".text-subtitle.med-gray-text").First().Text())
		href := card.Find(".title-product").First().AttrOr("href", "")
		image := card.Find(".img-product img").First().AttrOr("src", "")

		productURL := absoluteURL(base, href)
		if title == "" || (current == 0 && productURL == "") {
			return
		}
		out = append(out, models.SearchCandidate{
			Title:         title,
			CurrentPrice:  current,
			OriginalPrice: current,
			URL:           productURL,
			Image:         image,
			WeightText:    weightText,
			Availability:  true,
			Position:      len(out) + 1,
		})
	})
	return out
}
