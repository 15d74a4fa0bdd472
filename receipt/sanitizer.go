// Package receipt parses free-text receipt lines into the expected
// attributes used to validate search results.
package receipt

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/scraperlab/scraperlab/match"
	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/price"
)

var (
	// Trailing price, optionally tax-coded: "10.950,00 G", "5000 g", "10950".
	pricePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d{3})*(?:[.,]\d{2})?)\s*G?\s*$`)

	// Trailing package size: "400 g", "2500 ml", "6 unid".
	weightPattern = regexp.MustCompile(`(?i)(\d+)\s*(g|kg|ml|l|unid?)\s*$`)
)

// Sanitized is the parse result for one receipt line.
type Sanitized struct {
	models.ExpectedAttributes

	// Original is the untouched input line, kept for audit logs.
	Original string `json:"original"`
}

// Sanitize splits a receipt line into search term, package size and
// price. The line format is positional: name text, then an optional
// weight, then an optional price with a trailing tax code letter, e.g.
//
//	"SALCHICHA SUST BEY 400 g  10.950,00 G"
func Sanitize(line string) Sanitized {
	text := strings.TrimSpace(line)
	out := Sanitized{Original: line}

	// 1. Peel the price off the end.
	if m := pricePattern.FindStringSubmatchIndex(text); m != nil {
		token := text[m[2]:m[3]]
		out.ExpectedPrice = price.Normalize(token)
		text = strings.TrimSpace(text[:m[0]])
	}

	// 2. Peel the package size off what is left.
	if m := weightPattern.FindStringSubmatch(text); m != nil {
		if value, unit, ok := match.ParseWeight(m[0]); ok {
			out.WeightValue = value
			out.WeightUnit = unit
		}
		text = strings.TrimSpace(text[:len(text)-len(m[0])])
	}

	// 3. The remainder is the search term.
	out.SearchTerm = strings.TrimSpace(text)
	return out
}

// Validate reports whether a sanitized line carries enough signal to
// drive a scored search, listing every problem found.
func Validate(s Sanitized) []string {
	var problems []string
	if len(s.SearchTerm) < 3 {
		problems = append(problems, "search term is empty or too short")
	}
	if !s.HasWeight() {
		problems = append(problems, "no package size detected")
	}
	if s.ExpectedPrice == 0 {
		problems = append(problems, "no valid price detected")
	}
	return problems
}

// BuildSearchURL encodes the sanitized attributes as query parameters on
// a site's search endpoint. The searchSpecific strategies read them back
// to know what to score against.
func BuildSearchURL(baseURL string, s Sanitized) string {
	params := url.Values{}
	params.Set("q", s.SearchTerm)
	if s.HasWeight() {
		params.Set("weight", s.WeightText())
	}
	if s.ExpectedPrice > 0 {
		params.Set("price", fmt.Sprintf("%d", s.ExpectedPrice))
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "?" + params.Encode()
	}
	existing := u.Query()
	for k, vs := range params {
		existing[k] = vs
	}
	u.RawQuery = existing.Encode()
	return u.String()
}
