// Package match scores search candidates against the attributes a receipt
// line says the product should have. Three weighted criteria (title text,
// package size, price) sum to a 0-100 total with a confidence tier.
package match

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/scraperlab/scraperlab/models"
)

// Score caps per criterion. Price gets the smaller band because prices
// legitimately move with promotions more than package sizes do.
const (
	maxTextScore   = 35
	maxWeightScore = 35
	maxPriceScore  = 30
)

// AcceptanceThreshold is the minimum total for a match to count as "the"
// result. Below it the best candidate is still surfaced, flagged
// not-confident, so a human can review.
const AcceptanceThreshold = 60

// TopK bounds how many leading candidates are scored in best-match
// selection.
const TopK = 10

var weightPattern = regexp.MustCompile(`(?i)(\d+)\s*(g|kg|ml|l|unid?)`)

// Scorer computes match scores. The abbreviation dictionary is injected
// so each market can carry its own shorthand table.
type Scorer struct {
	abbreviations map[string]string

	// abbrKeys fixes the expansion order. An expansion whose output
	// contains another abbreviation token would otherwise score
	// differently between runs.
	abbrKeys []string
}

// NewScorer creates a Scorer with the given abbreviation dictionary.
// A nil dictionary falls back to DefaultAbbreviations.
func NewScorer(abbreviations map[string]string) *Scorer {
	if abbreviations == nil {
		abbreviations = DefaultAbbreviations
	}
	keys := make([]string, 0, len(abbreviations))
	for abbr := range abbreviations {
		keys = append(keys, abbr)
	}
	sort.Strings(keys)
	return &Scorer{abbreviations: abbreviations, abbrKeys: keys}
}

// Score computes the full breakdown for one candidate against the
// expected attributes. The result is a fresh value every call.
func (s *Scorer) Score(candidate *models.SearchCandidate, expected *models.ExpectedAttributes) models.MatchScore {
	text := s.textSimilarity(expected.SearchTerm, candidate.Title)
	weightScore, weightMatch := weightCloseness(candidate.WeightText, expected.WeightText())
	priceScore, priceMatch := priceCloseness(candidate.CurrentPrice, expected.ExpectedPrice)

	total := text + weightScore + priceScore

	confidence := models.ConfidenceLow
	switch {
	case total >= 80:
		confidence = models.ConfidenceHigh
	case total >= AcceptanceThreshold:
		confidence = models.ConfidenceMedium
	}

	return models.MatchScore{
		TextScore:   text,
		WeightScore: weightScore,
		WeightMatch: weightMatch,
		PriceScore:  priceScore,
		PriceMatch:  priceMatch,
		Total:       total,
		Confidence:  confidence,
	}
}

// ScoredCandidate pairs a candidate with its score for ranked output.
type ScoredCandidate struct {
	Candidate models.SearchCandidate `json:"candidate"`
	Score     models.MatchScore      `json:"score"`
}

// Rank scores every candidate and returns them ordered by descending
// total. Ties keep the earlier-ranked candidate: the site's own ordering
// is the deliberate tie-break, not an accident of sorting.
func (s *Scorer) Rank(candidates []models.SearchCandidate, expected *models.ExpectedAttributes) []ScoredCandidate {
	scored := make([]ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		scored = append(scored, ScoredCandidate{
			Candidate: candidates[i],
			Score:     s.Score(&candidates[i], expected),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.Total > scored[j].Score.Total
	})
	return scored
}

// SelectBest scores up to TopK leading candidates and returns the winner
// with its score. ok is false when there were no candidates at all;
// a below-threshold best is still returned (Confident=false upstream).
func (s *Scorer) SelectBest(candidates []models.SearchCandidate, expected *models.ExpectedAttributes) (ScoredCandidate, bool) {
	if len(candidates) == 0 {
		return ScoredCandidate{}, false
	}
	if len(candidates) > TopK {
		candidates = candidates[:TopK]
	}
	ranked := s.Rank(candidates, expected)
	return ranked[0], true
}

// textSimilarity scores how many expected tokens appear in the candidate
// title, after both sides are normalized and abbreviations expanded.
func (s *Scorer) textSimilarity(searchTerm, title string) int {
	expectedTokens := tokenize(s.normalize(searchTerm))
	titleTokens := tokenize(s.normalize(title))

	if len(expectedTokens) == 0 {
		return 0
	}

	matches := 0
	for _, want := range expectedTokens {
		for _, have := range titleTokens {
			if tokensMatch(want, have) {
				matches++
				break
			}
		}
	}
	return int(float64(maxTextScore) * float64(matches) / float64(len(expectedTokens)))
}

// normalize lowercases, trims and expands abbreviations by whole-token
// replacement.
func (s *Scorer) normalize(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, abbr := range s.abbrKeys {
		normalized = replaceWholeToken(normalized, abbr, s.abbreviations[abbr])
	}
	return normalized
}

// replaceWholeToken replaces occurrences of token delimited by word
// boundaries. Tokens may contain non-word characters ("c.cola"), so the
// pattern is built per call with the token quoted.
func replaceWholeToken(text, token, replacement string) string {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(token) + `\b`)
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, replacement)
}

func tokenize(text string) []string {
	return strings.Fields(text)
}

// tokensMatch applies the two-tier token rule: containment either way, or
// for tokens longer than 3 runes an edit distance within 20% of the
// longer token. Short tokens must match exactly.
func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	if len([]rune(a)) <= 3 || len([]rune(b)) <= 3 {
		return false
	}
	longer := len([]rune(a))
	if l := len([]rune(b)); l > longer {
		longer = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(dist)/float64(longer) <= 0.2
}

// weightCloseness compares two "<n> <unit>" weight texts. A unit mismatch
// is an automatic disqualifier regardless of numeric closeness.
func weightCloseness(actualText, expectedText string) (int, bool) {
	actualValue, actualUnit, ok := ParseWeight(actualText)
	if !ok {
		return 0, false
	}
	expectedValue, expectedUnit, ok := ParseWeight(expectedText)
	if !ok {
		return 0, false
	}
	if actualUnit != expectedUnit {
		return 0, false
	}

	diff := actualValue - expectedValue
	if diff < 0 {
		diff = -diff
	}
	if diff == 0 {
		return maxWeightScore, true
	}
	pct := float64(diff) / float64(expectedValue)
	switch {
	case pct <= 0.10:
		// 30..35 by closeness.
		score := 35 - pct*50
		if score < 30 {
			score = 30
		}
		return int(score), true
	case pct <= 0.20:
		// 0..20 by closeness, no longer a match.
		score := 20 - pct*50
		if score < 0 {
			score = 0
		}
		return int(score), false
	default:
		return 0, false
	}
}

// priceCloseness compares prices with the wider tolerance bands at
// 0/5/10/20 percent.
func priceCloseness(actual, expected int) (int, bool) {
	if actual <= 0 || expected <= 0 {
		return 0, false
	}
	diff := actual - expected
	if diff < 0 {
		diff = -diff
	}
	if diff == 0 {
		return maxPriceScore, true
	}
	pct := float64(diff) / float64(expected)
	switch {
	case pct <= 0.05:
		score := 30 - pct*100
		if score < 25 {
			score = 25
		}
		return int(score), true
	case pct <= 0.10:
		score := 25 - pct*100
		if score < 15 {
			score = 15
		}
		return int(score), false
	case pct <= 0.20:
		score := 15 - pct*50
		if score < 0 {
			score = 0
		}
		return int(score), false
	default:
		return 0, false
	}
}

// ParseWeight extracts "<integer><unit>" from free text like
// "bandeja 400 g". The unit set is closed: g, kg, ml, l, unit (with the
// receipt spellings "unid"/"unidt" folded into unit).
func ParseWeight(text string) (int, models.WeightUnit, bool) {
	m := weightPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	value, err := strconv.Atoi(m[1])
	if err != nil || value <= 0 {
		return 0, "", false
	}
	unit := strings.ToLower(m[2])
	if strings.HasPrefix(unit, "uni") {
		return value, models.UnitPiece, true
	}
	return value, models.WeightUnit(unit), true
}
