package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scraperlab/scraperlab/models"
)

func newTestScorer() *Scorer {
	return NewScorer(nil)
}

func TestScore_PerfectMatch(t *testing.T) {
	s := newTestScorer()
	expected := &models.ExpectedAttributes{
		SearchTerm:    "SALCHICHA SUST BEY",
		WeightValue:   400,
		WeightUnit:    models.UnitGram,
		ExpectedPrice: 10950,
	}
	candidate := &models.SearchCandidate{
		Title:        "Salchicha Beyond Meat Sustentable",
		WeightText:   "400 g",
		CurrentPrice: 10950,
	}

	score := s.Score(candidate, expected)

	assert.Equal(t, 35, score.TextScore)
	assert.Equal(t, 35, score.WeightScore)
	assert.True(t, score.WeightMatch)
	assert.Equal(t, 30, score.PriceScore)
	assert.True(t, score.PriceMatch)
	assert.Equal(t, 100, score.Total)
	assert.Equal(t, models.ConfidenceHigh, score.Confidence)
}

func TestScore_IdenticalTitleExactNumbers(t *testing.T) {
	s := newTestScorer()
	expected := &models.ExpectedAttributes{
		SearchTerm:    "Atun Lomo en Agua",
		WeightValue:   160,
		WeightUnit:    models.UnitGram,
		ExpectedPrice: 1560,
	}
	candidate := &models.SearchCandidate{
		Title:        "Atun Lomo en Agua",
		WeightText:   "lata 160 g",
		CurrentPrice: 1560,
	}

	score := s.Score(candidate, expected)
	assert.Equal(t, 100, score.Total)
	assert.Equal(t, models.ConfidenceHigh, score.Confidence)
}

func TestScore_WeightUnitMismatchDisqualifies(t *testing.T) {
	s := newTestScorer()
	expected := &models.ExpectedAttributes{
		SearchTerm:  "gaseosa",
		WeightValue: 400,
		WeightUnit:  models.UnitGram,
	}
	candidate := &models.SearchCandidate{
		Title:      "gaseosa",
		WeightText: "400 ml", // numerically identical, wrong unit
	}

	score := s.Score(candidate, expected)
	assert.Equal(t, 0, score.WeightScore)
	assert.False(t, score.WeightMatch)
}

func TestScore_WeightBands(t *testing.T) {
	s := newTestScorer()
	base := &models.ExpectedAttributes{SearchTerm: "x", WeightValue: 1000, WeightUnit: models.UnitMilliliter}

	tests := []struct {
		name      string
		actual    string
		wantMatch bool
		minScore  int
		maxScore  int
	}{
		{"exact", "1000 ml", true, 35, 35},
		{"within 10pct", "1050 ml", true, 30, 35},
		{"within 20pct", "1150 ml", false, 1, 20},
		{"beyond 20pct", "1500 ml", false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := &models.SearchCandidate{Title: "x", WeightText: tt.actual}
			score := s.Score(cand, base)
			assert.Equal(t, tt.wantMatch, score.WeightMatch)
			assert.GreaterOrEqual(t, score.WeightScore, tt.minScore)
			assert.LessOrEqual(t, score.WeightScore, tt.maxScore)
		})
	}
}

func TestScore_PriceBands(t *testing.T) {
	s := newTestScorer()
	expected := &models.ExpectedAttributes{SearchTerm: "x", ExpectedPrice: 10000}

	tests := []struct {
		name      string
		actual    int
		wantMatch bool
		minScore  int
		maxScore  int
	}{
		{"exact", 10000, true, 30, 30},
		{"within 5pct", 10400, true, 25, 30},
		{"within 10pct", 10900, false, 15, 25},
		{"at 15pct", 11500, false, 1, 24},
		{"beyond 20pct", 13000, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := &models.SearchCandidate{Title: "x", CurrentPrice: tt.actual}
			score := s.Score(cand, expected)
			assert.Equal(t, tt.wantMatch, score.PriceMatch)
			assert.GreaterOrEqual(t, score.PriceScore, tt.minScore)
			assert.LessOrEqual(t, score.PriceScore, tt.maxScore)
		})
	}
}

func TestScore_PriceAt15PercentBelowMatchBand(t *testing.T) {
	s := newTestScorer()
	expected := &models.ExpectedAttributes{SearchTerm: "x", ExpectedPrice: 10000}
	cand := &models.SearchCandidate{Title: "x", CurrentPrice: 11500}

	score := s.Score(cand, expected)
	assert.False(t, score.PriceMatch)
	assert.Greater(t, score.PriceScore, 0)
	assert.Less(t, score.PriceScore, 25)
}

func TestTextSimilarity_ShortTokensNeedExactMatch(t *testing.T) {
	s := newTestScorer()
	// "té" (2 runes) must not fuzzy-match "tia".
	score := s.textSimilarity("té", "tia verde")
	assert.Equal(t, 0, score)

	// Exact short token matches.
	score = s.textSimilarity("té", "té verde")
	assert.Equal(t, 35, score)
}

func TestTextSimilarity_TypoWithinEditBudget(t *testing.T) {
	s := newTestScorer()
	// "salchincha" vs "salchicha": distance 1 on a 10-rune token, under 20%.
	score := s.textSimilarity("salchincha", "salchicha beyond")
	assert.Equal(t, 35, score)
}

func TestNormalize_ExpansionOrderIsDeterministic(t *testing.T) {
	// "bb" sorts before "big", so its expanded output is itself subject
	// to the "big" expansion. The same input must normalize the same
	// way on every run.
	s := NewScorer(map[string]string{
		"bb":  "big bottle",
		"big": "grande",
	})

	for i := 0; i < 10; i++ {
		assert.Equal(t, "grande bottle soda", s.normalize("BB SODA"))
	}
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		text  string
		value int
		unit  models.WeightUnit
		ok    bool
	}{
		{"bandeja 400 g", 400, models.UnitGram, true},
		{"2500 ml", 2500, models.UnitMilliliter, true},
		{"1 kg", 1, models.UnitKilogram, true},
		{"6 unid", 6, models.UnitPiece, true},
		{"sin gramaje", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		value, unit, ok := ParseWeight(tt.text)
		assert.Equal(t, tt.ok, ok, "text %q", tt.text)
		assert.Equal(t, tt.value, value, "text %q", tt.text)
		assert.Equal(t, tt.unit, unit, "text %q", tt.text)
	}
}

func TestSelectBest_StableTieBreak(t *testing.T) {
	s := newTestScorer()
	expected := &models.ExpectedAttributes{SearchTerm: "leche dos pinos", ExpectedPrice: 1500}

	// Identical candidates at positions 1 and 2 score the same; the
	// earlier rank must win.
	candidates := []models.SearchCandidate{
		{Title: "Leche Dos Pinos", CurrentPrice: 1500, Position: 1, URL: "/a"},
		{Title: "Leche Dos Pinos", CurrentPrice: 1500, Position: 2, URL: "/b"},
	}

	best, ok := s.SelectBest(candidates, expected)
	require.True(t, ok)
	assert.Equal(t, 1, best.Candidate.Position)
	assert.Equal(t, "/a", best.Candidate.URL)
}

func TestSelectBest_PicksHighestNotFirst(t *testing.T) {
	s := newTestScorer()
	expected := &models.ExpectedAttributes{
		SearchTerm:    "SALCHICHA SUST BEY",
		WeightValue:   400,
		WeightUnit:    models.UnitGram,
		ExpectedPrice: 10950,
	}
	candidates := []models.SearchCandidate{
		{Title: "Salchicha de pollo tradicional", WeightText: "500 g", CurrentPrice: 3200, Position: 1},
		{Title: "Salchicha Beyond Meat Sustentable", WeightText: "400 g", CurrentPrice: 10950, Position: 2},
	}

	best, ok := s.SelectBest(candidates, expected)
	require.True(t, ok)
	assert.Equal(t, 2, best.Candidate.Position)
	assert.Equal(t, 100, best.Score.Total)
}

func TestSelectBest_BoundsToTopK(t *testing.T) {
	s := newTestScorer()
	expected := &models.ExpectedAttributes{SearchTerm: "cafe", ExpectedPrice: 5000}

	candidates := make([]models.SearchCandidate, 0, TopK+5)
	for i := 0; i < TopK+5; i++ {
		candidates = append(candidates, models.SearchCandidate{
			Title: "producto sin relacion", CurrentPrice: 99999, Position: i + 1,
		})
	}
	// The only good candidate sits beyond the scoring window.
	candidates[TopK+2] = models.SearchCandidate{Title: "cafe", CurrentPrice: 5000, Position: TopK + 3}

	best, ok := s.SelectBest(candidates, expected)
	require.True(t, ok)
	assert.LessOrEqual(t, best.Candidate.Position, TopK)
}

func TestSelectBest_NoCandidates(t *testing.T) {
	s := newTestScorer()
	_, ok := s.SelectBest(nil, &models.ExpectedAttributes{SearchTerm: "x"})
	assert.False(t, ok)
}

func TestScore_EndToEndReceiptExample(t *testing.T) {
	s := newTestScorer()
	// Receipt line "SALCHICHA SUST BEY 400 g  10.950,00 G" after
	// sanitization.
	expected := &models.ExpectedAttributes{
		SearchTerm:    "SALCHICHA SUST BEY",
		WeightValue:   400,
		WeightUnit:    models.UnitGram,
		ExpectedPrice: 10950,
	}
	candidate := &models.SearchCandidate{
		Title:        "Salchicha Beyond Meat Sustentable",
		WeightText:   "400 g",
		CurrentPrice: 10950,
		Position:     1,
	}

	score := s.Score(candidate, expected)
	require.Equal(t, 100, score.Total)
	assert.Equal(t, models.ConfidenceHigh, score.Confidence)
}
