package models

import "strconv"

// WeightUnit is the closed unit set used for package-size comparison.
type WeightUnit string

const (
	UnitGram       WeightUnit = "g"
	UnitKilogram   WeightUnit = "kg"
	UnitMilliliter WeightUnit = "ml"
	UnitLiter      WeightUnit = "l"
	UnitPiece      WeightUnit = "unit"
)

// ExpectedAttributes is what a receipt line says the product should look
// like. Created per incoming line, consumed once by the scorer, never
// persisted.
type ExpectedAttributes struct {
	SearchTerm string `json:"search_term"`

	// WeightValue and WeightUnit are zero/empty when the line carried no
	// package size.
	WeightValue int        `json:"weight_value,omitempty"`
	WeightUnit  WeightUnit `json:"weight_unit,omitempty"`

	// ExpectedPrice is 0 when the line carried no parsable price.
	ExpectedPrice int `json:"expected_price,omitempty"`
}

// HasWeight reports whether the line carried a package size.
func (e *ExpectedAttributes) HasWeight() bool {
	return e.WeightValue > 0 && e.WeightUnit != ""
}

// WeightText renders the expected weight in the "<value> <unit>" form the
// scorer parses, or "" when absent.
func (e *ExpectedAttributes) WeightText() string {
	if !e.HasWeight() {
		return ""
	}
	return strconv.Itoa(e.WeightValue) + " " + string(e.WeightUnit)
}
