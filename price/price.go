// Package price normalizes raw price tokens from heterogeneous sites into
// whole-unit integer amounts.
package price

import (
	"encoding/json"
	"strconv"
)

// Normalize converts a raw price token in any locale format to a whole-unit
// integer amount. Empty or unparsable input returns 0.
//
// Thousands separators are discarded, and a two-digit group after the last
// separator is treated as a decimal fraction and dropped, so
// "10.950,00", "10,950" and "10950" all normalize to 10950. Amounts are
// always whole currency units; no currency-aware decimal handling happens
// here.
func Normalize(raw string) int {
	digits := make([]byte, 0, len(raw))
	// Digits seen after the most recent separator. -1 until a separator
	// with at least one digit before it shows up.
	tail := -1
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
			if tail >= 0 {
				tail++
			}
		case c == '.' || c == ',':
			if len(digits) > 0 {
				tail = 0
			}
		}
	}
	if len(digits) == 0 {
		return 0
	}
	// A two-digit tail after a separator is a decimal fraction, not a
	// thousands group ("10.950,00" means ten thousand nine fifty).
	if tail == 2 && len(digits) > 2 {
		digits = digits[:len(digits)-2]
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		// Overflow on absurdly long digit runs; treat as unparsable.
		return 0
	}
	return n
}

// NormalizeFloat normalizes a numeric price that arrived already parsed
// (e.g. from a JSON-LD offer). Fractional parts are truncated because the
// engine treats amounts as whole currency units.
func NormalizeFloat(raw float64) int {
	if raw <= 0 {
		return 0
	}
	return int(raw)
}

// FromAny normalizes a price that came out of unmarshaled JSON, where it
// may be a number, a formatted string, or absent.
func FromAny(v any) int {
	switch p := v.(type) {
	case float64:
		return NormalizeFloat(p)
	case string:
		return Normalize(p)
	case json.Number:
		return FromNumber(p)
	}
	return 0
}

// FromNumber normalizes a json.Number price.
func FromNumber(n json.Number) int {
	if f, err := n.Float64(); err == nil {
		return NormalizeFloat(f)
	}
	return Normalize(n.String())
}
