/*
Package generic provides the domain-agnostic building blocks of the engine.

PURPOSE:
  This package contains the types and helpers that the benefit consolidation
  stages share but that know nothing about meal vouchers, unions or states:
  loosely-typed tables, day-granular dates, decimal quantities, tolerant text
  folding and the error taxonomy.

KEY CONCEPTS IN THIS FILE (types.go):
  - Quantities: decimal.Decimal everywhere (days, rates, money)
  - Tolerant parsing: spreadsheet-shaped numbers ("35,00", "R$ 1.234,56")
  - Rounding: half-to-even for days and cents, floor/ceil on request
  - FirstPresent: ordered fallback chains ("first non-null wins")

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal, never float64, for anything that ends up in money
  2. Totality: parsers report (value, ok) instead of failing a run
  3. Explicit priority: fallback order is a list, not an accident of merges

USAGE:
  rate, ok := generic.ParseDecimal("R$ 35,00")
  gross := generic.RoundCents(days.Mul(rate))

SEE ALSO:
  - table.go: Tabular source records
  - time.go: TimePoint and business-day counting
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMAL PARSING
// =============================================================================

// ParseDecimal parses a loosely formatted number. It accepts a currency
// prefix, surrounding spaces and either separator convention. When both
// "," and "." appear, the last one is the decimal point ("1.234,56" and
// "1,234.56" are the same value). A lone comma is a decimal comma.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(t, "R$")
	t = strings.ReplaceAll(t, " ", "")
	t = strings.ReplaceAll(t, "\u00a0", "")
	if t == "" {
		return decimal.Zero, false
	}

	comma, dot := strings.LastIndex(t, ","), strings.LastIndex(t, ".")
	switch {
	case comma > dot:
		t = strings.ReplaceAll(t, ".", "")
		t = strings.ReplaceAll(t, ",", ".")
	case comma >= 0:
		t = strings.ReplaceAll(t, ",", "")
	}

	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// MustParseDecimal parses s or returns zero.
func MustParseDecimal(s string) decimal.Decimal {
	d, _ := ParseDecimal(s)
	return d
}

// =============================================================================
// ROUNDING
// =============================================================================

// RoundingMode selects how fractional quantities become whole ones.
type RoundingMode string

const (
	RoundNearest RoundingMode = "nearest" // half-to-even
	RoundFloor   RoundingMode = "floor"
	RoundCeil    RoundingMode = "ceil"
)

// Valid reports whether m is a known rounding mode.
func (m RoundingMode) Valid() bool {
	switch m {
	case RoundNearest, RoundFloor, RoundCeil:
		return true
	}
	return false
}

// Apply rounds d to a whole number using the mode.
func (m RoundingMode) Apply(d decimal.Decimal) decimal.Decimal {
	switch m {
	case RoundFloor:
		return d.Floor()
	case RoundCeil:
		return d.Ceil()
	default:
		return d.RoundBank(0)
	}
}

// RoundCents rounds a monetary value to two places, half-to-even.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// =============================================================================
// FALLBACK CHAINS
// =============================================================================

// FirstPresent evaluates resolvers in order and returns the first value
// reported as present. The zero value and false are returned when none is.
func FirstPresent[T any](resolvers ...func() (T, bool)) (T, bool) {
	for _, resolve := range resolvers {
		if v, ok := resolve(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
