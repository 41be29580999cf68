package vr

import (
	"github.com/shopspring/decimal"
	"github.com/warp/vr-engine/generic"
)

// Rules is the configuration value object passed into the termination and
// monetary stages. Construct with DefaultRules and override fields; the
// engine validates it before touching any row.
type Rules struct {
	// Rounding applies to proportionally scaled eligible days.
	Rounding generic.RoundingMode

	// Basis selects which days qualify when computing the post-16th fraction.
	Basis generic.DayBasis

	// ProportionalTermination scales APOS_15 exits by the fraction. When
	// false the tag is still set but the full eligible days are granted.
	ProportionalTermination bool

	EmployerPct decimal.Decimal
	EmployeePct decimal.Decimal

	// PeriodLabel is used when the roster has no COMPETENCIA column.
	PeriodLabel string
}

// DefaultRules returns nearest rounding, business days, proportional exits
// and an 80/20 split.
func DefaultRules() Rules {
	return Rules{
		Rounding:                generic.RoundNearest,
		Basis:                   generic.BasisBusiness,
		ProportionalTermination: true,
		EmployerPct:             decimal.RequireFromString("0.80"),
		EmployeePct:             decimal.RequireFromString("0.20"),
	}
}

// Validate rejects unrecognized modes and a split that does not sum to one.
func (r Rules) Validate() error {
	if !r.Rounding.Valid() {
		return &generic.ConfigError{Field: "rounding", Value: string(r.Rounding), Hint: "one of nearest, floor, ceil"}
	}
	if !r.Basis.Valid() {
		return &generic.ConfigError{Field: "basis", Value: string(r.Basis), Hint: "one of business, calendar"}
	}
	if r.EmployerPct.IsNegative() || r.EmployeePct.IsNegative() {
		return &generic.ConfigError{Field: "shares", Value: r.EmployerPct.String() + "/" + r.EmployeePct.String(), Hint: "shares must be non-negative"}
	}
	if !r.EmployerPct.Add(r.EmployeePct).Equal(decimal.NewFromInt(1)) {
		return &generic.ConfigError{Field: "shares", Value: r.EmployerPct.String() + "/" + r.EmployeePct.String(), Hint: "employer and employee shares must sum to 1"}
	}
	return nil
}
