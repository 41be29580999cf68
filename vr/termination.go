package vr

import (
	"github.com/shopspring/decimal"
	"github.com/warp/vr-engine/generic"
)

// =============================================================================
// TERMINATION RULE ENGINE
// =============================================================================

// TerminationRule is the tag an employee carries after the termination stage.
//
//	(untagged) --no confirmed record--> NOT_APPLIED
//	(untagged) --confirmed, day <= 15--> ATE_15   (eligible days = 0)
//	(untagged) --confirmed, day >= 16--> APOS_15  (eligible days x fraction)
//
// Tagged rows are terminal.
type TerminationRule string

const (
	RuleNotApplied TerminationRule = "NOT_APPLIED"
	RuleUntil15    TerminationRule = "ATE_15"
	RuleAfter15    TerminationRule = "APOS_15"
)

// cutoffDay is the last day of the month that forfeits the whole benefit.
const cutoffDay = 15

var confirmed = generic.NewFoldSet("OK", "SIM", "TRUE", "1")

// IsConfirmed parses the termination notice flag tolerantly.
func IsConfirmed(flag string) bool {
	return confirmed.Has(flag)
}

// TerminationIndex maps a normalized identifier to its confirmed
// termination date.
type TerminationIndex map[string]generic.TimePoint

// IndexTerminations keeps confirmed, dated rows only. When an identifier
// repeats, the earliest date wins.
func IndexTerminations(t *generic.Table) (TerminationIndex, []Adjustment) {
	idx := TerminationIndex{}
	if t == nil {
		return idx, []Adjustment{adjust(StageTermination, KindMissingSource, "termination", 1)}
	}
	dateCol, ok := t.FirstColumn(ColDataDemissao, ColDataDesligamento)
	if !ok || !t.Has(ColMatricula, ColComunicado) {
		return idx, []Adjustment{adjust(StageTermination, KindSchemaMismatch, "termination", 1)}
	}

	var undated, dup int
	for _, row := range t.Rows {
		raw := row.Get(ColMatricula)
		if raw == "" || !IsConfirmed(row.Get(ColComunicado)) {
			continue
		}
		date, ok := generic.ParseDate(row.Get(dateCol))
		if !ok {
			undated++
			continue
		}
		id := NormalizeMatricula(raw)
		if prev, seen := idx[id]; seen {
			dup++
			if prev.BeforeOrEqual(date) {
				continue
			}
		}
		idx[id] = date
	}

	var adj []Adjustment
	if undated > 0 {
		adj = append(adj, adjust(StageTermination, KindUnresolved, "termination_date", undated))
	}
	if dup > 0 {
		adj = append(adj, adjust(StageTermination, KindDuplicate, "termination", dup))
	}
	return idx, adj
}

// Classify returns the tag for a termination date and confirmation.
func Classify(date generic.TimePoint, isConfirmed bool) TerminationRule {
	switch {
	case !isConfirmed || date.IsZero():
		return RuleNotApplied
	case date.Day() <= cutoffDay:
		return RuleUntil15
	default:
		return RuleAfter15
	}
}

// ProportionalFraction is the share of the post-16th period worked:
// qualifying days [16th, date] over qualifying days [16th, month end],
// clamped to [0, 1]. A zero denominator yields 1.
func ProportionalFraction(date generic.TimePoint, basis generic.DayBasis) decimal.Decimal {
	one := decimal.NewFromInt(1)
	start := generic.NewTimePoint(date.Year(), date.Month(), cutoffDay+1)
	end := generic.EndOfMonth(date.Year(), date.Month())

	den := basis.Count(generic.Period{Start: start, End: end})
	if den == 0 {
		return one
	}
	num := basis.Count(generic.Period{Start: start, End: date})
	frac := decimal.NewFromInt(int64(num)).Div(decimal.NewFromInt(int64(den)))
	return generic.Clamp(frac, decimal.Zero, one)
}

// ApplyTerminations classifies every untagged employee. Rows that already
// carry a tag pass through untouched, which makes the stage idempotent.
func ApplyTerminations(in Table, idx TerminationIndex, rules Rules) (Table, []Adjustment) {
	out := in.Clone()
	counts := map[TerminationRule]int{}

	for i := range out {
		e := &out[i]
		if e.Rule != "" {
			continue
		}
		date, found := idx[e.Matricula]
		e.Rule = Classify(date, found)
		counts[e.Rule]++

		switch e.Rule {
		case RuleUntil15:
			e.Termination = date
			e.EligibleDays = decimal.Zero
		case RuleAfter15:
			e.Termination = date
			if rules.ProportionalTermination {
				scaled := rules.Rounding.Apply(e.EligibleDays.Mul(ProportionalFraction(date, rules.Basis)))
				e.EligibleDays = generic.Clamp(scaled, decimal.Zero, e.WorkingDays)
			}
		}
	}

	return out, []Adjustment{
		adjust(StageTermination, KindApplied, string(RuleUntil15), counts[RuleUntil15]),
		adjust(StageTermination, KindApplied, string(RuleAfter15), counts[RuleAfter15]),
	}
}
