package vr

import (
	"github.com/shopspring/decimal"
	"github.com/warp/vr-engine/generic"
)

// =============================================================================
// CALENDAR & VACATION AGGREGATOR
// =============================================================================

// Calendar maps an uppercased union name to its working-day count.
type Calendar map[string]decimal.Decimal

// VacationTotals maps a normalized identifier to its summed vacation days.
type VacationTotals map[string]decimal.Decimal

// BuildCalendar indexes the calendar source by union. First row per union
// wins; negative or unparsable counts are dropped.
func BuildCalendar(t *generic.Table) (Calendar, []Adjustment) {
	cal := Calendar{}
	if t == nil {
		return cal, []Adjustment{adjust(StageCalendar, KindMissingSource, "calendar", 1)}
	}
	if !t.Has(ColSindicato, ColDiasUteis) {
		return cal, []Adjustment{adjust(StageCalendar, KindSchemaMismatch, "calendar", 1)}
	}

	var bad, dup int
	for _, row := range t.Rows {
		key := generic.Upper(row.Get(ColSindicato))
		days, ok := generic.ParseDecimal(row.Get(ColDiasUteis))
		if key == "" || !ok || days.IsNegative() {
			bad++
			continue
		}
		if _, seen := cal[key]; seen {
			dup++
			continue
		}
		cal[key] = days
	}

	var adj []Adjustment
	if bad > 0 {
		adj = append(adj, adjust(StageCalendar, KindUnresolved, "calendar_row", bad))
	}
	if dup > 0 {
		adj = append(adj, adjust(StageCalendar, KindDuplicate, "calendar_union", dup))
	}
	return cal, adj
}

// SumVacations adds up DIAS_DE_FERIAS per identifier. A source missing
// either column contributes nothing.
func SumVacations(t *generic.Table) (VacationTotals, []Adjustment) {
	totals := VacationTotals{}
	if t == nil {
		return totals, []Adjustment{adjust(StageCalendar, KindMissingSource, "vacation", 1)}
	}
	if !t.Has(ColMatricula, ColDiasFerias) {
		return totals, []Adjustment{adjust(StageCalendar, KindSchemaMismatch, "vacation", 1)}
	}

	bad := 0
	for _, row := range t.Rows {
		raw := row.Get(ColMatricula)
		days, ok := generic.ParseDecimal(row.Get(ColDiasFerias))
		if raw == "" || !ok {
			bad++
			continue
		}
		id := NormalizeMatricula(raw)
		totals[id] = totals[id].Add(days)
	}
	if bad > 0 {
		return totals, []Adjustment{adjust(StageCalendar, KindUnresolved, "vacation_row", bad)}
	}
	return totals, nil
}

// ApplyCalendar sets working days, vacation days and the baseline
// eligible days = max(working - vacation, 0).
func ApplyCalendar(in Table, cal Calendar, vac VacationTotals) (Table, []Adjustment) {
	out := in.Clone()
	noCal := 0

	for i := range out {
		e := &out[i]
		working, ok := cal[generic.Upper(e.Sindicato)]
		if !ok {
			noCal++
			working = decimal.Zero
		}
		vacation := decimal.Max(vac[e.Matricula], decimal.Zero)

		e.WorkingDays = working
		e.VacationDays = vacation
		e.EligibleDays = decimal.Max(working.Sub(vacation), decimal.Zero)
	}

	return out, []Adjustment{adjust(StageCalendar, KindUnresolved, "working_days", noCal)}
}
