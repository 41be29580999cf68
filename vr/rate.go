package vr

import (
	"github.com/shopspring/decimal"
	"github.com/warp/vr-engine/generic"
)

// =============================================================================
// RATE RESOLVER
// =============================================================================

// RateTable maps a state code to its daily rate.
type RateTable map[string]decimal.Decimal

// Lookup returns the rate for a state code.
func (r RateTable) Lookup(uf string) (decimal.Decimal, bool) {
	v, ok := r[uf]
	return v, ok
}

// BuildRateTable keys the rate source by the state code derived from its
// ESTADO column, never from union text. Rows whose state name or value
// doesn't resolve are dropped and counted; the first row per code wins.
func BuildRateTable(t *generic.Table) (RateTable, []Adjustment) {
	rates := RateTable{}
	if t == nil {
		return rates, []Adjustment{adjust(StageRate, KindMissingSource, "rate_table", 1)}
	}
	if !t.Has(ColEstado, ColValor) {
		return rates, []Adjustment{adjust(StageRate, KindSchemaMismatch, "rate_table", 1)}
	}

	var badState, badValue, dup int
	for _, row := range t.Rows {
		uf, ok := StateNameToUF(row.Get(ColEstado))
		if !ok {
			badState++
			continue
		}
		v, ok := generic.ParseDecimal(row.Get(ColValor))
		if !ok || v.IsNegative() {
			badValue++
			continue
		}
		if _, seen := rates[uf]; seen {
			dup++
			continue
		}
		rates[uf] = v
	}

	var adj []Adjustment
	if badState > 0 {
		adj = append(adj, adjust(StageRate, KindUnresolved, "rate_table_state", badState))
	}
	if badValue > 0 {
		adj = append(adj, adjust(StageRate, KindUnresolved, "rate_table_value", badValue))
	}
	if dup > 0 {
		adj = append(adj, adjust(StageRate, KindDuplicate, "rate_table_state", dup))
	}
	return rates, adj
}

// ResolveRates assigns each employee a state code from the union text and a
// daily rate from the table. Anything unresolved gets rate zero; the run
// continues and the counts land in the audit.
func ResolveRates(in Table, rates RateTable) (Table, []Adjustment) {
	out := in.Clone()
	var noUF, noRate int

	for i := range out {
		e := &out[i]
		uf, ok := UFFromSindicato(e.Sindicato)
		if !ok {
			e.UF = ""
			e.DailyRate = decimal.Zero
			noUF++
			continue
		}
		e.UF = uf
		rate, ok := rates.Lookup(uf)
		if !ok {
			noRate++
			rate = decimal.Zero
		}
		e.DailyRate = rate
	}

	adj := []Adjustment{
		adjust(StageRate, KindUnresolved, "uf", noUF),
		adjust(StageRate, KindUnresolved, "rate", noRate),
	}
	return out, adj
}
