package vr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vr-engine/vr"
)

func rateTable() vr.RateTable {
	rates, _ := vr.BuildRateTable(tbl("BASE SINDICATO X VALOR", []string{"ESTADO", "VALOR"},
		[]string{"São Paulo", "R$ 37,50"},
		[]string{"Rio de Janeiro", "35.00"},
		[]string{"Paraná", "35,00"},
	))
	return rates
}

func TestBuildRateTable_KeysByStateName(t *testing.T) {
	rates := rateTable()

	sp, ok := rates.Lookup("SP")
	require.True(t, ok)
	assertDecimal(t, "37.50", sp)

	rj, ok := rates.Lookup("RJ")
	require.True(t, ok)
	assertDecimal(t, "35", rj)

	_, ok = rates.Lookup("PA")
	assert.False(t, ok, "Paraná must not land on Pará")
}

func TestBuildRateTable_DropsAndCountsBadRows(t *testing.T) {
	// GIVEN: A rate source with an unknown state, a bad value and a repeat
	// WHEN: Building the table
	// THEN: Only clean first occurrences survive and each problem is counted

	rates, adj := vr.BuildRateTable(tbl("RATES", []string{"ESTADO", "VALOR"},
		[]string{"São Paulo", "37,50"},
		[]string{"Atlantis", "10,00"},
		[]string{"Rio de Janeiro", "n/a"},
		[]string{"SAO PAULO", "99,00"},
	))

	assert.Len(t, rates, 1)
	assertDecimal(t, "37.5", rates["SP"])

	audit := vr.Audit{Adjustments: adj}
	assert.Equal(t, 1, audit.Count(vr.StageRate, vr.KindUnresolved, "rate_table_state"))
	assert.Equal(t, 1, audit.Count(vr.StageRate, vr.KindUnresolved, "rate_table_value"))
	assert.Equal(t, 1, audit.Count(vr.StageRate, vr.KindDuplicate, "rate_table_state"))
}

func TestBuildRateTable_MissingSourceOrColumns(t *testing.T) {
	rates, adj := vr.BuildRateTable(nil)
	assert.Empty(t, rates)
	require.Len(t, adj, 1)
	assert.Equal(t, vr.KindMissingSource, adj[0].Kind)

	rates, adj = vr.BuildRateTable(tbl("RATES", []string{"UF", "VALOR"}, []string{"SP", "10"}))
	assert.Empty(t, rates)
	require.Len(t, adj, 1)
	assert.Equal(t, vr.KindSchemaMismatch, adj[0].Kind)
}

func TestResolveRates_UnresolvedDefaultsToZero(t *testing.T) {
	// GIVEN: One resolvable union, one union without a state, one state
	//        missing from the rate table
	// WHEN: Resolving rates
	// THEN: Unresolved rows get rate 0 and both misses are counted

	in := vr.Table{
		{Matricula: "1", Sindicato: "SINDPD SP - SINDICATO DOS TRAB EM PROC DE DADOS"},
		{Matricula: "2", Sindicato: "ASSOCIACAO DOS EMPREGADOS"},
		{Matricula: "3", Sindicato: "SINDICATO DOS BANCARIOS DE MINAS GERAIS"},
	}

	out, adj := vr.ResolveRates(in, rateTable())

	assert.Equal(t, "SP", out[0].UF)
	assertDecimal(t, "37.50", out[0].DailyRate)

	assert.Equal(t, "", out[1].UF)
	assert.True(t, out[1].DailyRate.IsZero())

	assert.Equal(t, "MG", out[2].UF)
	assert.True(t, out[2].DailyRate.IsZero())

	audit := vr.Audit{Adjustments: adj}
	assert.Equal(t, 1, audit.Count(vr.StageRate, vr.KindUnresolved, "uf"))
	assert.Equal(t, 1, audit.Count(vr.StageRate, vr.KindUnresolved, "rate"))

	assert.Equal(t, "", in[0].UF, "input table must not change")
}
