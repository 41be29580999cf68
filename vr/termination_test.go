package vr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/vr"
)

func terminations(rows ...[]string) *generic.Table {
	return tbl("DESLIGADOS", []string{"MATRICULA", "DATA_DEMISSAO", "COMUNICADO_DE_DESLIGAMENTO"}, rows...)
}

func withDays(id string, working, eligible string) vr.Employee {
	return vr.Employee{Matricula: id, WorkingDays: dec(working), EligibleDays: dec(eligible)}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestApplyTerminations_Day15ForfeitsEverything(t *testing.T) {
	// GIVEN: A confirmed termination on the 15th
	// WHEN: Applying the termination rule
	// THEN: Eligible days drop to zero and the tag is ATE_15

	idx, _ := vr.IndexTerminations(terminations([]string{"1", "15/05/2025", "OK"}))

	out, adj := vr.ApplyTerminations(vr.Table{withDays("1", "22", "20")}, idx, vr.DefaultRules())

	assert.Equal(t, vr.RuleUntil15, out[0].Rule)
	assertDecimal(t, "0", out[0].EligibleDays)
	assert.Equal(t, "2025-05-15", out[0].Termination.String())
	assert.Equal(t, 1, vr.Audit{Adjustments: adj}.Count(vr.StageTermination, vr.KindApplied, string(vr.RuleUntil15)))
}

func TestApplyTerminations_Day16IsProportional(t *testing.T) {
	// GIVEN: June 2024, where the 16th is a Sunday: 10 business days from
	//        the 16th to month end, 4 of them up to the 20th
	// WHEN: Terminating on the 20th with 20 eligible days
	// THEN: Fraction 4/10 scales the days to 8 and the tag is APOS_15

	term := generic.NewTimePoint(2024, 6, 20)
	assertDecimal(t, "0.4", vr.ProportionalFraction(term, generic.BasisBusiness))

	idx, _ := vr.IndexTerminations(terminations([]string{"1", "2024-06-20", "sim"}))
	out, _ := vr.ApplyTerminations(vr.Table{withDays("1", "22", "20")}, idx, vr.DefaultRules())

	assert.Equal(t, vr.RuleAfter15, out[0].Rule)
	assertDecimal(t, "8", out[0].EligibleDays)
}

func TestApplyTerminations_RoundingModes(t *testing.T) {
	// 21 x 0.4 = 8.4
	idx, _ := vr.IndexTerminations(terminations([]string{"1", "20/06/2024", "OK"}))

	tests := []struct {
		mode generic.RoundingMode
		want string
	}{
		{generic.RoundNearest, "8"},
		{generic.RoundFloor, "8"},
		{generic.RoundCeil, "9"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			rules := vr.DefaultRules()
			rules.Rounding = tt.mode

			out, _ := vr.ApplyTerminations(vr.Table{withDays("1", "22", "21")}, idx, rules)

			assertDecimal(t, tt.want, out[0].EligibleDays)
		})
	}
}

func TestProportionalFraction_CalendarBasis(t *testing.T) {
	// 16..20 June is 5 days out of 15 (16..30)
	frac := vr.ProportionalFraction(generic.NewTimePoint(2024, 6, 20), generic.BasisCalendar)
	assertDecimal(t, "5", frac.Mul(dec("15")).Round(10))
}

func TestProportionalFraction_LastDayIsWhole(t *testing.T) {
	frac := vr.ProportionalFraction(generic.NewTimePoint(2024, 6, 30), generic.BasisBusiness)
	assertDecimal(t, "1", frac)
}

func TestApplyTerminations_UnconfirmedStaysNotApplied(t *testing.T) {
	// GIVEN: A "Talvez" flag and a blank flag, both with dates
	// WHEN: Applying the rule
	// THEN: Both stay NOT_APPLIED with untouched eligible days

	idx, _ := vr.IndexTerminations(terminations(
		[]string{"1", "05/05/2025", "Talvez"},
		[]string{"2", "20/05/2025", ""},
	))
	assert.Empty(t, idx)

	in := vr.Table{withDays("1", "22", "20"), withDays("2", "22", "18"), withDays("3", "22", "22")}
	out, _ := vr.ApplyTerminations(in, idx, vr.DefaultRules())

	for i, e := range out {
		assert.Equal(t, vr.RuleNotApplied, e.Rule)
		assert.True(t, e.Termination.IsZero())
		assert.True(t, in[i].EligibleDays.Equal(e.EligibleDays))
	}
}

func TestApplyTerminations_NonProportionalGrantsFullDays(t *testing.T) {
	rules := vr.DefaultRules()
	rules.ProportionalTermination = false
	idx, _ := vr.IndexTerminations(terminations([]string{"1", "20/06/2024", "OK"}))

	out, _ := vr.ApplyTerminations(vr.Table{withDays("1", "22", "20")}, idx, rules)

	assert.Equal(t, vr.RuleAfter15, out[0].Rule)
	assertDecimal(t, "20", out[0].EligibleDays)
}

func TestApplyTerminations_Idempotent(t *testing.T) {
	idx, _ := vr.IndexTerminations(terminations([]string{"1", "20/06/2024", "OK"}))

	once, _ := vr.ApplyTerminations(vr.Table{withDays("1", "22", "20")}, idx, vr.DefaultRules())
	twice, adj := vr.ApplyTerminations(once, idx, vr.DefaultRules())

	assert.Equal(t, once, twice)
	assert.Equal(t, 0, vr.Audit{Adjustments: adj}.Count("", vr.KindApplied, ""))
}

// =============================================================================
// INDEX
// =============================================================================

func TestIndexTerminations_EarliestConfirmedDateWins(t *testing.T) {
	idx, adj := vr.IndexTerminations(terminations(
		[]string{"0001", "25/05/2025", "OK"},
		[]string{"1.0", "10/05/2025", "TRUE"},
		[]string{"1", "not a date", "OK"},
	))

	require.Contains(t, idx, "1")
	assert.Equal(t, "2025-05-10", idx["1"].String())

	audit := vr.Audit{Adjustments: adj}
	assert.Equal(t, 1, audit.Count(vr.StageTermination, vr.KindDuplicate, ""))
	assert.Equal(t, 1, audit.Count(vr.StageTermination, vr.KindUnresolved, "termination_date"))
}

func TestIndexTerminations_DateColumnFallback(t *testing.T) {
	idx, adj := vr.IndexTerminations(tbl("DESLIGADOS",
		[]string{"MATRICULA", "DATA_DESLIGAMENTO", "COMUNICADO_DE_DESLIGAMENTO"},
		[]string{"7", "2025-05-03", "ok"},
	))

	assert.Empty(t, adj)
	assert.Equal(t, "2025-05-03", idx["7"].String())
}

func TestIndexTerminations_MissingColumns(t *testing.T) {
	idx, adj := vr.IndexTerminations(tbl("DESLIGADOS", []string{"MATRICULA", "DATA_DEMISSAO"}, []string{"7", "2025-05-03"}))

	assert.Empty(t, idx)
	require.Len(t, adj, 1)
	assert.Equal(t, vr.KindSchemaMismatch, adj[0].Kind)
}

func TestIsConfirmed(t *testing.T) {
	for _, v := range []string{"OK", "ok", " Sim ", "SIM", "true", "1"} {
		assert.True(t, vr.IsConfirmed(v), v)
	}
	for _, v := range []string{"", "Talvez", "NAO", "0", "false"} {
		assert.False(t, vr.IsConfirmed(v), v)
	}
}
