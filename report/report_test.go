package report_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/report"
	"github.com/warp/vr-engine/vr"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func rec(matricula, sindicato, eligible, rate, gross string) vr.TechnicalRecord {
	g := decimal.RequireFromString(gross)
	return vr.TechnicalRecord{
		Matricula:    matricula,
		Sindicato:    sindicato,
		EligibleDays: eligible,
		DailyRate:    rate,
		Gross:        gross,
		Employer:     g.Mul(decimal.RequireFromString("0.8")).StringFixed(2),
		Employee:     g.Mul(decimal.RequireFromString("0.2")).StringFixed(2),
	}
}

// A month with two unions: one unpriced employee, one exit on the 10th.
func month() []vr.TechnicalRecord {
	return []vr.TechnicalRecord{
		rec("1", "SINDPD SP", "20", "35.00", "700.00"),
		rec("2", "SINDPD SP", "10", "35.00", "350.00"),
		rec("3", "SINDPD RJ", "21", "36.50", "766.50"),
		rec("4", "SINDPD RJ", "0", "36.50", "0.00"),
		rec("5", "SEM SINDICATO", "22", "0", "0.00"),
	}
}

func fixed(d decimal.Decimal) string { return d.StringFixed(2) }

// =============================================================================
// AGGREGATE
// =============================================================================

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		op       report.Op
		col      report.Column
		positive bool
		want     string
		count    int
	}{
		{"sum gross", report.OpSum, report.ColGross, false, "1816.50", 5},
		{"mean over everyone", report.OpMean, report.ColGross, false, "363.30", 5},
		{"mean over those paid", report.OpMean, report.ColGross, true, "605.50", 3},
		{"min rate", report.OpMin, report.ColDailyRate, false, "0.00", 5},
		{"max eligible days", report.OpMax, report.ColEligibleDays, false, "22.00", 5},
		{"count paid", report.OpCount, report.ColGross, true, "3.00", 3},
		{"employer sum", report.OpSum, report.ColEmployer, false, "1453.20", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := report.Aggregate(month(), tt.op, tt.col, tt.positive)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fixed(got.Value))
			assert.Equal(t, tt.count, got.Count)
		})
	}
}

func TestAggregate_EmptyIsZero(t *testing.T) {
	got, err := report.Aggregate(nil, report.OpMean, report.ColGross, true)

	require.NoError(t, err)
	assert.True(t, got.Value.IsZero())
	assert.Equal(t, 0, got.Count)
}

func TestAggregate_RejectsUnknownNames(t *testing.T) {
	_, err := report.Aggregate(month(), "median", report.ColGross, false)
	assert.ErrorIs(t, err, generic.ErrInvalidQuery)

	_, err = report.Aggregate(month(), report.OpSum, "NOME", false)
	assert.ErrorIs(t, err, generic.ErrInvalidQuery)
	assert.True(t, generic.IsClientError(err))
}

// =============================================================================
// TOP-K
// =============================================================================

func TestTop_BySindicato(t *testing.T) {
	// GIVEN: Two SP employees (1050.00), two RJ (766.50), one unpriced
	// WHEN: Ranking unions by gross
	groups, err := report.Top(month(), report.OpSum, report.ColGross, report.BySindicato, 2, false)

	// THEN: SP then RJ, with member counts
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "SINDPD SP", groups[0].Key)
	assert.Equal(t, "1050.00", fixed(groups[0].Value))
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, "SINDPD RJ", groups[1].Key)
	assert.Equal(t, "766.50", fixed(groups[1].Value))
}

func TestTop_AscendingTiesBreakOnKey(t *testing.T) {
	groups, err := report.Top(month(), report.OpSum, report.ColGross, report.ByMatricula, 0, true)

	require.NoError(t, err)
	require.Len(t, groups, 5)
	assert.Equal(t, "4", groups[0].Key)
	assert.Equal(t, "5", groups[1].Key)
	assert.Equal(t, "3", groups[4].Key)
}

func TestTop_RejectsUnknownGroup(t *testing.T) {
	_, err := report.Top(month(), report.OpSum, report.ColGross, "NOME", 5, false)
	assert.ErrorIs(t, err, generic.ErrInvalidQuery)
}

// =============================================================================
// LOOKUP & SUMMARY
// =============================================================================

func TestFind_NormalizesIdentifier(t *testing.T) {
	got, ok := report.Find(month(), "0003")
	require.True(t, ok)
	assert.Equal(t, "766.50", got.Gross)

	_, ok = report.Find(month(), "99")
	assert.False(t, ok)
}

func TestZeroed_CountsCauses(t *testing.T) {
	// GIVEN: 4 has no eligible days, 5 has no daily rate
	// WHEN: Analyzing zero VR
	got := report.Zeroed(month())

	// THEN: Two zeroed employees, one per cause
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, []report.Cause{
		{Cause: report.CauseNoEligibleDays, Count: 1},
		{Cause: report.CauseNoDailyRate, Count: 1},
	}, got.Causes)
}

func TestSummarize(t *testing.T) {
	got := report.Summarize(month())

	assert.Equal(t, 5, got.Employees)
	assert.Equal(t, 3, got.Paid)
	assert.Equal(t, "1816.50", fixed(got.Gross))
	assert.Equal(t, "1453.20", fixed(got.EmployerShare))
	assert.Equal(t, "363.30", fixed(got.EmployeeShare))
	assert.Equal(t, "605.50", fixed(got.MeanPaid))
	assert.Equal(t, 2, got.Zero.Count)
}

func TestDescribeRules(t *testing.T) {
	rules := vr.DefaultRules()

	got := report.DescribeRules(rules)

	assert.Equal(t, "0.8", got.EmployerPct.String())
	assert.Equal(t, "nearest", got.Rounding)
	assert.True(t, got.ProportionalTermination)
	require.Len(t, got.Text, 3)
	assert.Contains(t, got.Text[1], "business")
	assert.Equal(t, "Split: employer 80%, employee 20%.", got.Text[2])

	rules.ProportionalTermination = false
	assert.Equal(t, "Exit after the 15th: full eligible days.", report.DescribeRules(rules).Text[1])
}
