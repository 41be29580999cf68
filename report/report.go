/*
Package report answers deterministic questions about a finished run.

PURPOSE:
  Every number a payroll analyst asks about a month (totals, averages, the
  biggest unions, one employee's values, why someone got nothing) is
  computed here from the stored technical table, never estimated. All math
  is decimal.

KEY CONCEPTS:
  - Column:  A numeric column of the technical table, by its CSV name
  - Op:      sum | mean | min | max | count
  - GroupBy: SINDICATO | MATRICULA | UF_BASE | EMPRESA
  - Zero analysis: employees with VR_COLAB = 0, split by cause
    (no eligible days, no daily rate). Causes can overlap.

PARSING:
  Cells that don't parse count as zero, the same as an empty cell.

SEE ALSO:
  - vr/projection.go: TechnicalRecord
  - api/reports.go: HTTP surface
*/
package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/vr"
)

// =============================================================================
// COLUMNS, OPS, GROUPS
// =============================================================================

// Column names a numeric column of the technical table.
type Column string

const (
	ColGross        Column = "VR_COLAB"
	ColEmployer     Column = "VR_EMPRESA"
	ColEmployee     Column = "VR_PROFISSIONAL"
	ColDailyRate    Column = "VALOR_UNITARIO"
	ColEligibleDays Column = "DIAS_ELEGIVEIS"
	ColWorkingDays  Column = "DIAS_UTEIS"
	ColVacationDays Column = "DIAS_DE_FERIAS"
)

func (c Column) cell(r vr.TechnicalRecord) (string, bool) {
	switch c {
	case ColGross:
		return r.Gross, true
	case ColEmployer:
		return r.Employer, true
	case ColEmployee:
		return r.Employee, true
	case ColDailyRate:
		return r.DailyRate, true
	case ColEligibleDays:
		return r.EligibleDays, true
	case ColWorkingDays:
		return r.WorkingDays, true
	case ColVacationDays:
		return r.VacationDays, true
	}
	return "", false
}

func (c Column) value(r vr.TechnicalRecord) decimal.Decimal {
	cell, _ := c.cell(r)
	return generic.MustParseDecimal(cell)
}

// Op is an aggregation.
type Op string

const (
	OpSum   Op = "sum"
	OpMean  Op = "mean"
	OpMin   Op = "min"
	OpMax   Op = "max"
	OpCount Op = "count"
)

// GroupBy names a key column of the technical table.
type GroupBy string

const (
	BySindicato GroupBy = "SINDICATO"
	ByMatricula GroupBy = "MATRICULA"
	ByUF        GroupBy = "UF_BASE"
	ByEmpresa   GroupBy = "EMPRESA"
)

func (g GroupBy) key(r vr.TechnicalRecord) (string, bool) {
	switch g {
	case BySindicato:
		return r.Sindicato, true
	case ByMatricula:
		return r.Matricula, true
	case ByUF:
		return r.UF, true
	case ByEmpresa:
		return r.Empresa, true
	}
	return "", false
}

func invalid(field, value string) error {
	return fmt.Errorf("%w: %s=%q", generic.ErrInvalidQuery, field, value)
}

// =============================================================================
// AGGREGATE
// =============================================================================

// Aggregation is the result of Aggregate. Count is the number of values
// that entered it (the denominator of a mean).
type Aggregation struct {
	Op     Op              `json:"op"`
	Column Column          `json:"column"`
	Value  decimal.Decimal `json:"value"`
	Count  int             `json:"count"`
}

// Aggregate folds one column over the records. With positiveOnly, values
// <= 0 are left out (the mean VR of those who got any). An empty input
// yields zero.
func Aggregate(records []vr.TechnicalRecord, op Op, col Column, positiveOnly bool) (Aggregation, error) {
	if _, ok := col.cell(vr.TechnicalRecord{}); !ok {
		return Aggregation{}, invalid("column", string(col))
	}

	values := make([]decimal.Decimal, 0, len(records))
	for _, r := range records {
		v := col.value(r)
		if positiveOnly && !v.IsPositive() {
			continue
		}
		values = append(values, v)
	}

	value, err := fold(op, values)
	if err != nil {
		return Aggregation{}, err
	}
	return Aggregation{Op: op, Column: col, Value: value, Count: len(values)}, nil
}

// fold applies op. Means are rounded half-to-even to two places.
func fold(op Op, values []decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case OpCount:
		return decimal.NewFromInt(int64(len(values))), nil
	case OpSum, OpMean, OpMin, OpMax:
	default:
		return decimal.Zero, invalid("op", string(op))
	}
	if len(values) == 0 {
		return decimal.Zero, nil
	}

	switch op {
	case OpMin:
		return decimal.Min(values[0], values[1:]...), nil
	case OpMax:
		return decimal.Max(values[0], values[1:]...), nil
	}
	sum := decimal.Sum(values[0], values[1:]...)
	if op == OpMean {
		return sum.Div(decimal.NewFromInt(int64(len(values)))).RoundBank(2), nil
	}
	return sum, nil
}

// =============================================================================
// TOP-K BY GROUP
// =============================================================================

// Group is one row of a grouped aggregation.
type Group struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}

// Top aggregates col per group and returns the k largest (or smallest when
// ascending). k <= 0 returns every group. Ties break on the key.
func Top(records []vr.TechnicalRecord, op Op, col Column, by GroupBy, k int, ascending bool) ([]Group, error) {
	if _, ok := col.cell(vr.TechnicalRecord{}); !ok {
		return nil, invalid("column", string(col))
	}
	if _, ok := by.key(vr.TechnicalRecord{}); !ok {
		return nil, invalid("by", string(by))
	}

	var order []string
	buckets := map[string][]decimal.Decimal{}
	for _, r := range records {
		key, _ := by.key(r)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], col.value(r))
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		value, err := fold(op, buckets[key])
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Key: key, Value: value, Count: len(buckets[key])})
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		c := a.Value.Cmp(b.Value)
		if !ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	if k > 0 && k < len(groups) {
		groups = groups[:k]
	}
	return groups, nil
}

// =============================================================================
// LOOKUP
// =============================================================================

// Find returns the record of one employee. The identifier is normalized
// the way the engine normalizes it, so "00042" finds 42.
func Find(records []vr.TechnicalRecord, matricula string) (vr.TechnicalRecord, bool) {
	id := vr.NormalizeMatricula(matricula)
	for _, r := range records {
		if r.Matricula == id {
			return r, true
		}
	}
	return vr.TechnicalRecord{}, false
}

// =============================================================================
// SUMMARY
// =============================================================================

// Zero-VR causes.
const (
	CauseNoEligibleDays = "eligible_days_zero"
	CauseNoDailyRate    = "daily_rate_zero"
)

// Cause counts zero-VR employees sharing one explanation.
type Cause struct {
	Cause string `json:"cause"`
	Count int    `json:"count"`
}

// ZeroAnalysis explains employees who received nothing.
type ZeroAnalysis struct {
	Count  int     `json:"count"`
	Causes []Cause `json:"causes"`
}

// Zeroed counts employees with zero gross VR and why.
func Zeroed(records []vr.TechnicalRecord) ZeroAnalysis {
	var out ZeroAnalysis
	var noDays, noRate int
	for _, r := range records {
		if !ColGross.value(r).IsZero() {
			continue
		}
		out.Count++
		if ColEligibleDays.value(r).IsZero() {
			noDays++
		}
		if ColDailyRate.value(r).IsZero() {
			noRate++
		}
	}
	out.Causes = []Cause{
		{Cause: CauseNoEligibleDays, Count: noDays},
		{Cause: CauseNoDailyRate, Count: noRate},
	}
	return out
}

// Summary is the one-screen view of a run.
type Summary struct {
	Employees     int             `json:"employees"`
	Paid          int             `json:"paid"`
	Gross         decimal.Decimal `json:"gross"`
	EmployerShare decimal.Decimal `json:"employer_share"`
	EmployeeShare decimal.Decimal `json:"employee_share"`
	MeanPaid      decimal.Decimal `json:"mean_paid"` // over employees with VR > 0
	Zero          ZeroAnalysis    `json:"zero"`
}

// Summarize totals a run's records.
func Summarize(records []vr.TechnicalRecord) Summary {
	s := Summary{Employees: len(records), Zero: Zeroed(records)}
	for _, r := range records {
		s.Gross = s.Gross.Add(ColGross.value(r))
		s.EmployerShare = s.EmployerShare.Add(ColEmployer.value(r))
		s.EmployeeShare = s.EmployeeShare.Add(ColEmployee.value(r))
	}
	paid, _ := Aggregate(records, OpMean, ColGross, true)
	s.Paid, s.MeanPaid = paid.Count, paid.Value
	return s
}

// =============================================================================
// RULES
// =============================================================================

// RulesSummary states the split and exit rules a run applies.
type RulesSummary struct {
	EmployerPct             decimal.Decimal `json:"employer_pct"`
	EmployeePct             decimal.Decimal `json:"employee_pct"`
	Rounding                string          `json:"rounding"`
	Basis                   string          `json:"basis"`
	ProportionalTermination bool            `json:"proportional_termination"`
	Text                    []string        `json:"text"`
}

// DescribeRules renders rules for people.
func DescribeRules(r vr.Rules) RulesSummary {
	after := "Exit after the 15th: full eligible days."
	if r.ProportionalTermination {
		after = fmt.Sprintf("Exit after the 15th: eligible days scaled by %s days worked since the 16th over %s days from the 16th to month end, rounded %s.",
			r.Basis, r.Basis, r.Rounding)
	}
	return RulesSummary{
		EmployerPct:             r.EmployerPct,
		EmployeePct:             r.EmployeePct,
		Rounding:                string(r.Rounding),
		Basis:                   string(r.Basis),
		ProportionalTermination: r.ProportionalTermination,
		Text: []string{
			"Exit on or before the 15th (notice confirmed): no VR.",
			after,
			fmt.Sprintf("Split: employer %s%%, employee %s%%.",
				r.EmployerPct.Shift(2).String(), r.EmployeePct.Shift(2).String()),
		},
	}
}
