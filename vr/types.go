/*
Package vr implements the monthly meal-voucher (VR) consolidation engine.

PURPOSE:
  Turns a roster and a handful of loosely-maintained side sources into one
  audited entitlement record per employee: how many days the employee is
  owed, at which daily rate, and how the resulting amount splits between
  employer and employee.

PIPELINE (each stage is a pure Table -> Table function):
  1. BuildPopulation   normalize identifiers, dedupe the roster
  2. ApplyExclusions   apprentices, interns, expatriates, no-purchase absences
  3. ResolveRates      union text -> state code -> daily rate
  4. ApplyCalendar     working days by union minus summed vacation days
  5. ApplyTerminations day-15 rule and post-16th proration
  6. ResolveAdmissions admission registry, roster fallback
  7. ComputeAmounts    gross and the employer/employee split
  8. Technical/Project technical records and the export layout

KEY CONCEPTS IN THIS FILE (types.go):
  - Source / Role: an input table tagged with what it is
  - Employee: the record every stage enriches
  - Table: the employee table with its invariants

SEE ALSO:
  - engine.go: Runs the stages in order and collects the audit
  - audit.go: Recoverable anomaly kinds and counters
  - rules.go: Configuration value object
*/
package vr

import (
	"github.com/shopspring/decimal"
	"github.com/warp/vr-engine/generic"
)

// =============================================================================
// SOURCES
// =============================================================================

// Role tags what an input table is for.
type Role string

const (
	RoleRoster      Role = "roster"
	RoleApprentice  Role = "apprentice"
	RoleIntern      Role = "intern"
	RoleExpatriate  Role = "expatriate"
	RoleAbsence     Role = "absence"
	RoleRate        Role = "rate"
	RoleCalendar    Role = "calendar"
	RoleVacation    Role = "vacation"
	RoleTermination Role = "termination"
	RoleAdmission   Role = "admission"
)

// Source is a named input table tagged by role. Discovery of sources is the
// caller's job; the engine only consumes the list.
type Source struct {
	Name  string
	Role  Role
	Table *generic.Table
}

// Inputs groups sources by role. Single-table roles keep the first source
// seen; admission sources accumulate.
type Inputs struct {
	Roster       *generic.Table
	Apprentices  *generic.Table
	Interns      *generic.Table
	Expatriates  *generic.Table
	Absences     *generic.Table
	Rates        *generic.Table
	Calendar     *generic.Table
	Vacations    *generic.Table
	Terminations *generic.Table
	Admissions   []*generic.Table
}

// Collect groups a role-tagged source list.
func Collect(sources []Source) Inputs {
	var in Inputs
	first := func(dst **generic.Table, t *generic.Table) {
		if *dst == nil {
			*dst = t
		}
	}
	for _, s := range sources {
		switch s.Role {
		case RoleRoster:
			first(&in.Roster, s.Table)
		case RoleApprentice:
			first(&in.Apprentices, s.Table)
		case RoleIntern:
			first(&in.Interns, s.Table)
		case RoleExpatriate:
			first(&in.Expatriates, s.Table)
		case RoleAbsence:
			first(&in.Absences, s.Table)
		case RoleRate:
			first(&in.Rates, s.Table)
		case RoleCalendar:
			first(&in.Calendar, s.Table)
		case RoleVacation:
			first(&in.Vacations, s.Table)
		case RoleTermination:
			first(&in.Terminations, s.Table)
		case RoleAdmission:
			if s.Table != nil {
				in.Admissions = append(in.Admissions, s.Table)
			}
		}
	}
	return in
}

// Column names after the header normalization pre-pass.
const (
	ColMatricula        = "MATRICULA"
	ColEmpresa          = "EMPRESA"
	ColSindicato        = "SINDICATO"
	ColCompetencia      = "COMPETENCIA"
	ColEstado           = "ESTADO"
	ColValor            = "VALOR"
	ColDiasUteis        = "DIAS_UTEIS"
	ColDiasFerias       = "DIAS_DE_FERIAS"
	ColNaCompra         = "NA_COMPRA"
	ColComunicado       = "COMUNICADO_DE_DESLIGAMENTO"
	ColDataDemissao     = "DATA_DEMISSAO"
	ColDataDesligamento = "DATA_DESLIGAMENTO"
)

// =============================================================================
// EMPLOYEE RECORD
// =============================================================================

// Employee is one row of the employee table. Monetary fields carry two
// decimal places once ComputeAmounts has run.
type Employee struct {
	Matricula   string
	Empresa     string
	Sindicato   string
	Competencia string

	UF        string // "" when unresolved
	DailyRate decimal.Decimal

	WorkingDays  decimal.Decimal
	VacationDays decimal.Decimal
	EligibleDays decimal.Decimal

	Termination generic.TimePoint
	Rule        TerminationRule // "" until ApplyTerminations classifies the row

	Admission generic.TimePoint

	// RosterAdmission is the roster's own admission cell, only consulted
	// when the admission registry yields nothing.
	RosterAdmission generic.TimePoint

	Gross         decimal.Decimal
	EmployerShare decimal.Decimal
	EmployeeShare decimal.Decimal
}

// =============================================================================
// EMPLOYEE TABLE
// =============================================================================

// Table is the employee table, in roster order.
type Table []Employee

// Clone returns a copy that stages can modify without touching the input.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Totals sums gross, employer and employee amounts.
func (t Table) Totals() (gross, employer, employee decimal.Decimal) {
	for _, e := range t {
		gross = gross.Add(e.Gross)
		employer = employer.Add(e.EmployerShare)
		employee = employee.Add(e.EmployeeShare)
	}
	return gross, employer, employee
}

var cent = decimal.New(1, -2)

// CheckInvariants verifies the table after a stage. Monetary invariants
// only apply once the table is priced.
func (t Table) CheckInvariants(stage string, priced bool) error {
	seen := make(map[string]bool, len(t))
	for _, e := range t {
		if seen[e.Matricula] {
			return &generic.InvariantError{Stage: stage, Matricula: e.Matricula, Rule: "unique identifier"}
		}
		seen[e.Matricula] = true

		if e.EligibleDays.IsNegative() || e.EligibleDays.GreaterThan(e.WorkingDays) {
			return &generic.InvariantError{Stage: stage, Matricula: e.Matricula, Rule: "0 <= eligible days <= working days"}
		}
		if e.VacationDays.IsNegative() || e.DailyRate.IsNegative() {
			return &generic.InvariantError{Stage: stage, Matricula: e.Matricula, Rule: "non-negative vacation and rate"}
		}
		if !priced {
			continue
		}
		if !e.Gross.Equal(generic.RoundCents(e.EligibleDays.Mul(e.DailyRate))) {
			return &generic.InvariantError{Stage: stage, Matricula: e.Matricula, Rule: "gross = round(eligible x rate, 2)"}
		}
		if e.EmployerShare.Add(e.EmployeeShare).Sub(e.Gross).Abs().GreaterThan(cent) {
			return &generic.InvariantError{Stage: stage, Matricula: e.Matricula, Rule: "shares sum to gross within one cent"}
		}
	}
	return nil
}
