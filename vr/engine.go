package vr

import (
	"fmt"

	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/logger"
)

// =============================================================================
// POPULATION
// =============================================================================

// BuildPopulation turns the roster into the initial employee table:
// identifiers normalized, first row per identifier kept, blank identifiers
// dropped. The period label comes from the roster's COMPETENCIA cell when
// present, else from periodLabel.
func BuildPopulation(roster *generic.Table, periodLabel string) (Table, []Adjustment, error) {
	if roster == nil {
		return nil, nil, generic.ErrMissingRoster
	}
	if !roster.Has(ColMatricula) {
		return nil, nil, fmt.Errorf("%w: %s has no %s column", generic.ErrMissingRoster, roster.Name, ColMatricula)
	}
	admCol, hasAdm := roster.FirstColumn(RosterAdmissionColumns...)

	out := make(Table, 0, roster.Len())
	seen := make(map[string]bool, roster.Len())
	var blank, dup int

	for _, row := range roster.Rows {
		raw := row.Get(ColMatricula)
		if raw == "" {
			blank++
			continue
		}
		id := NormalizeMatricula(raw)
		if seen[id] {
			dup++
			continue
		}
		seen[id] = true

		e := Employee{
			Matricula: id,
			Empresa:   row.Get(ColEmpresa),
			Sindicato: generic.Upper(row.Get(ColSindicato)),
		}
		e.Competencia, _ = generic.FirstPresent(
			func() (string, bool) { v := row.Get(ColCompetencia); return v, v != "" },
			func() (string, bool) { return periodLabel, true },
		)
		if hasAdm {
			e.RosterAdmission, _ = generic.ParseDate(row.Get(admCol))
		}
		out = append(out, e)
	}

	adj := []Adjustment{adjust(StageIdentity, KindDuplicate, "roster", dup)}
	if blank > 0 {
		adj = append(adj, adjust(StageIdentity, KindUnresolved, "blank_matricula", blank))
	}
	return out, adj, nil
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs the consolidation pipeline with a fixed set of rules.
// It holds no per-run state; one engine can serve many runs.
type Engine struct {
	rules Rules
	log   *logger.Logger
}

// NewEngine validates the rules up front. An invalid rounding mode or day
// basis fails here, before any row is read.
func NewEngine(rules Rules, log *logger.Logger) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{rules: rules, log: log.WithComponent("engine")}, nil
}

// Result is the outcome of one run.
type Result struct {
	Employees Table
	Technical []TechnicalRecord
	Audit     Audit
}

// Run executes every stage in order. Recoverable anomalies end up in the
// audit; only a missing roster or a broken invariant aborts.
func (e *Engine) Run(sources []Source) (*Result, error) {
	in := Collect(sources)
	res := &Result{}

	table, adj, err := BuildPopulation(in.Roster, e.rules.PeriodLabel)
	if err != nil {
		return nil, err
	}
	if err := e.record(res, StageIdentity, table, adj, false); err != nil {
		return nil, err
	}

	// Exclusions
	var sets []ExclusionSet
	for _, src := range []struct {
		category string
		table    *generic.Table
	}{
		{CategoryApprentice, in.Apprentices},
		{CategoryIntern, in.Interns},
		{CategoryExpatriate, in.Expatriates},
	} {
		set, adj := ExclusionFromTable(src.category, src.table)
		res.Audit.Add(adj...)
		sets = append(sets, set)
	}
	noBuy, adj := NoPurchaseFromAbsences(in.Absences)
	res.Audit.Add(adj...)
	sets = append(sets, noBuy)

	table, adj = ApplyExclusions(table, sets...)
	if err := e.record(res, StageExclusion, table, adj, false); err != nil {
		return nil, err
	}

	// Rates
	rates, adj := BuildRateTable(in.Rates)
	res.Audit.Add(adj...)
	table, adj = ResolveRates(table, rates)
	if err := e.record(res, StageRate, table, adj, false); err != nil {
		return nil, err
	}

	// Calendar and vacations
	cal, adj := BuildCalendar(in.Calendar)
	res.Audit.Add(adj...)
	vac, adj := SumVacations(in.Vacations)
	res.Audit.Add(adj...)
	table, adj = ApplyCalendar(table, cal, vac)
	if err := e.record(res, StageCalendar, table, adj, false); err != nil {
		return nil, err
	}

	// Terminations
	idx, adj := IndexTerminations(in.Terminations)
	res.Audit.Add(adj...)
	table, adj = ApplyTerminations(table, idx, e.rules)
	if err := e.record(res, StageTermination, table, adj, false); err != nil {
		return nil, err
	}

	// Admissions
	reg, adj := AdmissionRegistry(in.Admissions)
	res.Audit.Add(adj...)
	table, adj = ResolveAdmissions(table, reg)
	if err := e.record(res, StageAdmission, table, adj, false); err != nil {
		return nil, err
	}

	// Money
	table, adj = ComputeAmounts(table, e.rules)
	if err := e.record(res, StageMoney, table, adj, true); err != nil {
		return nil, err
	}

	res.Employees = table
	res.Technical = Technical(table)

	e.log.Info().
		Int("employees", len(table)).
		Int("adjustments", len(res.Audit.Adjustments)).
		Msg("consolidation completed")

	return res, nil
}

// record logs a stage's adjustments, appends them to the audit and checks
// the table invariants.
func (e *Engine) record(res *Result, stage string, t Table, adj []Adjustment, priced bool) error {
	res.Audit.Add(adj...)
	for _, a := range res.Audit.Adjustments {
		if a.Stage != stage || a.Count == 0 {
			continue
		}
		e.log.Debug().
			Str("stage", a.Stage).
			Str("kind", string(a.Kind)).
			Str("subject", a.Subject).
			Int("count", a.Count).
			Msg("adjustment")
	}
	if err := t.CheckInvariants(stage, priced); err != nil {
		e.log.Error().Err(err).Str("stage", stage).Msg("invariant violated")
		return err
	}
	e.log.Info().Str("stage", stage).Int("rows", len(t)).Msg("stage completed")
	return nil
}
