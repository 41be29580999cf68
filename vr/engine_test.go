package vr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/logger"
	"github.com/warp/vr-engine/vr"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const unionDados = "SINDICATO DOS TRAB. EM PROC DE DADOS DE SAO PAULO"

func newTestEngine(t *testing.T, rules vr.Rules) *vr.Engine {
	engine, err := vr.NewEngine(rules, logger.Nop())
	require.NoError(t, err)
	return engine
}

// scenarioSources is the reference month: employee 00042 in São Paulo with
// 22 working days and two vacation rows summing to 2.
func scenarioSources() []vr.Source {
	return []vr.Source{
		{Name: "ATIVOS", Role: vr.RoleRoster, Table: tbl("ATIVOS",
			[]string{"MATRICULA", "EMPRESA", "SINDICATO"},
			[]string{"00042", "1410", unionDados},
			[]string{"00043", "1410", unionDados},
		)},
		{Name: "APRENDIZ", Role: vr.RoleApprentice, Table: tbl("APRENDIZ",
			[]string{"MATRICULA", "TITULO DO CARGO"},
			[]string{"43", "APRENDIZ"},
		)},
		{Name: "BASE SINDICATO X VALOR", Role: vr.RoleRate, Table: tbl("BASE SINDICATO X VALOR",
			[]string{"ESTADO", "VALOR"},
			[]string{"São Paulo", "R$ 35,00"},
		)},
		{Name: "BASE DIAS UTEIS", Role: vr.RoleCalendar, Table: tbl("BASE DIAS UTEIS",
			[]string{"SINDICATO", "DIAS_UTEIS"},
			[]string{unionDados, "22"},
		)},
		{Name: "FERIAS", Role: vr.RoleVacation, Table: tbl("FERIAS",
			[]string{"MATRICULA", "DIAS_DE_FERIAS"},
			[]string{"42", "1"},
			[]string{"42.0", "1"},
		)},
		{Name: "ADMISSAO ABRIL", Role: vr.RoleAdmission, Table: tbl("ADMISSAO ABRIL",
			[]string{"MATRICULA", "ADMISSAO"},
			[]string{"777", "2025-04-01"},
		)},
	}
}

// =============================================================================
// END TO END
// =============================================================================

func TestEngine_ReferenceScenario(t *testing.T) {
	// GIVEN: The reference month, with no termination and no admission match
	// WHEN: Running the engine
	// THEN: 20 eligible days at 35.00 give 700.00 split 560.00 / 140.00

	engine := newTestEngine(t, vr.DefaultRules())

	res, err := engine.Run(scenarioSources())
	require.NoError(t, err)
	require.Len(t, res.Employees, 1)

	e := res.Employees[0]
	assert.Equal(t, "42", e.Matricula)
	assert.Equal(t, "SP", e.UF)
	assertDecimal(t, "22", e.WorkingDays)
	assertDecimal(t, "2", e.VacationDays)
	assertDecimal(t, "20", e.EligibleDays)
	assert.Equal(t, "35.00", e.DailyRate.StringFixed(2))
	assert.Equal(t, "700.00", e.Gross.StringFixed(2))
	assert.Equal(t, "560.00", e.EmployerShare.StringFixed(2))
	assert.Equal(t, "140.00", e.EmployeeShare.StringFixed(2))
	assert.Equal(t, vr.RuleNotApplied, e.Rule)
	assert.True(t, e.Admission.IsZero())

	require.Len(t, res.Technical, 1)
	rec := res.Technical[0]
	assert.Equal(t, "20", rec.EligibleDays)
	assert.Equal(t, "700.00", rec.Gross)
	assert.Equal(t, "", rec.Admission)
	assert.Equal(t, string(vr.RuleNotApplied), rec.Rule)
}

func TestEngine_ApprenticeExcludedExactlyOnce(t *testing.T) {
	// GIVEN: Employee 43 is both on the roster and in the apprentice list
	// WHEN: Running the engine
	// THEN: 43 is absent downstream and the apprentice count is exactly 1

	res, err := newTestEngine(t, vr.DefaultRules()).Run(scenarioSources())
	require.NoError(t, err)

	for _, e := range res.Employees {
		assert.NotEqual(t, "43", e.Matricula)
	}
	for _, rec := range res.Technical {
		assert.NotEqual(t, "43", rec.Matricula)
	}
	assert.Equal(t, 1, res.Audit.Count(vr.StageExclusion, vr.KindExcluded, vr.CategoryApprentice))
	assert.Equal(t, 0, res.Audit.Count(vr.StageExclusion, vr.KindExcluded, vr.CategoryIntern))
}

func TestEngine_Idempotent(t *testing.T) {
	engine := newTestEngine(t, vr.DefaultRules())

	first, err := engine.Run(scenarioSources())
	require.NoError(t, err)
	second, err := engine.Run(scenarioSources())
	require.NoError(t, err)

	assert.Equal(t, first.Technical, second.Technical)
	assert.Equal(t, first.Audit, second.Audit)
}

func TestEngine_MissingOptionalSourcesDegrade(t *testing.T) {
	// GIVEN: Only a roster
	// WHEN: Running the engine
	// THEN: The run completes with zero days and rates, and every missing
	//       source is in the audit

	sources := []vr.Source{scenarioSources()[0]}

	res, err := newTestEngine(t, vr.DefaultRules()).Run(sources)
	require.NoError(t, err)
	require.Len(t, res.Employees, 2)

	for _, e := range res.Employees {
		assert.True(t, e.EligibleDays.IsZero())
		assert.True(t, e.Gross.IsZero())
	}
	for _, subject := range []string{"apprentice", "intern", "expatriate", "no_purchase", "rate_table", "calendar", "vacation", "termination", "admission"} {
		assert.True(t, res.Audit.Has("", vr.KindMissingSource, subject), "missing %s should be audited", subject)
	}
	assert.Equal(t, 2, res.Audit.Count(vr.StageRate, vr.KindUnresolved, "rate"))
}

func TestEngine_TerminationFlowsIntoMoney(t *testing.T) {
	sources := append(scenarioSources(), vr.Source{
		Name: "DESLIGADOS", Role: vr.RoleTermination,
		Table: terminations([]string{"42", "10/05/2025", "OK"}),
	})

	res, err := newTestEngine(t, vr.DefaultRules()).Run(sources)
	require.NoError(t, err)

	e := res.Employees[0]
	assert.Equal(t, vr.RuleUntil15, e.Rule)
	assert.True(t, e.Gross.IsZero())
	assert.Equal(t, "2025-05-10", res.Technical[0].Termination)
}

// =============================================================================
// POPULATION
// =============================================================================

func TestBuildPopulation_DedupesAndLabels(t *testing.T) {
	roster := tbl("ATIVOS", []string{"MATRICULA", "SINDICATO", "COMPETENCIA", "Admissão"},
		[]string{"001", "sindpd sp", "", "2019-02-01"},
		[]string{"1.0", "OTHER", "", ""},
		[]string{"", "BLANK", "", ""},
		[]string{"2", "SINDPD SP", "04/2025", ""},
	)

	table, adj, err := vr.BuildPopulation(roster, "05/2025")
	require.NoError(t, err)

	require.Len(t, table, 2)
	assert.Equal(t, "SINDPD SP", table[0].Sindicato)
	assert.Equal(t, "05/2025", table[0].Competencia)
	assert.Equal(t, "2019-02-01", table[0].RosterAdmission.String())
	assert.Equal(t, "04/2025", table[1].Competencia)

	audit := vr.Audit{Adjustments: adj}
	assert.Equal(t, 1, audit.Count(vr.StageIdentity, vr.KindDuplicate, "roster"))
	assert.Equal(t, 1, audit.Count(vr.StageIdentity, vr.KindUnresolved, "blank_matricula"))
}

func TestEngine_MissingRosterIsFatal(t *testing.T) {
	engine := newTestEngine(t, vr.DefaultRules())

	_, err := engine.Run(scenarioSources()[1:])
	assert.ErrorIs(t, err, generic.ErrMissingRoster)

	_, err = engine.Run([]vr.Source{{Name: "ATIVOS", Role: vr.RoleRoster, Table: tbl("ATIVOS", []string{"NOME"}, []string{"Ana"})}})
	assert.ErrorIs(t, err, generic.ErrMissingRoster)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func TestNewEngine_RejectsInvalidRules(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*vr.Rules)
		field string
	}{
		{"rounding", func(r *vr.Rules) { r.Rounding = "half-up" }, "rounding"},
		{"basis", func(r *vr.Rules) { r.Basis = "weekly" }, "basis"},
		{"shares", func(r *vr.Rules) { r.EmployerPct = dec("0.9") }, "shares"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := vr.DefaultRules()
			tt.edit(&rules)

			_, err := vr.NewEngine(rules, nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, generic.ErrInvalidConfiguration)
			var cfgErr *generic.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
