package vr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/vr"
)

func TestDetectAdmissionColumn(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		want    string
		present bool
	}{
		{"exact alias", []string{"MATRICULA", "ADMISSAO"}, "ADMISSAO", true},
		{"accented alias", []string{"MATRICULA", "Admissão"}, "ADMISSÃO", true},
		{"spaced alias", []string{"MATRICULA", "Data Admissão Abril"}, "DATA ADMISSÃO ABRIL", true},
		{"underscored alias", []string{"MATRICULA", "DT_ADMISSAO"}, "DT_ADMISSAO", true},
		{"stem fallback", []string{"MATRICULA", "DATA DE ADMISSÃO NA EMPRESA"}, "DATA DE ADMISSÃO NA EMPRESA", true},
		{"alias beats stem", []string{"MATRICULA", "ADMISSIONAL", "DATA_ADMISSAO"}, "DATA_ADMISSAO", true},
		{"nothing", []string{"MATRICULA", "NOME"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, ok := vr.DetectAdmissionColumn(tbl("ADMISSAO ABRIL", tt.header))
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, col)
		})
	}
}

func TestAdmissionRegistry_EarliestPerIdentifier(t *testing.T) {
	// GIVEN: Two admission sources overlapping on one employee
	// WHEN: Building the registry
	// THEN: The earliest date wins regardless of source order

	april := tbl("ADMISSAO ABRIL", []string{"MATRICULA", "Admissão"},
		[]string{"10", "2025-04-14"},
		[]string{"11", "2025-04-01"},
	)
	march := tbl("ADMISSAO MARCO", []string{"MATRICULA", "DATA_ADMISSAO"},
		[]string{"0010", "03/03/2025"},
		[]string{"12", "garbage"},
	)

	reg, adj := vr.AdmissionRegistry([]*generic.Table{april, march})

	assert.Equal(t, "2025-03-03", reg["10"].String())
	assert.Equal(t, "2025-04-01", reg["11"].String())
	assert.NotContains(t, reg, "12")
	assert.Equal(t, 1, vr.Audit{Adjustments: adj}.Count(vr.StageAdmission, vr.KindUnresolved, "admission_date"))
}

func TestAdmissionRegistry_SkipsUnusableSources(t *testing.T) {
	noID := tbl("ADMISSAO", []string{"NOME", "ADMISSAO"}, []string{"Ana", "2025-04-01"})
	noDate := tbl("ADMISSAO", []string{"MATRICULA", "NOME"}, []string{"1", "Ana"})

	reg, adj := vr.AdmissionRegistry([]*generic.Table{noID, noDate})

	assert.Empty(t, reg)
	assert.Equal(t, 2, vr.Audit{Adjustments: adj}.Count(vr.StageAdmission, vr.KindSchemaMismatch, ""))
}

func TestResolveAdmissions_RegistryFirst(t *testing.T) {
	in := vr.Table{
		{Matricula: "1", RosterAdmission: date("2020-01-01")},
		{Matricula: "2", RosterAdmission: date("2021-01-01")},
	}
	reg := map[string]generic.TimePoint{"1": date("2025-04-01")}

	out, adj := vr.ResolveAdmissions(in, reg)

	assert.Equal(t, "2025-04-01", out[0].Admission.String())
	assert.True(t, out[1].Admission.IsZero(), "roster tier is not consulted once the registry matched someone")

	audit := vr.Audit{Adjustments: adj}
	assert.Equal(t, 1, audit.Count(vr.StageAdmission, vr.KindApplied, vr.TierRegistry))
	assert.Equal(t, 1, audit.Count(vr.StageAdmission, vr.KindUnresolved, "admission"))
}

func TestResolveAdmissions_RosterFallback(t *testing.T) {
	// GIVEN: A registry that matches nobody in the population
	// WHEN: Resolving admissions
	// THEN: The roster's own admission column is used as is

	in := vr.Table{
		{Matricula: "1", RosterAdmission: date("2020-01-01")},
		{Matricula: "2"},
	}
	reg := map[string]generic.TimePoint{"999": date("2025-04-01")}

	out, adj := vr.ResolveAdmissions(in, reg)

	assert.Equal(t, "2020-01-01", out[0].Admission.String())
	assert.True(t, out[1].Admission.IsZero())
	assert.Equal(t, 1, vr.Audit{Adjustments: adj}.Count(vr.StageAdmission, vr.KindApplied, vr.TierRoster))
}

func TestResolveAdmissions_NothingLeavesEmpty(t *testing.T) {
	out, adj := vr.ResolveAdmissions(vr.Table{{Matricula: "1"}}, nil)

	assert.True(t, out[0].Admission.IsZero())
	require.Len(t, adj, 1)
	assert.Equal(t, vr.KindUnresolved, adj[0].Kind)
}
