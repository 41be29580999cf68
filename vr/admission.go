package vr

import (
	"strings"

	"github.com/warp/vr-engine/generic"
)

// =============================================================================
// ADMISSION RESOLVER
// =============================================================================

// admissionAliases are compacted column names accepted as an admission date
// in registry sources. Anything containing admissionStem is accepted too.
var admissionAliases = []string{
	"ADMISSAO", "ADMISSAOABRIL", "DATAADMISSAO", "DATAADMISSAOABRIL", "DTADMISSAO",
}

const admissionStem = "ADMIS"

// RosterAdmissionColumns are the roster columns used when the registry
// yields nothing, in priority order.
var RosterAdmissionColumns = []string{
	"ADMISSAO", "ADMISSÃO", "DATA_ADMISSAO", "DATA ADMISSAO", "DT_ADMISSAO",
}

// Admission tiers, reported in the audit.
const (
	TierRegistry = "registry"
	TierRoster   = "roster"
)

// DetectAdmissionColumn finds the admission-date column of a registry
// source: an exact alias once names are compacted, else the first name
// containing the stem.
func DetectAdmissionColumn(t *generic.Table) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, col := range t.Columns {
		c := generic.Compact(col)
		for _, alias := range admissionAliases {
			if c == alias {
				return col, true
			}
		}
	}
	for _, col := range t.Columns {
		if strings.Contains(generic.Compact(col), admissionStem) {
			return col, true
		}
	}
	return "", false
}

// AdmissionRegistry merges every admission source and keeps the earliest
// dated record per identifier. Sources without MATRICULA or an admission
// column are skipped.
func AdmissionRegistry(sources []*generic.Table) (map[string]generic.TimePoint, []Adjustment) {
	reg := map[string]generic.TimePoint{}
	if len(sources) == 0 {
		return reg, []Adjustment{adjust(StageAdmission, KindMissingSource, "admission", 1)}
	}

	var skipped, undated int
	for _, t := range sources {
		col, ok := DetectAdmissionColumn(t)
		if !ok || !t.Has(ColMatricula) {
			skipped++
			continue
		}
		for _, row := range t.Rows {
			raw := row.Get(ColMatricula)
			if raw == "" {
				continue
			}
			date, ok := generic.ParseDate(row.Get(col))
			if !ok {
				undated++
				continue
			}
			id := NormalizeMatricula(raw)
			if prev, seen := reg[id]; !seen || date.Before(prev) {
				reg[id] = date
			}
		}
	}

	var adj []Adjustment
	if skipped > 0 {
		adj = append(adj, adjust(StageAdmission, KindSchemaMismatch, "admission", skipped))
	}
	if undated > 0 {
		adj = append(adj, adjust(StageAdmission, KindUnresolved, "admission_date", undated))
	}
	return reg, adj
}

// ResolveAdmissions fills the admission date. The registry is tried first;
// the roster's own column is used only when the registry matched nobody.
// Without either the field stays empty.
func ResolveAdmissions(in Table, registry map[string]generic.TimePoint) (Table, []Adjustment) {
	out := in.Clone()

	fromRegistry := func() (string, bool) {
		hit := false
		for i := range out {
			if d, ok := registry[out[i].Matricula]; ok {
				out[i].Admission = d
				hit = true
			}
		}
		return TierRegistry, hit
	}
	fromRoster := func() (string, bool) {
		hit := false
		for i := range out {
			if !out[i].RosterAdmission.IsZero() {
				out[i].Admission = out[i].RosterAdmission
				hit = true
			}
		}
		return TierRoster, hit
	}

	tier, ok := generic.FirstPresent(fromRegistry, fromRoster)
	if !ok {
		return out, []Adjustment{adjust(StageAdmission, KindUnresolved, "admission", len(out))}
	}

	filled := 0
	for _, e := range out {
		if !e.Admission.IsZero() {
			filled++
		}
	}
	return out, []Adjustment{
		adjust(StageAdmission, KindApplied, tier, filled),
		adjust(StageAdmission, KindUnresolved, "admission", len(out)-filled),
	}
}
