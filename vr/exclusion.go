package vr

import (
	"github.com/warp/vr-engine/generic"
)

// =============================================================================
// EXCLUSION FILTER
// =============================================================================

// Exclusion categories, in the order they are applied.
const (
	CategoryApprentice = "apprentice"
	CategoryIntern     = "intern"
	CategoryExpatriate = "expatriate"
	CategoryNoPurchase = "no_purchase"
)

// noPurchase lists the NA_COMPRA values that mark an absent employee as not
// receiving the benefit. Folding covers "Não", "nao", "false" and so on.
var noPurchase = generic.NewFoldSet("NAO", "FALSE", "0")

// ExclusionSet is a category of identifiers to subtract from the population.
type ExclusionSet struct {
	Category string
	IDs      map[string]struct{}
}

// Contains reports whether a normalized identifier is excluded.
func (s ExclusionSet) Contains(matricula string) bool {
	_, ok := s.IDs[matricula]
	return ok
}

// Len returns the number of distinct identifiers in the set.
func (s ExclusionSet) Len() int { return len(s.IDs) }

// ExclusionFromTable builds a presence-based exclusion set. An absent table
// or one without MATRICULA yields an empty set.
func ExclusionFromTable(category string, t *generic.Table) (ExclusionSet, []Adjustment) {
	set := ExclusionSet{Category: category, IDs: map[string]struct{}{}}
	if t == nil {
		return set, []Adjustment{adjust(StageExclusion, KindMissingSource, category, 1)}
	}
	ids, ok := idSet(t)
	if !ok {
		return set, []Adjustment{adjust(StageExclusion, KindSchemaMismatch, category, 1)}
	}
	set.IDs = ids
	return set, nil
}

// NoPurchaseFromAbsences builds the exclusion set from the absence source.
// Only rows whose NA_COMPRA flag folds into {NAO, FALSE, 0} contribute; bare
// presence in the absence table is not enough.
func NoPurchaseFromAbsences(t *generic.Table) (ExclusionSet, []Adjustment) {
	set := ExclusionSet{Category: CategoryNoPurchase, IDs: map[string]struct{}{}}
	if t == nil {
		return set, []Adjustment{adjust(StageExclusion, KindMissingSource, CategoryNoPurchase, 1)}
	}
	if !t.Has(ColMatricula, ColNaCompra) {
		return set, []Adjustment{adjust(StageExclusion, KindSchemaMismatch, CategoryNoPurchase, 1)}
	}
	for _, row := range t.Rows {
		raw := row.Get(ColMatricula)
		if raw == "" || !noPurchase.Has(row.Get(ColNaCompra)) {
			continue
		}
		set.IDs[NormalizeMatricula(raw)] = struct{}{}
	}
	return set, nil
}

// ApplyExclusions removes every employee found in any set. Sets are applied
// in order, so an employee listed in two categories is counted once, under
// the first. One KindExcluded adjustment per set, zero counts included.
func ApplyExclusions(in Table, sets ...ExclusionSet) (Table, []Adjustment) {
	removed := make([]int, len(sets))
	out := make(Table, 0, len(in))

rows:
	for _, e := range in {
		for i, s := range sets {
			if s.Contains(e.Matricula) {
				removed[i]++
				continue rows
			}
		}
		out = append(out, e)
	}

	adj := make([]Adjustment, 0, len(sets))
	for i, s := range sets {
		adj = append(adj, adjust(StageExclusion, KindExcluded, s.Category, removed[i]))
	}
	return out, adj
}
