package vr

// =============================================================================
// AUDIT - Recoverable anomalies, counted per stage
// =============================================================================

// Kind classifies an audit adjustment.
type Kind string

const (
	// KindMissingSource: an optional source is absent or empty; the stage
	// used defaults.
	KindMissingSource Kind = "missing_source"

	// KindSchemaMismatch: a source is present but lacks a column the stage
	// needs; treated as a missing source for that feature.
	KindSchemaMismatch Kind = "schema_mismatch"

	// KindUnresolved: a row could not be resolved (state code, rate,
	// calendar entry, date) and took a default.
	KindUnresolved Kind = "unresolved"

	// KindDuplicate: a keyed source repeated a key; the first (or earliest)
	// occurrence won.
	KindDuplicate Kind = "duplicate"

	// KindExcluded: rows removed from the population.
	KindExcluded Kind = "excluded"

	// KindApplied: a rule fired (termination tags, admission tier used).
	KindApplied Kind = "applied"

	// KindRoundingDrift: shares differ from gross by one cent.
	KindRoundingDrift Kind = "rounding_drift"
)

// Stage names, in pipeline order.
const (
	StageIdentity    = "identity"
	StageExclusion   = "exclusion"
	StageRate        = "rate"
	StageCalendar    = "calendar"
	StageTermination = "termination"
	StageAdmission   = "admission"
	StageMoney       = "money"
)

// Adjustment is one audit counter emitted by a stage.
type Adjustment struct {
	Stage   string `json:"stage" db:"stage"`
	Kind    Kind   `json:"kind" db:"kind"`
	Subject string `json:"subject" db:"subject"`
	Count   int    `json:"count" db:"count"`
}

// Audit is the ordered trail of adjustments for one run.
type Audit struct {
	Adjustments []Adjustment
}

// Add appends adjustments in order.
func (a *Audit) Add(adj ...Adjustment) {
	a.Adjustments = append(a.Adjustments, adj...)
}

// Count sums the counters matching stage, kind and subject. An empty
// argument matches anything.
func (a Audit) Count(stage string, kind Kind, subject string) int {
	n := 0
	for _, adj := range a.Adjustments {
		if stage != "" && adj.Stage != stage {
			continue
		}
		if kind != "" && adj.Kind != kind {
			continue
		}
		if subject != "" && adj.Subject != subject {
			continue
		}
		n += adj.Count
	}
	return n
}

// Has reports whether any adjustment matches.
func (a Audit) Has(stage string, kind Kind, subject string) bool {
	for _, adj := range a.Adjustments {
		if (stage == "" || adj.Stage == stage) &&
			(kind == "" || adj.Kind == kind) &&
			(subject == "" || adj.Subject == subject) {
			return true
		}
	}
	return false
}

func adjust(stage string, kind Kind, subject string, count int) Adjustment {
	return Adjustment{Stage: stage, Kind: kind, Subject: subject, Count: count}
}
