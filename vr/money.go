package vr

import (
	"github.com/warp/vr-engine/generic"
)

// ComputeAmounts prices every employee:
//
//	gross    = round(eligible x rate, 2)
//	employer = round(gross x employer pct, 2)
//	employee = round(gross x employee pct, 2)
//
// The shares are rounded independently of each other. A one-cent gap
// between their sum and gross is kept and counted, not corrected.
func ComputeAmounts(in Table, rules Rules) (Table, []Adjustment) {
	out := in.Clone()
	drift := 0

	for i := range out {
		e := &out[i]
		e.Gross = generic.RoundCents(e.EligibleDays.Mul(e.DailyRate))
		e.EmployerShare = generic.RoundCents(e.Gross.Mul(rules.EmployerPct))
		e.EmployeeShare = generic.RoundCents(e.Gross.Mul(rules.EmployeePct))
		if !e.EmployerShare.Add(e.EmployeeShare).Equal(e.Gross) {
			drift++
		}
	}

	return out, []Adjustment{adjust(StageMoney, KindRoundingDrift, "shares", drift)}
}
