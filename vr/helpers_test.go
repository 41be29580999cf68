package vr_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/vr-engine/generic"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func tbl(name string, header []string, rows ...[]string) *generic.Table {
	return generic.NewTable(name, header, rows)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func date(s string) generic.TimePoint {
	tp, ok := generic.ParseDate(s)
	if !ok {
		panic("bad test date " + s)
	}
	return tp
}
