package vr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/vr-engine/generic"
)

// =============================================================================
// IDENTITY NORMALIZER
// =============================================================================

// NormalizeMatricula canonicalizes an employee identifier so the same person
// joins across sources: "00123", "123", "123.0" and " 123 " all become "123".
// Total: an empty or all-zero input becomes "0".
func NormalizeMatricula(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".0")
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}

// MatriculaOf normalizes an identifier of any scalar type. Spreadsheet
// readers hand back floats for numeric columns, hence the float cases.
func MatriculaOf(v any) string {
	switch x := v.(type) {
	case nil:
		return NormalizeMatricula("")
	case string:
		return NormalizeMatricula(x)
	case int:
		return NormalizeMatricula(strconv.Itoa(x))
	case int64:
		return NormalizeMatricula(strconv.FormatInt(x, 10))
	case float64:
		return NormalizeMatricula(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		return NormalizeMatricula(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case decimal.Decimal:
		return NormalizeMatricula(x.String())
	case fmt.Stringer:
		return NormalizeMatricula(x.String())
	default:
		return NormalizeMatricula(fmt.Sprint(x))
	}
}

// idSet collects the normalized identifiers of a table. ok is false when the
// table is absent or has no identifier column.
func idSet(t *generic.Table) (ids map[string]struct{}, ok bool) {
	if t == nil || !t.Has(ColMatricula) {
		return nil, false
	}
	ids = make(map[string]struct{}, t.Len())
	for _, row := range t.Rows {
		raw := row.Get(ColMatricula)
		if raw == "" {
			continue
		}
		ids[NormalizeMatricula(raw)] = struct{}{}
	}
	return ids, true
}
