package vr

import (
	"regexp"
	"sort"
	"strings"

	"github.com/warp/vr-engine/generic"
)

// =============================================================================
// STATE CODE (UF) RESOLUTION
// =============================================================================

// ufCodes is the set of the 27 Brazilian state codes.
var ufCodes = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {},
	"ES": {}, "GO": {}, "MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {},
	"PB": {}, "PR": {}, "PE": {}, "PI": {}, "RJ": {}, "RN": {}, "RS": {},
	"RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

type stateName struct {
	compact string // accent-stripped, uppercased, no spaces
	code    string
}

// stateNames is ordered longest name first so that a contained name never
// shadows a longer one containing it (PARA inside PARANA, MATOGROSSO inside
// MATOGROSSODOSUL).
var stateNames = func() []stateName {
	names := []stateName{
		{"ACRE", "AC"}, {"ALAGOAS", "AL"}, {"AMAPA", "AP"}, {"AMAZONAS", "AM"},
		{"BAHIA", "BA"}, {"CEARA", "CE"}, {"DISTRITOFEDERAL", "DF"},
		{"ESPIRITOSANTO", "ES"}, {"GOIAS", "GO"}, {"MARANHAO", "MA"},
		{"MATOGROSSO", "MT"}, {"MATOGROSSODOSUL", "MS"}, {"MINASGERAIS", "MG"},
		{"PARA", "PA"}, {"PARAIBA", "PB"}, {"PARANA", "PR"}, {"PERNAMBUCO", "PE"},
		{"PIAUI", "PI"}, {"RIODEJANEIRO", "RJ"}, {"RIOGRANDEDONORTE", "RN"},
		{"RIOGRANDEDOSUL", "RS"}, {"RONDONIA", "RO"}, {"RORAIMA", "RR"},
		{"SANTACATARINA", "SC"}, {"SAOPAULO", "SP"}, {"SERGIPE", "SE"},
		{"TOCANTINS", "TO"},
	}
	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i].compact) > len(names[j].compact)
	})
	return names
}()

var (
	nonWord     = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	boilerplate = regexp.MustCompile(`(SINDICATO|SIND|TRABALHADOR(ES)?|TRAB|RURAL(IS)?|URBANO(S)?|INDUSTRIA(L)?|COMERCIO|SERVICO(S)?|PROC(ESSO)?(S)?|DADOS)`)
)

// IsUF reports whether s is one of the 27 state codes.
func IsUF(s string) bool {
	_, ok := ufCodes[s]
	return ok
}

// UFFromSindicato extracts a state code from free union-name text. The
// tiers run in order and the first hit wins:
//
//  1. any word token that is exactly a state code ("SINDPD SP")
//  2. the last two characters of the text ("...DE SAO PAULO - SP")
//  3. a full state name inside the text once boilerplate words are removed
//
// Tier 2 trusts any name that happens to end in a code ("... DO AMAPA"
// resolves to PA); that ordering is kept for compatibility.
func UFFromSindicato(text string) (string, bool) {
	t := generic.Upper(text)
	if t == "" {
		return "", false
	}
	return generic.FirstPresent(
		func() (string, bool) { return ufFromTokens(t) },
		func() (string, bool) { return ufFromSuffix(t) },
		func() (string, bool) { return ufFromStateName(t) },
	)
}

func ufFromTokens(t string) (string, bool) {
	for _, tok := range nonWord.Split(t, -1) {
		if IsUF(tok) {
			return tok, true
		}
	}
	return "", false
}

func ufFromSuffix(t string) (string, bool) {
	r := []rune(t)
	if len(r) < 2 {
		return "", false
	}
	tail := string(r[len(r)-2:])
	if IsUF(tail) {
		return tail, true
	}
	return "", false
}

func ufFromStateName(t string) (string, bool) {
	s := strings.ReplaceAll(generic.StripAccents(t), " ", "")
	s = boilerplate.ReplaceAllString(s, "")
	for _, n := range stateNames {
		if strings.Contains(s, n.compact) {
			return n.code, true
		}
	}
	return "", false
}

// StateNameToUF maps a full state name ("São Paulo", "rio grande do sul")
// to its code by exact match, ignoring case, accents and spaces. A value
// that already is a code is returned as is.
func StateNameToUF(name string) (string, bool) {
	c := strings.ReplaceAll(generic.Compact(name), "-", "")
	if c == "" {
		return "", false
	}
	if IsUF(c) {
		return c, true
	}
	for _, n := range stateNames {
		if n.compact == c {
			return n.code, true
		}
	}
	return "", false
}
