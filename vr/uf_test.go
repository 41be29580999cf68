package vr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/vr-engine/vr"
)

// =============================================================================
// UF FROM UNION TEXT
// =============================================================================

func TestUFFromSindicato(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string // "" means unresolved
	}{
		// Token tier
		{"code token", "SINDPD SP - SIND EMPREGADOS EM EMPRESAS PROC DADOS SAO PAULO", "SP"},
		{"code token after acronym", "SITEPD PR - SIND DOS TRAB EM EMPR PRIVADAS DE PROC DE DADOS DE CURITIBA", "PR"},
		{"code token with punctuation", "SINDPPD RS - SINDICATO DOS TRAB. EM PROC. DE DADOS RIO GRANDE DO SUL", "RS"},
		{"lowercase input", "sindpd sp - sindicato de sao paulo", "SP"},

		// Suffix tier
		{"suffix glued to acronym", "SINDICATO SINDPDBA", "BA"},

		// State name tier
		{"full name", "SIND DOS EMPREGADOS DE SAO PAULO", "SP"},
		{"accented full name", "SINDICATO DOS EMPREGADOS DE SÃO PAULO", "SP"},
		{"boilerplate stripped", "SINDICATO DOS TRAB. EM PROC DE DADOS DE SAO PAULO", "SP"},
		{"longest name wins over PARA", "SINDICATO DOS COMERCIARIOS DO PARANA", "PR"},
		{"longest name wins over MATO GROSSO", "SIND TRAB MATO GROSSO DO SUL", "MS"},
		{"plain mato grosso", "SIND TRAB MATO GROSSO", "MT"},
		{"two-word state", "SINDICATO DOS BANCARIOS DE MINAS GERAIS", "MG"},

		// Unresolved
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"no state at all", "ASSOCIACAO DOS EMPREGADOS", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := vr.UFFromSindicato(tt.text)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUFFromSindicato_KnownCollisions(t *testing.T) {
	// GIVEN: Union names whose last two letters happen to be a state code,
	//        or that carry a two-letter word equal to a code
	// WHEN: Resolving them
	// THEN: The earlier tier wins, even though the intended state differs

	tests := []struct {
		name     string
		text     string
		want     string
		intended string
	}{
		{"amapa ends in PA", "SINDICATO DOS TRABALHADORES DO AMAPA", "PA", "AP"},
		{"rio de janeiro ends in RO", "SINDICATO DOS TRABALHADORES EM PROCESSAMENTO DE DADOS DO RIO DE JANEIRO", "RO", "RJ"},
		{"espirito santo ends in TO", "SINDICATO DO ESPIRITO SANTO", "TO", "ES"},
		{"geral ends in AL", "SINDICATO GERAL", "AL", ""},
		{"SE word is a token", "TRABALHADORES QUE SE UNEM EM MINAS GERAIS", "SE", "MG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := vr.UFFromSindicato(tt.text)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, tt.intended, got)
		})
	}
}

func TestUFFromSindicato_Pure(t *testing.T) {
	text := "SINDICATO DOS TRAB. EM PROC DE DADOS DE SAO PAULO"

	first, _ := vr.UFFromSindicato(text)
	for i := 0; i < 50; i++ {
		got, _ := vr.UFFromSindicato(text)
		assert.Equal(t, first, got, "same text must resolve the same way on every call")
	}
}

// =============================================================================
// STATE NAME TO UF
// =============================================================================

func TestStateNameToUF(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"São Paulo", "SP"},
		{"SAO PAULO", "SP"},
		{"rio grande do sul", "RS"},
		{"Rio Grande do Norte", "RN"},
		{"Paraná", "PR"},
		{"Pará", "PA"},
		{"Paraíba", "PB"},
		{"Mato Grosso", "MT"},
		{"Mato Grosso do Sul", "MS"},
		{"Distrito Federal", "DF"},
		{"SP", "SP"},
		{"Atlantis", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := vr.StateNameToUF(tt.in)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStateNameToUF_ExactMatchOnly(t *testing.T) {
	// A union-like string containing a state name is not a state name.
	_, ok := vr.StateNameToUF("SINDICATO DE SAO PAULO")
	assert.False(t, ok)
}
