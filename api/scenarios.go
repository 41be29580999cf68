/*
scenarios.go - Demo months for testing and demonstrations

PURPOSE:

	Provides pre-built months that run through the real engine and land in
	the run store, so the API can be explored without spreadsheets. Each
	scenario shows one part of the pipeline.

AVAILABLE SCENARIOS:

	reference:    One São Paulo employee, 22 days, 2 vacation days, 35.00/day
	exclusions:   Apprentice, intern, expatriate and no-purchase removals
	terminations: Exits on or before the 15th, after the 15th, unconfirmed
	admissions:   Registry date beats roster date; roster as fallback

HOW SCENARIOS WORK:
 1. Reset the run store
 2. Build the month's sources in memory
 3. Run them through the batch runner (no files written)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "terminations"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' with ID, name, description and a sources builder

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Run endpoints to inspect the result
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/warp/vr-engine/batch"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/vr"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	period  string
	sources func() []vr.Source
}

const (
	unionSP = "SINDPD SP - SIND.TRAB.EM PROC DADOS E EMPR.EMPRESAS PROC DADOS ESTADO DE SP."
	unionRJ = "SINDPD RJ - SINDICATO PROFISSIONAIS DE PROC DADOS DO RIO DE JANEIRO"
	unionPR = "SITEPD PR - SIND DOS TRAB EM EMPR PRIVADAS DE PROC DE DADOS DE CURITIBA E REGIAO METROPOLITANA"
)

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "reference",
			Name:        "Reference Month",
			Description: "One São Paulo employee: 22 working days, 2 vacation days, 35.00/day, 80/20 split",
		},
		period:  "05/2025",
		sources: referenceSources,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "exclusions",
			Name:        "Exclusions",
			Description: "Apprentice, intern, expatriate and no-purchase absences removed before pricing",
		},
		period:  "05/2025",
		sources: exclusionSources,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "terminations",
			Name:        "Terminations",
			Description: "Exit on the 10th forfeits the month, exit on the 20th keeps 4/10 of it, unconfirmed exit ignored",
		},
		period:  "06/2024",
		sources: terminationSources,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "admissions",
			Name:        "Admissions",
			Description: "Admission date from the monthly registry, else from the roster",
		},
		period:  "05/2025",
		sources: admissionSources,
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCurrentScenario returns the last loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario resets the store and runs a demo month.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	outcome, err := h.Runner.Run(ctx, batch.Request{
		Sources:     s.sources(),
		PeriodLabel: s.period,
		Origin:      "scenario:" + s.ID,
	})
	if err != nil {
		writeDomainError(w, "Scenario run failed", err)
		return
	}
	h.currentScenario = s.ID

	h.log.Info().Str("scenario", s.ID).Str("run_id", outcome.Run.ID).Msg("scenario loaded")

	writeJSON(w, http.StatusOK, ScenarioLoadedResponse{
		Scenario: s.ScenarioDTO,
		Run:      RunDTO{Run: *outcome.Run, Adjustments: outcome.Result.Audit.Adjustments},
	})
}

// ResetStore clears every stored run.
// POST /api/scenarios/reset
func (h *Handler) ResetStore(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO DATA
// =============================================================================

func table(name string, columns []string, rows ...[]string) *generic.Table {
	return generic.NewTable(name, columns, rows)
}

// monthBase is the roster-independent reference data shared by every month.
func monthBase() []vr.Source {
	return []vr.Source{
		{Name: "Base sindicato x valor", Role: vr.RoleRate, Table: table("Base sindicato x valor",
			[]string{"ESTADO", "VALOR"},
			[]string{"São Paulo", "R$ 35,00"},
			[]string{"Rio de Janeiro", "R$ 36,50"},
			[]string{"Paraná", "R$ 35,00"},
		)},
		{Name: "Base dias uteis", Role: vr.RoleCalendar, Table: table("Base dias uteis",
			[]string{"SINDICATO", "DIAS_UTEIS"},
			[]string{unionSP, "22"},
			[]string{unionRJ, "21"},
			[]string{unionPR, "22"},
		)},
	}
}

func referenceSources() []vr.Source {
	return append(monthBase(),
		vr.Source{Name: "ATIVOS", Role: vr.RoleRoster, Table: table("ATIVOS",
			[]string{"MATRICULA", "EMPRESA", "SINDICATO"},
			[]string{"00042", "1410", unionSP},
		)},
		vr.Source{Name: "FERIAS", Role: vr.RoleVacation, Table: table("FERIAS",
			[]string{"MATRICULA", "DIAS_DE_FERIAS"},
			[]string{"42", "1"},
			[]string{"42.0", "1"},
		)},
	)
}

func exclusionSources() []vr.Source {
	return append(monthBase(),
		vr.Source{Name: "ATIVOS", Role: vr.RoleRoster, Table: table("ATIVOS",
			[]string{"MATRICULA", "EMPRESA", "SINDICATO"},
			[]string{"100", "1410", unionSP},
			[]string{"101", "1410", unionSP},
			[]string{"102", "1410", unionRJ},
			[]string{"103", "1410", unionRJ},
			[]string{"104", "1410", unionPR},
		)},
		vr.Source{Name: "APRENDIZ", Role: vr.RoleApprentice, Table: table("APRENDIZ",
			[]string{"MATRICULA", "TITULO_DO_CARGO"},
			[]string{"101", "APRENDIZ"},
		)},
		vr.Source{Name: "ESTAGIO", Role: vr.RoleIntern, Table: table("ESTAGIO",
			[]string{"MATRICULA", "TITULO_DO_CARGO"},
			[]string{"102", "ESTAGIARIO"},
		)},
		vr.Source{Name: "EXTERIOR", Role: vr.RoleExpatriate, Table: table("EXTERIOR",
			[]string{"MATRICULA", "VALOR"},
			[]string{"103", "1000"},
		)},
		vr.Source{Name: "AFASTAMENTOS", Role: vr.RoleAbsence, Table: table("AFASTAMENTOS",
			[]string{"MATRICULA", "DESC_SITUACAO", "NA_COMPRA"},
			[]string{"104", "Licença Maternidade", "NÃO"},
		)},
	)
}

func terminationSources() []vr.Source {
	return append(monthBase(),
		vr.Source{Name: "ATIVOS", Role: vr.RoleRoster, Table: table("ATIVOS",
			[]string{"MATRICULA", "EMPRESA", "SINDICATO"},
			[]string{"200", "1410", unionRJ},
			[]string{"201", "1410", unionRJ},
			[]string{"202", "1410", unionRJ},
			[]string{"203", "1410", unionRJ},
		)},
		vr.Source{Name: "DESLIGADOS", Role: vr.RoleTermination, Table: table("DESLIGADOS",
			[]string{"MATRICULA", "DATA_DEMISSAO", "COMUNICADO_DE_DESLIGAMENTO"},
			[]string{"200", "2024-06-10", "OK"},
			[]string{"201", "2024-06-20", "OK"},
			[]string{"202", "2024-06-05", "Talvez"},
		)},
	)
}

func admissionSources() []vr.Source {
	return append(monthBase(),
		vr.Source{Name: "ATIVOS", Role: vr.RoleRoster, Table: table("ATIVOS",
			[]string{"MATRICULA", "EMPRESA", "SINDICATO", "DATA_ADMISSAO"},
			[]string{"300", "1410", unionPR, "2025-01-10"},
			[]string{"301", "1410", unionPR, "2025-02-03"},
			[]string{"302", "1410", unionPR, ""},
		)},
		vr.Source{Name: "ADMISSAO ABRIL", Role: vr.RoleAdmission, Table: table("ADMISSAO ABRIL",
			[]string{"MATRICULA", "ADMISSAO"},
			[]string{"300", "2025-04-14"},
		)},
	)
}
