/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Run headers, records
  and adjustments are served as stored; requests are validated with
  go-playground/validator struct tags before anything runs.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Wrappers

SEE ALSO:
  - handlers.go: Uses these types
  - store/sqlite/sqlite.go: Run, stored records
*/
package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/warp/vr-engine/store/sqlite"
	"github.com/warp/vr-engine/vr"
)

var validate = validator.New()

// =============================================================================
// REQUESTS
// =============================================================================

// CreateRunRequest starts a run. Directories are relative to (or must lie
// within) the configured roots; empty ones mean the roots themselves.
type CreateRunRequest struct {
	InputDir    string `json:"input_dir" validate:"omitempty,max=1024"`
	OutputDir   string `json:"output_dir" validate:"omitempty,max=1024"`
	PeriodLabel string `json:"period_label" validate:"omitempty,max=32"`
}

// LoadScenarioRequest runs a built-in demo month.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ListRunsQuery is parsed from the query string.
type ListRunsQuery struct {
	Limit int `validate:"min=0,max=1000"`
}

// AggregateQuery is parsed from the query string of /aggregate.
type AggregateQuery struct {
	Op       string `validate:"oneof=sum mean min max count"`
	Column   string `validate:"oneof=VR_COLAB VR_EMPRESA VR_PROFISSIONAL VALOR_UNITARIO DIAS_ELEGIVEIS DIAS_UTEIS DIAS_DE_FERIAS"`
	Positive bool
}

// TopQuery is parsed from the query string of /top. K <= 0 means all groups.
type TopQuery struct {
	Op     string `validate:"oneof=sum mean min max count"`
	Column string `validate:"oneof=VR_COLAB VR_EMPRESA VR_PROFISSIONAL VALOR_UNITARIO DIAS_ELEGIVEIS DIAS_UTEIS DIAS_DE_FERIAS"`
	By     string `validate:"oneof=SINDICATO MATRICULA UF_BASE EMPRESA"`
	K      int    `validate:"min=0,max=1000"`
	Order  string `validate:"oneof=asc desc"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// RunDTO is a run header plus its audit trail.
type RunDTO struct {
	sqlite.Run
	Adjustments []vr.Adjustment `json:"adjustments,omitempty"`
}

// UFDTO is the result of a state-code probe.
type UFDTO struct {
	Sindicato string `json:"sindicato"`
	UF        string `json:"uf"`
	Resolved  bool   `json:"resolved"`
}

// ScenarioDTO describes a demo month.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScenarioLoadedResponse is returned after a scenario ran.
type ScenarioLoadedResponse struct {
	Scenario ScenarioDTO `json:"scenario"`
	Run      RunDTO      `json:"run"`
}

// HealthDTO reports liveness.
type HealthDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
