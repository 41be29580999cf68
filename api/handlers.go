/*
handlers.go - HTTP API handlers for the consolidation engine

PURPOSE:
  Exposes runs over REST. Handles HTTP request/response, JSON
  serialization, and delegates to the batch runner and the run store.

ENDPOINTS:
  Runs:
    POST   /api/runs                   Run the month from an input dir
    GET    /api/runs                   List runs, newest first (?limit=)
    GET    /api/runs/{id}              Run header and audit trail
    GET    /api/runs/{id}/records      Technical table (JSON)
    GET    /api/runs/{id}/adjustments  Audit trail
    GET    /api/runs/{id}/export       Export layout (CSV)

  Reports (reports.go):
    GET    /api/runs/{id}/records/{matricula}  One employee
    GET    /api/runs/{id}/summary              Totals and zero-VR causes
    GET    /api/runs/{id}/aggregate            ?op=&column=&positive=
    GET    /api/runs/{id}/top                  ?by=&k=&op=&column=&order=
    GET    /api/rules                          Split and exit rules

  Probes:
    GET    /api/uf?sindicato=          State code resolution
    GET    /api/health                 Liveness

  Scenarios:
    GET    /api/scenarios              List demo months
    POST   /api/scenarios/load         Run a demo month

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid configuration, missing roster
  - 404: Run or employee not found
  - 409: Output not writable (neither target nor _NEW alternate)
  - 500: Internal errors, invariant violations

SECURITY NOTE:
  No authentication. Client-supplied input_dir/output_dir are resolved
  against the configured roots and rejected (400) when they escape them.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo months
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/vr-engine/batch"
	"github.com/warp/vr-engine/factory"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/logger"
	"github.com/warp/vr-engine/source"
	"github.com/warp/vr-engine/store/sqlite"
	"github.com/warp/vr-engine/vr"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// HealthChecker reports the status of an optional dependency.
type HealthChecker interface {
	Health() map[string]string
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Runner *batch.Runner
	Layout *factory.Layout

	// Broker is checked by /api/health when set.
	Broker HealthChecker

	// Roots for run requests. Requested dirs must resolve inside them;
	// an empty request uses the root itself.
	InputDir  string
	OutputDir string

	log *logger.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler. A nil layout means the canonical one.
func NewHandler(store *sqlite.Store, runner *batch.Runner, layout *factory.Layout, log *logger.Logger) *Handler {
	if layout == nil {
		layout = factory.DefaultLayout()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		Store:  store,
		Runner: runner,
		Layout: layout,
		log:    log.WithComponent("api"),
	}
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// CreateRun runs the month and stores it.
// POST /api/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	in, err := underRoot(h.InputDir, req.InputDir)
	if err != nil {
		writeDomainError(w, "Invalid input_dir", err)
		return
	}
	out, err := underRoot(h.OutputDir, req.OutputDir)
	if err != nil {
		writeDomainError(w, "Invalid output_dir", err)
		return
	}

	outcome, err := h.Runner.Run(r.Context(), batch.Request{
		InputDir:    in,
		OutputDir:   out,
		PeriodLabel: req.PeriodLabel,
	})
	if err != nil {
		writeDomainError(w, "Run failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, RunDTO{Run: *outcome.Run, Adjustments: outcome.Result.Audit.Adjustments})
}

// ListRuns returns stored runs.
// GET /api/runs?limit=20
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	var q ListRunsQuery
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		q.Limit = n
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	runs, err := h.Store.ListRuns(r.Context(), q.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun returns a run header with its audit trail.
// GET /api/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.Store.GetRun(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get run", err)
		return
	}
	adj, err := h.Store.GetRunAdjustments(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get adjustments", err)
		return
	}
	writeJSON(w, http.StatusOK, RunDTO{Run: *run, Adjustments: adj})
}

// GetRunRecords returns the technical table.
// GET /api/runs/{id}/records
func (h *Handler) GetRunRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.GetRunRecords(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get records", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetRunAdjustments returns the audit trail.
// GET /api/runs/{id}/adjustments
func (h *Handler) GetRunAdjustments(w http.ResponseWriter, r *http.Request) {
	adj, err := h.Store.GetRunAdjustments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get adjustments", err)
		return
	}
	writeJSON(w, http.StatusOK, adj)
}

// ExportRun re-projects a stored run through the export layout.
// GET /api/runs/{id}/export
func (h *Handler) ExportRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	records, err := h.Store.GetRunRecords(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get records", err)
		return
	}
	export, err := h.Layout.Project(records)
	if err != nil {
		writeDomainError(w, "Failed to project export", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="VR_MENSAL_`+id+`.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := source.EncodeExport(w, export); err != nil {
		h.log.Error().Err(err).Str("run_id", id).Msg("export write failed")
	}
}

// =============================================================================
// PROBES
// =============================================================================

// ResolveUF reports the state code a union name resolves to.
// GET /api/uf?sindicato=...
func (h *Handler) ResolveUF(w http.ResponseWriter, r *http.Request) {
	sindicato := r.URL.Query().Get("sindicato")
	if sindicato == "" {
		writeError(w, http.StatusBadRequest, "sindicato is required", nil)
		return
	}
	uf, ok := vr.UFFromSindicato(sindicato)
	writeJSON(w, http.StatusOK, UFDTO{Sindicato: sindicato, UF: uf, Resolved: ok})
}

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "up"}
	healthy := true
	if _, err := h.Store.ListRuns(r.Context(), 1); err != nil {
		checks["store"] = "down"
		healthy = false
	}
	if h.Broker != nil {
		checks["broker"] = h.Broker.Health()["status"]
		healthy = healthy && checks["broker"] == "up"
	}

	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, HealthDTO{Status: "degraded", Checks: checks})
		return
	}
	writeJSON(w, http.StatusOK, HealthDTO{Status: "ok", Checks: checks})
}

// =============================================================================
// HELPERS
// =============================================================================

// underRoot resolves a requested directory against root. Relative paths are
// taken from root, and the result must not leave it. Empty means root.
func underRoot(root, requested string) (string, error) {
	if requested == "" {
		return root, nil
	}
	if root == "" {
		return "", fmt.Errorf("%w: %s (no root configured)", generic.ErrPathOutsideRoot, requested)
	}
	base, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := requested
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", generic.ErrPathOutsideRoot, requested)
	}
	return target, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine and store errors to a status and code.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case generic.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, generic.ErrWriteConflict):
		status, code = http.StatusConflict, "write_conflict"
	case generic.IsClientError(err), errors.Is(err, fs.ErrNotExist):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, generic.ErrInvariantViolation):
		code = "invariant_violation"
	}
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: err.Error()})
}
