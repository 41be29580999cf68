package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/report"
)

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetRunRecord returns one employee's record.
// GET /api/runs/{id}/records/{matricula}
func (h *Handler) GetRunRecord(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.GetRunRecords(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get records", err)
		return
	}
	matricula := chi.URLParam(r, "matricula")
	rec, ok := report.Find(records, matricula)
	if !ok {
		writeDomainError(w, "Failed to get record", fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, matricula))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetRunSummary returns totals and the zero-VR breakdown.
// GET /api/runs/{id}/summary
func (h *Handler) GetRunSummary(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.GetRunRecords(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get records", err)
		return
	}
	writeJSON(w, http.StatusOK, report.Summarize(records))
}

// AggregateRun folds one column.
// GET /api/runs/{id}/aggregate?op=mean&column=VR_COLAB&positive=true
func (h *Handler) AggregateRun(w http.ResponseWriter, r *http.Request) {
	q := AggregateQuery{Op: "sum", Column: string(report.ColGross)}
	params := r.URL.Query()
	override(&q.Op, params.Get("op"))
	override(&q.Column, params.Get("column"))
	if v := params.Get("positive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid positive", err)
			return
		}
		q.Positive = b
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	records, err := h.Store.GetRunRecords(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get records", err)
		return
	}
	agg, err := report.Aggregate(records, report.Op(q.Op), report.Column(q.Column), q.Positive)
	if err != nil {
		writeDomainError(w, "Aggregation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// TopRun ranks groups.
// GET /api/runs/{id}/top?by=SINDICATO&k=5&op=sum&column=VR_COLAB&order=desc
func (h *Handler) TopRun(w http.ResponseWriter, r *http.Request) {
	q := TopQuery{Op: "sum", Column: string(report.ColGross), By: string(report.BySindicato), K: 5, Order: "desc"}
	params := r.URL.Query()
	override(&q.Op, params.Get("op"))
	override(&q.Column, params.Get("column"))
	override(&q.By, params.Get("by"))
	override(&q.Order, params.Get("order"))
	if v := params.Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid k", err)
			return
		}
		q.K = k
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	records, err := h.Store.GetRunRecords(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get records", err)
		return
	}
	groups, err := report.Top(records, report.Op(q.Op), report.Column(q.Column), report.GroupBy(q.By), q.K, q.Order == "asc")
	if err != nil {
		writeDomainError(w, "Ranking failed", err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// GetRules describes the rules new runs apply.
// GET /api/rules
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.DescribeRules(h.Runner.Rules()))
}

// override replaces a default with a non-empty query value.
func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
