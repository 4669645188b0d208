package api

import (
	"net/http"

	service "github.com/okian/rehearse/internal/app"
)

// GradingHandler serves the stateless grading endpoints.
type GradingHandler struct {
	deps GradingDependencies
}

// NewGradingHandler creates a new grading handler.
func NewGradingHandler(deps GradingDependencies) *GradingHandler {
	return &GradingHandler{deps: deps}
}

// HandleRoles handles GET /roles.
func (h *GradingHandler) HandleRoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Roles())
}

// HandleGrade handles POST /grade.
func (h *GradingHandler) HandleGrade(w http.ResponseWriter, r *http.Request) {
	const op = "api.grade"
	var req service.GradeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Grade(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleRelevance handles POST /relevance. The body and response follow
// the enhanced scoring service contract.
func (h *GradingHandler) HandleRelevance(w http.ResponseWriter, r *http.Request) {
	const op = "api.relevance"
	var req service.RelevanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Relevance(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
