package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/rehearse/internal/app"
)

// transcriptRequest carries one recognised chunk.
type transcriptRequest struct {
	Text string `json:"text"`
}

type ackResponse struct {
	Status string `json:"status"`
}

// SessionsHandler serves the interview session endpoints.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCreate handles POST /sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req service.CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.CreateSession(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleGet handles GET /sessions/{sessionID}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, "api.get_session", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleTranscript handles POST /sessions/{sessionID}/transcript.
func (h *SessionsHandler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	const op = "api.append_transcript"
	var req transcriptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.AppendTranscript(r.Context(), chi.URLParam(r, "sessionID"), req.Text); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "appended"})
}

// HandleAnswer handles POST /sessions/{sessionID}/answers. A retried
// answer_id is acknowledged with 200 and duplicate=true.
func (h *SessionsHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_answer"
	var req service.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sub, err := h.deps.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if sub.Duplicate {
		writeJSON(w, http.StatusOK, sub)
		return
	}
	writeJSON(w, http.StatusAccepted, sub)
}

// HandleSkip handles POST /sessions/{sessionID}/skip.
func (h *SessionsHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	sub, err := h.deps.SkipQuestion(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, "api.skip_question", err)
		return
	}
	writeJSON(w, http.StatusAccepted, sub)
}

// HandleFinish handles POST /sessions/{sessionID}/finish.
func (h *SessionsHandler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.FinishSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, "api.finish_session", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
