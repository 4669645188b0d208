// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/rehearse/internal/adapters/repository"
	service "github.com/okian/rehearse/internal/app"
	"github.com/okian/rehearse/internal/domain/grading"
	"github.com/okian/rehearse/internal/domain/lexicon"
	"github.com/okian/rehearse/internal/domain/model"
	"github.com/okian/rehearse/internal/domain/relevance"
	"github.com/okian/rehearse/internal/domain/session"
)

// maxBodyBytes caps request bodies; transcripts are the largest payload.
const maxBodyBytes = 1 << 20

// GradingDependencies are the stateless grading operations.
type GradingDependencies interface {
	Roles() []service.RoleInfo
	Grade(ctx context.Context, req service.GradeRequest) (model.QuestionResult, error)
	Relevance(ctx context.Context, req service.RelevanceRequest) (relevance.Result, error)
}

// SessionDependencies drive a mock interview.
type SessionDependencies interface {
	CreateSession(ctx context.Context, req service.CreateSessionRequest) (model.SessionResult, error)
	GetSession(ctx context.Context, id string) (model.SessionResult, error)
	AppendTranscript(ctx context.Context, id, chunk string) error
	SubmitAnswer(ctx context.Context, id string, req service.SubmitRequest) (service.Submission, error)
	SkipQuestion(ctx context.Context, id string) (service.Submission, error)
	FinishSession(ctx context.Context, id string) (model.SessionResult, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	GradingDependencies
	SessionDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	gradingHandler  *GradingHandler
	sessionsHandler *SessionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		gradingHandler:  NewGradingHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Get("/roles", MetricsMiddleware(s.gradingHandler.HandleRoles, "roles"))
	r.Post("/grade", MetricsMiddleware(s.gradingHandler.HandleGrade, "grade"))
	r.Post("/relevance", MetricsMiddleware(s.gradingHandler.HandleRelevance, "relevance"))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions_create"))
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", MetricsMiddleware(s.sessionsHandler.HandleGet, "sessions_get"))
			r.Post("/transcript", MetricsMiddleware(s.sessionsHandler.HandleTranscript, "sessions_transcript"))
			r.Post("/answers", MetricsMiddleware(s.sessionsHandler.HandleAnswer, "sessions_answer"))
			r.Post("/skip", MetricsMiddleware(s.sessionsHandler.HandleSkip, "sessions_skip"))
			r.Post("/finish", MetricsMiddleware(s.sessionsHandler.HandleFinish, "sessions_finish"))
		})
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// writeServiceError maps domain sentinels to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, session.ErrSessionFinished):
		writeError(w, http.StatusConflict, "session_finished", err)
	case errors.Is(err, session.ErrNoMoreQuestions):
		writeError(w, http.StatusConflict, "no_current_question", err)
	case errors.Is(err, lexicon.ErrUnsupportedRole):
		writeError(w, http.StatusUnprocessableEntity, "unsupported_role", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrUnknownQuestion),
		errors.Is(err, grading.ErrInvalidStatus),
		errors.Is(err, session.ErrNoQuestions),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
