package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/rehearse/internal/domain/lexicon"
	"github.com/okian/rehearse/internal/domain/model"
	"github.com/okian/rehearse/internal/domain/relevance"
)

// RoleInfo describes a supported interview role.
type RoleInfo struct {
	ID        lexicon.Role       `json:"id"`
	Label     string             `json:"label"`
	Skill     string             `json:"skill"`
	Questions []lexicon.Question `json:"questions"`
}

// GradeRequest is a single answer graded outside any session. Question
// may be omitted when QuestionID names a bank question.
type GradeRequest struct {
	Role            string       `json:"role"`
	QuestionID      string       `json:"question_id,omitempty"`
	Question        string       `json:"question,omitempty"`
	Transcript      string       `json:"transcript"`
	DurationSeconds float64      `json:"duration_seconds"`
	HeadVariance    float64      `json:"head_variance"`
	GazeDrift       float64      `json:"gaze_drift"`
	Status          model.Status `json:"status,omitempty"`
}

// RelevanceRequest mirrors the enhanced scoring service contract. Skill
// is accepted for compatibility; the role determines the vocabulary.
type RelevanceRequest struct {
	Transcript string `json:"transcript"`
	Role       string `json:"role"`
	Skill      string `json:"skill,omitempty"`
	Question   string `json:"question"`
}

// Roles lists the supported roles with their question banks.
func (s *Service) Roles() []RoleInfo {
	roles := lexicon.Roles()
	out := make([]RoleInfo, 0, len(roles))
	for _, r := range roles {
		lx, err := lexicon.For(r)
		if err != nil {
			continue
		}
		out = append(out, RoleInfo{
			ID:        r,
			Label:     lx.Label(),
			Skill:     lx.Skill(),
			Questions: lx.Questions(),
		})
	}
	return out
}

// Grade evaluates one answer through the full pipeline.
func (s *Service) Grade(ctx context.Context, req GradeRequest) (model.QuestionResult, error) {
	role, err := lexicon.ParseRole(req.Role)
	if err != nil {
		return model.QuestionResult{}, err
	}
	lx, err := lexicon.For(role)
	if err != nil {
		return model.QuestionResult{}, err
	}

	question := strings.TrimSpace(req.Question)
	if question == "" && req.QuestionID != "" {
		q, ok := lx.Question(req.QuestionID)
		if !ok {
			return model.QuestionResult{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, req.QuestionID)
		}
		question = q.Text
	}
	if question == "" {
		return model.QuestionResult{}, fmt.Errorf("%w: question is required", ErrInvalidRequest)
	}

	return s.evaluator.Evaluate(ctx, model.Answer{
		QuestionID:      req.QuestionID,
		Question:        question,
		Role:            role,
		Transcript:      model.Transcript(strings.TrimSpace(req.Transcript)),
		DurationSeconds: req.DurationSeconds,
		HeadVariance:    req.HeadVariance,
		GazeDrift:       req.GazeDrift,
		Status:          req.Status,
	})
}

// Relevance scores an answer with the local heuristic only, so one
// instance can serve as the enhanced scorer of another without looping.
func (s *Service) Relevance(ctx context.Context, req RelevanceRequest) (relevance.Result, error) {
	role, err := lexicon.ParseRole(req.Role)
	if err != nil {
		return relevance.Result{}, err
	}
	if strings.TrimSpace(req.Question) == "" {
		return relevance.Result{}, fmt.Errorf("%w: question is required", ErrInvalidRequest)
	}
	return s.local.Score(ctx, relevance.Input{
		Transcript: req.Transcript,
		Question:   req.Question,
		Role:       role,
	})
}
