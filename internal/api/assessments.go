package api

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ivancohen/eyesentrymain-sub002/internal/db"
	"github.com/ivancohen/eyesentrymain-sub002/internal/store"
)

// ─── POST /api/assessments ───────────────────────────────────────────────────

type createAssessmentRequest struct {
	PatientRef  string `json:"patient_ref"`
	DoctorEmail string `json:"doctor_email,omitempty"`
}

type createAssessmentResponse struct {
	ID          string `json:"id"`
	AccessToken string `json:"access_token"`
	Status      string `json:"status"`
}

// handleCreateAssessment opens a new draft assessment. The access_token is
// returned once and sent by the client on every subsequent request.
func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req createAssessmentRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.PatientRef) == "" {
		respondErr(w, http.StatusBadRequest, "patient_ref must not be empty")
		return
	}

	// Cryptographically random token. 32 bytes → 64 hex chars.
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("generate access token: %w", err))
		return
	}

	params := db.CreateAssessmentParams{
		PatientRef:  strings.TrimSpace(req.PatientRef),
		AccessToken: hex.EncodeToString(tokenBytes),
	}
	if email := strings.TrimSpace(req.DoctorEmail); email != "" {
		params.DoctorEmail = sql.NullString{String: email, Valid: true}
	}

	assessment, err := s.q.CreateAssessment(r.Context(), params)
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("create assessment: %w", err))
		return
	}

	respond(w, http.StatusCreated, createAssessmentResponse{
		ID:          assessment.ID.String(),
		AccessToken: assessment.AccessToken,
		Status:      assessment.Status,
	})
}

// ─── PUT /api/assessments/:id/answers ────────────────────────────────────────
//
// Accepts a batch of answers keyed by question. The browser sends the full
// value set per question; stored values for each question in the batch are
// replaced, so the payload is safe to replay and deselections take effect.

type replaceAnswersRequest struct {
	Answers map[string][]string `json:"answers"`
}

type replaceAnswersResponse struct {
	Updated int `json:"updated"`
}

func (s *Server) handleReplaceAnswers(w http.ResponseWriter, r *http.Request) {
	assessment := assessmentFromContext(r.Context())

	if assessment.Status != db.AssessmentDraft {
		respondErr(w, http.StatusConflict, "assessment already submitted; answers are frozen")
		return
	}

	var req replaceAnswersRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Answers) == 0 {
		respondErr(w, http.StatusBadRequest, "answers must not be empty")
		return
	}
	if len(req.Answers) > 100 {
		respondErr(w, http.StatusBadRequest, "too many answers in a single request (max 100)")
		return
	}
	for questionID := range req.Answers {
		if strings.TrimSpace(questionID) == "" {
			respondErr(w, http.StatusBadRequest, "answer keys must be non-empty question ids")
			return
		}
	}

	if err := s.store.ReplaceAnswers(r.Context(), assessment.ID, req.Answers); err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, replaceAnswersResponse{Updated: len(req.Answers)})
}

// ─── POST /api/assessments/:id/submit ────────────────────────────────────────

type submitAssessmentResponse struct {
	Status string `json:"status"`
}

// handleSubmitAssessment freezes the answer set and queues scoring. A repeat
// submit is answered with the current status rather than an error, so a
// double click or a retried request is harmless.
func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	assessment := assessmentFromContext(r.Context())

	submitted, err := s.store.SubmitAssessment(r.Context(), assessment.ID)
	if err != nil && !errors.Is(err, store.ErrAlreadySubmitted) {
		s.respondInternalErr(w, r, err)
		return
	}

	if err == nil {
		if enqErr := s.worker.Enqueue(r.Context(), assessment.ID); enqErr != nil {
			// Queue full — the poller will pick it up. The submit succeeded.
			s.logger.Warn("submit: enqueue failed, deferring to poller",
				"assessment_id", assessment.ID, "error", enqErr)
		}
	}

	respond(w, http.StatusAccepted, submitAssessmentResponse{Status: submitted.Status})
}

// ─── GET /api/assessments/:id ────────────────────────────────────────────────

type factorView struct {
	QuestionLabel string `json:"question_label"`
	AnswerLabel   string `json:"answer_label"`
	Points        int    `json:"points"`
}

type assessmentResponse struct {
	ID            string       `json:"id"`
	PatientRef    string       `json:"patient_ref"`
	Status        string       `json:"status"`
	TotalScore    *int         `json:"total_score,omitempty"`
	RiskTier      string       `json:"risk_tier,omitempty"`
	TierFallback  bool         `json:"tier_fallback,omitempty"`
	Advice        string       `json:"advice,omitempty"`
	MatchStrategy string       `json:"match_strategy,omitempty"`
	Factors       []factorView `json:"contributing_factors,omitempty"`
	ScoredAt      *time.Time   `json:"scored_at,omitempty"`
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	assessment := assessmentFromContext(r.Context())

	out := assessmentResponse{
		ID:         assessment.ID.String(),
		PatientRef: assessment.PatientRef,
		Status:     assessment.Status,
	}

	if assessment.Status == db.AssessmentScored {
		total := int(assessment.TotalScore.Int32)
		out.TotalScore = &total
		out.RiskTier = assessment.RiskTier.String
		out.TierFallback = assessment.TierFallback
		out.Advice = assessment.Advice.String
		out.MatchStrategy = assessment.MatchStrategy.String
		if assessment.ScoredAt.Valid {
			t := assessment.ScoredAt.Time
			out.ScoredAt = &t
		}

		factors, err := s.q.ListContributingFactors(r.Context(), assessment.ID)
		if err != nil {
			s.respondInternalErr(w, r, err)
			return
		}
		for _, f := range factors {
			out.Factors = append(out.Factors, factorView{
				QuestionLabel: f.QuestionLabel,
				AnswerLabel:   f.AnswerLabel,
				Points:        f.Points,
			})
		}
	}

	respond(w, http.StatusOK, out)
}
