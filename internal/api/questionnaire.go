package api

import (
	"encoding/json"
	"net/http"

	"github.com/ivancohen/eyesentrymain-sub002/internal/db"
	"github.com/ivancohen/eyesentrymain-sub002/internal/engine"
)

// ─── GET /api/questionnaire ──────────────────────────────────────────────────

type questionView struct {
	ID      string           `json:"id"`
	Text    string           `json:"text"`
	Type    string           `json:"type"`
	Options []engine.Option  `json:"options,omitempty"`
	Rule    *conditionalView `json:"rule,omitempty"`
}

type conditionalView struct {
	ParentQuestionID string `json:"parent_question_id"`
	RequiredValue    string `json:"required_value"`
	DisplayMode      string `json:"display_mode"`
}

type questionnaireResponse struct {
	Questions []questionView `json:"questions"`
}

// handleGetQuestionnaire returns the question definitions with their
// conditional rules attached, in presentation order.
func (s *Server) handleGetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	questions, err := s.q.ListQuestions(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	rules, err := s.q.ListConditionalRules(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	byQuestion := make(map[string]db.ConditionalRule, len(rules))
	for _, rule := range rules {
		byQuestion[rule.QuestionID] = rule
	}

	out := questionnaireResponse{Questions: make([]questionView, 0, len(questions))}
	for _, q := range questions {
		view := questionView{ID: q.ID, Text: q.Text, Type: q.QType}
		if q.Options.Valid && len(q.Options.RawMessage) > 0 {
			if err := json.Unmarshal(q.Options.RawMessage, &view.Options); err != nil {
				s.respondInternalErr(w, r, err)
				return
			}
		}
		if rule, ok := byQuestion[q.ID]; ok {
			view.Rule = &conditionalView{
				ParentQuestionID: rule.ParentQuestionID,
				RequiredValue:    rule.RequiredValue,
				DisplayMode:      rule.DisplayMode,
			}
		}
		out.Questions = append(out.Questions, view)
	}

	respond(w, http.StatusOK, out)
}

// ─── POST /api/questionnaire/visibility ──────────────────────────────────────
//
// The browser calls this on every answer change that touches a rule's parent
// question, sending the full current answer map and getting back the display
// state for every question. The evaluation is stateless; nothing is stored.

type visibilityRequest struct {
	Answers map[string]string `json:"answers"`
}

type visibilityResponse struct {
	Visibility map[string]engine.DisplayMode `json:"visibility"`
}

func (s *Server) handleEvaluateVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Answers == nil {
		req.Answers = map[string]string{}
	}

	questions, err := s.q.ListQuestions(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	rules, err := s.q.ListConditionalRules(r.Context())
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	byQuestion := make(map[string]engine.ConditionalRule, len(rules))
	for _, rule := range rules {
		byQuestion[rule.QuestionID] = engine.ConditionalRule{
			QuestionID:       rule.QuestionID,
			ParentQuestionID: rule.ParentQuestionID,
			RequiredValue:    rule.RequiredValue,
			Mode:             engine.DisplayMode(rule.DisplayMode),
		}
	}

	out := visibilityResponse{Visibility: make(map[string]engine.DisplayMode, len(questions))}
	for _, q := range questions {
		var rulePtr *engine.ConditionalRule
		if rule, ok := byQuestion[q.ID]; ok {
			rulePtr = &rule
		}
		out.Visibility[q.ID] = engine.EvaluateVisibility(rulePtr, req.Answers)
	}

	respond(w, http.StatusOK, out)
}
