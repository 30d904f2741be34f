package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/ivancohen/eyesentrymain-sub002/internal/db"
	"github.com/ivancohen/eyesentrymain-sub002/internal/engine"
)

// The admin portal is the only writer of weights, tier ranges, and advice
// records. The engine never mutates configuration; these handlers exist so
// the portal has a backend to write through.

// ─── PUT /api/admin/weights ──────────────────────────────────────────────────

type weightInput struct {
	QuestionID  string `json:"question_id"`
	OptionValue string `json:"option_value"` // empty = boolean default entry
	Points      int    `json:"points"`
}

type upsertWeightsRequest struct {
	Weights []weightInput `json:"weights"`
}

func (s *Server) handleUpsertWeights(w http.ResponseWriter, r *http.Request) {
	var req upsertWeightsRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Weights) == 0 {
		respondErr(w, http.StatusBadRequest, "weights must not be empty")
		return
	}

	for _, entry := range req.Weights {
		if strings.TrimSpace(entry.QuestionID) == "" {
			respondErr(w, http.StatusBadRequest, "each weight must have a non-empty question_id")
			return
		}
		_, err := s.q.UpsertWeightEntry(r.Context(), db.UpsertWeightEntryParams{
			QuestionID:  entry.QuestionID,
			OptionValue: entry.OptionValue,
			Points:      entry.Points,
		})
		if err != nil {
			s.respondInternalErr(w, r, fmt.Errorf("upsert weight %q/%q: %w", entry.QuestionID, entry.OptionValue, err))
			return
		}
	}

	respond(w, http.StatusOK, map[string]int{"upserted": len(req.Weights)})
}

// ─── PUT /api/admin/tier-ranges ──────────────────────────────────────────────

type tierRangeInput struct {
	Tier     string `json:"tier"`
	MinScore int    `json:"min_score"`
	MaxScore int    `json:"max_score"`
}

type upsertTierRangesRequest struct {
	Ranges []tierRangeInput `json:"ranges"`
}

func (s *Server) handleUpsertTierRanges(w http.ResponseWriter, r *http.Request) {
	var req upsertTierRangesRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Ranges) == 0 {
		respondErr(w, http.StatusBadRequest, "ranges must not be empty")
		return
	}

	for _, rng := range req.Ranges {
		// Tier labels are free-form in advice records, but tier ranges key
		// the classifier and must canonicalize.
		tier, ok := engine.CanonicalTier(rng.Tier)
		if !ok {
			respondErr(w, http.StatusBadRequest, fmt.Sprintf("unrecognized tier %q", rng.Tier))
			return
		}
		if rng.MinScore > rng.MaxScore {
			respondErr(w, http.StatusBadRequest, fmt.Sprintf("tier %q: min_score exceeds max_score", rng.Tier))
			return
		}
		_, err := s.q.UpsertTierRange(r.Context(), db.UpsertTierRangeParams{
			Tier:     string(tier),
			MinScore: rng.MinScore,
			MaxScore: rng.MaxScore,
		})
		if err != nil {
			s.respondInternalErr(w, r, fmt.Errorf("upsert tier range %q: %w", rng.Tier, err))
			return
		}
	}

	respond(w, http.StatusOK, map[string]int{"upserted": len(req.Ranges)})
}

// ─── PUT /api/admin/advice ───────────────────────────────────────────────────

type adviceInput struct {
	ID        string `json:"id,omitempty"` // omit to create
	TierLabel string `json:"tier_label"`
	MinScore  int    `json:"min_score"`
	MaxScore  int    `json:"max_score"`
	Advice    string `json:"advice"`
}

type upsertAdviceResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleUpsertAdvice(w http.ResponseWriter, r *http.Request) {
	var req adviceInput
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Advice) == "" {
		respondErr(w, http.StatusBadRequest, "advice text must not be empty")
		return
	}

	params := db.UpsertAdviceRecordParams{
		TierLabel: strings.TrimSpace(req.TierLabel),
		MinScore:  req.MinScore,
		MaxScore:  req.MaxScore,
		Advice:    req.Advice,
	}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			respondErr(w, http.StatusBadRequest, "invalid advice record id")
			return
		}
		params.ID = id
	}

	record, err := s.q.UpsertAdviceRecord(r.Context(), params)
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("upsert advice record: %w", err))
		return
	}

	respond(w, http.StatusOK, upsertAdviceResponse{ID: record.ID.String()})
}
