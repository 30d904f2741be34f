package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ivancohen/eyesentrymain-sub002/internal/db"
	"github.com/ivancohen/eyesentrymain-sub002/internal/engine"
)

// ─── ERRORS ──────────────────────────────────────────────────────────────────

// ErrAlreadySubmitted is returned by SubmitAssessment when the assessment has
// already left draft status. The handler treats this as idempotent success —
// a double-click on submit must not queue the assessment twice.
var ErrAlreadySubmitted = errors.New("store: assessment already submitted")

// ErrNotScorable is returned by PersistScoredAssessment when the assessment
// is not in a state that accepts results (e.g. it was deleted or already
// failed permanently).
var ErrNotScorable = errors.New("store: assessment not in a scorable state")

// ─── METHODS ─────────────────────────────────────────────────────────────────

// SubmitAssessment atomically freezes a draft assessment for scoring:
//
//  1. Re-reads the row inside the transaction.
//  2. Guards against double submission (idempotency).
//  3. Flips status to pending so the worker pool picks it up.
//
// On ErrAlreadySubmitted the current row is still returned so the caller can
// report the existing status.
func (s *Store) SubmitAssessment(ctx context.Context, id uuid.UUID) (db.Assessment, error) {
	var assessment db.Assessment

	err := s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		current, err := q.GetAssessmentByID(ctx, id)
		if err != nil {
			return fmt.Errorf("SubmitAssessment: get assessment: %w", err)
		}

		if current.Status != db.AssessmentDraft {
			assessment = current
			return ErrAlreadySubmitted
		}

		updated, err := q.SetAssessmentStatus(ctx, db.SetAssessmentStatusParams{
			ID:     id,
			Status: db.AssessmentPending,
		})
		if err != nil {
			return fmt.Errorf("SubmitAssessment: set status: %w", err)
		}
		assessment = updated
		return nil
	})
	return assessment, err
}

// PersistScoredAssessment writes a completed engine evaluation atomically:
// the result columns, and the contributing-factor breakdown (replacing any
// rows from a previous scoring pass). Called by the worker after the engine
// pipeline completes.
func (s *Store) PersistScoredAssessment(ctx context.Context, id uuid.UUID, result engine.Assessment) (db.Assessment, error) {
	var assessment db.Assessment

	err := s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		current, err := q.GetAssessmentByID(ctx, id)
		if err != nil {
			return fmt.Errorf("PersistScoredAssessment: get assessment: %w", err)
		}
		// Re-scoring a scored assessment is allowed (config may have been
		// corrected); persisting into draft or failed is not.
		if current.Status != db.AssessmentPending && current.Status != db.AssessmentScored {
			return fmt.Errorf("%w: status=%s", ErrNotScorable, current.Status)
		}

		if err := q.DeleteContributingFactors(ctx, id); err != nil {
			return fmt.Errorf("PersistScoredAssessment: clear factors: %w", err)
		}
		for i, f := range result.Score.Factors {
			err := q.InsertContributingFactor(ctx, db.InsertContributingFactorParams{
				AssessmentID:  id,
				Position:      i,
				QuestionLabel: f.QuestionLabel,
				AnswerLabel:   f.AnswerLabel,
				Points:        f.Points,
			})
			if err != nil {
				return fmt.Errorf("PersistScoredAssessment: factor %d: %w", i, err)
			}
		}

		updated, err := q.SaveAssessmentResult(ctx, db.SaveAssessmentResultParams{
			ID:            id,
			TotalScore:    result.Score.Total,
			RiskTier:      string(result.Classification.Tier),
			TierFallback:  result.Classification.Fallback,
			Advice:        result.Advice.Advice,
			MatchStrategy: string(result.Advice.Strategy),
		})
		if err != nil {
			return fmt.Errorf("PersistScoredAssessment: save result: %w", err)
		}
		assessment = updated
		return nil
	})
	return assessment, err
}

// MarkAssessmentFailed flips an assessment to failed after the worker has
// exhausted its retries, so the recovery poller stops picking it up.
func (s *Store) MarkAssessmentFailed(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.SetAssessmentStatus(ctx, db.SetAssessmentStatusParams{
		ID:     id,
		Status: db.AssessmentFailed,
	})
	if err != nil {
		return fmt.Errorf("MarkAssessmentFailed: %w", err)
	}
	return nil
}

// ReplaceAnswers atomically replaces the stored values for each question in
// the batch: existing rows for a question are deleted before its new values
// are inserted, so deselected multi-select options do not linger.
func (s *Store) ReplaceAnswers(ctx context.Context, id uuid.UUID, answers map[string][]string) error {
	return s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		for questionID, values := range answers {
			err := q.DeleteAnswersForQuestion(ctx, db.DeleteAnswersForQuestionParams{
				AssessmentID: id,
				QuestionID:   questionID,
			})
			if err != nil {
				return fmt.Errorf("ReplaceAnswers: clear %q: %w", questionID, err)
			}
			for _, v := range values {
				err := q.UpsertAnswer(ctx, db.UpsertAnswerParams{
					AssessmentID: id,
					QuestionID:   questionID,
					Value:        v,
				})
				if err != nil {
					return fmt.Errorf("ReplaceAnswers: insert %q: %w", questionID, err)
				}
			}
		}
		return nil
	})
}
