package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ivancohen/eyesentrymain-sub002/internal/db"
	"github.com/ivancohen/eyesentrymain-sub002/internal/email"
	"github.com/ivancohen/eyesentrymain-sub002/internal/engine"
	"github.com/ivancohen/eyesentrymain-sub002/internal/store"
)

// Job is one end-to-end scoring pass over a submitted assessment.
type Job struct {
	q      db.Querier
	store  *store.Store
	mailer email.Sender
	logger *slog.Logger
}

// NewJob wires a Job. The same Job value is shared by every worker goroutine;
// it carries no per-run state.
func NewJob(q db.Querier, st *store.Store, mailer email.Sender, logger *slog.Logger) *Job {
	return &Job{q: q, store: st, mailer: mailer, logger: logger}
}

// Run scores one assessment:
//
//  1. Load the assessment row.
//  2. Load a consistent configuration snapshot.
//  3. Load the stored answers with their question metadata.
//  4. Run the engine pipeline (score → classify → resolve advice).
//  5. Persist the result atomically.
//  6. Send notifications (never fatal).
//
// Any error is returned to the Runner, which retries up to MaxRetries before
// marking the assessment failed.
func (j *Job) Run(ctx context.Context, assessmentID uuid.UUID) error {
	log := j.logger.With("assessment_id", assessmentID)
	log.Info("job: starting")

	assessment, err := j.q.GetAssessmentByID(ctx, assessmentID)
	if err != nil {
		return fmt.Errorf("job: get assessment: %w", err)
	}
	if assessment.Status != db.AssessmentPending && assessment.Status != db.AssessmentScored {
		// Stale queue entry (already failed, or re-enqueued after completion
		// with nothing new). Nothing to do.
		log.Debug("job: skipping, not scorable", "status", assessment.Status)
		return nil
	}

	snap, err := j.store.LoadConfigSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("job: load config: %w", err)
	}

	rows, err := j.q.ListAnswersWithQuestions(ctx, assessmentID)
	if err != nil {
		return fmt.Errorf("job: list answers: %w", err)
	}
	answers, err := store.AnswersForEngine(rows)
	if err != nil {
		return fmt.Errorf("job: convert answers: %w", err)
	}
	log.Debug("job: loaded answers", "count", len(answers))

	// A previously persisted tier label feeds the resolver's stored-label
	// strategy on re-scores; empty on a first pass.
	result := snap.Evaluate(answers, assessment.RiskTier.String)

	if result.Classification.Fallback {
		// Configured tier ranges did not cover this score. The built-in
		// partition kept classification total, but an administrator needs to
		// fix the ranges — surface it loudly.
		log.Warn("job: tier classification used built-in fallback partition",
			"score", result.Score.Total,
			"tier", result.Classification.Tier,
		)
	}
	log.Info("job: evaluated",
		"score", result.Score.Total,
		"tier", result.Classification.Tier,
		"match_strategy", result.Advice.Strategy,
		"factors", len(result.Score.Factors),
	)

	scored, err := j.store.PersistScoredAssessment(ctx, assessmentID, result)
	if err != nil {
		if errors.Is(err, store.ErrNotScorable) {
			// Lost a race with a concurrent failure/cleanup; drop the work.
			log.Warn("job: assessment no longer scorable, dropping", "error", err)
			return nil
		}
		return fmt.Errorf("job: persist result: %w", err)
	}

	j.notify(ctx, scored, result, log)
	return nil
}

// notify sends the scored notification and, for high-tier results, the
// doctor alert. Email failure never fails the job — the result is persisted
// and visible in the portal regardless.
func (j *Job) notify(ctx context.Context, assessment db.Assessment, result engine.Assessment, log *slog.Logger) {
	if !assessment.DoctorEmail.Valid || assessment.DoctorEmail.String == "" {
		log.Debug("job: no doctor email on assessment, skipping notifications")
		return
	}
	to := assessment.DoctorEmail.String

	if err := j.mailer.SendScored(ctx, email.ScoredParams{
		To:          to,
		PatientRef:  assessment.PatientRef,
		TierLabel:   result.Classification.Tier.Label(),
		AccessToken: assessment.AccessToken,
	}); err != nil {
		log.Error("job: failed to send scored notification", "to", to, "error", err)
	}

	if result.Classification.Tier == engine.TierHigh {
		if err := j.mailer.SendHighRiskAlert(ctx, email.HighRiskAlertParams{
			To:         to,
			PatientRef: assessment.PatientRef,
			TotalScore: result.Score.Total,
			Advice:     result.Advice.Advice,
		}); err != nil {
			log.Error("job: failed to send high risk alert", "to", to, "error", err)
		}
	}
}
