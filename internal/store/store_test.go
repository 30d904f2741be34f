package store_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/ivancohen/eyesentrymain-sub002/internal/db"
	"github.com/ivancohen/eyesentrymain-sub002/internal/engine"
	"github.com/ivancohen/eyesentrymain-sub002/internal/store"
)

// ─── UNIT: AnswersForEngine ───────────────────────────────────────────────────

func TestAnswersForEngine_ResolvesOptionLabels(t *testing.T) {
	rows := []db.AnswerWithQuestionRow{
		{
			QuestionID:   "family_history",
			Value:        "fh_yes",
			QuestionText: "Family history of glaucoma?",
			Options: pqtype.NullRawMessage{
				RawMessage: []byte(`[{"id":"fh_yes","label":"Yes"},{"id":"fh_no","label":"No"}]`),
				Valid:      true,
			},
		},
		{
			QuestionID:   "age",
			Value:        "67",
			QuestionText: "Patient age",
		},
	}

	answers, err := store.AnswersForEngine(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("got %d answers, want 2", len(answers))
	}
	if answers[0].AnswerLabel != "Yes" {
		t.Errorf("AnswerLabel = %q, want %q", answers[0].AnswerLabel, "Yes")
	}
	if answers[1].AnswerLabel != "67" {
		t.Errorf("optionless answer label = %q, want raw value", answers[1].AnswerLabel)
	}
	if answers[0].QuestionLabel != "Family history of glaucoma?" {
		t.Errorf("QuestionLabel = %q", answers[0].QuestionLabel)
	}
}

func TestAnswersForEngine_ValueWithoutMatchingOptionKeepsRawValue(t *testing.T) {
	rows := []db.AnswerWithQuestionRow{
		{
			QuestionID: "q",
			Value:      "stale_option",
			Options: pqtype.NullRawMessage{
				RawMessage: []byte(`[{"id":"a","label":"A"}]`),
				Valid:      true,
			},
		},
	}
	answers, err := store.AnswersForEngine(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answers[0].AnswerLabel != "stale_option" {
		t.Errorf("AnswerLabel = %q, want raw value", answers[0].AnswerLabel)
	}
}

func TestAnswersForEngine_MalformedOptionsIsError(t *testing.T) {
	rows := []db.AnswerWithQuestionRow{
		{
			QuestionID: "q",
			Value:      "v",
			Options:    pqtype.NullRawMessage{RawMessage: []byte(`{not json`), Valid: true},
		},
	}
	if _, err := store.AnswersForEngine(rows); err == nil {
		t.Error("expected error for malformed options JSON")
	}
}

// ─── INTEGRATION ──────────────────────────────────────────────────────────────

// openTestDB returns a *sql.DB from DATABASE_URL. Skips if the env var is
// not set so the suite still passes in CI without a Postgres instance.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set — skipping store integration tests")
	}
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if err := pool.PingContext(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("ping: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

// seedAssessment inserts a draft assessment and registers cleanup.
func seedAssessment(t *testing.T, ctx context.Context, pool *sql.DB, q db.Querier, suffix string) db.Assessment {
	t.Helper()
	a, err := q.CreateAssessment(ctx, db.CreateAssessmentParams{
		PatientRef:  fmt.Sprintf("patient_%s_%s", t.Name(), suffix),
		AccessToken: fmt.Sprintf("tok_%s_%s", t.Name(), suffix),
	})
	if err != nil {
		t.Fatalf("seed assessment: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.ExecContext(context.Background(), `DELETE FROM assessments WHERE id = $1`, a.ID)
	})
	return a
}

func TestSubmitAssessment_Idempotent(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	q := db.New(pool)
	st := store.New(pool, q)

	a := seedAssessment(t, ctx, pool, q, "submit")

	first, err := st.SubmitAssessment(ctx, a.ID)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if first.Status != db.AssessmentPending {
		t.Errorf("status = %s, want pending", first.Status)
	}

	second, err := st.SubmitAssessment(ctx, a.ID)
	if !errors.Is(err, store.ErrAlreadySubmitted) {
		t.Fatalf("second submit err = %v, want ErrAlreadySubmitted", err)
	}
	if second.Status != db.AssessmentPending {
		t.Errorf("second submit returned status %s, want pending", second.Status)
	}
}

func TestPersistScoredAssessment_WritesResultAndFactors(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	q := db.New(pool)
	st := store.New(pool, q)

	a := seedAssessment(t, ctx, pool, q, "persist")
	if _, err := st.SubmitAssessment(ctx, a.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	result := engine.Assessment{
		Score: engine.ScoreResult{
			Total: 7,
			Factors: []engine.ContributingFactor{
				{QuestionLabel: "Family history", AnswerLabel: "Yes", Points: 4},
				{QuestionLabel: "Elevated IOP", AnswerLabel: "Yes", Points: 3},
			},
		},
		Classification: engine.Classification{Tier: engine.TierHigh},
		Advice:         engine.AdviceResult{Advice: "See specialist", Strategy: engine.MatchCanonicalLabel},
	}

	scored, err := st.PersistScoredAssessment(ctx, a.ID, result)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if scored.Status != db.AssessmentScored {
		t.Errorf("status = %s, want scored", scored.Status)
	}
	if !scored.TotalScore.Valid || scored.TotalScore.Int32 != 7 {
		t.Errorf("total_score = %+v, want 7", scored.TotalScore)
	}
	if scored.RiskTier.String != "high" || scored.MatchStrategy.String != "canonical-label" {
		t.Errorf("tier/strategy = %q/%q", scored.RiskTier.String, scored.MatchStrategy.String)
	}

	factors, err := q.ListContributingFactors(ctx, a.ID)
	if err != nil {
		t.Fatalf("list factors: %v", err)
	}
	if len(factors) != 2 || factors[0].QuestionLabel != "Family history" {
		t.Errorf("unexpected factors: %+v", factors)
	}

	// Re-scoring replaces the breakdown rather than appending to it.
	result.Score.Factors = result.Score.Factors[:1]
	if _, err := st.PersistScoredAssessment(ctx, a.ID, result); err != nil {
		t.Fatalf("re-persist: %v", err)
	}
	factors, err = q.ListContributingFactors(ctx, a.ID)
	if err != nil {
		t.Fatalf("list factors after rescore: %v", err)
	}
	if len(factors) != 1 {
		t.Errorf("factor count after rescore = %d, want 1", len(factors))
	}
}

func TestPersistScoredAssessment_RejectsDraft(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	q := db.New(pool)
	st := store.New(pool, q)

	a := seedAssessment(t, ctx, pool, q, "draft")

	_, err := st.PersistScoredAssessment(ctx, a.ID, engine.Assessment{})
	if !errors.Is(err, store.ErrNotScorable) {
		t.Fatalf("err = %v, want ErrNotScorable", err)
	}
}

func TestReplaceAnswers_ClearsDeselectedOptions(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	q := db.New(pool)
	st := store.New(pool, q)

	a := seedAssessment(t, ctx, pool, q, "answers")

	if err := st.ReplaceAnswers(ctx, a.ID, map[string][]string{
		"medications": {"steroids", "beta_blockers"},
	}); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := st.ReplaceAnswers(ctx, a.ID, map[string][]string{
		"medications": {"steroids"},
	}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	rows, err := q.ListAnswersWithQuestions(ctx, a.ID)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(rows) != 1 || rows[0].Value != "steroids" {
		t.Errorf("unexpected answers after replace: %+v", rows)
	}
}
