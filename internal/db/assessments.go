package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const assessmentColumns = `
id, patient_ref, doctor_email, access_token, status, total_score, risk_tier,
tier_fallback, advice, match_strategy, created_at, updated_at, scored_at
`

func scanAssessment(row interface{ Scan(dest ...any) error }) (Assessment, error) {
	var a Assessment
	err := row.Scan(
		&a.ID, &a.PatientRef, &a.DoctorEmail, &a.AccessToken, &a.Status,
		&a.TotalScore, &a.RiskTier, &a.TierFallback, &a.Advice, &a.MatchStrategy,
		&a.CreatedAt, &a.UpdatedAt, &a.ScoredAt,
	)
	return a, err
}

// ─── ASSESSMENTS ─────────────────────────────────────────────────────────────

type CreateAssessmentParams struct {
	PatientRef  string
	DoctorEmail sql.NullString
	AccessToken string
}

const createAssessment = `
INSERT INTO assessments (id, patient_ref, doctor_email, access_token, status)
VALUES ($1, $2, $3, $4, 'draft')
RETURNING ` + assessmentColumns

func (q *Queries) CreateAssessment(ctx context.Context, arg CreateAssessmentParams) (Assessment, error) {
	a, err := scanAssessment(q.db.QueryRowContext(ctx, createAssessment,
		uuid.New(), arg.PatientRef, arg.DoctorEmail, arg.AccessToken))
	if err != nil {
		return Assessment{}, fmt.Errorf("create assessment: %w", err)
	}
	return a, nil
}

const getAssessmentByID = `
SELECT ` + assessmentColumns + `
FROM assessments
WHERE id = $1
`

func (q *Queries) GetAssessmentByID(ctx context.Context, id uuid.UUID) (Assessment, error) {
	return scanAssessment(q.db.QueryRowContext(ctx, getAssessmentByID, id))
}

const getAssessmentByAccessToken = `
SELECT ` + assessmentColumns + `
FROM assessments
WHERE access_token = $1
`

func (q *Queries) GetAssessmentByAccessToken(ctx context.Context, token string) (Assessment, error) {
	return scanAssessment(q.db.QueryRowContext(ctx, getAssessmentByAccessToken, token))
}

type SetAssessmentStatusParams struct {
	ID     uuid.UUID
	Status string
}

const setAssessmentStatus = `
UPDATE assessments
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + assessmentColumns

func (q *Queries) SetAssessmentStatus(ctx context.Context, arg SetAssessmentStatusParams) (Assessment, error) {
	a, err := scanAssessment(q.db.QueryRowContext(ctx, setAssessmentStatus, arg.ID, arg.Status))
	if err != nil {
		return Assessment{}, fmt.Errorf("set assessment status: %w", err)
	}
	return a, nil
}

const listPendingAssessments = `
SELECT ` + assessmentColumns + `
FROM assessments
WHERE status = 'pending'
ORDER BY updated_at
LIMIT 50
`

func (q *Queries) ListPendingAssessments(ctx context.Context) ([]Assessment, error) {
	rows, err := q.db.QueryContext(ctx, listPendingAssessments)
	if err != nil {
		return nil, fmt.Errorf("list pending assessments: %w", err)
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending assessment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type SaveAssessmentResultParams struct {
	ID            uuid.UUID
	TotalScore    int
	RiskTier      string
	TierFallback  bool
	Advice        string
	MatchStrategy string
}

const saveAssessmentResult = `
UPDATE assessments
SET status         = 'scored',
    total_score    = $2,
    risk_tier      = $3,
    tier_fallback  = $4,
    advice         = $5,
    match_strategy = $6,
    scored_at      = now(),
    updated_at     = now()
WHERE id = $1
RETURNING ` + assessmentColumns

func (q *Queries) SaveAssessmentResult(ctx context.Context, arg SaveAssessmentResultParams) (Assessment, error) {
	a, err := scanAssessment(q.db.QueryRowContext(ctx, saveAssessmentResult,
		arg.ID, arg.TotalScore, arg.RiskTier, arg.TierFallback, arg.Advice, arg.MatchStrategy))
	if err != nil {
		return Assessment{}, fmt.Errorf("save assessment result: %w", err)
	}
	return a, nil
}

// ─── ANSWERS ─────────────────────────────────────────────────────────────────

type UpsertAnswerParams struct {
	AssessmentID uuid.UUID
	QuestionID   string
	Value        string
}

const upsertAnswer = `
INSERT INTO answers (assessment_id, question_id, value)
VALUES ($1, $2, $3)
ON CONFLICT (assessment_id, question_id, value) DO NOTHING
`

// UpsertAnswer records one (question, value) pair. Multi-select questions
// send one call per selected option; replaying the same payload is a no-op.
func (q *Queries) UpsertAnswer(ctx context.Context, arg UpsertAnswerParams) error {
	if _, err := q.db.ExecContext(ctx, upsertAnswer, arg.AssessmentID, arg.QuestionID, arg.Value); err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	return nil
}

type DeleteAnswersForQuestionParams struct {
	AssessmentID uuid.UUID
	QuestionID   string
}

const deleteAnswersForQuestion = `
DELETE FROM answers
WHERE assessment_id = $1 AND question_id = $2
`

// DeleteAnswersForQuestion clears a question's stored values before a
// re-answer, so changing a single-select or deselecting multi-select options
// does not leave stale rows behind.
func (q *Queries) DeleteAnswersForQuestion(ctx context.Context, arg DeleteAnswersForQuestionParams) error {
	if _, err := q.db.ExecContext(ctx, deleteAnswersForQuestion, arg.AssessmentID, arg.QuestionID); err != nil {
		return fmt.Errorf("delete answers for question: %w", err)
	}
	return nil
}

const listAnswersWithQuestions = `
SELECT a.question_id, a.value, COALESCE(qs.text, ''), qs.options
FROM answers a
LEFT JOIN questions qs ON qs.id = a.question_id
WHERE a.assessment_id = $1
ORDER BY COALESCE(qs.position, 2147483647), a.question_id, a.value
`

// ListAnswersWithQuestions returns answers joined with question definitions
// in presentation order. Answers to deleted questions survive the join with
// empty text — the engine treats them as unweighted rather than dropping them.
func (q *Queries) ListAnswersWithQuestions(ctx context.Context, assessmentID uuid.UUID) ([]AnswerWithQuestionRow, error) {
	rows, err := q.db.QueryContext(ctx, listAnswersWithQuestions, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var out []AnswerWithQuestionRow
	for rows.Next() {
		var item AnswerWithQuestionRow
		if err := rows.Scan(&item.QuestionID, &item.Value, &item.QuestionText, &item.Options); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ─── CONTRIBUTING FACTORS ────────────────────────────────────────────────────

const deleteContributingFactors = `
DELETE FROM contributing_factors
WHERE assessment_id = $1
`

func (q *Queries) DeleteContributingFactors(ctx context.Context, assessmentID uuid.UUID) error {
	if _, err := q.db.ExecContext(ctx, deleteContributingFactors, assessmentID); err != nil {
		return fmt.Errorf("delete contributing factors: %w", err)
	}
	return nil
}

type InsertContributingFactorParams struct {
	AssessmentID  uuid.UUID
	Position      int
	QuestionLabel string
	AnswerLabel   string
	Points        int
}

const insertContributingFactor = `
INSERT INTO contributing_factors (assessment_id, position, question_label, answer_label, points)
VALUES ($1, $2, $3, $4, $5)
`

func (q *Queries) InsertContributingFactor(ctx context.Context, arg InsertContributingFactorParams) error {
	if _, err := q.db.ExecContext(ctx, insertContributingFactor,
		arg.AssessmentID, arg.Position, arg.QuestionLabel, arg.AnswerLabel, arg.Points); err != nil {
		return fmt.Errorf("insert contributing factor: %w", err)
	}
	return nil
}

const listContributingFactors = `
SELECT assessment_id, position, question_label, answer_label, points
FROM contributing_factors
WHERE assessment_id = $1
ORDER BY position
`

func (q *Queries) ListContributingFactors(ctx context.Context, assessmentID uuid.UUID) ([]ContributingFactor, error) {
	rows, err := q.db.QueryContext(ctx, listContributingFactors, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("list contributing factors: %w", err)
	}
	defer rows.Close()

	var out []ContributingFactor
	for rows.Next() {
		var item ContributingFactor
		if err := rows.Scan(&item.AssessmentID, &item.Position, &item.QuestionLabel, &item.AnswerLabel, &item.Points); err != nil {
			return nil, fmt.Errorf("scan contributing factor: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
