package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Question is one row of the questionnaire definition. Options holds the
// JSONB array of {id, label} choices for select-type questions and is Null
// for numeric/free-text questions.
type Question struct {
	ID       string
	Text     string
	QType    string
	Options  pqtype.NullRawMessage
	Position int
}

// ConditionalRule links a question's visibility to a parent question's
// answer. At most one row per question.
type ConditionalRule struct {
	QuestionID       string
	ParentQuestionID string
	RequiredValue    string
	DisplayMode      string
}

// WeightEntry maps (question, option value) to its score contribution. An
// empty OptionValue row is the question's boolean default contribution.
type WeightEntry struct {
	QuestionID  string
	OptionValue string
	Points      int
}

// TierRange is one admin-configured inclusive score band per tier.
type TierRange struct {
	Tier     string
	MinScore int
	MaxScore int
}

// AdviceRecord is one admin-curated recommendation row. TierLabel is stored
// as entered — canonicalization happens in the engine, not here.
type AdviceRecord struct {
	ID        uuid.UUID
	TierLabel string
	MinScore  int
	MaxScore  int
	Advice    string
	UpdatedAt time.Time
}

// Assessment status values.
const (
	AssessmentDraft   = "draft"
	AssessmentPending = "pending"
	AssessmentScored  = "scored"
	AssessmentFailed  = "failed"
)

// Assessment is one questionnaire instance. Result columns are Null until the
// worker has scored it.
type Assessment struct {
	ID            uuid.UUID
	PatientRef    string
	DoctorEmail   sql.NullString
	AccessToken   string
	Status        string
	TotalScore    sql.NullInt32
	RiskTier      sql.NullString
	TierFallback  bool
	Advice        sql.NullString
	MatchStrategy sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ScoredAt      sql.NullTime
}

// Answer is one stored (question, value) pair. Multi-select questions store
// one row per selected option.
type Answer struct {
	AssessmentID uuid.UUID
	QuestionID   string
	Value        string
}

// AnswerWithQuestionRow is an answer joined with its question definition, so
// the scoring job can build display labels without a second round trip.
type AnswerWithQuestionRow struct {
	QuestionID   string
	Value        string
	QuestionText string
	Options      pqtype.NullRawMessage
}

// ContributingFactor is one persisted line of a scored assessment's
// breakdown, in presentation order.
type ContributingFactor struct {
	AssessmentID  uuid.UUID
	Position      int
	QuestionLabel string
	AnswerLabel   string
	Points        int
}
