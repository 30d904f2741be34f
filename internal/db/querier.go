package db

import (
	"context"

	"github.com/google/uuid"
)

// Querier is the full query surface. *Queries implements it; API and worker
// tests implement it with in-memory stubs (embedding Querier so unimplemented
// methods panic loudly).
type Querier interface {
	// Questionnaire configuration (read).
	ListQuestions(ctx context.Context) ([]Question, error)
	ListConditionalRules(ctx context.Context) ([]ConditionalRule, error)
	ListWeightEntries(ctx context.Context) ([]WeightEntry, error)
	ListTierRanges(ctx context.Context) ([]TierRange, error)
	ListAdviceRecords(ctx context.Context) ([]AdviceRecord, error)

	// Questionnaire configuration (admin writes).
	UpsertWeightEntry(ctx context.Context, arg UpsertWeightEntryParams) (WeightEntry, error)
	UpsertTierRange(ctx context.Context, arg UpsertTierRangeParams) (TierRange, error)
	UpsertAdviceRecord(ctx context.Context, arg UpsertAdviceRecordParams) (AdviceRecord, error)

	// Assessments.
	CreateAssessment(ctx context.Context, arg CreateAssessmentParams) (Assessment, error)
	GetAssessmentByID(ctx context.Context, id uuid.UUID) (Assessment, error)
	GetAssessmentByAccessToken(ctx context.Context, token string) (Assessment, error)
	SetAssessmentStatus(ctx context.Context, arg SetAssessmentStatusParams) (Assessment, error)
	ListPendingAssessments(ctx context.Context) ([]Assessment, error)
	SaveAssessmentResult(ctx context.Context, arg SaveAssessmentResultParams) (Assessment, error)

	// Answers and breakdown.
	UpsertAnswer(ctx context.Context, arg UpsertAnswerParams) error
	DeleteAnswersForQuestion(ctx context.Context, arg DeleteAnswersForQuestionParams) error
	ListAnswersWithQuestions(ctx context.Context, assessmentID uuid.UUID) ([]AnswerWithQuestionRow, error)
	DeleteContributingFactors(ctx context.Context, assessmentID uuid.UUID) error
	InsertContributingFactor(ctx context.Context, arg InsertContributingFactorParams) error
	ListContributingFactors(ctx context.Context, assessmentID uuid.UUID) ([]ContributingFactor, error)
}

var _ Querier = (*Queries)(nil)
