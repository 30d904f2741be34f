package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ─── QUESTIONNAIRE READS ─────────────────────────────────────────────────────

const listQuestions = `
SELECT id, text, qtype, options, position
FROM questions
ORDER BY position, id
`

func (q *Queries) ListQuestions(ctx context.Context) ([]Question, error) {
	rows, err := q.db.QueryContext(ctx, listQuestions)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var item Question
		if err := rows.Scan(&item.ID, &item.Text, &item.QType, &item.Options, &item.Position); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

const listConditionalRules = `
SELECT question_id, parent_question_id, required_value, display_mode
FROM conditional_rules
ORDER BY question_id
`

func (q *Queries) ListConditionalRules(ctx context.Context) ([]ConditionalRule, error) {
	rows, err := q.db.QueryContext(ctx, listConditionalRules)
	if err != nil {
		return nil, fmt.Errorf("list conditional rules: %w", err)
	}
	defer rows.Close()

	var out []ConditionalRule
	for rows.Next() {
		var item ConditionalRule
		if err := rows.Scan(&item.QuestionID, &item.ParentQuestionID, &item.RequiredValue, &item.DisplayMode); err != nil {
			return nil, fmt.Errorf("scan conditional rule: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

const listWeightEntries = `
SELECT question_id, option_value, points
FROM weight_entries
ORDER BY question_id, option_value
`

func (q *Queries) ListWeightEntries(ctx context.Context) ([]WeightEntry, error) {
	rows, err := q.db.QueryContext(ctx, listWeightEntries)
	if err != nil {
		return nil, fmt.Errorf("list weight entries: %w", err)
	}
	defer rows.Close()

	var out []WeightEntry
	for rows.Next() {
		var item WeightEntry
		if err := rows.Scan(&item.QuestionID, &item.OptionValue, &item.Points); err != nil {
			return nil, fmt.Errorf("scan weight entry: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

const listTierRanges = `
SELECT tier, min_score, max_score
FROM tier_ranges
ORDER BY min_score
`

func (q *Queries) ListTierRanges(ctx context.Context) ([]TierRange, error) {
	rows, err := q.db.QueryContext(ctx, listTierRanges)
	if err != nil {
		return nil, fmt.Errorf("list tier ranges: %w", err)
	}
	defer rows.Close()

	var out []TierRange
	for rows.Next() {
		var item TierRange
		if err := rows.Scan(&item.Tier, &item.MinScore, &item.MaxScore); err != nil {
			return nil, fmt.Errorf("scan tier range: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

const listAdviceRecords = `
SELECT id, tier_label, min_score, max_score, advice, updated_at
FROM advice_records
ORDER BY updated_at DESC, id
`

func (q *Queries) ListAdviceRecords(ctx context.Context) ([]AdviceRecord, error) {
	rows, err := q.db.QueryContext(ctx, listAdviceRecords)
	if err != nil {
		return nil, fmt.Errorf("list advice records: %w", err)
	}
	defer rows.Close()

	var out []AdviceRecord
	for rows.Next() {
		var item AdviceRecord
		if err := rows.Scan(&item.ID, &item.TierLabel, &item.MinScore, &item.MaxScore, &item.Advice, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan advice record: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ─── ADMIN WRITES ─────────────────────────────────────────────────────────────

type UpsertWeightEntryParams struct {
	QuestionID  string
	OptionValue string
	Points      int
}

const upsertWeightEntry = `
INSERT INTO weight_entries (question_id, option_value, points)
VALUES ($1, $2, $3)
ON CONFLICT (question_id, option_value)
DO UPDATE SET points = EXCLUDED.points
RETURNING question_id, option_value, points
`

func (q *Queries) UpsertWeightEntry(ctx context.Context, arg UpsertWeightEntryParams) (WeightEntry, error) {
	var item WeightEntry
	err := q.db.QueryRowContext(ctx, upsertWeightEntry, arg.QuestionID, arg.OptionValue, arg.Points).
		Scan(&item.QuestionID, &item.OptionValue, &item.Points)
	if err != nil {
		return WeightEntry{}, fmt.Errorf("upsert weight entry: %w", err)
	}
	return item, nil
}

type UpsertTierRangeParams struct {
	Tier     string
	MinScore int
	MaxScore int
}

const upsertTierRange = `
INSERT INTO tier_ranges (tier, min_score, max_score)
VALUES ($1, $2, $3)
ON CONFLICT (tier)
DO UPDATE SET min_score = EXCLUDED.min_score, max_score = EXCLUDED.max_score
RETURNING tier, min_score, max_score
`

func (q *Queries) UpsertTierRange(ctx context.Context, arg UpsertTierRangeParams) (TierRange, error) {
	var item TierRange
	err := q.db.QueryRowContext(ctx, upsertTierRange, arg.Tier, arg.MinScore, arg.MaxScore).
		Scan(&item.Tier, &item.MinScore, &item.MaxScore)
	if err != nil {
		return TierRange{}, fmt.Errorf("upsert tier range: %w", err)
	}
	return item, nil
}

type UpsertAdviceRecordParams struct {
	ID        uuid.UUID // zero value inserts a new row
	TierLabel string
	MinScore  int
	MaxScore  int
	Advice    string
}

const upsertAdviceRecord = `
INSERT INTO advice_records (id, tier_label, min_score, max_score, advice, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (id)
DO UPDATE SET
    tier_label = EXCLUDED.tier_label,
    min_score  = EXCLUDED.min_score,
    max_score  = EXCLUDED.max_score,
    advice     = EXCLUDED.advice,
    updated_at = now()
RETURNING id, tier_label, min_score, max_score, advice, updated_at
`

func (q *Queries) UpsertAdviceRecord(ctx context.Context, arg UpsertAdviceRecordParams) (AdviceRecord, error) {
	id := arg.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var item AdviceRecord
	err := q.db.QueryRowContext(ctx, upsertAdviceRecord, id, arg.TierLabel, arg.MinScore, arg.MaxScore, arg.Advice).
		Scan(&item.ID, &item.TierLabel, &item.MinScore, &item.MaxScore, &item.Advice, &item.UpdatedAt)
	if err != nil {
		return AdviceRecord{}, fmt.Errorf("upsert advice record: %w", err)
	}
	return item, nil
}
