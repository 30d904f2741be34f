package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ivancohen/eyesentrymain-sub002/internal/db"
	"github.com/ivancohen/eyesentrymain-sub002/internal/engine"
)

// LoadConfigSnapshot reads the full questionnaire configuration — questions,
// conditional rules, weights, tier ranges, advice records — inside a single
// transaction, so the engine evaluates against one internally consistent
// view even if an administrator is editing configuration concurrently.
//
// The returned snapshot is a value graph with no live references to the
// database; it is safe to share read-only across goroutines for the duration
// of one evaluation.
func (s *Store) LoadConfigSnapshot(ctx context.Context) (*engine.Snapshot, error) {
	snap := &engine.Snapshot{
		Rules: make(map[string]engine.ConditionalRule),
	}

	err := s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		questions, err := q.ListQuestions(ctx)
		if err != nil {
			return err
		}
		for _, row := range questions {
			question, err := questionFromRow(row)
			if err != nil {
				return fmt.Errorf("question %q: %w", row.ID, err)
			}
			snap.Questions = append(snap.Questions, question)
		}

		rules, err := q.ListConditionalRules(ctx)
		if err != nil {
			return err
		}
		for _, r := range rules {
			snap.Rules[r.QuestionID] = engine.ConditionalRule{
				QuestionID:       r.QuestionID,
				ParentQuestionID: r.ParentQuestionID,
				RequiredValue:    r.RequiredValue,
				Mode:             engine.DisplayMode(r.DisplayMode),
			}
		}

		weights, err := q.ListWeightEntries(ctx)
		if err != nil {
			return err
		}
		entries := make([]engine.WeightEntry, 0, len(weights))
		for _, w := range weights {
			entries = append(entries, engine.WeightEntry{
				QuestionID:  w.QuestionID,
				OptionValue: w.OptionValue,
				Points:      w.Points,
			})
		}
		snap.Weights = engine.NewWeightTable(entries)

		ranges, err := q.ListTierRanges(ctx)
		if err != nil {
			return err
		}
		for _, r := range ranges {
			snap.TierRanges = append(snap.TierRanges, engine.TierRange{
				Tier:     engine.RiskTier(r.Tier),
				MinScore: r.MinScore,
				MaxScore: r.MaxScore,
			})
		}

		advice, err := q.ListAdviceRecords(ctx)
		if err != nil {
			return err
		}
		for _, a := range advice {
			snap.Advice = append(snap.Advice, engine.AdviceRecord{
				TierLabel: a.TierLabel,
				MinScore:  a.MinScore,
				MaxScore:  a.MaxScore,
				Advice:    a.Advice,
				UpdatedAt: a.UpdatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: load config snapshot: %w", err)
	}
	return snap, nil
}

// questionFromRow converts a db question row, decoding the JSONB options
// column. A null options column (numeric/free-text questions) yields no
// options; malformed options JSON is a hard error — it means the admin
// surface wrote garbage and scoring labels would be wrong.
func questionFromRow(row db.Question) (engine.Question, error) {
	q := engine.Question{
		ID:   row.ID,
		Text: row.Text,
		Type: engine.QuestionType(row.QType),
	}
	if row.Options.Valid && len(row.Options.RawMessage) > 0 {
		if err := json.Unmarshal(row.Options.RawMessage, &q.Options); err != nil {
			return engine.Question{}, fmt.Errorf("decode options: %w", err)
		}
	}
	return q, nil
}

// AnswersForEngine converts stored answer rows (joined with their question
// definitions) into engine answers with display labels resolved. Rows whose
// question has been deleted keep the raw question ID as their label.
func AnswersForEngine(rows []db.AnswerWithQuestionRow) ([]engine.Answer, error) {
	out := make([]engine.Answer, 0, len(rows))
	for _, row := range rows {
		a := engine.Answer{
			QuestionID:    row.QuestionID,
			Value:         row.Value,
			QuestionLabel: row.QuestionText,
			AnswerLabel:   row.Value,
		}
		if row.Options.Valid && len(row.Options.RawMessage) > 0 {
			var opts []engine.Option
			if err := json.Unmarshal(row.Options.RawMessage, &opts); err != nil {
				return nil, fmt.Errorf("question %q: decode options: %w", row.QuestionID, err)
			}
			for _, o := range opts {
				if o.ID == row.Value {
					a.AnswerLabel = o.Label
					break
				}
			}
		}
		out = append(out, a)
	}
	return out, nil
}
