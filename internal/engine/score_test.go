package engine_test

import (
	"testing"

	"github.com/ivancohen/eyesentrymain-sub002/internal/engine"
)

// ─── WeightTable ──────────────────────────────────────────────────────────────

func TestWeightTable_Lookup(t *testing.T) {
	table := engine.NewWeightTable([]engine.WeightEntry{
		{QuestionID: "family_history", OptionValue: "yes", Points: 2},
		{QuestionID: "family_history", OptionValue: "no", Points: 0},
		{QuestionID: "iop_elevated", OptionValue: "", Points: 3}, // boolean default
		{QuestionID: "age_band", OptionValue: "65+", Points: 2},
	})

	tests := []struct {
		name       string
		questionID string
		value      string
		want       int
	}{
		{"exact match", "family_history", "yes", 2},
		{"exact match zero weight", "family_history", "no", 0},
		{"exact match trims whitespace", "family_history", "  yes  ", 2},
		{"unknown question", "nosuch", "yes", 0},
		{"unknown value", "age_band", "40-50", 0},
		{"boolean default fires on true", "iop_elevated", "true", 3},
		{"boolean default fires on yes", "iop_elevated", "yes", 3},
		{"boolean default fires on 1", "iop_elevated", "1", 3},
		{"boolean default inert on false", "iop_elevated", "false", 0},
		{"boolean default inert on arbitrary text", "iop_elevated", "maybe", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Lookup(tt.questionID, tt.value); got != tt.want {
				t.Errorf("Lookup(%q, %q) = %d, want %d", tt.questionID, tt.value, got, tt.want)
			}
		})
	}
}

// ─── ComputeScore ─────────────────────────────────────────────────────────────

func TestComputeScore_TotalAndFactors(t *testing.T) {
	// Weights {(Q1,yes)=2, (Q2,yes)=2}, answers {Q1:yes, Q2:no} → total 2,
	// one contributing factor.
	table := engine.NewWeightTable([]engine.WeightEntry{
		{QuestionID: "Q1", OptionValue: "yes", Points: 2},
		{QuestionID: "Q2", OptionValue: "yes", Points: 2},
	})
	answers := []engine.Answer{
		{QuestionID: "Q1", Value: "yes", QuestionLabel: "Family history of glaucoma", AnswerLabel: "Yes"},
		{QuestionID: "Q2", Value: "no", QuestionLabel: "Ocular steroid use", AnswerLabel: "No"},
	}

	got := engine.ComputeScore(answers, table)

	if got.Total != 2 {
		t.Errorf("Total = %d, want 2", got.Total)
	}
	if len(got.Factors) != 1 {
		t.Fatalf("Factors length = %d, want 1", len(got.Factors))
	}
	f := got.Factors[0]
	if f.QuestionLabel != "Family history of glaucoma" || f.AnswerLabel != "Yes" || f.Points != 2 {
		t.Errorf("unexpected factor: %+v", f)
	}
}

func TestComputeScore_FactorsPreserveAnswerOrder(t *testing.T) {
	table := engine.NewWeightTable([]engine.WeightEntry{
		{QuestionID: "Q1", OptionValue: "a", Points: 1},
		{QuestionID: "Q2", OptionValue: "b", Points: 2},
		{QuestionID: "Q3", OptionValue: "c", Points: 3},
	})
	answers := []engine.Answer{
		{QuestionID: "Q3", Value: "c"},
		{QuestionID: "Q1", Value: "a"},
		{QuestionID: "Q2", Value: "b"},
	}

	got := engine.ComputeScore(answers, table)

	wantOrder := []string{"Q3", "Q1", "Q2"}
	if len(got.Factors) != len(wantOrder) {
		t.Fatalf("Factors length = %d, want %d", len(got.Factors), len(wantOrder))
	}
	for i, want := range wantOrder {
		// Labels fall back to raw IDs when the data layer supplied none.
		if got.Factors[i].QuestionLabel != want {
			t.Errorf("Factors[%d].QuestionLabel = %q, want %q", i, got.Factors[i].QuestionLabel, want)
		}
	}
}

func TestComputeScore_UnknownAnswersAreInert(t *testing.T) {
	table := engine.NewWeightTable([]engine.WeightEntry{
		{QuestionID: "Q1", OptionValue: "yes", Points: 4},
	})
	answers := []engine.Answer{
		{QuestionID: "Q1", Value: "yes"},
		{QuestionID: "ghost_question", Value: "whatever"},
		{QuestionID: "Q1", Value: "not-an-option"},
	}

	got := engine.ComputeScore(answers, table)
	if got.Total != 4 {
		t.Errorf("Total = %d, want 4", got.Total)
	}
	if len(got.Factors) != 1 {
		t.Errorf("Factors length = %d, want 1", len(got.Factors))
	}
}

func TestComputeScore_TotalNeverNegative(t *testing.T) {
	table := engine.NewWeightTable([]engine.WeightEntry{
		{QuestionID: "Q1", OptionValue: "yes", Points: -5},
		{QuestionID: "Q2", OptionValue: "yes", Points: 1},
	})
	answers := []engine.Answer{
		{QuestionID: "Q1", Value: "yes"},
		{QuestionID: "Q2", Value: "yes"},
	}

	got := engine.ComputeScore(answers, table)
	if got.Total != 0 {
		t.Errorf("Total = %d, want 0 (clamped)", got.Total)
	}
	// Negative contributions never appear in the breakdown either.
	for _, f := range got.Factors {
		if f.Points <= 0 {
			t.Errorf("factor with non-positive points leaked into breakdown: %+v", f)
		}
	}
}

func TestComputeScore_EmptyAnswers(t *testing.T) {
	table := engine.NewWeightTable(nil)
	got := engine.ComputeScore(nil, table)
	if got.Total != 0 || len(got.Factors) != 0 {
		t.Errorf("got %+v, want zero total and no factors", got)
	}
}

func TestComputeScore_NilTablePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil weight table")
		}
	}()
	engine.ComputeScore([]engine.Answer{{QuestionID: "Q1", Value: "yes"}}, nil)
}

func TestComputeScore_Deterministic(t *testing.T) {
	table := engine.NewWeightTable([]engine.WeightEntry{
		{QuestionID: "Q1", OptionValue: "yes", Points: 2},
		{QuestionID: "Q2", OptionValue: "", Points: 3},
	})
	answers := []engine.Answer{
		{QuestionID: "Q1", Value: "yes"},
		{QuestionID: "Q2", Value: "true"},
	}

	first := engine.ComputeScore(answers, table)
	second := engine.ComputeScore(answers, table)

	if first.Total != second.Total || len(first.Factors) != len(second.Factors) {
		t.Errorf("repeated calls diverged: %+v vs %+v", first, second)
	}
	for i := range first.Factors {
		if first.Factors[i] != second.Factors[i] {
			t.Errorf("Factors[%d] diverged: %+v vs %+v", i, first.Factors[i], second.Factors[i])
		}
	}
}
