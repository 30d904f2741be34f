package engine_test

import (
	"testing"

	"github.com/ivancohen/eyesentrymain-sub002/internal/engine"
)

// ─── EvaluateVisibility ───────────────────────────────────────────────────────

func TestEvaluateVisibility_NoRuleAlwaysShows(t *testing.T) {
	got := engine.EvaluateVisibility(nil, map[string]string{"Q1": "yes"})
	if got != engine.DisplayShow {
		t.Errorf("got %s, want show", got)
	}
}

func TestEvaluateVisibility_ConditionMetAppliesModeLiterally(t *testing.T) {
	tests := []struct {
		mode engine.DisplayMode
		want engine.DisplayMode
	}{
		{engine.DisplayShow, engine.DisplayShow},
		{engine.DisplayHide, engine.DisplayHide},
		{engine.DisplayDisable, engine.DisplayDisable},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			rule := &engine.ConditionalRule{
				QuestionID:       "steroid_type",
				ParentQuestionID: "steroid_use",
				RequiredValue:    "yes",
				Mode:             tt.mode,
			}
			got := engine.EvaluateVisibility(rule, map[string]string{"steroid_use": "yes"})
			if got != tt.want {
				t.Errorf("mode %s with condition met = %s, want %s", tt.mode, got, tt.want)
			}
		})
	}
}

func TestEvaluateVisibility_ConditionFalseAppliesInverseDefault(t *testing.T) {
	tests := []struct {
		mode engine.DisplayMode
		want engine.DisplayMode
	}{
		{engine.DisplayShow, engine.DisplayHide},   // show-if inverts to hidden
		{engine.DisplayHide, engine.DisplayShow},   // hide-if inverts to shown
		{engine.DisplayDisable, engine.DisplayShow}, // disable-if inverts to enabled
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			rule := &engine.ConditionalRule{
				QuestionID:       "steroid_type",
				ParentQuestionID: "steroid_use",
				RequiredValue:    "yes",
				Mode:             tt.mode,
			}
			got := engine.EvaluateVisibility(rule, map[string]string{"steroid_use": "no"})
			if got != tt.want {
				t.Errorf("mode %s with condition false = %s, want %s", tt.mode, got, tt.want)
			}
		})
	}
}

func TestEvaluateVisibility_DisableRuleNonMatchingAnswer(t *testing.T) {
	// Rule {parent Q1, required "diabetes", mode disable}, answer
	// {Q1: "glaucoma"} → question stays shown/enabled.
	rule := &engine.ConditionalRule{
		QuestionID:       "medication_detail",
		ParentQuestionID: "Q1",
		RequiredValue:    "diabetes",
		Mode:             engine.DisplayDisable,
	}
	got := engine.EvaluateVisibility(rule, map[string]string{"Q1": "glaucoma"})
	if got != engine.DisplayShow {
		t.Errorf("got %s, want show", got)
	}
}

func TestEvaluateVisibility_MissingParentAnswerIsConditionFalse(t *testing.T) {
	rule := &engine.ConditionalRule{
		QuestionID:       "steroid_type",
		ParentQuestionID: "steroid_use",
		RequiredValue:    "yes",
		Mode:             engine.DisplayShow,
	}
	got := engine.EvaluateVisibility(rule, map[string]string{})
	if got != engine.DisplayHide {
		t.Errorf("got %s, want hide (unanswered parent treats condition as false)", got)
	}
}

func TestEvaluateVisibility_ComparisonTrimsWhitespace(t *testing.T) {
	rule := &engine.ConditionalRule{
		ParentQuestionID: "steroid_use",
		RequiredValue:    "yes",
		Mode:             engine.DisplayShow,
	}
	got := engine.EvaluateVisibility(rule, map[string]string{"steroid_use": " yes "})
	if got != engine.DisplayShow {
		t.Errorf("got %s, want show", got)
	}
}

func TestEvaluateVisibility_UnknownModeResolvesToShow(t *testing.T) {
	rule := &engine.ConditionalRule{
		ParentQuestionID: "steroid_use",
		RequiredValue:    "yes",
		Mode:             engine.DisplayMode("collapse"),
	}
	for _, answers := range []map[string]string{
		{"steroid_use": "yes"},
		{"steroid_use": "no"},
	} {
		if got := engine.EvaluateVisibility(rule, answers); got != engine.DisplayShow {
			t.Errorf("answers %v: got %s, want show", answers, got)
		}
	}
}

// ─── Snapshot helpers ────────────────────────────────────────────────────────

func TestSnapshotVisibility_EvaluatesEveryQuestion(t *testing.T) {
	snap := &engine.Snapshot{
		Questions: []engine.Question{
			{ID: "steroid_use", Text: "Do you use ocular steroids?", Type: engine.QuestionSingleSelect},
			{ID: "steroid_type", Text: "Which steroid?", Type: engine.QuestionSingleSelect},
			{ID: "age", Text: "Age", Type: engine.QuestionNumeric},
		},
		Rules: map[string]engine.ConditionalRule{
			"steroid_type": {
				QuestionID:       "steroid_type",
				ParentQuestionID: "steroid_use",
				RequiredValue:    "yes",
				Mode:             engine.DisplayShow,
			},
		},
	}

	got := snap.Visibility(map[string]string{"steroid_use": "no"})

	if got["steroid_use"] != engine.DisplayShow {
		t.Errorf("unconditional question = %s, want show", got["steroid_use"])
	}
	if got["steroid_type"] != engine.DisplayHide {
		t.Errorf("dependent question = %s, want hide", got["steroid_type"])
	}
	if got["age"] != engine.DisplayShow {
		t.Errorf("unconditional numeric question = %s, want show", got["age"])
	}
}

func TestSnapshotEvaluate_FullPipeline(t *testing.T) {
	snap := &engine.Snapshot{
		Weights: engine.NewWeightTable([]engine.WeightEntry{
			{QuestionID: "family_history", OptionValue: "yes", Points: 4},
			{QuestionID: "iop_elevated", OptionValue: "", Points: 3},
		}),
		TierRanges: []engine.TierRange{
			{Tier: engine.TierLow, MinScore: 0, MaxScore: 2},
			{Tier: engine.TierModerate, MinScore: 3, MaxScore: 5},
			{Tier: engine.TierHigh, MinScore: 6, MaxScore: 99},
		},
		Advice: []engine.AdviceRecord{
			{TierLabel: "High", Advice: "Refer to ophthalmology within two weeks"},
		},
	}
	answers := []engine.Answer{
		{QuestionID: "family_history", Value: "yes", QuestionLabel: "Family history", AnswerLabel: "Yes"},
		{QuestionID: "iop_elevated", Value: "true", QuestionLabel: "Elevated IOP", AnswerLabel: "Yes"},
	}

	got := snap.Evaluate(answers, "")

	if got.Score.Total != 7 {
		t.Errorf("Total = %d, want 7", got.Score.Total)
	}
	if got.Classification.Tier != engine.TierHigh || got.Classification.Fallback {
		t.Errorf("Classification = %+v, want configured high", got.Classification)
	}
	if got.Advice.Strategy != engine.MatchCanonicalLabel {
		t.Errorf("Strategy = %s, want %s", got.Advice.Strategy, engine.MatchCanonicalLabel)
	}
	if got.Advice.Advice != "Refer to ophthalmology within two weeks" {
		t.Errorf("unexpected advice %q", got.Advice.Advice)
	}
}
