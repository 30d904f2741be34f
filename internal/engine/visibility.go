package engine

// ─── TYPES ────────────────────────────────────────────────────────────────────

// DisplayMode is the resolved display state of a question, and also the
// declared mode on a conditional rule.
type DisplayMode string

const (
	DisplayShow    DisplayMode = "show"
	DisplayHide    DisplayMode = "hide"
	DisplayDisable DisplayMode = "disable"
)

// ConditionalRule declares that QuestionID's visibility depends on whether
// ParentQuestionID's current answer equals RequiredValue. At most one rule
// per question; only one level of dependency is modeled (no chains of
// conditional-on-conditional).
type ConditionalRule struct {
	QuestionID       string
	ParentQuestionID string
	RequiredValue    string
	Mode             DisplayMode
}

// ─── EVALUATOR ────────────────────────────────────────────────────────────────

// EvaluateVisibility decides the display state of one question given its rule
// (nil when the question is unconditional) and the current answer set keyed
// by question ID. It is stateless and idempotent — the caller re-invokes it
// on every change to the parent question's answer.
//
// When the parent's answer equals the required value, the declared mode
// applies literally. When it does not — including when the parent has no
// answer yet — the inverse default applies: a show-if rule hides the
// question, a hide-if rule shows it, and a disable-if rule leaves it enabled.
// An unrecognized mode resolves to show either way; a misconfigured rule
// must never hide a clinical question.
func EvaluateVisibility(rule *ConditionalRule, answers map[string]string) DisplayMode {
	if rule == nil {
		return DisplayShow
	}

	parentAnswer, answered := answers[rule.ParentQuestionID]
	conditionMet := answered && normalizeValue(parentAnswer) == normalizeValue(rule.RequiredValue)

	if conditionMet {
		switch rule.Mode {
		case DisplayShow, DisplayHide, DisplayDisable:
			return rule.Mode
		}
		return DisplayShow
	}

	switch rule.Mode {
	case DisplayShow:
		return DisplayHide
	case DisplayHide, DisplayDisable:
		return DisplayShow
	}
	return DisplayShow
}
