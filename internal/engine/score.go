package engine

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Answer is one collected (questionID, value) pair, annotated with the
// display labels the data layer resolved from the question definition.
// Labels are presentation-only; scoring uses QuestionID and Value alone.
//
// Multi-select questions arrive as one Answer row per selected option, so
// each selection can carry its own weight.
type Answer struct {
	QuestionID    string
	Value         string
	QuestionLabel string // question display text; falls back to QuestionID when empty
	AnswerLabel   string // option label; falls back to Value when empty
}

// ContributingFactor is one non-zero line of the score breakdown, shown to
// the doctor alongside the total.
type ContributingFactor struct {
	QuestionLabel string
	AnswerLabel   string
	Points        int
}

// ScoreResult is the full output of one scoring pass. Factors preserve the
// order the answers were supplied in and exclude zero-point entries; they are
// informational and do not affect Total.
type ScoreResult struct {
	Total   int
	Factors []ContributingFactor
}

// ─── SCORE CALCULATOR ─────────────────────────────────────────────────────────

// ComputeScore reduces an answer set against a weight table into a total and
// a per-answer breakdown.
//
// There are no data-quality error conditions: answers for unknown questions
// or unweighted values contribute zero and the questionnaire always produces
// a score. The total is clamped to be non-negative — contributions are
// expected non-negative by data design, but a bad weight row must not
// propagate a negative total.
//
// A nil table is a contract violation in the calling integration and panics.
func ComputeScore(answers []Answer, table *WeightTable) ScoreResult {
	if table == nil {
		panic("engine: ComputeScore called with nil weight table")
	}

	total := 0
	factors := make([]ContributingFactor, 0, len(answers))

	for _, a := range answers {
		pts := table.Lookup(a.QuestionID, a.Value)
		total += pts
		if pts <= 0 {
			continue
		}

		qLabel := a.QuestionLabel
		if qLabel == "" {
			qLabel = a.QuestionID
		}
		aLabel := a.AnswerLabel
		if aLabel == "" {
			aLabel = a.Value
		}

		factors = append(factors, ContributingFactor{
			QuestionLabel: qLabel,
			AnswerLabel:   aLabel,
			Points:        pts,
		})
	}

	if total < 0 {
		total = 0
	}

	return ScoreResult{Total: total, Factors: factors}
}
