package engine

// ─── QUESTION DEFINITIONS ─────────────────────────────────────────────────────

// QuestionType is the declared input kind of a question.
type QuestionType string

const (
	QuestionSingleSelect QuestionType = "single-select"
	QuestionMultiSelect  QuestionType = "multi-select"
	QuestionNumeric      QuestionType = "numeric"
	QuestionFreeText     QuestionType = "free-text"
)

// Option is one selectable choice on a select-type question.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Question is the read-only definition of one questionnaire item. Created and
// edited by the admin surface; immutable during a questionnaire session.
type Question struct {
	ID      string
	Text    string
	Type    QuestionType
	Options []Option
}

// OptionLabel returns the display label for a stored option value, or the
// value itself when no option matches (free text, numeric, stale config).
func (q Question) OptionLabel(value string) string {
	for _, o := range q.Options {
		if o.ID == value || o.Label == value {
			return o.Label
		}
	}
	return value
}

// ─── SNAPSHOT ─────────────────────────────────────────────────────────────────

// Snapshot is one internally consistent read of the questionnaire
// configuration, assembled by the data layer and handed to the engine per
// evaluation. Passing it explicitly (rather than holding a live reference or
// module-level cache) is what keeps every engine function pure: if
// configuration is refreshed mid-session, sequencing is the caller's problem,
// not hidden staleness here.
type Snapshot struct {
	Questions  []Question
	Weights    *WeightTable
	TierRanges []TierRange
	Advice     []AdviceRecord
	Rules      map[string]ConditionalRule // keyed by dependent question ID
}

// QuestionByID returns the question definition, or a zero Question and false.
func (s *Snapshot) QuestionByID(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// RuleFor returns the conditional rule governing a question, or nil when the
// question is unconditional.
func (s *Snapshot) RuleFor(questionID string) *ConditionalRule {
	if r, ok := s.Rules[questionID]; ok {
		return &r
	}
	return nil
}

// ─── ASSESSMENT PIPELINE ──────────────────────────────────────────────────────

// Assessment is the combined output of one full evaluation pass.
type Assessment struct {
	Score          ScoreResult
	Classification Classification
	Advice         AdviceResult
}

// Evaluate runs the full pipeline over one answer set: score, classify, then
// resolve advice. storedLabel is the tier label previously persisted on a
// historical record, or empty for a fresh assessment. Like its parts, it
// cannot fail on data-quality grounds.
func (s *Snapshot) Evaluate(answers []Answer, storedLabel string) Assessment {
	score := ComputeScore(answers, s.Weights)
	cls := Classify(score.Total, s.TierRanges)
	advice := ResolveAdvice(cls.Tier, score.Total, storedLabel, s.Advice)
	return Assessment{Score: score, Classification: cls, Advice: advice}
}

// Visibility evaluates the display state of every question in the snapshot
// against the current answers, keyed by question ID. O(questions); cheap
// enough to re-run on every answer change.
func (s *Snapshot) Visibility(answers map[string]string) map[string]DisplayMode {
	out := make(map[string]DisplayMode, len(s.Questions))
	for _, q := range s.Questions {
		out[q.ID] = EvaluateVisibility(s.RuleFor(q.ID), answers)
	}
	return out
}
