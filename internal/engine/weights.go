// Package engine implements the risk assessment scoring and recommendation
// resolution core: weight-table scoring, tier classification, advice
// resolution, and conditional question visibility. It is intentionally
// dependency-free: it imports nothing from internal/ and can be tested
// without a database.
//
// Every function in this package is pure and stateless. Configuration
// (weights, tier ranges, advice records, rules) is handed in as a read-only
// snapshot per evaluation; the engine never caches and never performs I/O.
package engine

import "strings"

// ─── WEIGHT TABLE ─────────────────────────────────────────────────────────────

// WeightEntry maps one (questionID, optionValue) pair to its point
// contribution. An entry with an empty OptionValue is the question's default
// contribution, applied when the answer is affirmative but matches no
// discrete option — used for presence/absence boolean questions.
type WeightEntry struct {
	QuestionID  string
	OptionValue string
	Points      int
}

type weightKey struct {
	questionID string
	value      string
}

// WeightTable is an indexed view over a slice of WeightEntry rows.
// Build it once per evaluation with NewWeightTable; lookups are O(1).
type WeightTable struct {
	exact    map[weightKey]int
	defaults map[string]int // questionID → default points (empty OptionValue rows)
}

// NewWeightTable indexes entries for lookup. When duplicate entries exist for
// the same (questionID, optionValue) pair the last one wins — the data layer
// enforces uniqueness, so duplicates only appear in hand-built test fixtures.
func NewWeightTable(entries []WeightEntry) *WeightTable {
	t := &WeightTable{
		exact:    make(map[weightKey]int, len(entries)),
		defaults: make(map[string]int),
	}
	for _, e := range entries {
		if e.OptionValue == "" {
			t.defaults[e.QuestionID] = e.Points
			continue
		}
		t.exact[weightKey{e.QuestionID, normalizeValue(e.OptionValue)}] = e.Points
	}
	return t
}

// Lookup resolves the contribution for one answer. Resolution order:
//
//  1. Exact (questionID, value) entry.
//  2. The question's default entry, but only for affirmative answers.
//  3. Zero — unknown questions and unweighted answers are inert, never errors.
func (t *WeightTable) Lookup(questionID, value string) int {
	v := normalizeValue(value)
	if pts, ok := t.exact[weightKey{questionID, v}]; ok {
		return pts
	}
	if pts, ok := t.defaults[questionID]; ok && isAffirmative(v) {
		return pts
	}
	return 0
}

// Len reports the number of indexed entries, defaults included.
func (t *WeightTable) Len() int {
	return len(t.exact) + len(t.defaults)
}

// normalizeValue trims whitespace so " yes " and "yes" resolve identically.
// Case is preserved for option values; only affirmative detection folds case.
func normalizeValue(v string) string {
	return strings.TrimSpace(v)
}

// isAffirmative reports whether a stored answer value represents "present" /
// "true" for boolean-style questions.
func isAffirmative(v string) bool {
	switch strings.ToLower(v) {
	case "true", "yes", "1":
		return true
	}
	return false
}
