package engine

import "strings"

// ─── TIERS ────────────────────────────────────────────────────────────────────

// RiskTier is the three-bucket clinical classification. String values
// deliberately match the Postgres enum so they can be stored without
// conversion.
type RiskTier string

const (
	TierLow      RiskTier = "low"
	TierModerate RiskTier = "moderate"
	TierHigh     RiskTier = "high"
)

// Label returns the caregiver-facing form of the tier name.
func (t RiskTier) Label() string {
	switch t {
	case TierLow:
		return "Low"
	case TierModerate:
		return "Moderate"
	case TierHigh:
		return "High"
	}
	return string(t)
}

// tierPriority is the fixed walk order for classification. Ranges are
// evaluated in this order regardless of how the slice is stored, so the
// result does not depend on admin row ordering.
var tierPriority = [...]RiskTier{TierLow, TierModerate, TierHigh}

// TierRange is one admin-configured inclusive score band. Ranges are expected
// to be contiguous and non-overlapping across the three tiers, but this is
// not guaranteed at the data layer.
type TierRange struct {
	Tier     RiskTier
	MinScore int
	MaxScore int
}

// Classification is the result of one classify call. Fallback is true when
// no configured range contained the score and the built-in partition was
// used instead — callers log this so misconfiguration is visible in
// telemetry rather than silently absorbed.
type Classification struct {
	Tier     RiskTier
	Fallback bool
}

// ─── CLASSIFIER ───────────────────────────────────────────────────────────────

// Classify maps a score to a tier. Tiers are walked in fixed priority order
// (Low, Moderate, High); the first configured range containing the score
// wins. If no range contains the score — gaps or missing rows from
// administrator misconfiguration — the built-in default partition is applied
// so classification never fails.
func Classify(score int, ranges []TierRange) Classification {
	for _, tier := range tierPriority {
		for _, r := range ranges {
			if r.Tier != tier {
				continue
			}
			if score >= r.MinScore && score <= r.MaxScore {
				return Classification{Tier: tier}
			}
		}
	}
	return Classification{Tier: defaultPartition(score), Fallback: true}
}

// defaultPartition is the built-in safety net: ≤2 low, 3–5 moderate, ≥6 high.
// It is defined once and shared by Classify and ResolveAdvice so the two
// fallbacks cannot diverge. It is an independent default, not a mirror of
// admin configuration — a configured range match always takes precedence.
func defaultPartition(score int) RiskTier {
	switch {
	case score <= 2:
		return TierLow
	case score <= 5:
		return TierModerate
	default:
		return TierHigh
	}
}

// ─── LABEL CANONICALIZATION ──────────────────────────────────────────────────

// tierPatterns is the ordered substring → tier list used to canonicalize
// stored labels. Order matters: "mod" is checked before "med" and both before
// "high", so mixed labels like "medium-high" resolve to Moderate. Keeping
// this as an explicit table makes the normalization step testable and
// extensible instead of scattered ad hoc string checks.
var tierPatterns = []struct {
	substr string
	tier   RiskTier
}{
	{"low", TierLow},
	{"mod", TierModerate},
	{"med", TierModerate},
	{"high", TierHigh},
}

// CanonicalTier normalizes a stored tier label ("Medium", " high risk ",
// "MODERATE") to one of the three canonical tiers. The second return is
// false when the label matches no pattern.
func CanonicalTier(label string) (RiskTier, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return "", false
	}
	for _, p := range tierPatterns {
		if strings.Contains(l, p.substr) {
			return p.tier, true
		}
	}
	return "", false
}
