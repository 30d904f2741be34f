package engine

import (
	"strings"
	"time"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// AdviceRecord is one admin-curated recommendation row. TierLabel is the
// label exactly as stored — casing and wording are not guaranteed to be
// canonical, which is why resolution needs a fallback chain at all.
type AdviceRecord struct {
	TierLabel string
	MinScore  int
	MaxScore  int
	Advice    string
	UpdatedAt time.Time
}

// MatchStrategy identifies which step of the resolution chain produced the
// returned advice. Persisted alongside the assessment for auditability —
// when admin data is inconsistent, this is how you find out which rule fired.
type MatchStrategy string

const (
	MatchCanonicalLabel       MatchStrategy = "canonical-label"
	MatchCaseInsensitiveLabel MatchStrategy = "case-insensitive-label"
	MatchStoredLabel          MatchStrategy = "stored-label"
	MatchScoreRange           MatchStrategy = "score-range"
	MatchManualPartition      MatchStrategy = "manual-partition"
	MatchFallback             MatchStrategy = "fallback"
)

// AdviceResult is what the resolver returns. Advice is never empty.
type AdviceResult struct {
	Advice   string
	Strategy MatchStrategy
}

// fallbackAdvice is the terminal message when every strategy fails. The UI
// must always have something to render.
const fallbackAdvice = "Recommendations will be provided by your doctor based on this assessment."

// ─── RESOLVER ─────────────────────────────────────────────────────────────────

// ResolveAdvice finds the advice record for a tier/score through a strictly
// ordered fallback chain. Each step runs only after the previous one failed
// to find a record; the result is always usable text, never an error.
//
//  1. Canonicalized exact match — both the tier and each record label are
//     canonicalized (CanonicalTier) and compared.
//  2. Case-insensitive literal match of the canonical tier name against the
//     raw stored label, for labels that don't cleanly canonicalize.
//  3. Literal match against storedLabel — the previously persisted tier label
//     on a historical record, when the caller supplied one.
//  4. Score-range containment, ignoring label text entirely.
//  5. Manual partition — the built-in score thresholds pick a canonical tier
//     name, then one final literal-label lookup against that name.
//  6. Terminal generic message.
func ResolveAdvice(tier RiskTier, score int, storedLabel string, records []AdviceRecord) AdviceResult {
	// 1. Canonicalized exact match.
	if canon, ok := CanonicalTier(string(tier)); ok {
		for _, rec := range records {
			if recCanon, ok := CanonicalTier(rec.TierLabel); ok && recCanon == canon {
				return AdviceResult{Advice: rec.Advice, Strategy: MatchCanonicalLabel}
			}
		}
	}

	// 2. Case-insensitive literal match against the raw stored labels.
	for _, rec := range records {
		if strings.EqualFold(strings.TrimSpace(rec.TierLabel), string(tier)) {
			return AdviceResult{Advice: rec.Advice, Strategy: MatchCaseInsensitiveLabel}
		}
	}

	// 3. Literal match against the caller's previously persisted label, if it
	// differs from the freshly computed tier.
	if stored := strings.TrimSpace(storedLabel); stored != "" && !strings.EqualFold(stored, string(tier)) {
		for _, rec := range records {
			if strings.EqualFold(strings.TrimSpace(rec.TierLabel), stored) {
				return AdviceResult{Advice: rec.Advice, Strategy: MatchStoredLabel}
			}
		}
	}

	// 4. Score-range containment, regardless of label text.
	for _, rec := range records {
		if score >= rec.MinScore && score <= rec.MaxScore {
			return AdviceResult{Advice: rec.Advice, Strategy: MatchScoreRange}
		}
	}

	// 5. Manual partition: shared thresholds pick a canonical name, then one
	// last literal lookup against it.
	manual := defaultPartition(score)
	for _, rec := range records {
		if strings.EqualFold(strings.TrimSpace(rec.TierLabel), string(manual)) {
			return AdviceResult{Advice: rec.Advice, Strategy: MatchManualPartition}
		}
	}

	// 6. Terminal fallback.
	return AdviceResult{Advice: fallbackAdvice, Strategy: MatchFallback}
}
