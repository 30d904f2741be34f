package engine_test

import (
	"testing"

	"github.com/ivancohen/eyesentrymain-sub002/internal/engine"
)

// ─── Classify — configured ranges ────────────────────────────────────────────

func TestClassify_ConfiguredRanges(t *testing.T) {
	ranges := []engine.TierRange{
		{Tier: engine.TierLow, MinScore: 0, MaxScore: 2},
		{Tier: engine.TierModerate, MinScore: 3, MaxScore: 5},
		{Tier: engine.TierHigh, MinScore: 6, MaxScore: 99},
	}

	tests := []struct {
		score int
		want  engine.RiskTier
	}{
		{0, engine.TierLow},
		{2, engine.TierLow},
		{3, engine.TierModerate},
		{5, engine.TierModerate},
		{6, engine.TierHigh}, // range boundary
		{42, engine.TierHigh},
		{99, engine.TierHigh},
	}
	for _, tt := range tests {
		got := engine.Classify(tt.score, ranges)
		if got.Tier != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.score, got.Tier, tt.want)
		}
		if got.Fallback {
			t.Errorf("Classify(%d) flagged fallback on a configured match", tt.score)
		}
	}
}

func TestClassify_WalkOrderIndependentOfSliceOrder(t *testing.T) {
	// Overlapping misconfiguration: score 4 is inside both the High and Low
	// rows. The Low tier wins because the walk order is fixed, not the row
	// order.
	ranges := []engine.TierRange{
		{Tier: engine.TierHigh, MinScore: 0, MaxScore: 10},
		{Tier: engine.TierLow, MinScore: 0, MaxScore: 4},
	}
	got := engine.Classify(4, ranges)
	if got.Tier != engine.TierLow || got.Fallback {
		t.Errorf("Classify(4) = %+v, want low via configured range", got)
	}
}

// ─── Classify — fallback partition ───────────────────────────────────────────

func TestClassify_FallbackPartition(t *testing.T) {
	tests := []struct {
		name   string
		score  int
		ranges []engine.TierRange
		want   engine.RiskTier
	}{
		{"no ranges at all, low", 0, nil, engine.TierLow},
		{"no ranges at all, boundary low", 2, nil, engine.TierLow},
		{"no ranges at all, moderate", 3, nil, engine.TierModerate},
		{"no ranges at all, boundary moderate", 5, nil, engine.TierModerate},
		{"no ranges at all, high", 6, nil, engine.TierHigh},
		{"no ranges at all, very high", 87, nil, engine.TierHigh},
		{"gap between ranges", 5, []engine.TierRange{
			{Tier: engine.TierLow, MinScore: 0, MaxScore: 2},
			{Tier: engine.TierHigh, MinScore: 8, MaxScore: 99},
		}, engine.TierModerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Classify(tt.score, tt.ranges)
			if got.Tier != tt.want {
				t.Errorf("Classify(%d) = %s, want %s", tt.score, got.Tier, tt.want)
			}
			if !got.Fallback {
				t.Errorf("Classify(%d) did not flag fallback", tt.score)
			}
		})
	}
}

func TestClassify_TotalOverFullScoreDomain(t *testing.T) {
	// Every score in [0,100] must classify, with or without configuration.
	configured := []engine.TierRange{
		{Tier: engine.TierLow, MinScore: 0, MaxScore: 2},
		{Tier: engine.TierModerate, MinScore: 3, MaxScore: 5},
		{Tier: engine.TierHigh, MinScore: 6, MaxScore: 50}, // gap above 50 exercises fallback
	}
	for score := 0; score <= 100; score++ {
		for _, ranges := range [][]engine.TierRange{configured, nil} {
			got := engine.Classify(score, ranges)
			switch got.Tier {
			case engine.TierLow, engine.TierModerate, engine.TierHigh:
			default:
				t.Fatalf("Classify(%d) returned invalid tier %q", score, got.Tier)
			}
		}
	}
}

// ─── CanonicalTier ────────────────────────────────────────────────────────────

func TestCanonicalTier(t *testing.T) {
	tests := []struct {
		label  string
		want   engine.RiskTier
		wantOK bool
	}{
		{"low", engine.TierLow, true},
		{"Low", engine.TierLow, true},
		{"  LOW RISK ", engine.TierLow, true},
		{"moderate", engine.TierModerate, true},
		{"Medium", engine.TierModerate, true},
		{"med", engine.TierModerate, true},
		{"medium-high", engine.TierModerate, true}, // "med" checked before "high"
		{"high", engine.TierHigh, true},
		{"High Risk", engine.TierHigh, true},
		{"HIGH", engine.TierHigh, true},
		{"", "", false},
		{"unknown", "", false},
		{"severe", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := engine.CanonicalTier(tt.label)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CanonicalTier(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRiskTierLabel(t *testing.T) {
	tests := []struct {
		tier engine.RiskTier
		want string
	}{
		{engine.TierLow, "Low"},
		{engine.TierModerate, "Moderate"},
		{engine.TierHigh, "High"},
		{engine.RiskTier("weird"), "weird"},
	}
	for _, tt := range tests {
		if got := tt.tier.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.tier, got, tt.want)
		}
	}
}
