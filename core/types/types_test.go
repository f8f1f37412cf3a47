package types

import "testing"

func TestSeverityOrdering(t *testing.T) {
	for i := 1; i < len(Severities); i++ {
		prev, cur := Severities[i-1], Severities[i]
		if !cur.AtLeast(prev) || prev.AtLeast(cur) {
			t.Errorf("expected %s to escalate above %s", cur, prev)
		}
	}
	if Severity("urgent").Valid() {
		t.Error("unknown severity should not be valid")
	}
}

func TestHighestSeverity(t *testing.T) {
	result := &AnalysisResult{
		Issues: []PricingIssue{
			{Severity: SeverityMedium},
			{Severity: SeverityCritical},
			{Severity: SeverityLow},
		},
	}
	if got := result.HighestSeverity(); got != SeverityCritical {
		t.Errorf("HighestSeverity() = %s, want critical", got)
	}
	counts := result.SeverityCounts()
	if counts[SeverityMedium] != 1 || counts[SeverityHigh] != 0 {
		t.Errorf("unexpected counts: %v", counts)
	}

	clean := &AnalysisResult{OverallScore: 95}
	if clean.HighestSeverity() != "" {
		t.Error("a clean result has no highest severity")
	}
	if clean.Band() != BandHonest {
		t.Errorf("score 95 should be honest, got %s", clean.Band())
	}
}

func TestBandForScore(t *testing.T) {
	tests := []struct {
		score int
		want  ScoreBand
	}{
		{100, BandHonest},
		{80, BandHonest},
		{79, BandCaution},
		{60, BandCaution},
		{59, BandMisleading},
		{40, BandMisleading},
		{39, BandDeceptive},
		{0, BandDeceptive},
	}
	for _, tt := range tests {
		if got := BandForScore(tt.score); got != tt.want {
			t.Errorf("BandForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestContentLengthCountsCharacters(t *testing.T) {
	ascii := "abcdefghij"
	if ContentLength(ascii) != 10 {
		t.Errorf("ContentLength(%q) = %d", ascii, ContentLength(ascii))
	}
	// 49 multi-byte characters are still under the minimum
	short := ""
	for i := 0; i < 49; i++ {
		short += "价"
	}
	if MeetsMinimumLength(short) {
		t.Error("49 characters should not meet the minimum even though it is >50 bytes")
	}
	if !MeetsMinimumLength(short + "格") {
		t.Error("50 characters should meet the minimum")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := map[string]string{
		"en-US": "en",
		"zh_CN": "zh",
		"DE":    "de",
		"":      "en",
		"  fr ": "fr",
	}
	for in, want := range tests {
		if got := NormalizeLanguage(in); got != want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
	if !IsSupportedLanguage("ko") || IsSupportedLanguage("pt") {
		t.Error("unexpected supported language set")
	}
}

func TestTrialStatusBranchesOnRemainingOnly(t *testing.T) {
	// used+remaining != limit must not matter
	inconsistent := TrialStatus{Used: 5, Remaining: 1, Limit: 3}
	if !inconsistent.HasRemaining() {
		t.Error("remaining > 0 should report quota left")
	}
	if (TrialStatus{Used: 3, Remaining: 0, Limit: 3}).HasRemaining() {
		t.Error("remaining == 0 should report exhausted")
	}
}

func TestIssueTypeLabel(t *testing.T) {
	if IssueFakeFree.Label() != "Fake free tier" {
		t.Errorf("unexpected label %q", IssueFakeFree.Label())
	}
	if IssueType("surge_pricing").Label() != "surge_pricing" || IssueType("surge_pricing").Known() {
		t.Error("unknown tags should be preserved verbatim")
	}
}
