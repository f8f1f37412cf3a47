// Package types defines the domain types shared by the session, transport and view layers.
package types

// Severity ranks how harmful a detected pricing issue is
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every severity in escalating order
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank returns the escalation order of a severity (low=0 ... critical=3).
// Unrecognised values rank -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// Valid reports whether s is a known severity
func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// AtLeast reports whether s is as severe as other
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// String returns the string representation
func (s Severity) String() string {
	return string(s)
}

// IssueType is the category tag the backend attaches to an issue.
// Tags outside the known set are kept as-is.
type IssueType string

const (
	IssueHiddenFee       IssueType = "hidden_fee"
	IssueFakeFree        IssueType = "fake_free"
	IssueMisleadingPrice IssueType = "misleading_price"
	IssueUsageCap        IssueType = "usage_cap"
	IssueFeatureGate     IssueType = "feature_gate"
	IssueTimeLimit       IssueType = "time_limit"
	IssueRequiredAddon   IssueType = "required_addon"
	IssueBaitSwitch      IssueType = "bait_switch"
)

var issueLabels = map[IssueType]string{
	IssueHiddenFee:       "Hidden fee",
	IssueFakeFree:        "Fake free tier",
	IssueMisleadingPrice: "Misleading price",
	IssueUsageCap:        "Usage cap",
	IssueFeatureGate:     "Feature gate",
	IssueTimeLimit:       "Time limit",
	IssueRequiredAddon:   "Required add-on",
	IssueBaitSwitch:      "Bait and switch",
}

// Label returns a display label for the issue type
func (t IssueType) Label() string {
	if label, ok := issueLabels[t]; ok {
		return label
	}
	return string(t)
}

// Known reports whether the tag is one of the catalogued issue types
func (t IssueType) Known() bool {
	_, ok := issueLabels[t]
	return ok
}

// PricingIssue is a single deceptive-pricing finding
type PricingIssue struct {
	// Type is the category tag
	Type IssueType `json:"type"`

	// Severity is the escalation level
	Severity Severity `json:"severity"`

	// Title is a short headline
	Title string `json:"title"`

	// Description explains the issue
	Description string `json:"description"`

	// Evidence is an excerpt of the submitted text, may be empty
	Evidence string `json:"evidence"`

	// Recommendation tells the visitor what to do about it
	Recommendation string `json:"recommendation"`
}

// TierAnalysis describes one pricing tier as the backend sees it
type TierAnalysis struct {
	// Name is the tier name
	Name string `json:"name"`

	// StatedPrice is the advertised price as display text
	StatedPrice string `json:"stated_price"`

	// TrueCostEstimate is the estimated real cost as display text
	TrueCostEstimate *string `json:"true_cost_estimate"`

	// Limitations lists constraints of the tier
	Limitations []string `json:"limitations"`

	// HiddenRequirements lists things needed but not advertised
	HiddenRequirements []string `json:"hidden_requirements"`
}

// TrueCost returns the true cost estimate and whether one was given
func (t TierAnalysis) TrueCost() (string, bool) {
	if t.TrueCostEstimate == nil || *t.TrueCostEstimate == "" {
		return "", false
	}
	return *t.TrueCostEstimate, true
}

// AnalysisResult is the backend's verdict on a pricing page.
// OverallScore is meaningful even when Issues is empty.
type AnalysisResult struct {
	// ToolName is the analyzed tool
	ToolName string `json:"tool_name"`

	// OverallScore is the honesty score, 0-100
	OverallScore int `json:"overall_score"`

	// Verdict is a one-line verdict
	Verdict string `json:"verdict"`

	// Issues are the detected issues, in backend order
	Issues []PricingIssue `json:"issues"`

	// Tiers are the analyzed pricing tiers, in backend order
	Tiers []TierAnalysis `json:"tiers"`

	// Summary is a prose summary
	Summary string `json:"summary"`

	// Recommendations are overall recommendations, in backend order
	Recommendations []string `json:"recommendations"`
}

// SeverityCounts tallies issues per severity
func (r *AnalysisResult) SeverityCounts() map[Severity]int {
	counts := make(map[Severity]int, len(Severities))
	for _, issue := range r.Issues {
		counts[issue.Severity]++
	}
	return counts
}

// HighestSeverity returns the most severe issue level, or "" when there are no issues
func (r *AnalysisResult) HighestSeverity() Severity {
	var highest Severity
	for _, issue := range r.Issues {
		if highest == "" || issue.Severity.Rank() > highest.Rank() {
			highest = issue.Severity
		}
	}
	return highest
}

// ScoreBand groups honesty scores for display
type ScoreBand string

const (
	BandHonest     ScoreBand = "honest"
	BandCaution    ScoreBand = "caution"
	BandMisleading ScoreBand = "misleading"
	BandDeceptive  ScoreBand = "deceptive"
)

// Band returns the display band of the overall score
func (r *AnalysisResult) Band() ScoreBand {
	return BandForScore(r.OverallScore)
}

// BandForScore maps a 0-100 score to its band
func BandForScore(score int) ScoreBand {
	switch {
	case score >= 80:
		return BandHonest
	case score >= 60:
		return BandCaution
	case score >= 40:
		return BandMisleading
	default:
		return BandDeceptive
	}
}
