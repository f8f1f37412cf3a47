// Package ui - Interactive analysis runner with live feedback
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pricing-detective/core/pricing"
	"pricing-detective/core/store"
	"pricing-detective/core/types"
)

// Submitter runs one analysis cycle
type Submitter interface {
	Submit(ctx context.Context) store.Snapshot
}

// AnalysisRunner runs an analysis with live UI feedback
type AnalysisRunner struct {
	w           *Writer
	submitter   Submitter
	showSpinner bool
}

// NewAnalysisRunner creates a runner. The spinner is only shown when
// interactive is set, since it rewrites the current terminal line.
func NewAnalysisRunner(w *Writer, submitter Submitter, interactive bool) *AnalysisRunner {
	return &AnalysisRunner{
		w:           w,
		submitter:   submitter,
		showSpinner: interactive,
	}
}

// Run submits the session behind a spinner and reports how long it took.
// Rendering the outcome is left to the caller.
func (r *AnalysisRunner) Run(ctx context.Context) (store.Snapshot, time.Duration) {
	start := time.Now()

	var spinner *Spinner
	if r.showSpinner {
		spinner = r.w.NewSpinner("Analyzing pricing...")
		spinner.Start()
	}

	snap := r.submitter.Submit(ctx)

	if spinner != nil {
		spinner.Stop(snap.Phase() == store.PhaseSuccess)
	}
	return snap, time.Since(start)
}

// DisplayElapsed reports the duration of a run in verbose mode
func (r *AnalysisRunner) DisplayElapsed(d time.Duration) {
	r.w.Debug("Completed in %s", formatDuration(d))
}

// Display shows a session outcome: the result on success, the message on
// error, followed by the trial status when known
func (r *AnalysisRunner) Display(phase store.Phase, result *types.AnalysisResult, message string, trial *types.TrialStatus) {
	switch phase {
	case store.PhaseAnalyzing:
		r.w.Info("An analysis is already in progress")
	case store.PhaseError:
		r.w.Error("%s", message)
	case store.PhaseSuccess:
		r.DisplayResult(result)
	}
	if trial != nil {
		r.w.Line("")
		r.DisplayTrial(*trial)
	}
}

// DisplayResult shows the analysis result
func (r *AnalysisRunner) DisplayResult(result *types.AnalysisResult) {
	box := r.w.NewScoreBox()
	box.Tool = result.ToolName
	box.Score = result.OverallScore
	box.Verdict = result.Verdict
	box.Render()

	if result.Summary != "" {
		r.w.Line("")
		r.w.Line(result.Summary)
	}

	r.w.Line("")
	if len(result.Issues) == 0 {
		r.w.Success("No deceptive pricing patterns found")
	} else {
		r.w.SubHeader(fmt.Sprintf("Issues (%s)", SeverityLine(result)))
		for i, issue := range result.Issues {
			r.displayIssue(i+1, issue)
		}
	}

	if len(result.Tiers) > 0 {
		r.w.Line("")
		r.w.SubHeader("Pricing Tiers")
		table := r.w.NewTable("Tier", "Stated", "True Cost", "Hidden")
		for _, tier := range result.Tiers {
			trueCost, ok := tier.TrueCost()
			if !ok {
				trueCost = "-"
			}
			table.AddRow(tier.Name, tier.StatedPrice, trueCost, hiddenCell(tier))
		}
		table.Render()

		for _, tier := range result.Tiers {
			if len(tier.Limitations) == 0 && len(tier.HiddenRequirements) == 0 {
				continue
			}
			r.w.Line("")
			r.w.Line(r.w.color(Bold, tier.Name))
			for _, l := range tier.Limitations {
				r.w.Line("  - " + l)
			}
			for _, h := range tier.HiddenRequirements {
				r.w.Line(r.w.color(Yellow, "  ! ") + h)
			}
		}
	}

	if len(result.Recommendations) > 0 {
		r.w.Line("")
		r.w.SubHeader("Recommendations")
		for _, rec := range result.Recommendations {
			r.w.Line("  → " + rec)
		}
	}
}

func (r *AnalysisRunner) displayIssue(n int, issue types.PricingIssue) {
	tag := r.w.color(SeverityColor(issue.Severity), strings.ToUpper(issue.Severity.String()))
	r.w.Line("")
	r.w.Line(fmt.Sprintf("%d. [%s] %s %s", n, tag, issue.Title, r.w.color(Dim, "("+issue.Type.Label()+")")))
	if issue.Description != "" {
		r.w.Line("   " + issue.Description)
	}
	if issue.Evidence != "" {
		r.w.Line(r.w.color(Dim, "   \""+issue.Evidence+"\""))
	}
	if issue.Recommendation != "" {
		r.w.Line("   → " + issue.Recommendation)
	}
}

// DisplayTrial shows the remaining free analyses
func (r *AnalysisRunner) DisplayTrial(status types.TrialStatus) {
	if status.HasRemaining() {
		r.w.Info("%d of %d free analyses remaining", status.Remaining, status.Limit)
		return
	}
	r.w.Warning("Free trial exhausted (%d of %d used)", status.Used, status.Limit)
}

// SeverityLine summarises issue counts, most severe first, e.g. "1 critical, 2 low"
func SeverityLine(result *types.AnalysisResult) string {
	counts := result.SeverityCounts()
	var parts []string
	for i := len(types.Severities) - 1; i >= 0; i-- {
		s := types.Severities[i]
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d", len(result.Issues))
	}
	return strings.Join(parts, ", ")
}

func hiddenCell(tier types.TierAnalysis) string {
	cost, ok := pricing.CompareTier(tier)
	if !ok || !cost.HasHiddenCost() {
		return ""
	}
	if cost.Markup.IsZero() {
		return "+" + cost.Delta.StringFixed(2) + "/mo"
	}
	return fmt.Sprintf("+%s/mo (+%s%%)", cost.Delta.StringFixed(2), cost.Markup.String())
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "< 1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}
