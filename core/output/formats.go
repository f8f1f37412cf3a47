package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"pricing-detective/core/store"
	"pricing-detective/core/ui"
)

// CLIFormatter renders reports for a terminal
type CLIFormatter struct {
	noColor bool
}

// NewCLIFormatter creates a terminal formatter
func NewCLIFormatter(noColor bool) *CLIFormatter {
	return &CLIFormatter{noColor: noColor}
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render writes the report through the terminal UI
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	ui.NewAnalysisRunner(ui.NewWriter(w, f.noColor), nil, false).
		Display(report.Phase, report.Result, report.Error, report.Trial)
	return nil
}

// JSONFormatter renders reports as JSON
type JSONFormatter struct {
	indent bool
}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter(indent bool) *JSONFormatter {
	return &JSONFormatter{indent: indent}
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render writes the report as a single JSON document
func (f *JSONFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	if f.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

// MarkdownFormatter renders reports as markdown
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format returns FormatMarkdown
func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

// Render writes the report as markdown
func (f *MarkdownFormatter) Render(w io.Writer, report *Report) error {
	var b strings.Builder

	switch report.Phase {
	case store.PhaseError:
		fmt.Fprintf(&b, "## Analysis failed\n\n%s\n", report.Error)
	case store.PhaseSuccess:
		writeMarkdownResult(&b, report)
	default:
		b.WriteString("_No analysis yet._\n")
	}

	if t := report.Trial; t != nil {
		if t.HasRemaining() {
			fmt.Fprintf(&b, "\n_%d of %d free analyses remaining._\n", t.Remaining, t.Limit)
		} else {
			fmt.Fprintf(&b, "\n_Free trial exhausted (%d of %d used)._\n", t.Used, t.Limit)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownResult(b *strings.Builder, report *Report) {
	r := report.Result
	tool := r.ToolName
	if tool == "" {
		tool = "Unknown tool"
	}
	fmt.Fprintf(b, "## Pricing analysis: %s\n\n", tool)
	fmt.Fprintf(b, "**Honesty score:** %d/100 (%s)\n\n", r.OverallScore, report.Band)
	if r.Verdict != "" {
		fmt.Fprintf(b, "> %s\n\n", r.Verdict)
	}
	if r.Summary != "" {
		fmt.Fprintf(b, "%s\n\n", r.Summary)
	}

	if len(r.Issues) > 0 {
		fmt.Fprintf(b, "### Issues (%s)\n\n", ui.SeverityLine(r))
		b.WriteString("| Severity | Type | Issue | Evidence |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, issue := range r.Issues {
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
				issue.Severity, mdCell(issue.Type.Label()), mdCell(issue.Title), mdCell(issue.Evidence))
		}
		b.WriteString("\n")
	}

	if len(r.Tiers) > 0 {
		b.WriteString("### Tiers\n\n")
		b.WriteString("| Tier | Stated | True cost |\n")
		b.WriteString("|---|---|---|\n")
		for _, tier := range r.Tiers {
			trueCost, ok := tier.TrueCost()
			if !ok {
				trueCost = "-"
			}
			fmt.Fprintf(b, "| %s | %s | %s |\n", mdCell(tier.Name), mdCell(tier.StatedPrice), mdCell(trueCost))
		}
		b.WriteString("\n")
	}

	if len(report.HiddenCosts) > 0 {
		b.WriteString("### Hidden costs\n\n")
		for _, hc := range report.HiddenCosts {
			fmt.Fprintf(b, "- **%s**: +%s per month", hc.Tier, hc.MonthlyDelta)
			if hc.MarkupPercent != "" {
				fmt.Fprintf(b, " (+%s%%)", hc.MarkupPercent)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("### Recommendations\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(b, "- %s\n", rec)
		}
	}
}

// mdCell keeps table cells on one line
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}
