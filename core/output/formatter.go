// Package output provides output formatting interfaces.
// This package produces human and machine-readable reports of a session.
package output

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"pricing-detective/core/pricing"
	"pricing-detective/core/store"
	"pricing-detective/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is human-readable terminal output
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is the renderable view of a session snapshot
type Report struct {
	// Phase is the lifecycle phase the report was taken in
	Phase store.Phase `json:"phase"`

	// Result is present on success
	Result *types.AnalysisResult `json:"result,omitempty"`

	// Error is present on failure
	Error string `json:"error,omitempty"`

	// Band is the score band of a successful result
	Band types.ScoreBand `json:"band,omitempty"`

	// SeverityCounts tallies issues per severity
	SeverityCounts map[types.Severity]int `json:"severity_counts,omitempty"`

	// HiddenCosts lists tiers whose true cost exceeds the stated price
	HiddenCosts []HiddenCost `json:"hidden_costs,omitempty"`

	// Trial is the last known trial status
	Trial *types.TrialStatus `json:"trial_status,omitempty"`
}

// HiddenCost is the serializable form of a tier's hidden cost
type HiddenCost struct {
	Tier          string `json:"tier"`
	Stated        string `json:"stated"`
	TrueCost      string `json:"true_cost"`
	MonthlyDelta  string `json:"monthly_delta"`
	MarkupPercent string `json:"markup_percent,omitempty"`
}

// NewReport builds a report from a snapshot
func NewReport(snap store.Snapshot) *Report {
	report := &Report{
		Phase: snap.Phase(),
		Error: snap.Error(),
		Trial: snap.Trial,
	}
	if result := snap.Result(); result != nil {
		report.Result = result
		report.Band = result.Band()
		if len(result.Issues) > 0 {
			report.SeverityCounts = result.SeverityCounts()
		}
		for _, c := range pricing.HiddenCosts(result) {
			hc := HiddenCost{
				Tier:         c.Name,
				Stated:       c.Stated.String(),
				TrueCost:     c.True.String(),
				MonthlyDelta: c.Delta.StringFixed(2),
			}
			if !c.Markup.IsZero() {
				hc.MarkupPercent = c.Markup.String()
			}
			report.HiddenCosts = append(report.HiddenCosts, hc)
		}
	}
	return report
}

// FormatterRegistry manages formatter registration
type FormatterRegistry interface {
	// Register adds a formatter to the registry
	Register(formatter Formatter) error

	// GetFormatter returns a formatter for a format type
	GetFormatter(format Format) (Formatter, bool)

	// GetAll returns all registered formatters
	GetAll() []Formatter
}

// Registry is the default FormatterRegistry
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[Format]Formatter)}
}

// DefaultRegistry returns a registry with every built-in formatter
func DefaultRegistry(noColor bool) *Registry {
	r := NewRegistry()
	_ = r.Register(NewCLIFormatter(noColor))
	_ = r.Register(NewJSONFormatter(true))
	_ = r.Register(NewMarkdownFormatter())
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formatters[formatter.Format()]; exists {
		return fmt.Errorf("formatter %q already registered", formatter.Format())
	}
	r.formatters[formatter.Format()] = formatter
	return nil
}

// GetFormatter returns a formatter for a format type
func (r *Registry) GetFormatter(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	return f, ok
}

// GetAll returns all registered formatters sorted by format name
func (r *Registry) GetAll() []Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Formatter, 0, len(r.formatters))
	for _, f := range r.formatters {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Format() < all[j].Format() })
	return all
}
