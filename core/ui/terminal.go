// Package ui - Terminal user interface
// Rich CLI output with tables, spinners, and colors.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"pricing-detective/core/types"
)

// Colors for terminal output
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
)

// Writer is the UI output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a UI writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// color applies color if enabled
func (w *Writer) color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Line writes text verbatim with newline
func (w *Writer) Line(text string) {
	fmt.Fprintln(w.out, text)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Line("")
	w.Line(w.color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Line("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Line(w.color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	w.Line(w.color(Green, "✓ ") + fmt.Sprintf(format, args...))
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Line(w.color(Yellow, "⚠ ") + fmt.Sprintf(format, args...))
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	w.Line(w.color(Red, "✗ ") + fmt.Sprintf(format, args...))
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	w.Line(w.color(Blue, "ℹ ") + fmt.Sprintf(format, args...))
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	w.Line(w.color(Dim, "  "+fmt.Sprintf(format, args...)))
}

// BandColor returns the color used for a score band
func BandColor(band types.ScoreBand) string {
	switch band {
	case types.BandHonest:
		return Green
	case types.BandCaution:
		return Yellow
	case types.BandMisleading:
		return Magenta
	default:
		return Red
	}
}

// SeverityColor returns the color used for a severity
func SeverityColor(s types.Severity) string {
	switch s {
	case types.SeverityCritical:
		return Bold + Red
	case types.SeverityHigh:
		return Red
	case types.SeverityMedium:
		return Yellow
	default:
		return Dim
	}
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate cells to match header count
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if n := utf8.RuneCountInString(row[i]); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table
func (t *Table) Render() {
	t.w.Line(t.w.color(Bold, t.join(t.headers)))

	sep := make([]string, len(t.widths))
	for i, w := range t.widths {
		sep[i] = strings.Repeat("─", w)
	}
	t.w.Line(strings.Join(sep, "─┼─"))

	for _, row := range t.rows {
		t.w.Line(t.join(row))
	}
}

func (t *Table) join(cells []string) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = cell + strings.Repeat(" ", t.widths[i]-utf8.RuneCountInString(cell))
	}
	return strings.TrimRight(strings.Join(padded, " │ "), " ")
}

// Spinner shows a loading spinner
type Spinner struct {
	w       *Writer
	label   string
	frames  []string
	current int
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a spinner
func (w *Writer) NewSpinner(label string) *Spinner {
	return &Spinner{
		w:      w,
		label:  label,
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start starts the spinner
func (s *Spinner) Start() {
	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				close(s.done)
				return
			case <-ticker.C:
				s.current = (s.current + 1) % len(s.frames)
				fmt.Fprintf(s.w.out, "\r%s %s", s.w.color(Cyan, s.frames[s.current]), s.label)
			}
		}
	}()
}

// Stop stops the spinner
func (s *Spinner) Stop(success bool) {
	close(s.stop)
	<-s.done

	icon := s.w.color(Green, "✓")
	if !success {
		icon = s.w.color(Red, "✗")
	}
	fmt.Fprintf(s.w.out, "\r%s %s\n", icon, s.label)
}

// ScoreBox renders the overall score banner
type ScoreBox struct {
	w       *Writer
	Tool    string
	Score   int
	Verdict string
}

// NewScoreBox creates a score banner
func (w *Writer) NewScoreBox() *ScoreBox {
	return &ScoreBox{w: w}
}

// Render prints the score banner
func (b *ScoreBox) Render() {
	band := types.BandForScore(b.Score)
	tool := b.Tool
	if tool == "" {
		tool = "Unknown tool"
	}

	b.w.Header("Pricing Analysis: " + tool)
	b.w.Line(b.w.color(Bold, "╭─────────────────────────────────────╮"))
	b.w.Line(b.w.color(Bold, "│") + b.w.color(BandColor(band), fmt.Sprintf("  Honesty Score: %3d/100  %-11s", b.Score, band)) + b.w.color(Bold, "│"))
	b.w.Line(b.w.color(Bold, "╰─────────────────────────────────────╯"))
	if b.Verdict != "" {
		b.w.Line("")
		b.w.Line(b.Verdict)
	}
}
