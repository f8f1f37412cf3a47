// Package cmd - analyze command
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pricing-detective/core/output"
	"pricing-detective/core/store"
	"pricing-detective/core/types"
	"pricing-detective/core/ui"
	"pricing-detective/internal/logging"
)

var (
	outputFormat string
	toolName     string
	language     string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Analyze the text of a pricing page",
	Long: `Submit pricing page text for analysis and print the findings.

The text is read from the given file, or from standard input when the
argument is "-" or missing. At least 50 characters are required.

Examples:
  pricing-detective analyze pricing.txt
  pricing-detective analyze pricing.txt --tool Acme --lang de
  cat pricing.txt | pricing-detective analyze --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, markdown)")
	analyzeCmd.Flags().StringVarP(&toolName, "tool", "t", "", "name of the tool being analyzed")
	analyzeCmd.Flags().StringVarP(&language, "lang", "l", "", "answer language (en, zh, ja, de, fr, ko, es)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := app.Config()

	source := "-"
	if len(args) > 0 {
		source = args[0]
	}
	content, err := readContent(source, cmd.InOrStdin())
	if err != nil {
		return err
	}

	format, err := resolveFormat(outputFormat, cfg.Output.DefaultFormat)
	if err != nil {
		return err
	}

	e := app.Engine()
	e.EditContent(content)
	e.EditToolName(toolName)
	if language != "" {
		if !types.IsSupportedLanguage(language) {
			logging.Warn("language not in the supported list, sending anyway", zap.String("language", language))
		}
		e.EditLanguage(language)
	}

	// The quota is informational; the backend has the final word.
	if snap, err := e.LoadTrialStatus(ctx); err == nil && snap.TrialExhausted() {
		logging.Warn("free trial exhausted, the analysis will likely be refused",
			zap.Int("limit", snap.Trial.Limit))
	}

	out := cmd.OutOrStdout()
	w := ui.NewWriter(out, cfg.Output.NoColor)
	if verbose {
		w.SetVerbosity(2)
	}
	runner := ui.NewAnalysisRunner(w, e, format == output.FormatCLI && isTerminal(out))
	snap, elapsed := runner.Run(ctx)

	formatter, _ := output.DefaultRegistry(cfg.Output.NoColor).GetFormatter(format)
	if err := formatter.Render(out, output.NewReport(snap)); err != nil {
		return fmt.Errorf("rendering output: %w", err)
	}
	if format == output.FormatCLI && snap.Phase() == store.PhaseSuccess {
		runner.DisplayElapsed(elapsed)
	}

	if snap.Phase() == store.PhaseError {
		// Already reported in the chosen format.
		cmd.SilenceErrors = true
		return fmt.Errorf("analysis failed: %s", snap.Error())
	}
	return nil
}

// readContent reads the pricing text from a file or from stdin for "-"
func readContent(source string, stdin io.Reader) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", source, err)
	}
	return string(data), nil
}

func resolveFormat(flag, fallback string) (output.Format, error) {
	name := flag
	if name == "" {
		name = fallback
	}
	format := output.Format(name)
	switch format {
	case output.FormatCLI, output.FormatJSON, output.FormatMarkdown:
		return format, nil
	}
	return "", fmt.Errorf("unknown output format %q (cli, json, markdown)", name)
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
